package main

import "github.com/ValentinKolb/pocket/cmd"

func main() {
	cmd.Execute()
}
