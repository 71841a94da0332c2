package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/pocket/cmd/kv"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "pocket",
		Short: "persistent key-value pockets on the file system",
		Long: fmt.Sprintf(`pocket (v%s)

A small persistence library written in Go. Values are serialized,
optionally encrypted and stored as one file per key below a data directory.
Every change is published to subscribers, so values can be streamed.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of pocket",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pocket v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
