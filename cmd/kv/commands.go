package kv

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ValentinKolb/pocket/cmd/util"
	"github.com/ValentinKolb/pocket/lib/pocket"
	"github.com/ValentinKolb/pocket/lib/storage/fsstorage"
	"github.com/spf13/cobra"
)

var (
	putCmd = &cobra.Command{
		Use:   "put [key] [value]",
		Short: "Stores the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPocket(func(rt *util.Runtime) error {
				if err := rt.Pocket.Put(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Println("put successfully")
				return nil
			})
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPocket(func(rt *util.Runtime) error {
				value, found, err := rt.Pocket.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if raw, _ := cmd.Flags().GetBool("raw"); raw {
					if !found {
						return fmt.Errorf("key %s not found", args[0])
					}
					fmt.Println(value)
					return nil
				}
				fmt.Printf("key=%s, found=%t, value=%s\n", args[0], found, value)
				return nil
			})
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPocket(func(rt *util.Runtime) error {
				if err := rt.Pocket.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Println("delete successfully")
				return nil
			})
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPocket(func(rt *util.Runtime) error {
				found, err := rt.Pocket.Contains(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Printf("key=%s, found=%t\n", args[0], found)
				return nil
			})
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Lists all keys in sorted order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPocket(func(rt *util.Runtime) error {
				keys, err := rt.Pocket.GetAllKeys(cmd.Context())
				if err != nil {
					return err
				}
				for _, key := range keys {
					fmt.Println(key)
				}
				return nil
			})
		},
	}
	countCmd = &cobra.Command{
		Use:   "count",
		Short: "Prints the number of stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPocket(func(rt *util.Runtime) error {
				n, err := rt.Pocket.GetCount(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Println(n)
				return nil
			})
		},
	}
	allCmd = &cobra.Command{
		Use:   "all",
		Short: "Prints all values, ordered by their key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPocket(func(rt *util.Runtime) error {
				values, err := rt.Pocket.GetAll(cmd.Context())
				if err != nil {
					return err
				}
				for _, value := range values {
					fmt.Println(value)
				}
				return nil
			})
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Deletes all key value pairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return fmt.Errorf("refusing to delete everything in %s without --yes", conf.DataDir)
			}
			return withPocket(func(rt *util.Runtime) error {
				if err := rt.Pocket.DeleteAll(cmd.Context()); err != nil {
					return err
				}
				fmt.Println("clear successfully")
				return nil
			})
		},
	}
	watchCmd = &cobra.Command{
		Use:   "watch [key]",
		Short: "Prints the value of a key (or all values) on every change",
		Long:  util.WrapString("Prints the current value of a key and again after every change, until interrupted. With --all the sorted list of all values is printed instead, with --raw only the changed keys. Changes made by other processes are picked up from the data directory."),
		Args:  cobra.MaximumNArgs(1),
		RunE:  runWatch,
	}
)

func init() {
	getCmd.Flags().Bool("raw", false, util.WrapString("Only print the value, fail if the key does not exist"))
	clearCmd.Flags().Bool("yes", false, util.WrapString("Confirm deleting all values"))
	watchCmd.Flags().Bool("all", false, util.WrapString("Watch all values instead of a single key"))
	watchCmd.Flags().Bool("raw", false, util.WrapString("Only print the keys that changed (of the given key, or of all keys)"))
}

func runWatch(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	raw, _ := cmd.Flags().GetBool("raw")
	if !raw && all == (len(args) == 1) {
		return fmt.Errorf("either pass a key or --all")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the watcher needs the directory before the storage would create it
	if err := os.MkdirAll(conf.DataDir, 0o755); err != nil {
		return err
	}
	changes, err := fsstorage.Watch(ctx, conf.DataDir)
	if err != nil {
		return err
	}

	rt, err := util.OpenPocket(conf, &util.Options{ExternalChanges: changes})
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			Logger.Warningf("could not close pocket: %v", err)
		}
	}()

	if raw {
		return printKeyChanges(ctx, rt.Pocket, args)
	}

	if all {
		return printStream(ctx, rt.Pocket.StreamAll(ctx), func(values []string) {
			fmt.Printf("%d values\n", len(values))
			for _, value := range values {
				fmt.Printf("  %s\n", value)
			}
		})
	}

	key := args[0]
	return printStream(ctx, rt.Pocket.Stream(ctx, key), func(value pocket.Option[string]) {
		fmt.Printf("key=%s, value=%s\n", key, value)
	})
}

// printKeyChanges prints every changed key (only the one in filter, if given) until ctx is done
func printKeyChanges(ctx context.Context, p pocket.IPocket[string], filter []string) error {
	sub := p.KeyChanges()
	defer sub.Cancel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case key, ok := <-sub.C():
			if !ok {
				return nil
			}
			if len(filter) == 1 && key != filter[0] {
				continue
			}
			fmt.Println(key)
		}
	}
}

// printStream prints every value of s until ctx is done or the stream ends
func printStream[V any](ctx context.Context, s *pocket.Stream[V], show func(V)) error {
	defer s.Cancel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case v, ok := <-s.C():
			if !ok {
				return s.Err()
			}
			show(v)
		}
	}
}
