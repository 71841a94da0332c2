package kv

import (
	"github.com/ValentinKolb/pocket/cmd/util"
	"github.com/ValentinKolb/pocket/lib/common"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
)

var (
	Logger = logger.GetLogger("cli")

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:               "kv",
		Short:             "Perform operations on a pocket",
		Long:              util.WrapString("Perform operations on the pocket in the data directory. Values are handled as strings, the configuration can be set via flags or environment variables (e.g. POCKET_ENCRYPTION=aead)"),
		PersistentPreRunE: setupConfig,
	}

	// conf is read once all flags are parsed
	conf common.Config
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add the flags describing the pocket
	util.SetupPocketFlags(KeyValueCommands)

	// Add subcommands
	KeyValueCommands.AddCommand(putCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(hasCmd)
	KeyValueCommands.AddCommand(keysCmd)
	KeyValueCommands.AddCommand(countCmd)
	KeyValueCommands.AddCommand(allCmd)
	KeyValueCommands.AddCommand(clearCmd)
	KeyValueCommands.AddCommand(watchCmd)
	KeyValueCommands.AddCommand(benchCmd)
}

// setupConfig reads and validates the configuration and initializes the loggers
func setupConfig(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	conf = util.GetConfig()
	if err := conf.Validate(); err != nil {
		return err
	}
	if err := common.InitLoggers(conf.LogLevel, nil); err != nil {
		return err
	}

	Logger.Debugf("configuration: %s", conf.String())
	return nil
}

// withPocket opens the pocket, runs fn and closes the pocket again
func withPocket(fn func(rt *util.Runtime) error) error {
	rt, err := util.OpenPocket(conf, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			Logger.Warningf("could not close pocket: %v", err)
		}
	}()
	return fn(rt)
}
