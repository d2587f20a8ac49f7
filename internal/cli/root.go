package cli

import (
	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/Tempo/internal/config"
)

// NewRootCmd creates the root tempo command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tempo",
		Short: "VAX console and interval clock on the host terminal",
		Long: `Tempo runs the console terminal, the 100 Hz interval clock and the
battery-backed time-of-year register of a VAX on your terminal.

The time-of-year record can be kept in a file, in memory or in Redis, and
a monitor server shows the device registers and a live event feed.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "path to a JSON config file")

	root.AddCommand(
		newRunCmd(),
		newTODRCmd(),
		newTraceCmd(),
		newConfigCmd(),
	)

	return root
}

// loadConfig reads --config, or returns the defaults when it is unset.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil || path == "" {
		return config.Default(), nil
	}
	return config.LoadFile(path)
}
