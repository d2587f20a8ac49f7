package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/Tempo/internal/trace"
)

func newTraceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Work with recorded device events",
	}
	cmd.AddCommand(newTraceSummaryCmd())
	return cmd
}

func newTraceSummaryCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "summary FILE",
		Short: "Summarize a recording made with run --record",
		Args:  cobra.ExactArgs(1),
		Example: `  tempo trace summary trace.json
  tempo trace summary trace.json --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := trace.LoadFile(args[0])
			if err != nil {
				return fmt.Errorf("loading %s: %w", args[0], err)
			}
			s := trace.Summarize(events)
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			s.Print(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output the summary as JSON")
	return cmd
}
