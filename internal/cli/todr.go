package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/Tempo/internal/clock"
	"github.com/SmitUplenchwar2687/Tempo/internal/todr"
	"github.com/SmitUplenchwar2687/Tempo/internal/toystore"
)

const storeTimeout = 10 * time.Second

func newTODRCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todr",
		Short: "Inspect or change a TOY store offline",
		Long: `Reads or writes the battery-backed time-of-year record without running
the machine. The store is selected with the same flags as run.`,
	}
	cmd.AddCommand(
		newTODRShowCmd(),
		newTODRSetCmd(),
		newTODRClearCmd(),
	)
	return cmd
}

// openTOY resolves the store settings for a todr subcommand. The none
// backend is rejected since there is nothing to inspect.
func openTOY(ctx context.Context, cmd *cobra.Command, o *toyOptions) (toystore.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := o.apply(cmd, &cfg.TOY); err != nil {
		return nil, err
	}
	if cfg.TOY.Backend == toystore.BackendNone {
		return nil, fmt.Errorf("no TOY store selected, use --toy or a config file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return toystore.Open(ctx, cfg.TOY.StoreOptions())
}

func newTODRShowCmd() *cobra.Command {
	var o toyOptions
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the TOY record and the register value it implies",
		Example: `  tempo todr show --toy file --toy-path tempo.toy
  tempo todr show --toy redis --toy-key vax1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), storeTimeout)
			defer cancel()
			s, err := openTOY(ctx, cmd, &o)
			if err != nil {
				return err
			}
			return showTODR(ctx, cmd.OutOrStdout(), s, clock.NewRealClock())
		},
	}
	o.addFlags(cmd)
	return cmd
}

func newTODRSetCmd() *cobra.Command {
	var (
		o     toyOptions
		value uint32
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Write the TODR as the guest would",
		Long: `Moves the TOY epoch so that the register reads --value now and keeps
counting from there.`,
		Example: `  tempo todr set --toy file --toy-path tempo.toy --value 268435456`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), storeTimeout)
			defer cancel()
			s, err := openTOY(ctx, cmd, &o)
			if err != nil {
				return err
			}
			return setTODR(ctx, cmd.OutOrStdout(), s, clock.NewRealClock(), value)
		},
	}
	o.addFlags(cmd)
	cmd.Flags().Uint32Var(&value, "value", 0, "register value in 10 ms ticks")
	cmd.MarkFlagRequired("value")
	return cmd
}

func newTODRClearCmd() *cobra.Command {
	var o toyOptions
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Zero the TOY record, as if the battery had failed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), storeTimeout)
			defer cancel()
			s, err := openTOY(ctx, cmd, &o)
			if err != nil {
				return err
			}
			return clearTODR(ctx, cmd.OutOrStdout(), s)
		},
	}
	o.addFlags(cmd)
	return cmd
}

func showTODR(ctx context.Context, w io.Writer, s toystore.Store, clk clock.Clock) error {
	t := todr.New(clk)
	if err := t.Attach(ctx, s); err != nil {
		return err
	}
	defer t.Detach(ctx)

	rec := t.Record()
	fmt.Fprintf(w, "store:    %s\n", s.Name())
	fmt.Fprintf(w, "epoch:    %s\n", rec)
	if rec.IsZero() {
		fmt.Fprintln(w, "register: unset (starts at 0 on the next power-up)")
		return nil
	}
	if err := t.Resync(); err != nil {
		return err
	}
	v := t.Read(false)
	if v == 0 {
		fmt.Fprintln(w, "register: 0 (stopped, epoch is too old or in the future)")
		return nil
	}
	fmt.Fprintf(w, "register: %d (%#08x)\n", v, v)
	return nil
}

func setTODR(ctx context.Context, w io.Writer, s toystore.Store, clk clock.Clock, v uint32) error {
	t := todr.New(clk)
	if err := t.Attach(ctx, s); err != nil {
		return err
	}
	t.Write(v)
	rec := t.Record()
	if err := t.Detach(ctx); err != nil {
		return err
	}
	fmt.Fprintf(w, "TODR set to %d, epoch %s\n", v, rec)
	return nil
}

func clearTODR(ctx context.Context, w io.Writer, s toystore.Store) error {
	defer s.Close()
	if err := s.Save(ctx, toystore.Record{}); err != nil {
		return fmt.Errorf("clearing %s: %w", s.Name(), err)
	}
	fmt.Fprintf(w, "cleared %s\n", s.Name())
	return nil
}
