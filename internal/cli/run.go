package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/Tempo/internal/clock"
	"github.com/SmitUplenchwar2687/Tempo/internal/config"
	"github.com/SmitUplenchwar2687/Tempo/internal/intr"
	"github.com/SmitUplenchwar2687/Tempo/internal/machine"
	"github.com/SmitUplenchwar2687/Tempo/internal/monitor"
	"github.com/SmitUplenchwar2687/Tempo/internal/sched"
	"github.com/SmitUplenchwar2687/Tempo/internal/stddev"
	"github.com/SmitUplenchwar2687/Tempo/internal/terminal"
	"github.com/SmitUplenchwar2687/Tempo/internal/todr"
	"github.com/SmitUplenchwar2687/Tempo/internal/toystore"
	"github.com/SmitUplenchwar2687/Tempo/internal/trace"
)

type runOptions struct {
	toy toyOptions

	ticksPerSecond int
	initialDelay   int32
	inputMode      string
	outputMode     string
	inputWait      int32
	outputWait     int32
	haltOnBreak    bool
	breakChar      uint8
	quitChar       uint8
	slice          int64
	idle           time.Duration
	addr           string
	record         string
}

func newRunCmd() *cobra.Command {
	var o runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the console on this terminal",
		Long: `Puts the terminal in raw mode and runs the console devices with an echo
monitor. Typed characters are echoed back through the transmitter and the
interval clock ticks at the configured rate.

Press the quit character (Ctrl-] by default) to exit. With --halt-on-break
the break character stops the machine as a console halt would.`,
		Example: `  tempo run
  tempo run --toy file --toy-path tempo.toy
  tempo run --toy redis --redis-host localhost:6379 --toy-key vax1
  tempo run --addr :8080 --record trace.json
  tempo run --config tempo.json --output-mode 7p`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := o.apply(cmd, &cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			con, err := terminal.Open(terminal.Options{
				In:        os.Stdin,
				Out:       os.Stdout,
				BreakChar: cfg.Console.BreakChar,
				QuitChar:  cfg.Console.QuitChar,
				Raw:       true,
			})
			if err != nil {
				return err
			}
			defer con.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			go func() {
				select {
				case <-con.Done():
					cancel()
				case <-ctx.Done():
				}
			}()

			return runSession(ctx, cfg, con, clock.NewRealClock())
		},
	}

	o.addFlags(cmd)
	return cmd
}

func (o *runOptions) addFlags(cmd *cobra.Command) {
	def := config.Default()
	o.toy.addFlags(cmd)
	cmd.Flags().IntVar(&o.ticksPerSecond, "tps", def.Clock.TicksPerSecond, "interval clock ticks per second")
	cmd.Flags().Int32Var(&o.initialDelay, "clock-delay", def.Clock.InitialDelay, "initial clock tick delay in scheduler units")
	cmd.Flags().StringVar(&o.inputMode, "input-mode", def.Console.InputMode, "receiver character mode (7b, 8b, 7p)")
	cmd.Flags().StringVar(&o.outputMode, "output-mode", def.Console.OutputMode, "transmitter character mode (7b, 8b, 7p)")
	cmd.Flags().Int32Var(&o.inputWait, "input-wait", def.Console.InputWait, "receiver poll interval in units (0 = follow the clock)")
	cmd.Flags().Int32Var(&o.outputWait, "output-wait", def.Console.OutputWait, "transmitter character time in units")
	cmd.Flags().BoolVar(&o.haltOnBreak, "halt-on-break", def.Console.HaltOnBreak, "halt the machine on a console break")
	cmd.Flags().Uint8Var(&o.breakChar, "break-char", def.Console.BreakChar, "character reported as a line break (0 = none)")
	cmd.Flags().Uint8Var(&o.quitChar, "quit-char", def.Console.QuitChar, "character that exits tempo")
	cmd.Flags().Int64Var(&o.slice, "slice", def.Machine.Slice, "scheduler units per machine step")
	cmd.Flags().DurationVar(&o.idle, "idle", def.Machine.Idle, "sleep when the console is idle")
	cmd.Flags().StringVar(&o.addr, "addr", "", "monitor server address (empty = disabled)")
	cmd.Flags().StringVar(&o.record, "record", "", "record device events to a JSON file (exported on exit)")
}

// apply overrides cfg with the flags the user set explicitly.
func (o *runOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("tps") {
		cfg.Clock.TicksPerSecond = o.ticksPerSecond
	}
	if f.Changed("clock-delay") {
		cfg.Clock.InitialDelay = o.initialDelay
	}
	if f.Changed("input-mode") {
		cfg.Console.InputMode = o.inputMode
	}
	if f.Changed("output-mode") {
		cfg.Console.OutputMode = o.outputMode
	}
	if f.Changed("input-wait") {
		cfg.Console.InputWait = o.inputWait
	}
	if f.Changed("output-wait") {
		cfg.Console.OutputWait = o.outputWait
	}
	if f.Changed("halt-on-break") {
		cfg.Console.HaltOnBreak = o.haltOnBreak
	}
	if f.Changed("break-char") {
		cfg.Console.BreakChar = o.breakChar
	}
	if f.Changed("quit-char") {
		cfg.Console.QuitChar = o.quitChar
	}
	if f.Changed("slice") {
		cfg.Machine.Slice = o.slice
	}
	if f.Changed("idle") {
		cfg.Machine.Idle = o.idle
	}
	if f.Changed("addr") {
		cfg.Monitor.Addr = o.addr
	}
	if f.Changed("record") {
		cfg.Monitor.Record = o.record
	}
	return o.toy.apply(cmd, &cfg.TOY)
}

// console is the host side of the terminal devices.
type console interface {
	stddev.Keyboard
	stddev.Printer
}

// runSession assembles the devices around con and runs until ctx is done
// or the machine halts.
func runSession(ctx context.Context, cfg config.Config, con console, clk clock.Clock) error {
	bc, err := cfg.Board()
	if err != nil {
		return err
	}

	q := sched.NewQueue(clk)
	lines := intr.NewLines()
	t := todr.New(clk)
	b := stddev.NewBoard(q, lines, t, con, con, bc)

	if err := attachTOY(ctx, b, cfg.TOY); err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.DetachTOY(dctx); err != nil {
			log.Printf("error detaching TOY store: %v", err)
		}
	}()

	m := machine.New(q, lines, b, clk, machine.Options{
		Slice: cfg.Machine.Slice,
		Idle:  cfg.Machine.Idle,
	})

	var rec *trace.Recorder
	if cfg.Monitor.Record != "" {
		rec = trace.New(nil)
		m.Observe(func(e trace.Event) {
			if err := rec.Record(e); err != nil {
				log.Printf("record error: %v", err)
			}
		})
	}

	var srv *monitor.Server
	if cfg.Monitor.Addr != "" {
		hub := monitor.NewHub()
		m.Observe(hub.Broadcast)
		srv = monitor.New(cfg.Monitor.Addr, m, clk, hub)
		go func() {
			if err := srv.Start(); err != nil {
				log.Printf("monitor server error: %v", err)
			}
		}()
	}

	if err := m.Boot(); err != nil {
		log.Printf("power-up: %v", err)
	}
	runErr := m.Run(ctx)
	if errors.Is(runErr, machine.ErrHalted) {
		log.Printf("halted at unit %d", m.Snapshot().Units)
		runErr = nil
	}

	if rec != nil {
		log.Printf("exporting %d events to %s", rec.Len(), cfg.Monitor.Record)
		if err := rec.ExportFile(cfg.Monitor.Record); err != nil {
			log.Printf("error exporting events: %v", err)
		}
	}
	if srv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Printf("monitor shutdown: %v", err)
		}
	}
	return runErr
}

// attachTOY opens the configured store and hands it to the board. The
// none backend leaves the TODR unattached.
func attachTOY(ctx context.Context, b *stddev.Board, cfg config.TOYConfig) error {
	if cfg.Backend == toystore.BackendNone {
		return nil
	}
	s, err := toystore.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return fmt.Errorf("opening TOY store: %w", err)
	}
	return b.AttachTOY(ctx, s)
}
