package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/thelolagemann/sm83core/internal/catalog"
	"github.com/thelolagemann/sm83core/internal/cpu"
	"github.com/thelolagemann/sm83core/internal/emulator"
	"github.com/thelolagemann/sm83core/pkg/log"
)

// loadFlags select what a command runs: a catalog program or a ROM file.
type loadFlags struct {
	test     string
	pc       uint16
	maxSteps int
}

func (f *loadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.test, "test", "", "Run the named catalog program instead of a ROM")
	cmd.Flags().Uint16Var(&f.pc, "pc", 0x0100, "Initial PC when loading a ROM")
	cmd.Flags().IntVar(&f.maxSteps, "max-steps", 100000, "Maximum number of steps before giving up (0 = no limit)")
}

// load creates an emulator with the ROM in args or the --test program.
func (f *loadFlags) load(logger log.Logger, args []string, opts ...emulator.Opt) (*emulator.Emulator, error) {
	opts = append([]emulator.Opt{
		emulator.WithLogger(logger),
		emulator.WithInitialPC(f.pc),
		emulator.WithMaxSteps(f.maxSteps),
	}, opts...)
	e := emulator.New(opts...)

	switch {
	case f.test != "":
		p, err := catalog.ByName(f.test)
		if err != nil {
			return nil, err
		}
		if err := p.Load(e); err != nil {
			return nil, err
		}
	case len(args) == 1:
		if err := e.LoadROM(args[0]); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("either a ROM or --test is required")
	}
	return e, nil
}

func main() {
	var (
		logLevel string
		logger   log.Logger
	)

	rootCmd := &cobra.Command{
		Use:           "sm83core",
		Short:         "SM83 CPU core with a test program catalog and disassembler",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := log.NewWithLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid --log-level: %w", err)
			}
			logger = l
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	// run command
	var runFlags loadFlags
	var printTrace bool

	runCmd := &cobra.Command{
		Use:   "run [rom]",
		Short: "Run a ROM or catalog program until HALT and print the final state",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []emulator.Opt
			if printTrace {
				opts = append(opts, emulator.WithTraceListener(func(t cpu.Trace) {
					fmt.Println(t)
				}))
			}
			e, err := runFlags.load(logger, args, opts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			fmt.Println(e.Info())
			steps, err := e.RunUntilHalt(ctx)
			fmt.Println(e.StateLine())
			fmt.Printf("%d steps, %d cycles\n", steps, e.CPU.TotalCycles())
			return err
		},
	}
	runFlags.register(runCmd)
	runCmd.Flags().BoolVar(&printTrace, "trace", false, "Print every executed instruction")

	// step command
	var stepFlags loadFlags

	stepCmd := &cobra.Command{
		Use:   "step [rom]",
		Short: "Step through a ROM or catalog program interactively",
		Long:  "Step through a ROM or catalog program interactively.\n\nKeys: space = step, r = run, p = pause, x = reset, q = quit",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := stepFlags.load(logger, args)
			if err != nil {
				return err
			}

			term, err := newTerminal(os.Stdin, os.Stdout)
			if err != nil {
				return err
			}
			defer term.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			return e.Loop(ctx, term)
		},
	}
	stepFlags.register(stepCmd)

	// disasm command
	var (
		disasmFlags loadFlags
		from        int
		count       int
	)

	disasmCmd := &cobra.Command{
		Use:   "disasm [rom]",
		Short: "Disassemble instructions without executing them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := disasmFlags.load(logger, args)
			if err != nil {
				return err
			}

			address := e.CPU.PC
			if from >= 0 {
				address = uint16(from)
			}
			for i := 0; i < count; i++ {
				text, length, raw := e.CPU.DisassembleAt(address)
				if length == 0 {
					return fmt.Errorf("disassembling 0x%04X: %s", address, text)
				}
				fmt.Printf("%04X: %-8s  %s\n", address, cpu.Operands{Bytes: raw}, text)
				address += uint16(length)
			}
			return nil
		},
	}
	disasmFlags.register(disasmCmd)
	disasmCmd.Flags().IntVar(&from, "from", -1, "Address to start at (default: the initial PC)")
	disasmCmd.Flags().IntVar(&count, "count", 16, "Number of instructions to list")

	// tests command
	testsCmd := &cobra.Command{
		Use:   "tests",
		Short: "List the catalog programs",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range catalog.All() {
				fmt.Printf("%-18s PC=0x%04X  %s\n", p.Name, p.InitialPC, p.Data)
			}
		},
	}

	// check command
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Run every catalog program and verify its result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			failed := 0
			for _, p := range catalog.All() {
				e := emulator.New(emulator.WithLogger(logger), emulator.WithMaxSteps(1000))
				if err := p.Run(ctx, e); err != nil {
					failed++
					fmt.Printf("FAIL %s\n%v\n", p.Name, err)
					continue
				}
				fmt.Printf("PASS %s\n", p.Name)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d programs failed", failed, len(catalog.All()))
			}
			return nil
		},
	}

	// serve command
	var (
		serveFlags loadFlags
		addr       string
		interval   time.Duration
	)

	serveCmd := &cobra.Command{
		Use:   "serve [rom]",
		Short: "Run a ROM or catalog program while streaming traces over a websocket",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(logger, &serveFlags, args, addr, interval)
		},
	}
	serveFlags.register(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8090", "Address to listen on")
	serveCmd.Flags().DurationVar(&interval, "interval", 250*time.Millisecond, "Time between steps")

	rootCmd.AddCommand(runCmd, stepCmd, disasmCmd, testsCmd, checkCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
