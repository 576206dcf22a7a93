package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/OmichronAgain/novos/boot"
	"github.com/OmichronAgain/novos/console"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cfg := boot.DefaultConfig()
	port := cfg.Port.String()
	var showScreen bool

	cmd := &cobra.Command{
		Use:   "novboot",
		Short: "Boot the kernel runtime in a hosted machine",
		Long: `novboot runs the kernel's boot sequence against emulated hardware. The
serial line is written to stdout: structured logs, the heap's memory map and
the main loop's banner all appear there.

Example:
  novboot
  novboot --iterations 10 --json
  novboot --heap-size 65536 --mmap --log-level debug --screen`,
		Version:       "0.1.0",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg.Port, err = console.ParsePort(port)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return run(ctx, cmd, cfg, showScreen)
		},
	}

	flags := cmd.Flags()
	flags.Uint32Var(&cfg.HeapBase, "heap-base", cfg.HeapBase, "Address of the heap region")
	flags.IntVar(&cfg.HeapSize, "heap-size", cfg.HeapSize, "Size of the heap region in bytes")
	flags.IntVar(&cfg.BaudRate, "baud", cfg.BaudRate, "Serial line baud rate")
	flags.StringVar(&port, "port", port, "Serial port (COM1-COM4)")
	flags.IntVarP(&cfg.Iterations, "iterations", "n", cfg.Iterations, "Main loop iterations, 0 runs until interrupted")
	flags.StringVar(&cfg.Banner, "banner", cfg.Banner, "Text transmitted by the main loop")
	flags.BoolVar(&cfg.UseMmap, "mmap", cfg.UseMmap, "Back the heap region with an anonymous mapping")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Minimum log level (debug, info, warn, error)")
	flags.BoolVar(&cfg.DumpJSON, "json", cfg.DumpJSON, "Write a JSON map of the heap after the heap exercise")
	flags.BoolVar(&showScreen, "screen", false, "Print the text screen when the main loop ends")

	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, cfg boot.Config, showScreen bool) (err error) {
	m, err := boot.Boot(cfg, cmd.OutOrStdout(), nil)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, m.Close())
	}()

	if err := m.Run(ctx); err != nil {
		return err
	}

	if showScreen {
		return m.Screen.Render(cmd.OutOrStdout())
	}
	return nil
}
