package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qdemos/internal/backend"
	"qdemos/internal/demos"
	"qdemos/internal/tui"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available demos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := table.New().
				Border(lipgloss.HiddenBorder()).
				Headers("DEMO", "DESCRIPTION")
			for _, d := range demos.All() {
				t.Row(d.Name, d.Summary)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}

func newDemoCmd(f *flags, d demos.Demo) *cobra.Command {
	return &cobra.Command{
		Use:   d.Name,
		Short: d.Summary,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := f.setup(cmd)
			if err != nil {
				return err
			}
			defer a.logger.Sync() //nolint:errcheck

			return demos.Run(cmd.Context(), d.Name, a.env(cmd.OutOrStdout()))
		},
	}
}

func newServeCmd(f *flags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local backends over HTTP",
		Long: `serve exposes the local simulators and emulated devices as a JSON API
with prometheus metrics at /metrics. Other qdemo processes reach it with
--backend-url.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := f.setup(cmd)
			if err != nil {
				return err
			}
			defer a.logger.Sync() //nolint:errcheck

			if cmd.Flags().Changed("listen") {
				a.cfg.Server.ListenAddr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a.logger.Info("serving backends",
				zap.String("addr", a.cfg.Server.ListenAddr),
				zap.Int("backends", len(a.provider.Backends())),
			)
			return backend.NewServer(a.provider, a.logger).ListenAndServe(ctx, a.cfg.Server.ListenAddr)
		},
	}
	cmd.Flags().StringVar(&addr, "listen", "", "listen address (default from config, :8080)")
	return cmd
}

func newZXUICmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "zx-ui",
		Short: "Interactive ZX reduce-and-extract explorer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := f.setup(cmd)
			if err != nil {
				return err
			}
			defer a.logger.Sync() //nolint:errcheck

			env := a.env(cmd.OutOrStdout())
			return tui.Run(cmd.Context(), tui.Options{
				Params: env.ZX,
				Seed:   a.cfg.Seed,
				// the alternate screen owns the terminal; keep logs quiet
				Logger: zap.NewNop(),
			})
		},
	}
}
