package main

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qdemos/internal/backend"
	"qdemos/internal/config"
	"qdemos/internal/demos"
	"qdemos/internal/sim"
)

// flags holds the persistent command-line flags.
type flags struct {
	configPath string
	debug      bool
	shots      int
	seed       int64
	device     bool
	backendURL string
}

// app is what every subcommand runs against once flags and configuration
// are merged.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	provider *backend.Provider
}

func newRootCmd(out io.Writer) *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:   "qdemo",
		Short: "Quantum computing demonstrations",
		Long: `qdemo runs small quantum computing demonstrations: Bell and GHZ states,
teleportation, Deutsch's algorithm, OpenQASM round trips, emulated noisy
devices and ZX-calculus circuit reduction.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "path to a YAML configuration file")
	pf.BoolVar(&f.debug, "debug", false, "enable debug logging")
	pf.IntVar(&f.shots, "shots", 0, "shots per execution (default from config, 1024)")
	pf.Int64Var(&f.seed, "seed", 0, "seed for random choices and sampling; 0 is time based")
	pf.BoolVar(&f.device, "device", false, "run sampled circuits on the least busy emulated device")
	pf.StringVar(&f.backendURL, "backend-url", "", "use the backends of a remote qdemo server")

	root.AddCommand(newListCmd())
	for _, d := range demos.All() {
		root.AddCommand(newDemoCmd(f, d))
	}
	root.AddCommand(newServeCmd(f))
	root.AddCommand(newZXUICmd(f))
	return root
}

// setup loads the configuration, applies flag overrides and builds the
// logger and backend provider.
func (f *flags) setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return nil, err
	}
	fs := cmd.Flags()
	if fs.Changed("shots") {
		cfg.Shots = f.shots
	}
	if fs.Changed("seed") {
		cfg.Seed = f.seed
	}
	if fs.Changed("device") {
		cfg.UseDevice = f.device
	}
	if fs.Changed("backend-url") {
		cfg.Provider.URL = f.backendURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := cfg.CreateLogger(f.debug)
	if err != nil {
		return nil, errors.Wrap(err, "create logger")
	}

	provider, err := newProvider(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, provider: provider}, nil
}

func newProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backend.Provider, error) {
	if cfg.Provider.URL == "" {
		return backend.NewLocalProvider(logger, cfg.NoiseModel()), nil
	}
	backends, err := backend.Discover(ctx, cfg.Provider.URL, nil, logger)
	if err != nil {
		return nil, errors.Wrapf(err, "backends of %s", cfg.Provider.URL)
	}
	logger.Info("using remote backends",
		zap.String("url", cfg.Provider.URL),
		zap.Int("count", len(backends)),
	)
	return backend.NewProvider(logger, backends...), nil
}

func (a *app) env(out io.Writer) *demos.Env {
	zx := a.cfg.ZX
	return &demos.Env{
		Out:       out,
		Logger:    a.logger,
		Provider:  a.provider,
		Rand:      sim.NewRand(a.cfg.Seed),
		Shots:     a.cfg.Shots,
		Seed:      a.cfg.Seed,
		UseDevice: a.cfg.UseDevice,
		ZX: demos.ZXParams{
			Qubits: zx.Qubits,
			Depth:  zx.Depth,
			PHad:   zx.PHad,
			PT:     zx.PT,
		},
	}
}
