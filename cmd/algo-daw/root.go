package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-daw/engine"
	"github.com/cwbudde/algo-daw/internal/config"
	"github.com/cwbudde/algo-daw/internal/logging"
	"github.com/cwbudde/algo-daw/project"
)

// app carries what every subcommand needs once the root command has run.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	closeLog func() error
}

func newRootCmd(a *app) *cobra.Command {
	var (
		configPath string
		envFiles   []string
		logLevel   string
	)

	root := &cobra.Command{
		Use:           "algo-daw",
		Short:         "Render, play and publish algo-daw projects.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			cfg, err := config.Load(configPath, envFiles...)
			if err != nil {
				return err
			}

			if logLevel != "" {
				cfg.Log.Level = logLevel
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			return a.setup(cfg)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	pf.StringSliceVar(&envFiles, "env-file", nil, "env files to read (default: .env when present)")
	pf.StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	root.AddCommand(
		newRenderCmd(a),
		newPlayCmd(a),
		newUploadCmd(a),
		newInfoCmd(a),
	)

	return root
}

func (a *app) setup(cfg config.Config) error {
	log, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	a.closeLog = closeLog

	return nil
}

func (a *app) close() {
	if a.closeLog != nil {
		_ = a.closeLog()
		a.closeLog = nil
	}
}

// loadProject reads a project file and derives the engine configuration
// from it, falling back to the configured format where the file is silent.
func (a *app) loadProject(path string) (project.Project, engine.Config, error) {
	ec := a.cfg.Engine()

	p, err := project.LoadFile(path)
	if err != nil {
		return project.Project{}, ec, err
	}

	if p.SampleRate > 0 {
		ec.SampleRate = p.SampleRate
	}
	if p.BlockSize > 0 {
		ec.BlockSize = p.BlockSize
	}

	return p, ec, nil
}

func (a *app) newEngine(ec engine.Config, opts ...engine.Option) (*engine.Engine, error) {
	base := []engine.Option{
		engine.WithLogger(a.log.Named("engine")),
		engine.WithPool(a.cfg.Pool()),
	}

	return engine.New(ec, append(base, opts...)...)
}

// openProject creates an engine for the project at path and loads it.
func (a *app) openProject(path string, opts ...engine.Option) (*engine.Engine, engine.Config, error) {
	p, ec, err := a.loadProject(path)
	if err != nil {
		return nil, ec, err
	}

	e, err := a.newEngine(ec, opts...)
	if err != nil {
		return nil, ec, err
	}

	if err := e.Load(p, project.NewFileResolver(path, ec.SampleRate)); err != nil {
		_ = e.Close()

		return nil, ec, err
	}

	return e, ec, nil
}
