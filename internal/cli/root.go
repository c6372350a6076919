package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type app struct {
	opts    Options
	open    Opener
	verbose bool
	noColor bool

	logger *zap.Logger
	env    *Env
}

// Root returns the wardctl command tree. open builds the services on first
// use; pass Open for a real deployment.
func Root(open Opener) *cobra.Command {
	a := &app{opts: DefaultOptions(), open: open}

	cmd := &cobra.Command{
		Use:   "wardctl",
		Short: "Administer a WardWatch deployment",
		Long: `wardctl works directly against the WardWatch database.

It lists the zone directory, reviews officer registrations and provisions
administrator accounts. Connection settings default to the WARDWATCH_*
environment variables the server reads.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.noColor {
				color.NoColor = true
			}
			config := zap.NewProductionConfig()
			config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if a.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			err := a.env.Close(context.Background())
			if a.logger != nil {
				_ = a.logger.Sync()
			}
			return err
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&a.opts.MongoURI, "mongo-uri", a.opts.MongoURI, `MongoDB URI ("memory" for a scratch in-process store)`)
	f.StringVar(&a.opts.Database, "db", a.opts.Database, "MongoDB database name")
	f.StringVar(&a.opts.ZonesFile, "zones-file", a.opts.ZonesFile, "zone/ward directory file (blank for the built-in directory)")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "verbose logging")
	f.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(zonesCmd(a))
	cmd.AddCommand(officersCmd(a))
	cmd.AddCommand(adminCmd(a))
	return cmd
}

// services opens the environment once per invocation.
func (a *app) services(ctx context.Context) (*Env, error) {
	if a.env != nil {
		return a.env, nil
	}
	logger := a.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	env, err := a.open(ctx, a.opts, logger)
	if err != nil {
		return nil, err
	}
	a.env = env
	return env, nil
}
