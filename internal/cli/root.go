// Package cli defines the miningd command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/beanapologist/ProductiveMining-sub001/internal/config"
	"github.com/beanapologist/ProductiveMining-sub001/internal/logging"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

// NewRootCommand creates the root command for the miningd CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "miningd",
		Short: "Productive mining platform daemon and dashboard",
		Long: `miningd runs a simulated productive-mining network: autonomous miners
solve mathematical work, discoveries are priced and chained into blocks, and
a live dashboard follows the network over WebSocket.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to config file (YAML)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override log level (debug|info|warn|error)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewDashboardCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// setup loads configuration and builds the logger shared by subcommands.
func setup(opts *RootOptions) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("init logging: %w", err)
	}
	return cfg, log, nil
}
