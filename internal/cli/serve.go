package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/beanapologist/ProductiveMining-sub001/internal/daemon"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the mining platform backend",
		Long: `Start the full backend: SQLite storage, autonomous miners, metrics
collection, and the HTTP/WebSocket API the dashboard connects to.

Example:
  miningd serve
  miningd serve -c miningd.yaml --log-level debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(rootOpts)
			if err != nil {
				return err
			}
			defer log.Sync()

			d := daemon.New(cfg, log)
			if err := d.Start(); err != nil {
				return err
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			log.Info("signal received", zap.String("signal", sig.String()))

			d.Stop()
			return nil
		},
	}
}
