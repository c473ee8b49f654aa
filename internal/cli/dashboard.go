package cli

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"

	"github.com/beanapologist/ProductiveMining-sub001/internal/dashboard"
	"github.com/beanapologist/ProductiveMining-sub001/internal/tui"
)

// NewDashboardCommand creates the dashboard command.
func NewDashboardCommand(rootOpts *RootOptions) *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open a live terminal dashboard",
		Long: `Connect to a running backend and follow the network in the terminal.
The dashboard keeps itself current over WebSocket, reconnecting whenever the
link drops, and shows metrics, operations, blocks and discoveries as they
arrive.

Example:
  miningd dashboard
  miningd dashboard --server http://mining.example.com:5001`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(rootOpts)
			if err != nil {
				return err
			}
			defer log.Sync()

			if serverURL != "" {
				cfg.Dashboard.ServerURL = serverURL
			}

			session, err := dashboard.NewSession(cfg.Dashboard, clock.New(), log)
			if err != nil {
				return err
			}
			session.Start()
			defer session.Close()

			// Give the first snapshot a moment to land so the screen is not
			// empty on startup. The TUI catches up on its own afterwards.
			session.WaitSeeded(2 * time.Second)

			return tui.Run(session)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "backend base URL (overrides config)")
	return cmd
}
