package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/reslab-bio/omics-console/internal/dashboard"
	"github.com/reslab-bio/omics-console/internal/notify"
	"github.com/reslab-bio/omics-console/internal/tui"
)

func newDashboardCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Browse projects, samples, and QC results interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}

			center := notify.NewCenter(a.log)
			notifications, unsubscribe := center.Subscribe()
			defer unsubscribe()

			session, err := dashboard.NewSession(dashboard.Params{
				Client:   client,
				Notifier: center,
				Logger:   a.log,
			})
			if err != nil {
				return err
			}

			poller := dashboard.NewPoller(dashboard.PollerParams{
				Session:  session,
				Fetcher:  client,
				Logger:   a.log,
				Interval: a.cfg.Poll.Interval,
			})
			defer poller.Stop()

			model := tui.NewDashboardModel(tui.DashboardModelParams{
				Session:       session,
				Poller:        poller,
				Notifications: notifications,
			})

			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context()), tea.WithAltScreen()).Run()
			return err
		},
	}
}
