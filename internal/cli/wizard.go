package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/reslab-bio/omics-console/internal/models"
	"github.com/reslab-bio/omics-console/internal/notify"
	"github.com/reslab-bio/omics-console/internal/tui"
	"github.com/reslab-bio/omics-console/internal/wizard"
)

func newWizardCommand(a *app) *cobra.Command {
	var projectID int64

	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Register a sample through the interactive six-step flow",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}

			center := notify.NewCenter(a.log)
			notifications, unsubscribe := center.Subscribe()
			defer unsubscribe()

			wiz, err := wizard.New(wizard.Params{
				Client:    client,
				Notifier:  center,
				Logger:    a.log,
				ProjectID: projectID,
			})
			if err != nil {
				return err
			}

			// Search results reach the terminal model through a channel;
			// publishing never blocks the searcher goroutine.
			resultCh := make(chan []models.Organism, 8)
			searcher := wizard.NewSearcher(wizard.SearcherParams{
				Client:   client,
				Logger:   a.log,
				Debounce: a.cfg.Search.Debounce,
				MinLen:   a.cfg.Search.MinQueryLen,
				OnResults: func(organisms []models.Organism) {
					select {
					case resultCh <- organisms:
					default:
					}
				},
			})
			defer searcher.Stop()

			model := tui.NewWizardModel(tui.WizardModelParams{
				Wizard:        wiz,
				Searcher:      searcher,
				ResultCh:      resultCh,
				Notifications: notifications,
			})

			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().Int64VarP(&projectID, "project", "P", 0, "project to register the sample in")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}
