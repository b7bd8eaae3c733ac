package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/reslab-bio/omics-console/internal/mockapi"
)

func newMockServerCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mock-server",
		Short: "Run the in-memory development backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := mockapi.New(mockapi.Params{
				Config: a.cfg.MockAPI,
				Logger: a.log,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server.StartSimulator(ctx)
			defer server.StopSimulator()

			return server.Run(ctx)
		},
	}
}
