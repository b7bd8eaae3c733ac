package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reslab-bio/omics-console/internal/api"
	"github.com/reslab-bio/omics-console/internal/models"
	appErrors "github.com/reslab-bio/omics-console/pkg/errors"
)

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%q is not a valid id", raw))
	}
	return id, nil
}

func newSamplesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "samples",
		Short: "Manage samples within a project",
	}
	cmd.AddCommand(
		newSamplesListCommand(a),
		newSamplesUpdateCommand(a),
		newSamplesRemoveCommand(a),
		newSamplesTrashCommand(a),
		newSamplesRestoreCommand(a),
	)
	return cmd
}

func printSamples(cmd *cobra.Command, samples []models.Sample) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSAMPLE\tORGANISM\tTISSUE\tTYPE\tCOLLECTED\tFILES")
	for _, s := range samples {
		collected := ""
		if s.CollectedOn != nil {
			collected = *s.CollectedOn
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\n",
			s.ID, s.SampleID, s.OrganismName, s.TissueTypeName, s.DataType.Label(), collected, len(s.Files))
	}
	_ = w.Flush()
}

func newSamplesListCommand(a *app) *cobra.Command {
	var projectID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List samples of a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			samples, err := client.ListSamples(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			printSamples(cmd, samples)
			return nil
		},
	}
	cmd.Flags().Int64VarP(&projectID, "project", "P", 0, "project id")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newSamplesUpdateCommand(a *app) *cobra.Command {
	var (
		code      string
		dataType  string
		collected string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a sample's code, data type, or collection date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := a.apiClient()
			if err != nil {
				return err
			}

			req := api.UpdateSampleRequest{
				SampleID: code,
				DataType: models.DataType(dataType),
			}
			if collected != "" {
				req.CollectedOn = &collected
			}

			sample, err := client.UpdateSample(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated sample %d: %s\n", sample.ID, sample.SampleID)
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "sample code (e.g. OS-001)")
	cmd.Flags().StringVar(&dataType, "data-type", string(models.DataTypeRNA), "data type code (DNA RNA META PROT METAB)")
	cmd.Flags().StringVar(&collected, "collected-on", "", "collection date, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

func newSamplesRemoveCommand(a *app) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Move a sample to the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !confirm(cmd, assumeYes, fmt.Sprintf("Move sample %d to trash?", id)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
				return nil
			}
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			if err := client.DeleteSample(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sample moved to trash")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "delete without asking for confirmation")
	return cmd
}

func newSamplesTrashCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "trash",
		Short: "List trashed samples",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			samples, err := client.SampleTrash(cmd.Context())
			if err != nil {
				return err
			}
			printSamples(cmd, samples)
			return nil
		},
	}
}

func newSamplesRestoreCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a sample from the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			if err := client.RestoreSample(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sample restored")
			return nil
		},
	}
}
