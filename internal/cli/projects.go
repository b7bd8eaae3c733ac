package cli

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reslab-bio/omics-console/internal/dashboard"
	"github.com/reslab-bio/omics-console/internal/models"
)

func newProjectsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage research projects",
	}
	cmd.AddCommand(
		newProjectsListCommand(a),
		newProjectsCreateCommand(a),
		newProjectsUpdateCommand(a),
		newProjectsRemoveCommand(a),
		newProjectsTrashCommand(a),
		newProjectsRestoreCommand(a),
		newProjectsExportCommand(a),
	)
	return cmd
}

func newProjectsExportCommand(a *app) *cobra.Command {
	var (
		format  string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a project's sample inventory as CSV or PDF",
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

			session, err := dashboard.NewSession(dashboard.Params{Client: client, Logger: a.log})
			if err != nil {
				return err
			}
			if err := session.RefreshProjects(cmd.Context()); err != nil {
				return err
			}
			if err := session.SelectProject(cmd.Context(), id); err != nil {
				return err
			}

			data, err := session.InventoryDataset()
			if err != nil {
				return err
			}
			raw, ext, err := renderDataset(data, format)
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = filepath.Join(a.cfg.Export.OutputDir, fmt.Sprintf("inventory_%d%s", id, ext))
			}
			if err := writeExport(outPath, raw); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "export format: csv or pdf")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (defaults under the export directory)")
	return cmd
}

func printProjects(cmd *cobra.Command, projects []models.Project) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION\tCREATED")
	for _, p := range projects {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Description, p.CreatedAt.Format("2006-01-02"))
	}
	_ = w.Flush()
}

func newProjectsListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			projects, err := client.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			printProjects(cmd, projects)
			return nil
		},
	}
}

func newProjectsCreateCommand(a *app) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			project, err := client.CreateProject(cmd.Context(), args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %d: %s\n", project.ID, project.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "project description")
	return cmd
}

func newProjectsUpdateCommand(a *app) *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename or re-describe a project",
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
			project, err := client.UpdateProject(cmd.Context(), id, name, description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated project %d: %s\n", project.ID, project.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "new project name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new project description")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newProjectsRemoveCommand(a *app) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Move a project to the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !confirm(cmd, assumeYes, fmt.Sprintf("Move project %d to trash?", id)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
				return nil
			}
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			if err := client.DeleteProject(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Project moved to trash")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "delete without asking for confirmation")
	return cmd
}

func newProjectsTrashCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "trash",
		Short: "List trashed projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			projects, err := client.ProjectTrash(cmd.Context())
			if err != nil {
				return err
			}
			printProjects(cmd, projects)
			return nil
		},
	}
}

func newProjectsRestoreCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a project from the trash",
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
			if err := client.RestoreProject(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Project restored")
			return nil
		},
	}
}
