package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/reslab-bio/omics-console/internal/dashboard"
	"github.com/reslab-bio/omics-console/internal/models"
	"github.com/reslab-bio/omics-console/internal/qc"
	"github.com/reslab-bio/omics-console/pkg/export"
	appErrors "github.com/reslab-bio/omics-console/pkg/errors"
)

func newQCCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qc",
		Short: "Inspect, trigger, and export FastQC results",
	}
	cmd.AddCommand(
		newQCShowCommand(a),
		newQCRunCommand(a),
		newQCExportCommand(a),
	)
	return cmd
}

func newQCShowCommand(a *app) *cobra.Command {
	var sampleID int64

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the latest FastQC report for a sample",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}

			report, err := client.LatestFastQC(cmd.Context(), sampleID)
			if err != nil {
				if appErrors.IsNoResult(err) {
					fmt.Fprintln(cmd.OutOrStdout(), "No FastQC results found for this sample.")
					return nil
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sample:   %s\n", report.SampleName)
			fmt.Fprintf(out, "Overall:  %s\n", qc.DeriveOverall(*report).Or(models.QCStatusUnknown))
			if report.GeneratedOn != nil {
				fmt.Fprintf(out, "Generated: %s\n", report.GeneratedOn.Format("2006-01-02 15:04"))
			}
			if len(report.Summary) > 0 {
				fmt.Fprintln(out)
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				for _, row := range report.Summary {
					fmt.Fprintf(w, "%s\t%s\n", row.Status, row.Module)
				}
				_ = w.Flush()
			}
			return nil
		},
	}
	cmd.Flags().Int64VarP(&sampleID, "sample", "s", 0, "sample id")
	_ = cmd.MarkFlagRequired("sample")
	return cmd
}

func newQCRunCommand(a *app) *cobra.Command {
	var (
		sampleID int64
		wait     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Create and start a FastQC job for a sample",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}

			job, err := client.CreateJob(cmd.Context(), sampleID)
			if err != nil {
				return err
			}
			if err := client.TriggerFastQC(cmd.Context(), job.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "FastQC job %d submitted\n", job.ID)

			if !wait {
				return nil
			}
			for {
				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				case <-time.After(a.cfg.Poll.Interval):
				}

				report, err := client.LatestFastQC(cmd.Context(), sampleID)
				if err != nil {
					if appErrors.IsNoResult(err) {
						continue
					}
					return err
				}
				if report.JobStatus.Terminal() {
					fmt.Fprintf(cmd.OutOrStdout(), "FastQC finished: %s\n",
						qc.DeriveOverall(*report).Or(models.QCStatusUnknown))
					return nil
				}
			}
		},
	}
	cmd.Flags().Int64VarP(&sampleID, "sample", "s", 0, "sample id")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "poll until the job finishes")
	_ = cmd.MarkFlagRequired("sample")
	return cmd
}

func newQCExportCommand(a *app) *cobra.Command {
	var (
		sampleID int64
		format   string
		outPath  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a FastQC report as PDF or CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}

			report, err := client.LatestFastQC(cmd.Context(), sampleID)
			if err != nil {
				return err
			}

			data := dashboard.QCDataset(report)
			raw, ext, err := renderDataset(data, format)
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = filepath.Join(a.cfg.Export.OutputDir,
					fmt.Sprintf("fastqc_%s%s", report.SampleName, ext))
			}
			if err := writeExport(outPath, raw); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().Int64VarP(&sampleID, "sample", "s", 0, "sample id")
	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "export format: pdf or csv")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (defaults under the export directory)")
	_ = cmd.MarkFlagRequired("sample")
	return cmd
}

func renderDataset(data export.Dataset, format string) ([]byte, string, error) {
	switch format {
	case "pdf":
		raw, err := export.NewPDFExporter().Render(data)
		return raw, ".pdf", err
	case "csv":
		raw, err := export.NewCSVExporter().Render(data)
		return raw, ".csv", err
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("unknown export format %q, expected pdf or csv", format))
	}
}

func writeExport(path string, raw []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "create export directory")
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "write export file")
	}
	return nil
}
