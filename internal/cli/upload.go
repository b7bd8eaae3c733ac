package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reslab-bio/omics-console/internal/models"
	appErrors "github.com/reslab-bio/omics-console/pkg/errors"
)

func newUploadCommand(a *app) *cobra.Command {
	var (
		sampleID int64
		fileType string
	)

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Attach a data file to a sample",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ft := models.FileType(fileType)
			if !ft.Valid() {
				return appErrors.Clone(appErrors.ErrValidation,
					fmt.Sprintf("unknown file type %q, expected one of %v", fileType, models.FileTypes))
			}

			client, err := a.apiClient()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return appErrors.Wrap(err, appErrors.ErrValidation.Code, 0, "open data file")
			}
			defer f.Close() //nolint:errcheck

			file, err := client.UploadFile(cmd.Context(), sampleID, ft, filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%d bytes) to sample %d\n",
				filepath.Base(args[0]), file.SizeBytes, file.Sample)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&sampleID, "sample", "s", 0, "sample id")
	cmd.Flags().StringVarP(&fileType, "type", "t", string(models.FileTypeFASTQ), "file type code")
	_ = cmd.MarkFlagRequired("sample")
	return cmd
}
