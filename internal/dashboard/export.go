package dashboard

import (
	"strconv"

	"github.com/reslab-bio/omics-console/internal/models"
	"github.com/reslab-bio/omics-console/internal/qc"
	"github.com/reslab-bio/omics-console/pkg/export"
	appErrors "github.com/reslab-bio/omics-console/pkg/errors"
)

// InventoryDataset flattens the selected project's sample table for export.
func (s *Session) InventoryDataset() (export.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == nil {
		return export.Dataset{}, appErrors.Clone(appErrors.ErrValidation, "no project selected")
	}

	data := export.Dataset{
		Title: s.selected.Name + " sample inventory",
		Meta: []export.KeyValue{
			{Key: "Project", Value: s.selected.Name},
			{Key: "Samples", Value: strconv.Itoa(len(s.samples))},
		},
		Headers: []string{"sample_id", "organism", "tissue_type", "data_type", "collected_on", "qc_status", "files"},
	}

	for _, sample := range s.samples {
		collected := ""
		if sample.CollectedOn != nil {
			collected = *sample.CollectedOn
		}
		data.Rows = append(data.Rows, map[string]string{
			"sample_id":    sample.SampleID,
			"organism":     sample.OrganismName,
			"tissue_type":  sample.TissueTypeName,
			"data_type":    sample.DataType.Label(),
			"collected_on": collected,
			"qc_status":    string(s.qcOutcome[sample.ID].Or(models.QCStatusUnknown)),
			"files":        strconv.Itoa(len(sample.Files)),
		})
	}
	return data, nil
}

// QCDataset flattens one FastQC report into an exportable module table.
func QCDataset(report *models.FastQCReport) export.Dataset {
	data := export.Dataset{
		Title: "FastQC report",
		Meta: []export.KeyValue{
			{Key: "Sample", Value: report.SampleName},
			{Key: "Overall status", Value: string(qc.DeriveOverall(*report).Or(models.QCStatusUnknown))},
		},
		Headers: []string{"module", "status"},
	}
	if report.GeneratedOn != nil {
		data.Meta = append(data.Meta, export.KeyValue{
			Key: "Generated on", Value: report.GeneratedOn.Format("2006-01-02 15:04"),
		})
	}
	for _, row := range report.Summary {
		data.Rows = append(data.Rows, map[string]string{
			"module": row.Module,
			"status": string(row.Status),
		})
	}
	return data
}
