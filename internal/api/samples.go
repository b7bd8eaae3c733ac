package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/reslab-bio/omics-console/internal/models"
)

// CreateSampleRequest is the POST /api/samples/ payload. Organism must be the
// storage-level id (Organism.StorageID), never the display id.
type CreateSampleRequest struct {
	SampleID    string          `json:"sample_id"`
	Project     int64           `json:"project"`
	Organism    int64           `json:"organism"`
	TissueType  int64           `json:"tissue_type"`
	DataType    models.DataType `json:"data_type"`
	CollectedOn *string         `json:"collected_on"`
}

// UpdateSampleRequest is the PATCH payload for sample edits. Nil foreign keys
// are sent as JSON null, which clears the reference backend-side.
type UpdateSampleRequest struct {
	SampleID    string          `json:"sample_id"`
	DataType    models.DataType `json:"data_type"`
	CollectedOn *string         `json:"collected_on"`
	Organism    *int64          `json:"organism"`
	TissueType  *int64          `json:"tissue_type"`
}

// ListSamples fetches samples for one project. The project filter is also
// applied by the caller defensively; this method passes it server-side.
func (c *Client) ListSamples(ctx context.Context, projectID int64) ([]models.Sample, error) {
	var samples []models.Sample
	path := fmt.Sprintf("/samples/?project=%d", projectID)
	if err := c.getJSON(ctx, path, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

// CreateSample performs the wizard's first network write.
func (c *Client) CreateSample(ctx context.Context, req CreateSampleRequest) (*models.Sample, error) {
	var created models.Sample
	if err := c.sendJSON(ctx, http.MethodPost, "/samples/", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateSample patches an existing sample.
func (c *Client) UpdateSample(ctx context.Context, id int64, req UpdateSampleRequest) (*models.Sample, error) {
	var updated models.Sample
	if err := c.sendJSON(ctx, http.MethodPatch, fmt.Sprintf("/samples/%d/", id), req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteSample soft-deletes a sample (moves it to trash).
func (c *Client) DeleteSample(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, fmt.Sprintf("/samples/%d/", id), nil, nil)
}

// SampleTrash lists soft-deleted samples.
func (c *Client) SampleTrash(ctx context.Context) ([]models.Sample, error) {
	var samples []models.Sample
	if err := c.getJSON(ctx, "/samples/trash/", &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

// RestoreSample brings a soft-deleted sample back.
func (c *Client) RestoreSample(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/samples/%d/restore/", id), nil, nil)
}

// LatestFastQC fetches the most recent FastQC report for a sample. A missing
// report surfaces as errors.ErrNoResult, which callers treat as "no QC yet",
// not as a failure.
func (c *Client) LatestFastQC(ctx context.Context, sampleID int64) (*models.FastQCReport, error) {
	var report models.FastQCReport
	path := fmt.Sprintf("/samples/%d/fastqc/", sampleID)
	if err := c.getJSON(ctx, path, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// JobHistory fetches the full job history for a sample, newest first.
func (c *Client) JobHistory(ctx context.Context, sampleID int64) (*models.JobHistory, error) {
	var history models.JobHistory
	path := fmt.Sprintf("/samples/%d/jobs/", sampleID)
	if err := c.getJSON(ctx, path, &history); err != nil {
		return nil, err
	}
	return &history, nil
}
