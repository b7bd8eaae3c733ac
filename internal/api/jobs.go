package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/reslab-bio/omics-console/internal/models"
)

type createJobRequest struct {
	Sample  int64            `json:"sample"`
	JobType models.JobType   `json:"job_type"`
	Status  models.JobStatus `json:"status"`
}

// CreateJob registers a pending FastQC job for a sample. Triggering is a
// separate call so the two failure modes stay distinguishable.
func (c *Client) CreateJob(ctx context.Context, sampleID int64) (*models.Job, error) {
	var created models.Job
	payload := createJobRequest{
		Sample:  sampleID,
		JobType: models.JobTypeFastQC,
		Status:  models.JobStatusPending,
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/jobs/", payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// TriggerFastQC starts a previously created job.
func (c *Client) TriggerFastQC(ctx context.Context, jobID int64) error {
	return c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/jobs/%d/trigger_fastqc/", jobID), nil, nil)
}
