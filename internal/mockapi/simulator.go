package mockapi

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/reslab-bio/omics-console/internal/models"
	"github.com/reslab-bio/omics-console/pkg/jobs"
	"github.com/reslab-bio/omics-console/pkg/storage"
)

// fastqcModules is the fixed module list a FastQC run reports on.
var fastqcModules = []string{
	"Basic Statistics",
	"Per base sequence quality",
	"Per sequence quality scores",
	"Per base sequence content",
	"Per sequence GC content",
	"Sequence Length Distribution",
	"Overrepresented sequences",
	"Adapter Content",
}

// Simulator executes triggered FastQC jobs: it waits a configurable run
// duration, synthesizes a module summary, and writes the report row the
// samples/{id}/fastqc/ endpoint serves.
type Simulator struct {
	store    *Store
	signer   *storage.ReportSigner
	metrics  *Metrics
	log      *zap.Logger
	duration time.Duration
	now      func() time.Time

	queue *jobs.Queue
}

// SimulatorParams groups constructor dependencies.
type SimulatorParams struct {
	Store    *Store
	Signer   *storage.ReportSigner
	Metrics  *Metrics
	Logger   *zap.Logger
	Duration time.Duration
}

// NewSimulator builds a simulator. Duration defaults to 10 seconds so a
// dashboard poll cycle observes the running state at least once.
func NewSimulator(params SimulatorParams) *Simulator {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	duration := params.Duration
	if duration <= 0 {
		duration = 10 * time.Second
	}

	s := &Simulator{
		store:    params.Store,
		signer:   params.Signer,
		metrics:  params.Metrics,
		log:      logger,
		duration: duration,
		now:      time.Now,
	}
	s.queue = jobs.NewQueue("fastqc", s.run, jobs.QueueConfig{
		Workers: 2,
		Logger:  logger,
	})
	return s
}

// Start launches the worker pool.
func (s *Simulator) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *Simulator) Stop() {
	s.queue.Stop()
}

// Trigger transitions a job to running and enqueues its simulated run.
func (s *Simulator) Trigger(jobID int64) error {
	job, err := s.store.MarkJobRunning(jobID)
	if err != nil {
		return err
	}
	s.metrics.JobStarted()

	if err := s.queue.Enqueue(jobs.Task{JobID: job.ID, SampleID: job.Sample}); err != nil {
		s.store.FinishJob(job.ID, models.JobStatusFailed, "")
		s.metrics.JobFinished(string(models.JobStatusFailed))
		return err
	}
	return nil
}

func (s *Simulator) run(ctx context.Context, task jobs.Task) error {
	timer := time.NewTimer(s.duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		s.store.FinishJob(task.JobID, models.JobStatusFailed, "")
		s.metrics.JobFinished(string(models.JobStatusFailed))
		return nil
	case <-timer.C:
	}

	sample, ok := s.store.SampleByID(task.SampleID)
	if !ok {
		s.store.FinishJob(task.JobID, models.JobStatusFailed, "")
		s.metrics.JobFinished(string(models.JobStatusFailed))
		return nil
	}

	report := s.synthesize(task.JobID, sample)
	outputPath := fmt.Sprintf("fastqc/sample_%d/job_%d", sample.ID, task.JobID)

	s.store.FinishJob(task.JobID, models.JobStatusCompleted, outputPath)
	report.JobStatus = models.JobStatusCompleted
	s.store.PutReport(sample.ID, report)
	s.metrics.JobFinished(string(models.JobStatusCompleted))

	s.log.Info("fastqc job completed",
		zap.Int64("job_id", task.JobID),
		zap.Int64("sample_id", sample.ID),
		zap.String("overall_status", string(report.OverallStatus)))
	return nil
}

// synthesize produces a deterministic module summary so repeated runs on the
// same sample give stable results: every third sample warns on base quality,
// every fifth fails on overrepresented sequences.
func (s *Simulator) synthesize(jobID int64, sample models.Sample) models.FastQCReport {
	summary := make([]models.ModuleResult, 0, len(fastqcModules))
	overall := models.QCStatusPass
	for _, module := range fastqcModules {
		status := models.QCStatusPass
		switch {
		case module == "Overrepresented sequences" && sample.ID%5 == 0:
			status = models.QCStatusFail
			overall = models.QCStatusFail
		case module == "Per base sequence quality" && sample.ID%3 == 0:
			status = models.QCStatusWarn
			if overall == models.QCStatusPass {
				overall = models.QCStatusWarn
			}
		case module == "Adapter Content" && sample.ID%7 == 0:
			status = models.QCStatusWarn
			if overall == models.QCStatusPass {
				overall = models.QCStatusWarn
			}
		}
		summary = append(summary, models.ModuleResult{Module: module, Status: status})
	}

	generated := s.now().UTC()
	report := models.FastQCReport{
		SampleID:      sample.ID,
		SampleName:    sample.SampleID,
		GeneratedOn:   &generated,
		OverallStatus: overall,
		JobID:         jobID,
		Summary:       summary,
	}

	if s.signer != nil {
		if token, _, err := s.signer.Generate(jobID, fmt.Sprintf("fastqc/sample_%d/report.html", sample.ID)); err == nil {
			report.HTMLReport = "/api/reports/download/?token=" + token
		}
		if token, _, err := s.signer.Generate(jobID, fmt.Sprintf("fastqc/sample_%d/report.zip", sample.ID)); err == nil {
			report.ZipDownload = "/api/reports/download/?token=" + token
		}
	}
	return report
}
