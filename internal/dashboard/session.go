// Package dashboard holds the headless state behind the project dashboard:
// the project list, the selected project's samples, and the per-sample QC
// bookkeeping the terminal UI renders. All mutation goes through Session
// methods under one lock so the poller and the UI never race.
package dashboard

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/reslab-bio/omics-console/internal/models"
	"github.com/reslab-bio/omics-console/internal/qc"
	appErrors "github.com/reslab-bio/omics-console/pkg/errors"
)

type backendClient interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, name, description string) (*models.Project, error)
	UpdateProject(ctx context.Context, id int64, name, description string) (*models.Project, error)
	DeleteProject(ctx context.Context, id int64) error
	ProjectTrash(ctx context.Context) ([]models.Project, error)
	RestoreProject(ctx context.Context, id int64) error

	ListSamples(ctx context.Context, projectID int64) ([]models.Sample, error)
	DeleteSample(ctx context.Context, id int64) error
	SampleTrash(ctx context.Context) ([]models.Sample, error)
	RestoreSample(ctx context.Context, id int64) error
	UploadFile(ctx context.Context, sampleID int64, fileType models.FileType, filename string, payload io.Reader) (*models.OmicsFile, error)

	LatestFastQC(ctx context.Context, sampleID int64) (*models.FastQCReport, error)
	JobHistory(ctx context.Context, sampleID int64) (*models.JobHistory, error)
	CreateJob(ctx context.Context, sampleID int64) (*models.Job, error)
	TriggerFastQC(ctx context.Context, jobID int64) error
}

type notifier interface {
	Success(message string)
	Info(message string)
	Error(message string)
}

// Summary aggregates the selected project's samples for the header bar.
type Summary struct {
	TotalSamples int
	ByDataType   map[models.DataType]int
	QCPassed     int
	QCWarned     int
	QCFailed     int
	QCPending    int
}

// Session is the dashboard state for one signed-in user.
type Session struct {
	client backendClient
	notify notifier
	log    *zap.Logger

	mu           sync.Mutex
	projects     []models.Project
	projectTrash []models.Project
	sampleTrash  []models.Sample
	selected     *models.Project
	samples      []models.Sample
	qcOutcome    map[int64]qc.Outcome
	qcReport     map[int64]*models.FastQCReport
	jobStatus    map[int64]models.JobStatus
	detail       *models.FastQCReport
	history      *models.JobHistory
}

// Params groups constructor dependencies.
type Params struct {
	Client   backendClient
	Notifier notifier
	Logger   *zap.Logger
}

// NewSession builds an empty dashboard session.
func NewSession(params Params) (*Session, error) {
	if params.Client == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "backend client is required")
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	notifyTo := params.Notifier
	if notifyTo == nil {
		notifyTo = nopNotifier{}
	}
	return &Session{
		client:    params.Client,
		notify:    notifyTo,
		log:       logger,
		qcOutcome: make(map[int64]qc.Outcome),
		qcReport:  make(map[int64]*models.FastQCReport),
		jobStatus: make(map[int64]models.JobStatus),
	}, nil
}

// RefreshProjects reloads the project list.
func (s *Session) RefreshProjects(ctx context.Context) error {
	projects, err := s.client.ListProjects(ctx)
	if err != nil {
		s.reportFailure(err, "Failed to load projects.")
		return err
	}
	s.mu.Lock()
	s.projects = projects
	s.mu.Unlock()
	return nil
}

// Projects returns the loaded project list.
func (s *Session) Projects() []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projects
}

// Selected returns the currently selected project, if any.
func (s *Session) Selected() *models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Samples returns the selected project's samples.
func (s *Session) Samples() []models.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.samples
}

// QCOutcome returns the derived QC outcome for a sample.
func (s *Session) QCOutcome(sampleID int64) qc.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.qcOutcome[sampleID]
}

// QCReport returns the cached FastQC report for a sample, if any.
func (s *Session) QCReport(sampleID int64) *models.FastQCReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.qcReport[sampleID]
}

// JobStatus returns the tracked job status for a sample.
func (s *Session) JobStatus(sampleID int64) (models.JobStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.jobStatus[sampleID]
	return status, ok
}

// Detail returns the report opened in the QC detail pane, if any.
func (s *Session) Detail() *models.FastQCReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detail
}

// History returns the loaded job history, if any.
func (s *Session) History() *models.JobHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history
}

// SelectProject makes a loaded project current. Sample-scoped state from the
// previous selection is cleared before the new project's samples hydrate.
func (s *Session) SelectProject(ctx context.Context, id int64) error {
	s.mu.Lock()
	var picked *models.Project
	for i := range s.projects {
		if s.projects[i].ID == id {
			picked = &s.projects[i]
			break
		}
	}
	if picked == nil {
		s.mu.Unlock()
		return appErrors.Clone(appErrors.ErrValidation, "project is not in the loaded list")
	}
	s.selected = picked
	s.clearSampleStateLocked()
	s.mu.Unlock()

	return s.RefreshSamples(ctx)
}

// ClearSelection drops the selected project and all sample-scoped state.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
	s.clearSampleStateLocked()
}

// RefreshSamples reloads the selected project's samples and rehydrates the
// QC state for each. One sample's QC failure never blocks the others.
func (s *Session) RefreshSamples(ctx context.Context) error {
	s.mu.Lock()
	if s.selected == nil {
		s.mu.Unlock()
		return appErrors.Clone(appErrors.ErrValidation, "no project selected")
	}
	projectID := s.selected.ID
	s.mu.Unlock()

	samples, err := s.client.ListSamples(ctx, projectID)
	if err != nil {
		s.reportFailure(err, "Failed to load samples.")
		return err
	}

	// The backend filters by project, but a stale or buggy response must not
	// leak another project's samples into the table.
	filtered := samples[:0]
	for _, sample := range samples {
		if sample.Project == projectID {
			filtered = append(filtered, sample)
		}
	}

	s.mu.Lock()
	s.samples = filtered
	s.mu.Unlock()

	for _, sample := range filtered {
		s.hydrateQC(ctx, sample.ID)
	}
	return nil
}

// hydrateQC fetches and applies the latest FastQC state for one sample.
// A typed absence means no QC yet; any other failure is logged and skipped.
func (s *Session) hydrateQC(ctx context.Context, sampleID int64) {
	report, err := s.client.LatestFastQC(ctx, sampleID)
	if err != nil {
		if appErrors.IsNoResult(err) {
			s.mu.Lock()
			delete(s.qcOutcome, sampleID)
			delete(s.qcReport, sampleID)
			delete(s.jobStatus, sampleID)
			s.mu.Unlock()
			return
		}
		s.log.Warn("qc hydration failed", zap.Int64("sample_id", sampleID), zap.Error(err))
		return
	}
	s.applyReport(sampleID, report)
}

func (s *Session) applyReport(sampleID int64, report *models.FastQCReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.qcReport[sampleID] = report
	s.qcOutcome[sampleID] = qc.DeriveOverall(*report)
	if report.JobStatus != "" {
		s.jobStatus[sampleID] = report.JobStatus
	}
	// An open detail pane showing this sample mirrors the fresh report, so
	// the table and the pane never disagree.
	if s.detail != nil && s.detail.SampleID == sampleID {
		s.detail = report
	}
}

// CreateProject creates a project, then reloads the full project list so the
// table reflects whatever the backend actually stored.
func (s *Session) CreateProject(ctx context.Context, name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		s.notify.Error("Project name cannot be empty.")
		return appErrors.Clone(appErrors.ErrValidation, "project name is required")
	}

	if _, err := s.client.CreateProject(ctx, name, description); err != nil {
		s.reportFailure(err, "Failed to create project.")
		return err
	}

	s.notify.Success("Project created.")
	return s.RefreshProjects(ctx)
}

// UpdateProject edits a project in place. When the edited project is the
// selected one its header mirrors the change without a reload.
func (s *Session) UpdateProject(ctx context.Context, id int64, name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		s.notify.Error("Project name cannot be empty.")
		return appErrors.Clone(appErrors.ErrValidation, "project name is required")
	}

	updated, err := s.client.UpdateProject(ctx, id, name, description)
	if err != nil {
		s.reportFailure(err, "Failed to update project.")
		return err
	}

	s.mu.Lock()
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects[i] = *updated
			if s.selected != nil && s.selected.ID == id {
				s.selected = &s.projects[i]
			}
			break
		}
	}
	s.mu.Unlock()
	s.notify.Success("Project updated.")
	return nil
}

// DeleteProject soft-deletes a project, then refreshes both the project list
// and the trash listings. Deleting the selected project clears the selection
// and every piece of sample-scoped state.
func (s *Session) DeleteProject(ctx context.Context, id int64) error {
	if err := s.client.DeleteProject(ctx, id); err != nil {
		s.reportFailure(err, "Failed to delete project.")
		return err
	}

	s.mu.Lock()
	if s.selected != nil && s.selected.ID == id {
		s.selected = nil
		s.clearSampleStateLocked()
	}
	s.mu.Unlock()
	s.notify.Success("Project moved to trash.")

	if err := s.RefreshProjects(ctx); err != nil {
		return err
	}
	return s.RefreshTrash(ctx)
}

// RefreshTrash loads both trash listings.
func (s *Session) RefreshTrash(ctx context.Context) error {
	projects, err := s.client.ProjectTrash(ctx)
	if err != nil {
		s.reportFailure(err, "Failed to load trash.")
		return err
	}
	samples, err := s.client.SampleTrash(ctx)
	if err != nil {
		s.reportFailure(err, "Failed to load trash.")
		return err
	}

	s.mu.Lock()
	s.projectTrash = projects
	s.sampleTrash = samples
	s.mu.Unlock()
	return nil
}

// ProjectTrash returns the trashed projects loaded by RefreshTrash.
func (s *Session) ProjectTrash() []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectTrash
}

// SampleTrash returns the trashed samples loaded by RefreshTrash.
func (s *Session) SampleTrash() []models.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sampleTrash
}

// RestoreProject brings a trashed project back, then refreshes both the
// project list and the trash listings.
func (s *Session) RestoreProject(ctx context.Context, id int64) error {
	if err := s.client.RestoreProject(ctx, id); err != nil {
		s.reportFailure(err, "Failed to restore project.")
		return err
	}
	s.notify.Success("Project restored.")

	if err := s.RefreshProjects(ctx); err != nil {
		return err
	}
	return s.RefreshTrash(ctx)
}

// RestoreSample brings a trashed sample back, then refreshes the sample table
// (when a project is selected) and the trash listings. The table reloads in
// full so the restored row shows with current QC state.
func (s *Session) RestoreSample(ctx context.Context, id int64) error {
	if err := s.client.RestoreSample(ctx, id); err != nil {
		s.reportFailure(err, "Failed to restore sample.")
		return err
	}
	s.notify.Success("Sample restored.")
	s.mu.Lock()
	hasSelection := s.selected != nil
	s.mu.Unlock()
	if hasSelection {
		if err := s.RefreshSamples(ctx); err != nil {
			return err
		}
	}
	return s.RefreshTrash(ctx)
}

// DeleteSample soft-deletes a sample, drops its QC bookkeeping, then
// refreshes the sample table and the trash listings.
func (s *Session) DeleteSample(ctx context.Context, id int64) error {
	if err := s.client.DeleteSample(ctx, id); err != nil {
		s.reportFailure(err, "Failed to delete sample.")
		return err
	}

	s.mu.Lock()
	delete(s.qcOutcome, id)
	delete(s.qcReport, id)
	delete(s.jobStatus, id)
	if s.detail != nil && s.detail.SampleID == id {
		s.detail = nil
	}
	hasSelection := s.selected != nil
	s.mu.Unlock()
	s.notify.Success("Sample moved to trash.")

	if hasSelection {
		if err := s.RefreshSamples(ctx); err != nil {
			return err
		}
	}
	return s.RefreshTrash(ctx)
}

// UploadToSample attaches a file to an existing sample, then reloads the
// sample table in full so file counts and QC state stay consistent.
func (s *Session) UploadToSample(ctx context.Context, sampleID int64, fileType models.FileType, filename string, payload io.Reader) error {
	if filename == "" || payload == nil {
		s.notify.Info("Select a file before uploading.")
		return appErrors.Clone(appErrors.ErrValidation, "no file selected")
	}

	if _, err := s.client.UploadFile(ctx, sampleID, fileType, filename, payload); err != nil {
		s.reportFailure(err, "File upload failed.")
		return err
	}
	s.notify.Success("File uploaded successfully.")
	return s.RefreshSamples(ctx)
}

// RunFastQC submits a QC job for a sample: create, then trigger. The two
// calls fail with distinguishable messages. On success the sample shows as
// running immediately; the poller confirms the real state.
func (s *Session) RunFastQC(ctx context.Context, sampleID int64) error {
	job, err := s.client.CreateJob(ctx, sampleID)
	if err != nil {
		s.reportFailure(err, "Could not create FastQC job.")
		return err
	}
	if err := s.client.TriggerFastQC(ctx, job.ID); err != nil {
		s.reportFailure(err, "FastQC job created but could not be started.")
		return err
	}

	s.mu.Lock()
	s.jobStatus[sampleID] = models.JobStatusRunning
	s.mu.Unlock()
	s.notify.Success("FastQC job submitted.")
	return nil
}

// ShowQCDetail loads the full FastQC report into the detail pane. A typed
// absence is an informational state, not an error.
func (s *Session) ShowQCDetail(ctx context.Context, sampleID int64) error {
	report, err := s.client.LatestFastQC(ctx, sampleID)
	if err != nil {
		if appErrors.IsNoResult(err) {
			s.notify.Info("No FastQC results found for this sample.")
			return err
		}
		s.reportFailure(err, "Failed to load FastQC results.")
		return err
	}

	s.applyReport(sampleID, report)
	s.mu.Lock()
	s.detail = report
	s.mu.Unlock()
	return nil
}

// CloseQCDetail dismisses the detail pane.
func (s *Session) CloseQCDetail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detail = nil
}

// LoadJobHistory fetches the per-sample job listing.
func (s *Session) LoadJobHistory(ctx context.Context, sampleID int64) error {
	history, err := s.client.JobHistory(ctx, sampleID)
	if err != nil {
		s.reportFailure(err, "Failed to load job history.")
		return err
	}
	s.mu.Lock()
	s.history = history
	s.mu.Unlock()
	return nil
}

// RunningSamples returns the ids with a pending or running job, sorted for
// stable polling order.
func (s *Session) RunningSamples() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []int64
	for id, status := range s.jobStatus {
		if !status.Terminal() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Summarize aggregates the current sample table.
func (s *Session) Summarize() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := Summary{
		TotalSamples: len(s.samples),
		ByDataType:   make(map[models.DataType]int),
	}
	for _, sample := range s.samples {
		summary.ByDataType[sample.DataType]++
		outcome := s.qcOutcome[sample.ID]
		status, known := outcome.Status()
		if !known {
			summary.QCPending++
			continue
		}
		switch status {
		case models.QCStatusPass:
			summary.QCPassed++
		case models.QCStatusWarn:
			summary.QCWarned++
		case models.QCStatusFail:
			summary.QCFailed++
		default:
			summary.QCPending++
		}
	}
	return summary
}

// applyPoll folds one poll result into the session. A typed absence keeps
// the sample in the running set; report payloads update the QC state and a
// terminal transition emits a notification.
func (s *Session) applyPoll(sampleID int64, report *models.FastQCReport, err error) {
	if err != nil {
		if appErrors.IsNoResult(err) {
			// Job accepted but no report row yet. Keep polling.
			return
		}
		s.log.Warn("qc poll failed", zap.Int64("sample_id", sampleID), zap.Error(err))
		return
	}

	s.mu.Lock()
	previous := s.jobStatus[sampleID]
	s.mu.Unlock()

	s.applyReport(sampleID, report)

	if report.JobStatus.Terminal() && !previous.Terminal() {
		name := report.SampleName
		if name == "" {
			name = s.sampleCode(sampleID)
		}
		switch report.JobStatus {
		case models.JobStatusCompleted:
			status := qc.DeriveOverall(*report).Or(models.QCStatusUnknown)
			s.notify.Success("FastQC finished for " + name + ": " + string(status))
		case models.JobStatusFailed:
			s.notify.Error("FastQC failed for " + name + ".")
		}
	}
}

func (s *Session) sampleCode(sampleID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sample := range s.samples {
		if sample.ID == sampleID {
			return sample.SampleID
		}
	}
	return "sample"
}

func (s *Session) clearSampleStateLocked() {
	s.samples = nil
	s.qcOutcome = make(map[int64]qc.Outcome)
	s.qcReport = make(map[int64]*models.FastQCReport)
	s.jobStatus = make(map[int64]models.JobStatus)
	s.detail = nil
	s.history = nil
}

// reportFailure translates a failed call into the matching notification.
func (s *Session) reportFailure(err error, generic string) {
	switch {
	case appErrors.IsNotAuthenticated(err):
		s.notify.Error("You are not logged in. Please sign in again.")
	case appErrors.IsNetworkFailure(err):
		s.notify.Error(generic + " Check your network connection.")
	default:
		s.log.Warn("dashboard request failed", zap.Error(err))
		s.notify.Error(generic)
	}
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Info(string)    {}
func (nopNotifier) Error(string)   {}
