// Package wizard implements the six-step sample registration flow.
//
// The wizard owns a single step state plus the collected selections, performs
// strict local validation before either of its two network writes, and never
// lets a failure escape the current step: every error ends as a notification
// and the user stays where they were.
package wizard

import (
	"context"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/reslab-bio/omics-console/internal/api"
	"github.com/reslab-bio/omics-console/internal/models"
	appErrors "github.com/reslab-bio/omics-console/pkg/errors"
)

// Step is the wizard position, 1 through 6.
type Step int

const (
	StepKingdom  Step = 1
	StepOrganism Step = 2
	StepTissue   Step = 3
	StepMetadata Step = 4
	StepUpload   Step = 5
	StepDone     Step = 6
)

type backendClient interface {
	ListTissues(ctx context.Context, kingdom models.Kingdom) ([]models.TissueType, error)
	CreateSample(ctx context.Context, req api.CreateSampleRequest) (*models.Sample, error)
	UploadFile(ctx context.Context, sampleID int64, fileType models.FileType, filename string, payload io.Reader) (*models.OmicsFile, error)
	CreateJob(ctx context.Context, sampleID int64) (*models.Job, error)
	TriggerFastQC(ctx context.Context, jobID int64) error
}

type notifier interface {
	Success(message string)
	Info(message string)
	Error(message string)
}

// MetadataForm is the step-4 input. CollectedOn is an optional ISO date.
type MetadataForm struct {
	SampleCode  string          `validate:"required"`
	DataType    models.DataType `validate:"required,oneof=DNA RNA META PROT METAB"`
	CollectedOn string          `validate:"omitempty,datetime=2006-01-02"`
}

// Wizard drives one sample registration for one project.
type Wizard struct {
	client   backendClient
	notify   notifier
	log      *zap.Logger
	validate *validator.Validate

	projectID int64
	step      Step

	kingdom  models.Kingdom
	organism *models.Organism
	tissues  []models.TissueType
	tissue   *models.TissueType
	form     MetadataForm

	createdSample *models.Sample
	saving        bool
}

// Params groups constructor dependencies.
type Params struct {
	Client    backendClient
	Notifier  notifier
	Logger    *zap.Logger
	ProjectID int64
}

// New builds a wizard anchored to an existing project.
func New(params Params) (*Wizard, error) {
	if params.Client == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "backend client is required")
	}
	if params.ProjectID == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a project must be selected before registering samples")
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	notifyTo := params.Notifier
	if notifyTo == nil {
		notifyTo = nopNotifier{}
	}

	return &Wizard{
		client:    params.Client,
		notify:    notifyTo,
		log:       logger,
		validate:  validator.New(),
		projectID: params.ProjectID,
		step:      StepKingdom,
		form:      MetadataForm{DataType: models.DataTypeRNA},
	}, nil
}

// Step returns the current position.
func (w *Wizard) Step() Step { return w.step }

// ProjectID returns the anchoring project.
func (w *Wizard) ProjectID() int64 { return w.projectID }

// Kingdom returns the current kingdom selection.
func (w *Wizard) Kingdom() models.Kingdom { return w.kingdom }

// Organism returns the selected organism, if any.
func (w *Wizard) Organism() *models.Organism { return w.organism }

// Tissues returns the tissue vocabulary loaded for the current kingdom.
func (w *Wizard) Tissues() []models.TissueType { return w.tissues }

// Tissue returns the selected tissue, if any.
func (w *Wizard) Tissue() *models.TissueType { return w.tissue }

// Form returns the step-4 metadata input.
func (w *Wizard) Form() MetadataForm { return w.form }

// SetForm replaces the step-4 metadata input.
func (w *Wizard) SetForm(form MetadataForm) { w.form = form }

// CreatedSample returns the sample created in step 4, once it exists.
func (w *Wizard) CreatedSample() *models.Sample { return w.createdSample }

// Saving reports whether a network write is in flight; submit controls are
// disabled while true.
func (w *Wizard) Saving() bool { return w.saving }

// SelectKingdom records the kingdom choice. Choosing a different kingdom at
// any point invalidates the dependent organism and tissue selections.
func (w *Wizard) SelectKingdom(kingdom models.Kingdom) error {
	if !kingdom.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown kingdom")
	}
	if kingdom != w.kingdom {
		w.organism = nil
		w.tissue = nil
		w.tissues = nil
	}
	w.kingdom = kingdom
	return nil
}

// SelectOrganism records the organism choice from search results.
func (w *Wizard) SelectOrganism(organism models.Organism) error {
	if w.kingdom == "" {
		return appErrors.Clone(appErrors.ErrValidation, "select a kingdom first")
	}
	if organism.StorageID() == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "organism has no storage identifier")
	}
	picked := organism
	w.organism = &picked
	return nil
}

// LoadTissues fetches the tissue vocabulary for the chosen kingdom.
func (w *Wizard) LoadTissues(ctx context.Context) error {
	if w.kingdom == "" {
		return appErrors.Clone(appErrors.ErrValidation, "select a kingdom first")
	}
	tissues, err := w.client.ListTissues(ctx, w.kingdom)
	if err != nil {
		w.reportFailure(err, "Failed to load tissue types.", "Failed to load tissue types due to a network error.")
		return err
	}
	w.tissues = tissues
	return nil
}

// SelectTissue records the tissue choice by id from the loaded vocabulary.
func (w *Wizard) SelectTissue(id int64) error {
	for i := range w.tissues {
		if w.tissues[i].ID == id {
			w.tissue = &w.tissues[i]
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, "tissue is not in the loaded vocabulary")
}

// Next advances one step when the current step's requirement is met.
func (w *Wizard) Next() error {
	switch w.step {
	case StepKingdom:
		if w.kingdom == "" {
			return appErrors.Clone(appErrors.ErrValidation, "select a kingdom first")
		}
	case StepOrganism:
		if w.organism == nil {
			return appErrors.Clone(appErrors.ErrValidation, "select an organism first")
		}
	case StepTissue:
		if w.tissue == nil {
			return appErrors.Clone(appErrors.ErrValidation, "select a tissue type first")
		}
	case StepMetadata, StepUpload:
		// Steps 4 and 5 only advance through their submit actions.
		return appErrors.Clone(appErrors.ErrValidation, "submit this step to continue")
	case StepDone:
		return appErrors.Clone(appErrors.ErrValidation, "wizard already finished")
	}
	w.step++
	return nil
}

// Back moves one step backwards. The terminal step only resets.
func (w *Wizard) Back() {
	if w.step > StepKingdom && w.step < StepDone {
		w.step--
	}
}

// SaveSample performs the first network write: creating the sample record.
// Validation failures reject locally without any request; on success the
// created sample anchors the upload step.
func (w *Wizard) SaveSample(ctx context.Context) error {
	if err := w.validateMetadata(); err != nil {
		return err
	}
	if w.saving {
		return appErrors.Clone(appErrors.ErrValidation, "a save is already in progress")
	}

	w.saving = true
	defer func() { w.saving = false }()

	var collected *string
	if trimmed := strings.TrimSpace(w.form.CollectedOn); trimmed != "" {
		collected = &trimmed
	}

	req := api.CreateSampleRequest{
		SampleID:    strings.TrimSpace(w.form.SampleCode),
		Project:     w.projectID,
		Organism:    w.organism.StorageID(),
		TissueType:  w.tissue.ID,
		DataType:    w.form.DataType,
		CollectedOn: collected,
	}

	created, err := w.client.CreateSample(ctx, req)
	if err != nil {
		w.reportFailure(err, "Failed to save sample metadata.", "Failed to save sample metadata due to a network error.")
		return err
	}

	w.createdSample = created
	w.notify.Success("Sample metadata saved successfully.")
	w.step = StepUpload
	return nil
}

// UploadFile performs the second network write: the multipart file upload.
// Requires a successfully created sample and a chosen file; otherwise the
// action is rejected locally and no request is sent.
func (w *Wizard) UploadFile(ctx context.Context, fileType models.FileType, filename string, payload io.Reader) error {
	if w.createdSample == nil {
		w.notify.Error("Sample is missing. Save the sample metadata first.")
		return appErrors.Clone(appErrors.ErrValidation, "no created sample to attach the file to")
	}
	if filename == "" || payload == nil {
		w.notify.Info("Select a file before uploading.")
		return appErrors.Clone(appErrors.ErrValidation, "no file selected")
	}
	if !fileType.Valid() {
		w.notify.Error("Unknown file type.")
		return appErrors.Clone(appErrors.ErrValidation, "unknown file type")
	}
	if w.saving {
		return appErrors.Clone(appErrors.ErrValidation, "an upload is already in progress")
	}

	w.saving = true
	defer func() { w.saving = false }()

	if _, err := w.client.UploadFile(ctx, w.createdSample.ID, fileType, filename, payload); err != nil {
		w.reportFailure(err, "File upload failed.", "File upload failed due to a network error.")
		return err
	}

	w.notify.Success("File uploaded successfully.")
	w.step = StepDone
	return nil
}

// RunFastQC fires a QC job for the created sample from the terminal step.
// Fire-and-forget: the outcome only surfaces as a notification, never in
// wizard state.
func (w *Wizard) RunFastQC(ctx context.Context) {
	if w.createdSample == nil {
		w.notify.Error("No sample to run FastQC on.")
		return
	}

	job, err := w.client.CreateJob(ctx, w.createdSample.ID)
	if err != nil {
		w.notify.Error("Could not create FastQC job.")
		return
	}
	if err := w.client.TriggerFastQC(ctx, job.ID); err != nil {
		w.notify.Error("FastQC job created but could not be started.")
		return
	}
	w.notify.Success("FastQC job submitted.")
}

// Reset clears every piece of collected state and returns to step 1 so
// another sample can be registered against the same project.
func (w *Wizard) Reset() {
	w.step = StepKingdom
	w.kingdom = ""
	w.organism = nil
	w.tissues = nil
	w.tissue = nil
	w.form = MetadataForm{DataType: models.DataTypeRNA}
	w.createdSample = nil
	w.saving = false
}

// reportFailure translates a failed write into the matching notification.
// Auth failures always win so the user knows the session is gone.
func (w *Wizard) reportFailure(err error, generic, network string) {
	switch {
	case appErrors.IsNotAuthenticated(err):
		w.notify.Error("You are not logged in. Please sign in again.")
	case appErrors.IsNetworkFailure(err):
		w.notify.Error(network)
	default:
		w.log.Warn("wizard request failed", zap.Error(err))
		w.notify.Error(generic)
	}
}

func (w *Wizard) validateMetadata() error {
	if w.kingdom == "" {
		w.notify.Error("Select a kingdom first.")
		return appErrors.Clone(appErrors.ErrValidation, "kingdom not selected")
	}
	if w.organism == nil || w.organism.StorageID() == 0 {
		w.notify.Error("Select an organism for this sample.")
		return appErrors.Clone(appErrors.ErrValidation, "organism not selected")
	}
	if w.tissue == nil {
		w.notify.Error("Select a tissue type.")
		return appErrors.Clone(appErrors.ErrValidation, "tissue not selected")
	}

	form := w.form
	form.SampleCode = strings.TrimSpace(form.SampleCode)
	if err := w.validate.Struct(form); err != nil {
		if form.SampleCode == "" {
			w.notify.Error("Sample code cannot be empty.")
		} else {
			w.notify.Error("Sample details are incomplete or invalid.")
		}
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, 0, "invalid sample metadata")
	}
	return nil
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Info(string)    {}
func (nopNotifier) Error(string)   {}
