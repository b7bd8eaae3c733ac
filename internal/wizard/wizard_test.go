package wizard

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reslab-bio/omics-console/internal/api"
	"github.com/reslab-bio/omics-console/internal/models"
	appErrors "github.com/reslab-bio/omics-console/pkg/errors"
)

type fakeBackend struct {
	tissues    []models.TissueType
	tissuesErr error

	createdSample   *models.Sample
	createSampleErr error
	createReqs      []api.CreateSampleRequest

	uploadedFile *models.OmicsFile
	uploadErr    error
	uploads      int

	job           *models.Job
	createJobErr  error
	triggerErr    error
	triggeredJobs []int64
}

func (f *fakeBackend) ListTissues(_ context.Context, _ models.Kingdom) ([]models.TissueType, error) {
	return f.tissues, f.tissuesErr
}

func (f *fakeBackend) CreateSample(_ context.Context, req api.CreateSampleRequest) (*models.Sample, error) {
	f.createReqs = append(f.createReqs, req)
	if f.createSampleErr != nil {
		return nil, f.createSampleErr
	}
	return f.createdSample, nil
}

func (f *fakeBackend) UploadFile(_ context.Context, _ int64, _ models.FileType, _ string, _ io.Reader) (*models.OmicsFile, error) {
	f.uploads++
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.uploadedFile, nil
}

func (f *fakeBackend) CreateJob(_ context.Context, sampleID int64) (*models.Job, error) {
	if f.createJobErr != nil {
		return nil, f.createJobErr
	}
	if f.job != nil {
		return f.job, nil
	}
	return &models.Job{ID: 1, Sample: sampleID, JobType: models.JobTypeFastQC, Status: models.JobStatusPending}, nil
}

func (f *fakeBackend) TriggerFastQC(_ context.Context, jobID int64) error {
	if f.triggerErr != nil {
		return f.triggerErr
	}
	f.triggeredJobs = append(f.triggeredJobs, jobID)
	return nil
}

type recordingNotifier struct {
	successes []string
	infos     []string
	errors    []string
}

func (r *recordingNotifier) Success(msg string) { r.successes = append(r.successes, msg) }
func (r *recordingNotifier) Info(msg string)    { r.infos = append(r.infos, msg) }
func (r *recordingNotifier) Error(msg string)   { r.errors = append(r.errors, msg) }

func newTestWizard(t *testing.T, backend *fakeBackend) (*Wizard, *recordingNotifier) {
	t.Helper()

	notifier := &recordingNotifier{}
	wiz, err := New(Params{Client: backend, Notifier: notifier, ProjectID: 1})
	require.NoError(t, err)
	return wiz, notifier
}

// walkToMetadata drives a wizard through steps 1-3 with a standard selection.
func walkToMetadata(t *testing.T, wiz *Wizard, backend *fakeBackend) {
	t.Helper()

	backend.tissues = []models.TissueType{{ID: 7, Name: "leaf", Kingdom: models.KingdomPlant}}

	require.NoError(t, wiz.SelectKingdom(models.KingdomPlant))
	require.NoError(t, wiz.Next())
	require.NoError(t, wiz.SelectOrganism(models.Organism{ID: 9, DBID: 42, ScientificName: "Oryza sativa", Kingdom: models.KingdomPlant}))
	require.NoError(t, wiz.Next())
	require.NoError(t, wiz.LoadTissues(context.Background()))
	require.NoError(t, wiz.SelectTissue(7))
	require.NoError(t, wiz.Next())
	require.Equal(t, StepMetadata, wiz.Step())
}

func TestNewRequiresProject(t *testing.T) {
	_, err := New(Params{Client: &fakeBackend{}})
	require.Error(t, err)
	assert.True(t, appErrors.IsValidation(err))
}

func TestNextGatesOnCurrentStep(t *testing.T) {
	wiz, _ := newTestWizard(t, &fakeBackend{})

	require.Error(t, wiz.Next())
	require.Equal(t, StepKingdom, wiz.Step())

	require.NoError(t, wiz.SelectKingdom(models.KingdomPlant))
	require.NoError(t, wiz.Next())
	require.Equal(t, StepOrganism, wiz.Step())

	// No organism selected yet.
	require.Error(t, wiz.Next())
	require.Equal(t, StepOrganism, wiz.Step())
}

func TestChangingKingdomInvalidatesDependentSelections(t *testing.T) {
	backend := &fakeBackend{}
	wiz, _ := newTestWizard(t, backend)
	walkToMetadata(t, wiz, backend)

	require.NoError(t, wiz.SelectKingdom(models.KingdomFungus))

	assert.Nil(t, wiz.Organism())
	assert.Nil(t, wiz.Tissue())
	assert.Empty(t, wiz.Tissues())
	assert.Equal(t, models.KingdomFungus, wiz.Kingdom())
}

func TestReselectingSameKingdomKeepsSelections(t *testing.T) {
	backend := &fakeBackend{}
	wiz, _ := newTestWizard(t, backend)
	walkToMetadata(t, wiz, backend)

	require.NoError(t, wiz.SelectKingdom(models.KingdomPlant))

	assert.NotNil(t, wiz.Organism())
	assert.NotNil(t, wiz.Tissue())
}

func TestSelectTissueOutsideVocabularyFails(t *testing.T) {
	backend := &fakeBackend{tissues: []models.TissueType{{ID: 7, Name: "leaf"}}}
	wiz, _ := newTestWizard(t, backend)

	require.NoError(t, wiz.SelectKingdom(models.KingdomPlant))
	require.NoError(t, wiz.LoadTissues(context.Background()))

	err := wiz.SelectTissue(99)
	require.Error(t, err)
	assert.True(t, appErrors.IsValidation(err))
}

func TestSaveSampleSendsStorageID(t *testing.T) {
	backend := &fakeBackend{createdSample: &models.Sample{ID: 501, SampleID: "OS-001"}}
	wiz, notifier := newTestWizard(t, backend)
	walkToMetadata(t, wiz, backend)

	wiz.SetForm(MetadataForm{SampleCode: " OS-001 ", DataType: models.DataTypeRNA, CollectedOn: "2025-04-01"})
	require.NoError(t, wiz.SaveSample(context.Background()))

	require.Len(t, backend.createReqs, 1)
	req := backend.createReqs[0]
	assert.Equal(t, "OS-001", req.SampleID)
	assert.Equal(t, int64(1), req.Project)
	// The storage id, not the display id, identifies the organism.
	assert.Equal(t, int64(42), req.Organism)
	assert.Equal(t, int64(7), req.TissueType)
	assert.Equal(t, models.DataTypeRNA, req.DataType)
	require.NotNil(t, req.CollectedOn)
	assert.Equal(t, "2025-04-01", *req.CollectedOn)

	assert.Equal(t, StepUpload, wiz.Step())
	require.NotNil(t, wiz.CreatedSample())
	assert.Equal(t, int64(501), wiz.CreatedSample().ID)
	assert.Contains(t, notifier.successes, "Sample metadata saved successfully.")
}

func TestSaveSampleEmptyCodeRejectedLocally(t *testing.T) {
	backend := &fakeBackend{}
	wiz, notifier := newTestWizard(t, backend)
	walkToMetadata(t, wiz, backend)

	wiz.SetForm(MetadataForm{SampleCode: "   ", DataType: models.DataTypeRNA})
	err := wiz.SaveSample(context.Background())

	require.Error(t, err)
	assert.True(t, appErrors.IsValidation(err))
	assert.Empty(t, backend.createReqs)
	assert.Equal(t, StepMetadata, wiz.Step())
	assert.Contains(t, notifier.errors, "Sample code cannot be empty.")
}

func TestSaveSampleBadDateRejectedLocally(t *testing.T) {
	backend := &fakeBackend{}
	wiz, _ := newTestWizard(t, backend)
	walkToMetadata(t, wiz, backend)

	wiz.SetForm(MetadataForm{SampleCode: "OS-001", DataType: models.DataTypeRNA, CollectedOn: "01/04/2025"})
	err := wiz.SaveSample(context.Background())

	require.Error(t, err)
	assert.Empty(t, backend.createReqs)
}

func TestSaveSampleAuthFailureMessage(t *testing.T) {
	backend := &fakeBackend{createSampleErr: appErrors.ErrNotAuthenticated}
	wiz, notifier := newTestWizard(t, backend)
	walkToMetadata(t, wiz, backend)

	wiz.SetForm(MetadataForm{SampleCode: "OS-001", DataType: models.DataTypeRNA})
	require.Error(t, wiz.SaveSample(context.Background()))

	assert.Contains(t, notifier.errors, "You are not logged in. Please sign in again.")
	assert.Equal(t, StepMetadata, wiz.Step())
	assert.Nil(t, wiz.CreatedSample())
}

func TestSaveSampleNetworkFailureMessage(t *testing.T) {
	backend := &fakeBackend{createSampleErr: appErrors.ErrNetworkFailure}
	wiz, notifier := newTestWizard(t, backend)
	walkToMetadata(t, wiz, backend)

	wiz.SetForm(MetadataForm{SampleCode: "OS-001", DataType: models.DataTypeRNA})
	require.Error(t, wiz.SaveSample(context.Background()))

	assert.Contains(t, notifier.errors, "Failed to save sample metadata due to a network error.")
}

func TestSaveSampleServerFailureMessage(t *testing.T) {
	backend := &fakeBackend{createSampleErr: appErrors.ErrAPIFailure}
	wiz, notifier := newTestWizard(t, backend)
	walkToMetadata(t, wiz, backend)

	wiz.SetForm(MetadataForm{SampleCode: "OS-001", DataType: models.DataTypeRNA})
	require.Error(t, wiz.SaveSample(context.Background()))

	assert.Contains(t, notifier.errors, "Failed to save sample metadata.")
}

func TestUploadWithoutCreatedSampleRejectedLocally(t *testing.T) {
	backend := &fakeBackend{}
	wiz, notifier := newTestWizard(t, backend)

	err := wiz.UploadFile(context.Background(), models.FileTypeFASTQ, "reads.fastq", strings.NewReader("@r1"))
	require.Error(t, err)
	assert.Zero(t, backend.uploads)
	assert.Contains(t, notifier.errors, "Sample is missing. Save the sample metadata first.")
}

func TestUploadWithoutFileRejectedLocally(t *testing.T) {
	backend := &fakeBackend{createdSample: &models.Sample{ID: 501}}
	wiz, notifier := newTestWizard(t, backend)
	walkToMetadata(t, wiz, backend)
	wiz.SetForm(MetadataForm{SampleCode: "OS-001", DataType: models.DataTypeRNA})
	require.NoError(t, wiz.SaveSample(context.Background()))

	err := wiz.UploadFile(context.Background(), models.FileTypeFASTQ, "", nil)
	require.Error(t, err)
	assert.Zero(t, backend.uploads)
	assert.Contains(t, notifier.infos, "Select a file before uploading.")
	assert.Equal(t, StepUpload, wiz.Step())
}

func TestUploadAdvancesToDone(t *testing.T) {
	backend := &fakeBackend{
		createdSample: &models.Sample{ID: 501},
		uploadedFile:  &models.OmicsFile{ID: 12, Sample: 501, FileType: models.FileTypeFASTQ},
	}
	wiz, notifier := newTestWizard(t, backend)
	walkToMetadata(t, wiz, backend)
	wiz.SetForm(MetadataForm{SampleCode: "OS-001", DataType: models.DataTypeRNA})
	require.NoError(t, wiz.SaveSample(context.Background()))

	require.NoError(t, wiz.UploadFile(context.Background(), models.FileTypeFASTQ, "reads.fastq", strings.NewReader("@r1\nACGT")))

	assert.Equal(t, StepDone, wiz.Step())
	assert.Contains(t, notifier.successes, "File uploaded successfully.")
}

func TestRunFastQCCreatesAndTriggers(t *testing.T) {
	backend := &fakeBackend{
		createdSample: &models.Sample{ID: 501},
		uploadedFile:  &models.OmicsFile{ID: 12},
		job:           &models.Job{ID: 9001, Sample: 501, JobType: models.JobTypeFastQC, Status: models.JobStatusPending},
	}
	wiz, notifier := newTestWizard(t, backend)
	walkToMetadata(t, wiz, backend)
	wiz.SetForm(MetadataForm{SampleCode: "OS-001", DataType: models.DataTypeRNA})
	require.NoError(t, wiz.SaveSample(context.Background()))
	require.NoError(t, wiz.UploadFile(context.Background(), models.FileTypeFASTQ, "reads.fastq", strings.NewReader("@r1")))

	wiz.RunFastQC(context.Background())

	assert.Equal(t, []int64{9001}, backend.triggeredJobs)
	assert.Contains(t, notifier.successes, "FastQC job submitted.")
	// Fire and forget: the wizard stays on the terminal step.
	assert.Equal(t, StepDone, wiz.Step())
}

func TestRunFastQCTriggerFailureOnlyNotifies(t *testing.T) {
	backend := &fakeBackend{
		createdSample: &models.Sample{ID: 501},
		uploadedFile:  &models.OmicsFile{ID: 12},
		triggerErr:    appErrors.ErrAPIFailure,
	}
	wiz, notifier := newTestWizard(t, backend)
	walkToMetadata(t, wiz, backend)
	wiz.SetForm(MetadataForm{SampleCode: "OS-001", DataType: models.DataTypeRNA})
	require.NoError(t, wiz.SaveSample(context.Background()))
	require.NoError(t, wiz.UploadFile(context.Background(), models.FileTypeFASTQ, "reads.fastq", strings.NewReader("@r1")))

	wiz.RunFastQC(context.Background())

	assert.Contains(t, notifier.errors, "FastQC job created but could not be started.")
	assert.Equal(t, StepDone, wiz.Step())
}

func TestResetClearsEverything(t *testing.T) {
	backend := &fakeBackend{
		createdSample: &models.Sample{ID: 501},
		uploadedFile:  &models.OmicsFile{ID: 12},
	}
	wiz, _ := newTestWizard(t, backend)
	walkToMetadata(t, wiz, backend)
	wiz.SetForm(MetadataForm{SampleCode: "OS-001", DataType: models.DataTypeRNA})
	require.NoError(t, wiz.SaveSample(context.Background()))
	require.NoError(t, wiz.UploadFile(context.Background(), models.FileTypeFASTQ, "reads.fastq", strings.NewReader("@r1")))
	require.Equal(t, StepDone, wiz.Step())

	wiz.Reset()

	assert.Equal(t, StepKingdom, wiz.Step())
	assert.Empty(t, wiz.Kingdom())
	assert.Nil(t, wiz.Organism())
	assert.Nil(t, wiz.Tissue())
	assert.Empty(t, wiz.Tissues())
	assert.Nil(t, wiz.CreatedSample())
	assert.Empty(t, wiz.Form().SampleCode)
	assert.False(t, wiz.Saving())
}

func TestBackStopsAtFirstStepAndSkipsTerminal(t *testing.T) {
	backend := &fakeBackend{}
	wiz, _ := newTestWizard(t, backend)

	wiz.Back()
	assert.Equal(t, StepKingdom, wiz.Step())

	require.NoError(t, wiz.SelectKingdom(models.KingdomAnimal))
	require.NoError(t, wiz.Next())
	wiz.Back()
	assert.Equal(t, StepKingdom, wiz.Step())
}
