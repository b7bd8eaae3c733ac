package tui

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reslab-bio/omics-console/internal/api"
	"github.com/reslab-bio/omics-console/internal/models"
	"github.com/reslab-bio/omics-console/internal/wizard"
)

type fakeWizardBackend struct{}

func (f *fakeWizardBackend) ListTissues(ctx context.Context, kingdom models.Kingdom) ([]models.TissueType, error) {
	return []models.TissueType{{ID: 7, Name: "leaf", Kingdom: kingdom}}, nil
}

func (f *fakeWizardBackend) CreateSample(ctx context.Context, req api.CreateSampleRequest) (*models.Sample, error) {
	return &models.Sample{ID: 10, SampleID: req.SampleID, Project: req.Project}, nil
}

func (f *fakeWizardBackend) UploadFile(ctx context.Context, sampleID int64, fileType models.FileType, filename string, payload io.Reader) (*models.OmicsFile, error) {
	return &models.OmicsFile{ID: 1, Sample: sampleID, FileType: fileType}, nil
}

func (f *fakeWizardBackend) CreateJob(ctx context.Context, sampleID int64) (*models.Job, error) {
	return &models.Job{ID: 9001, Sample: sampleID, Status: models.JobStatusPending}, nil
}

func (f *fakeWizardBackend) TriggerFastQC(ctx context.Context, jobID int64) error {
	return nil
}

func newTestWizardModel(t *testing.T) *WizardModel {
	t.Helper()
	wiz, err := wizard.New(wizard.Params{Client: &fakeWizardBackend{}, ProjectID: 1})
	require.NoError(t, err)
	return NewWizardModel(WizardModelParams{Wizard: wiz})
}

func keyPress(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

func TestWizardModelStartsOnKingdomStep(t *testing.T) {
	m := newTestWizardModel(t)

	view := m.View()
	assert.Contains(t, view, "Select a kingdom")
	assert.Contains(t, view, "step 1 of 6")
}

func TestKingdomSelectionAdvancesToSearch(t *testing.T) {
	m := newTestWizardModel(t)

	updated, _ := m.Update(keyPress("enter"))
	m = updated.(*WizardModel)

	assert.Contains(t, m.View(), "step 2 of 6")
	assert.Contains(t, strings.ToLower(m.View()), "organisms")
}

func TestEscReturnsToKingdomStep(t *testing.T) {
	m := newTestWizardModel(t)

	updated, _ := m.Update(keyPress("enter"))
	m = updated.(*WizardModel)
	updated, _ = m.Update(keyPress("esc"))
	m = updated.(*WizardModel)

	assert.Contains(t, m.View(), "step 1 of 6")
}

func TestSearchResultsRender(t *testing.T) {
	m := newTestWizardModel(t)

	updated, _ := m.Update(keyPress("enter"))
	m = updated.(*WizardModel)

	updated, _ = m.Update(searchResultsMsg([]models.Organism{
		{ID: 9, DBID: 42, ScientificName: "Oryza sativa", CommonName: "rice"},
	}))
	m = updated.(*WizardModel)

	view := m.View()
	assert.Contains(t, view, "Oryza sativa")
	assert.Contains(t, view, "rice")
}

func TestCtrlCQuitsFromAnyStep(t *testing.T) {
	m := newTestWizardModel(t)

	updated, cmd := m.Update(keyPress("ctrl+c"))
	m = updated.(*WizardModel)

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
}
