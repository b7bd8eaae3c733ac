package tui

import (
	"context"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reslab-bio/omics-console/internal/dashboard"
	"github.com/reslab-bio/omics-console/internal/models"
	appErrors "github.com/reslab-bio/omics-console/pkg/errors"
)

type fakeDashboardBackend struct {
	projects []models.Project
	samples  map[int64][]models.Sample
	deleted  []int64
}

func (f *fakeDashboardBackend) ListProjects(context.Context) ([]models.Project, error) {
	return f.projects, nil
}

func (f *fakeDashboardBackend) CreateProject(_ context.Context, name, description string) (*models.Project, error) {
	return &models.Project{ID: 99, Name: name, Description: description}, nil
}

func (f *fakeDashboardBackend) UpdateProject(_ context.Context, id int64, name, description string) (*models.Project, error) {
	return &models.Project{ID: id, Name: name, Description: description}, nil
}

func (f *fakeDashboardBackend) DeleteProject(context.Context, int64) error { return nil }

func (f *fakeDashboardBackend) ProjectTrash(context.Context) ([]models.Project, error) {
	return nil, nil
}

func (f *fakeDashboardBackend) RestoreProject(context.Context, int64) error { return nil }

func (f *fakeDashboardBackend) ListSamples(_ context.Context, projectID int64) ([]models.Sample, error) {
	return f.samples[projectID], nil
}

func (f *fakeDashboardBackend) DeleteSample(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	for projectID, samples := range f.samples {
		for i := range samples {
			if samples[i].ID == id {
				f.samples[projectID] = append(samples[:i], samples[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (f *fakeDashboardBackend) SampleTrash(context.Context) ([]models.Sample, error) {
	return nil, nil
}

func (f *fakeDashboardBackend) RestoreSample(context.Context, int64) error { return nil }

func (f *fakeDashboardBackend) UploadFile(context.Context, int64, models.FileType, string, io.Reader) (*models.OmicsFile, error) {
	return &models.OmicsFile{ID: 1}, nil
}

func (f *fakeDashboardBackend) LatestFastQC(context.Context, int64) (*models.FastQCReport, error) {
	return nil, appErrors.ErrNoResult
}

func (f *fakeDashboardBackend) JobHistory(context.Context, int64) (*models.JobHistory, error) {
	return nil, nil
}

func (f *fakeDashboardBackend) CreateJob(_ context.Context, sampleID int64) (*models.Job, error) {
	return &models.Job{ID: 1, Sample: sampleID, Status: models.JobStatusPending}, nil
}

func (f *fakeDashboardBackend) TriggerFastQC(context.Context, int64) error { return nil }

func newSamplesPaneModel(t *testing.T) (*DashboardModel, *fakeDashboardBackend) {
	t.Helper()

	backend := &fakeDashboardBackend{
		projects: []models.Project{{ID: 1, Name: "Banana RNA-seq"}},
		samples: map[int64][]models.Sample{
			1: {{ID: 10, Project: 1, SampleID: "OS-010", DataType: models.DataTypeRNA}},
		},
	}
	session, err := dashboard.NewSession(dashboard.Params{Client: backend})
	require.NoError(t, err)
	require.NoError(t, session.RefreshProjects(context.Background()))
	require.NoError(t, session.SelectProject(context.Background(), 1))

	m := NewDashboardModel(DashboardModelParams{Session: session})
	m.busy = false
	m.view = viewSamples
	return m, backend
}

func drainBatch(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		_ = c()
	}
}

func TestSampleDeleteWaitsForConfirmation(t *testing.T) {
	m, backend := newSamplesPaneModel(t)

	updated, cmd := m.Update(keyPress("x"))
	m = updated.(*DashboardModel)

	assert.Nil(t, cmd)
	assert.Empty(t, backend.deleted)
	assert.Contains(t, m.View(), "Move sample OS-010 to trash? (y/n)")
}

func TestSampleDeleteConfirmedWithY(t *testing.T) {
	m, backend := newSamplesPaneModel(t)

	updated, _ := m.Update(keyPress("x"))
	m = updated.(*DashboardModel)
	updated, cmd := m.Update(keyPress("y"))
	m = updated.(*DashboardModel)

	drainBatch(t, cmd)
	assert.Equal(t, []int64{10}, backend.deleted)
	assert.Empty(t, m.session.Samples())
}

func TestSampleDeleteCancelledByAnyOtherKey(t *testing.T) {
	m, backend := newSamplesPaneModel(t)

	updated, _ := m.Update(keyPress("x"))
	m = updated.(*DashboardModel)
	updated, cmd := m.Update(keyPress("n"))
	m = updated.(*DashboardModel)

	assert.Nil(t, cmd)
	assert.Empty(t, backend.deleted)
	assert.NotContains(t, m.View(), "(y/n)")
	require.Len(t, m.session.Samples(), 1)
}
