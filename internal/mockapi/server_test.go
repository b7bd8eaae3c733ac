package mockapi

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reslab-bio/omics-console/internal/api"
	"github.com/reslab-bio/omics-console/internal/models"
	"github.com/reslab-bio/omics-console/pkg/config"
	appErrors "github.com/reslab-bio/omics-console/pkg/errors"
)

func newTestServer(t *testing.T) (*Server, *api.Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	server, err := New(Params{Config: config.MockAPIConfig{
		JWTSecret:   "test-secret",
		SessionTTL:  time.Hour,
		UploadDir:   t.TempDir(),
		JobDuration: 20 * time.Millisecond,
	}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	server.StartSimulator(ctx)
	t.Cleanup(func() {
		cancel()
		server.StopSimulator()
	})

	ts := httptest.NewServer(server.Engine())
	t.Cleanup(ts.Close)

	client, err := api.New(api.Params{BaseURL: ts.URL + "/api"})
	require.NoError(t, err)
	return server, client
}

func login(t *testing.T, client *api.Client) {
	t.Helper()
	require.NoError(t, client.Login(context.Background(), "demo", "demo1234"))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, client := newTestServer(t)

	err := client.Login(context.Background(), "demo", "wrong")
	require.Error(t, err)
	assert.True(t, appErrors.IsNotAuthenticated(err))
}

func TestMeWithoutSessionIsNotAuthenticated(t *testing.T) {
	_, client := newTestServer(t)

	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.IsNotAuthenticated(err))
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	_, client := newTestServer(t)

	_, err := client.ListProjects(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.IsNotAuthenticated(err))
}

func TestLoginThenMe(t *testing.T) {
	_, client := newTestServer(t)
	login(t, client)

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "demo", user.Username)
}

func TestLogoutEndsSession(t *testing.T) {
	_, client := newTestServer(t)
	login(t, client)

	require.NoError(t, client.Logout(context.Background()))

	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.IsNotAuthenticated(err))
}

func TestProjectLifecycle(t *testing.T) {
	_, client := newTestServer(t)
	login(t, client)
	ctx := context.Background()

	created, err := client.CreateProject(ctx, "Wheat methylome", "bisulfite panel")
	require.NoError(t, err)

	projects, err := client.ListProjects(ctx)
	require.NoError(t, err)
	// One seeded project plus the new one.
	require.Len(t, projects, 2)

	updated, err := client.UpdateProject(ctx, created.ID, "Wheat methylome v2", "bisulfite panel")
	require.NoError(t, err)
	assert.Equal(t, "Wheat methylome v2", updated.Name)

	require.NoError(t, client.DeleteProject(ctx, created.ID))

	trash, err := client.ProjectTrash(ctx)
	require.NoError(t, err)
	require.Len(t, trash, 1)
	assert.Equal(t, created.ID, trash[0].ID)

	require.NoError(t, client.RestoreProject(ctx, created.ID))
	projects, err = client.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 2)
}

func TestOrganismSearchScopedByKingdom(t *testing.T) {
	_, client := newTestServer(t)
	login(t, client)

	organisms, err := client.SearchOrganisms(context.Background(), "oryza", models.KingdomPlant)
	require.NoError(t, err)
	require.Len(t, organisms, 1)
	assert.Equal(t, "Oryza sativa", organisms[0].ScientificName)
	// The storage id differs from the taxonomy-level display id.
	assert.NotEqual(t, organisms[0].ID, organisms[0].StorageID())

	none, err := client.SearchOrganisms(context.Background(), "oryza", models.KingdomAnimal)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTissuesScopedByKingdom(t *testing.T) {
	_, client := newTestServer(t)
	login(t, client)

	tissues, err := client.ListTissues(context.Background(), models.KingdomPlant)
	require.NoError(t, err)
	require.NotEmpty(t, tissues)
	for _, tissue := range tissues {
		assert.Equal(t, models.KingdomPlant, tissue.Kingdom)
	}
}

// registerSample drives the same two writes the wizard performs.
func registerSample(t *testing.T, client *api.Client, code string) *models.Sample {
	t.Helper()
	ctx := context.Background()

	projects, err := client.ListProjects(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, projects)

	organisms, err := client.SearchOrganisms(ctx, "oryza", models.KingdomPlant)
	require.NoError(t, err)
	require.NotEmpty(t, organisms)

	tissues, err := client.ListTissues(ctx, models.KingdomPlant)
	require.NoError(t, err)
	require.NotEmpty(t, tissues)

	collected := "2025-04-01"
	sample, err := client.CreateSample(ctx, api.CreateSampleRequest{
		SampleID:    code,
		Project:     projects[0].ID,
		Organism:    organisms[0].StorageID(),
		TissueType:  tissues[0].ID,
		DataType:    models.DataTypeRNA,
		CollectedOn: &collected,
	})
	require.NoError(t, err)
	assert.Equal(t, "Oryza sativa", sample.OrganismName)
	assert.Equal(t, tissues[0].Name, sample.TissueTypeName)
	return sample
}

func TestSampleCreateValidation(t *testing.T) {
	_, client := newTestServer(t)
	login(t, client)
	ctx := context.Background()

	sample := registerSample(t, client, "OS-001")

	// Duplicate code within the project.
	_, err := client.CreateSample(ctx, api.CreateSampleRequest{
		SampleID: "OS-001", Project: sample.Project, Organism: *sample.Organism,
		TissueType: *sample.TissueType, DataType: models.DataTypeRNA,
	})
	require.Error(t, err)

	// Unknown organism storage id.
	_, err = client.CreateSample(ctx, api.CreateSampleRequest{
		SampleID: "OS-002", Project: sample.Project, Organism: 999999,
		TissueType: *sample.TissueType, DataType: models.DataTypeRNA,
	})
	require.Error(t, err)
}

func TestUploadAttachesFileToSample(t *testing.T) {
	_, client := newTestServer(t)
	login(t, client)
	ctx := context.Background()

	sample := registerSample(t, client, "OS-001")

	file, err := client.UploadFile(ctx, sample.ID, models.FileTypeFASTQ, "reads.fastq", strings.NewReader("@r1\nACGT\n+\nIIII\n"))
	require.NoError(t, err)
	assert.Equal(t, sample.ID, file.Sample)
	assert.Positive(t, file.SizeBytes)

	samples, err := client.ListSamples(ctx, sample.Project)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	require.Len(t, samples[0].Files, 1)
	assert.Equal(t, models.FileTypeFASTQ, samples[0].Files[0].FileType)
}

func TestFastQCRoundTrip(t *testing.T) {
	_, client := newTestServer(t)
	login(t, client)
	ctx := context.Background()

	sample := registerSample(t, client, "OS-001")

	// No report before any job ran.
	_, err := client.LatestFastQC(ctx, sample.ID)
	require.Error(t, err)
	assert.True(t, appErrors.IsNoResult(err))

	job, err := client.CreateJob(ctx, sample.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, job.Status)

	require.NoError(t, client.TriggerFastQC(ctx, job.ID))

	// The simulated run takes ~20ms; poll until the report lands.
	require.Eventually(t, func() bool {
		report, err := client.LatestFastQC(ctx, sample.ID)
		return err == nil && report.JobStatus == models.JobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	report, err := client.LatestFastQC(ctx, sample.ID)
	require.NoError(t, err)
	assert.Equal(t, "OS-001", report.SampleName)
	assert.NotEmpty(t, report.Summary)
	assert.NotEmpty(t, report.HTMLReport)
	assert.NotEqual(t, models.QCStatusUnknown, report.OverallStatus)

	history, err := client.JobHistory(ctx, sample.ID)
	require.NoError(t, err)
	assert.Equal(t, "OS-001", history.Sample)
	require.Len(t, history.Jobs, 1)
	assert.Equal(t, models.JobStatusCompleted, history.Jobs[0].Status)
}

func TestSampleTrashAndRestore(t *testing.T) {
	_, client := newTestServer(t)
	login(t, client)
	ctx := context.Background()

	sample := registerSample(t, client, "OS-001")

	require.NoError(t, client.DeleteSample(ctx, sample.ID))

	samples, err := client.ListSamples(ctx, sample.Project)
	require.NoError(t, err)
	assert.Empty(t, samples)

	trash, err := client.SampleTrash(ctx)
	require.NoError(t, err)
	require.Len(t, trash, 1)

	require.NoError(t, client.RestoreSample(ctx, sample.ID))
	samples, err = client.ListSamples(ctx, sample.Project)
	require.NoError(t, err)
	assert.Len(t, samples, 1)
}

func TestTriggerUnknownJobIs404(t *testing.T) {
	_, client := newTestServer(t)
	login(t, client)

	err := client.TriggerFastQC(context.Background(), 987654)
	require.Error(t, err)
	assert.True(t, appErrors.IsNoResult(err))
}
