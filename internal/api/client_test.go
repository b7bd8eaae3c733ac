package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reslab-bio/omics-console/internal/models"
	appErrors "github.com/reslab-bio/omics-console/pkg/errors"
)

const testBaseURL = "http://backend.test/api"

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client, err := New(Params{BaseURL: testBaseURL})
	require.NoError(t, err)

	httpmock.ActivateNonDefault(client.httpc)
	t.Cleanup(httpmock.DeactivateAndReset)

	return client
}

func seedCSRFCookie(t *testing.T, client *Client, token string) {
	t.Helper()

	u, err := url.Parse(testBaseURL)
	require.NoError(t, err)
	client.httpc.Jar.SetCookies(u, []*http.Cookie{{Name: "csrftoken", Value: token}})
}

func TestListProjectsDecodesPlainArray(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/projects/",
		httpmock.NewStringResponder(http.StatusOK,
			`[{"id": 1, "name": "Banana RNA-seq", "description": "", "created_at": "2025-04-01T10:00:00Z"}]`))

	projects, err := client.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, int64(1), projects[0].ID)
	assert.Equal(t, "Banana RNA-seq", projects[0].Name)
}

func TestUnauthorizedMapsToNotAuthenticated(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/projects/",
		httpmock.NewStringResponder(http.StatusUnauthorized, `{"detail": "Authentication credentials were not provided."}`))

	_, err := client.ListProjects(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.IsNotAuthenticated(err))
	assert.False(t, appErrors.IsNetworkFailure(err))
}

func TestMeDetailBodyTreatedAsUnauthenticated(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/auth/me/",
		httpmock.NewStringResponder(http.StatusOK, `{"detail": "Not authenticated"}`))

	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.IsNotAuthenticated(err))
}

func TestMeReturnsUser(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/auth/me/",
		httpmock.NewStringResponder(http.StatusOK, `{"id": 3, "username": "ada", "email": "ada@reslab.dev"}`))

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)
}

func TestLatestFastQCMissingIsTypedAbsence(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/samples/7/fastqc/",
		httpmock.NewStringResponder(http.StatusNotFound, `{"detail": "No FASTQC results found for this sample."}`))

	_, err := client.LatestFastQC(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, appErrors.IsNoResult(err))
	assert.False(t, appErrors.IsNotAuthenticated(err))
}

func TestServerErrorKeepsStatus(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+"/samples/",
		httpmock.NewStringResponder(http.StatusInternalServerError, `{"error": "boom"}`))

	_, err := client.CreateSample(context.Background(), CreateSampleRequest{SampleID: "OS-001", Project: 1, Organism: 42, TissueType: 7, DataType: models.DataTypeRNA})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrAPIFailure.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/projects/",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	_, err := client.ListProjects(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.IsNetworkFailure(err))
}

func TestCancelledSearchSurfacesContextError(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, `=~^http://backend\.test/api/organisms/`,
		httpmock.NewStringResponder(http.StatusOK, `[]`).Delay(200*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.SearchOrganisms(ctx, "oryza", models.KingdomPlant)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, appErrors.IsNetworkFailure(err))
}

func TestSearchOrganismsPaginatedAndCapped(t *testing.T) {
	client := newTestClient(t)

	var rows []string
	for i := 0; i < 60; i++ {
		rows = append(rows, fmt.Sprintf(`{"id": %d, "db_id": %d, "scientific_name": "Oryza %d", "kingdom": "Plant"}`, i+1, 100+i, i))
	}
	body := fmt.Sprintf(`{"count": 60, "results": [%s]}`, strings.Join(rows, ","))

	httpmock.RegisterResponder(http.MethodGet, `=~^http://backend\.test/api/organisms/`,
		httpmock.NewStringResponder(http.StatusOK, body))

	organisms, err := client.SearchOrganisms(context.Background(), "ory", models.KingdomPlant)
	require.NoError(t, err)
	assert.Len(t, organisms, 50)
	assert.Equal(t, int64(100), organisms[0].StorageID())
}

func TestSearchOrganismsPlainArray(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, `=~^http://backend\.test/api/organisms/`,
		httpmock.NewStringResponder(http.StatusOK,
			`[{"id": 9, "scientific_name": "Oryza sativa", "common_name": "rice", "kingdom": "Plant"}]`))

	organisms, err := client.SearchOrganisms(context.Background(), "oryza", models.KingdomPlant)
	require.NoError(t, err)
	require.Len(t, organisms, 1)
	// Without a db_id the display id doubles as the storage id.
	assert.Equal(t, int64(9), organisms[0].StorageID())
}

func TestSearchOrganismsSecondCallHitsCache(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, `=~^http://backend\.test/api/organisms/`,
		httpmock.NewStringResponder(http.StatusOK, `[{"id": 1, "scientific_name": "Oryza sativa", "kingdom": "Plant"}]`))

	_, err := client.SearchOrganisms(context.Background(), "oryza", models.KingdomPlant)
	require.NoError(t, err)
	_, err = client.SearchOrganisms(context.Background(), "oryza", models.KingdomPlant)
	require.NoError(t, err)

	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestCSRFTokenEchoedOnWrites(t *testing.T) {
	client := newTestClient(t)
	seedCSRFCookie(t, client, "token-123")

	var gotHeader string
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+"/projects/",
		func(req *http.Request) (*http.Response, error) {
			gotHeader = req.Header.Get("X-CSRFToken")
			return httpmock.NewStringResponse(http.StatusCreated, `{"id": 5, "name": "New", "description": ""}`), nil
		})

	_, err := client.CreateProject(context.Background(), "New", "")
	require.NoError(t, err)
	assert.Equal(t, "token-123", gotHeader)
}

func TestCSRFTokenNotSentOnReads(t *testing.T) {
	client := newTestClient(t)
	seedCSRFCookie(t, client, "token-123")

	var sawHeader bool
	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/projects/",
		func(req *http.Request) (*http.Response, error) {
			sawHeader = req.Header.Get("X-CSRFToken") != ""
			return httpmock.NewStringResponse(http.StatusOK, `[]`), nil
		})

	_, err := client.ListProjects(context.Background())
	require.NoError(t, err)
	assert.False(t, sawHeader)
}

func TestUploadFileSendsMultipartFields(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, testBaseURL+"/files/",
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, req.ParseMultipartForm(1<<20))
			assert.Equal(t, "501", req.FormValue("sample"))
			assert.Equal(t, "FASTQ", req.FormValue("file_type"))

			file, header, err := req.FormFile("file")
			require.NoError(t, err)
			defer file.Close() //nolint:errcheck
			assert.Equal(t, "reads.fastq", header.Filename)

			return httpmock.NewStringResponse(http.StatusCreated,
				`{"id": 12, "sample": 501, "file_type": "FASTQ", "file": "uploads/reads.fastq", "size_bytes": 11}`), nil
		})

	created, err := client.UploadFile(context.Background(), 501, models.FileTypeFASTQ, "reads.fastq", strings.NewReader("@read1\nACGT"))
	require.NoError(t, err)
	assert.Equal(t, int64(12), created.ID)
}

func TestUploadFileRejectsMissingFileLocally(t *testing.T) {
	client := newTestClient(t)

	_, err := client.UploadFile(context.Background(), 501, models.FileTypeFASTQ, "", nil)
	require.Error(t, err)
	assert.True(t, appErrors.IsValidation(err))
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestCreateJobAndTrigger(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, testBaseURL+"/jobs/",
		func(req *http.Request) (*http.Response, error) {
			return httpmock.NewStringResponse(http.StatusCreated,
				`{"id": 9001, "sample": 501, "job_type": "FASTQC", "status": "pending"}`), nil
		})
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+"/jobs/9001/trigger_fastqc/",
		httpmock.NewStringResponder(http.StatusOK, `{"status": "started"}`))

	job, err := client.CreateJob(context.Background(), 501)
	require.NoError(t, err)
	assert.Equal(t, int64(9001), job.ID)
	assert.Equal(t, models.JobStatusPending, job.Status)

	require.NoError(t, client.TriggerFastQC(context.Background(), job.ID))
}
