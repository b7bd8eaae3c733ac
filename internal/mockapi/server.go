package mockapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reslab-bio/omics-console/internal/models"
	"github.com/reslab-bio/omics-console/pkg/config"
	"github.com/reslab-bio/omics-console/pkg/logger"
	"github.com/reslab-bio/omics-console/pkg/middleware/cors"
	"github.com/reslab-bio/omics-console/pkg/middleware/requestid"
	"github.com/reslab-bio/omics-console/pkg/response"
	"github.com/reslab-bio/omics-console/pkg/storage"
)

// organismPageSize is the DRF page size for the organism listing.
const organismPageSize = 50

// Server is the mock backend: gin router, in-memory store, session manager,
// upload storage, and the FastQC simulator.
type Server struct {
	engine   *gin.Engine
	store    *Store
	sessions *SessionManager
	sim      *Simulator
	uploads  *storage.LocalStorage
	metrics  *Metrics
	log      *zap.Logger
	port     int
}

// Params groups constructor dependencies.
type Params struct {
	Config config.MockAPIConfig
	Logger *zap.Logger
}

// New wires the mock backend.
func New(params Params) (*Server, error) {
	log := params.Logger
	if log == nil {
		log = zap.NewNop()
	}

	uploads, err := storage.NewLocalStorage(params.Config.UploadDir)
	if err != nil {
		return nil, err
	}

	store := NewStore(time.Now)
	metrics := NewMetrics()
	signer := storage.NewReportSigner(params.Config.JWTSecret, 24*time.Hour)

	s := &Server{
		store:    store,
		sessions: NewSessionManager(store, params.Config.JWTSecret, params.Config.SessionTTL),
		uploads:  uploads,
		metrics:  metrics,
		log:      log,
		port:     params.Config.Port,
	}
	s.sim = NewSimulator(SimulatorParams{
		Store:    store,
		Signer:   signer,
		Metrics:  metrics,
		Logger:   log,
		Duration: params.Config.JobDuration,
	})

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestid.Middleware())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(cors.New(params.Config.AllowedOrigins))
	engine.Use(metrics.Middleware())
	s.routes(engine)
	s.engine = engine
	return s, nil
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine { return s.engine }

// StartSimulator launches the job workers without serving HTTP, for embedding
// the backend behind an existing listener.
func (s *Server) StartSimulator(ctx context.Context) { s.sim.Start(ctx) }

// StopSimulator drains the job workers.
func (s *Server) StopSimulator() { s.sim.Stop() }

// Run starts the simulator and serves until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.sim.Start(ctx)
	defer s.sim.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("mock backend listening", zap.Int("port", s.port))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) routes(engine *gin.Engine) {
	engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := engine.Group("/api")
	api.Use(s.sessions.CSRF())

	auth := api.Group("/auth")
	{
		auth.POST("/login/", s.handleLogin)
		auth.POST("/logout/", s.handleLogout)
		auth.GET("/me/", s.handleMe)
	}

	protected := api.Group("")
	protected.Use(s.sessions.RequireAuth())
	{
		protected.GET("/projects/", s.handleListProjects)
		protected.POST("/projects/", s.handleCreateProject)
		protected.PATCH("/projects/:id/", s.handleUpdateProject)
		protected.DELETE("/projects/:id/", s.handleDeleteProject)
		protected.GET("/projects/trash/", s.handleProjectTrash)
		protected.POST("/projects/:id/restore/", s.handleRestoreProject)

		protected.GET("/samples/", s.handleListSamples)
		protected.POST("/samples/", s.handleCreateSample)
		protected.PATCH("/samples/:id/", s.handleUpdateSample)
		protected.DELETE("/samples/:id/", s.handleDeleteSample)
		protected.GET("/samples/trash/", s.handleSampleTrash)
		protected.POST("/samples/:id/restore/", s.handleRestoreSample)
		protected.GET("/samples/:id/fastqc/", s.handleLatestFastQC)
		protected.GET("/samples/:id/jobs/", s.handleJobHistory)

		protected.GET("/organisms/", s.handleSearchOrganisms)
		protected.GET("/tissue-types/", s.handleListTissues)

		protected.POST("/files/", s.handleUploadFile)

		protected.POST("/jobs/", s.handleCreateJob)
		protected.POST("/jobs/:id/trigger_fastqc/", s.handleTriggerFastQC)
	}
}

func (s *Server) handleLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Detail(c, http.StatusBadRequest, "Username and password are required.")
		return
	}

	user, ok := s.store.Authenticate(req.Username, req.Password)
	if !ok {
		response.Detail(c, http.StatusUnauthorized, "Invalid credentials.")
		return
	}
	if err := s.sessions.IssueCookies(c, user); err != nil {
		response.Detail(c, http.StatusInternalServerError, "Could not establish session.")
		return
	}
	response.JSON(c, http.StatusOK, user)
}

func (s *Server) handleLogout(c *gin.Context) {
	s.sessions.ClearCookies(c)
	response.Detail(c, http.StatusOK, "Logged out.")
}

// handleMe mirrors the real backend: a valid session returns the account,
// anything else answers 200 with a detail body rather than a 401.
func (s *Server) handleMe(c *gin.Context) {
	user, ok := s.sessions.CurrentUser(c)
	if !ok {
		response.Detail(c, http.StatusOK, "Not authenticated")
		return
	}
	response.JSON(c, http.StatusOK, user)
}

func (s *Server) handleListProjects(c *gin.Context) {
	response.JSON(c, http.StatusOK, s.store.Projects())
}

func (s *Server) handleCreateProject(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Detail(c, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	project, err := s.store.CreateProject(req.Name, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, project)
}

func (s *Server) handleUpdateProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Detail(c, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	project, err := s.store.UpdateProject(id, req.Name, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, project)
}

func (s *Server) handleDeleteProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.SoftDeleteProject(id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (s *Server) handleProjectTrash(c *gin.Context) {
	response.JSON(c, http.StatusOK, s.store.TrashedProjects())
}

func (s *Server) handleRestoreProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.RestoreProject(id); err != nil {
		response.Error(c, err)
		return
	}
	response.Detail(c, http.StatusOK, "Project restored.")
}

func (s *Server) handleListSamples(c *gin.Context) {
	var projectID int64
	if raw := c.Query("project"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Detail(c, http.StatusBadRequest, "project must be an integer.")
			return
		}
		projectID = parsed
	}
	response.JSON(c, http.StatusOK, s.store.Samples(projectID))
}

func (s *Server) handleCreateSample(c *gin.Context) {
	var req SampleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Detail(c, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	sample, err := s.store.CreateSample(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sample)
}

func (s *Server) handleUpdateSample(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req SampleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Detail(c, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	sample, err := s.store.UpdateSample(id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sample)
}

func (s *Server) handleDeleteSample(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.SoftDeleteSample(id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (s *Server) handleSampleTrash(c *gin.Context) {
	response.JSON(c, http.StatusOK, s.store.TrashedSamples())
}

func (s *Server) handleRestoreSample(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.RestoreSample(id); err != nil {
		response.Error(c, err)
		return
	}
	response.Detail(c, http.StatusOK, "Sample restored.")
}

func (s *Server) handleLatestFastQC(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, exists := s.store.SampleByID(id); !exists {
		response.Detail(c, http.StatusNotFound, "No FASTQC results found for this sample.")
		return
	}
	report, exists := s.store.Report(id)
	if !exists {
		response.Detail(c, http.StatusNotFound, "No FASTQC results found for this sample.")
		return
	}
	response.JSON(c, http.StatusOK, report)
}

func (s *Server) handleJobHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	sample, exists := s.store.SampleByID(id)
	if !exists {
		response.Detail(c, http.StatusNotFound, "not found")
		return
	}
	response.JSON(c, http.StatusOK, models.JobHistory{
		Sample: sample.SampleID,
		Jobs:   s.store.JobsForSample(id),
	})
}

// handleSearchOrganisms serves the DRF-paginated shape the real backend
// uses for this listing.
func (s *Server) handleSearchOrganisms(c *gin.Context) {
	query := c.Query("search")
	kingdom := models.Kingdom(c.Query("kingdom"))
	if kingdom != "" && !kingdom.Valid() {
		response.Detail(c, http.StatusBadRequest, "kingdom: not a valid choice.")
		return
	}

	matches := s.store.SearchOrganisms(query, kingdom)
	page := matches
	if len(page) > organismPageSize {
		page = page[:organismPageSize]
	}
	response.JSON(c, http.StatusOK, gin.H{
		"count":   len(matches),
		"results": page,
	})
}

func (s *Server) handleListTissues(c *gin.Context) {
	kingdom := models.Kingdom(c.Query("kingdom"))
	if kingdom != "" && !kingdom.Valid() {
		response.Detail(c, http.StatusBadRequest, "kingdom: not a valid choice.")
		return
	}
	response.JSON(c, http.StatusOK, s.store.Tissues(kingdom))
}

func (s *Server) handleUploadFile(c *gin.Context) {
	sampleID, err := strconv.ParseInt(c.PostForm("sample"), 10, 64)
	if err != nil || sampleID == 0 {
		response.Detail(c, http.StatusBadRequest, "sample: A valid integer is required.")
		return
	}
	fileType := models.FileType(strings.ToUpper(c.PostForm("file_type")))
	if !fileType.Valid() {
		response.Detail(c, http.StatusBadRequest, "file_type: not a valid choice.")
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Detail(c, http.StatusBadRequest, "file: No file was submitted.")
		return
	}

	src, err := header.Open()
	if err != nil {
		response.Detail(c, http.StatusBadRequest, "file: could not read upload.")
		return
	}
	defer src.Close() //nolint:errcheck

	path, err := s.uploads.SaveUpload(sampleID, header.Filename, src)
	if err != nil {
		s.log.Error("upload write failed", zap.Error(err))
		response.Detail(c, http.StatusInternalServerError, "Could not store file.")
		return
	}

	file, err := s.store.AddFile(sampleID, fileType, path, header.Size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, file)
}

func (s *Server) handleCreateJob(c *gin.Context) {
	var req struct {
		Sample  int64            `json:"sample"`
		JobType models.JobType   `json:"job_type"`
		Status  models.JobStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Detail(c, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if req.JobType != models.JobTypeFastQC {
		response.Detail(c, http.StatusBadRequest, "job_type: not a valid choice.")
		return
	}
	job, err := s.store.CreateJob(req.Sample, req.JobType, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, job)
}

func (s *Server) handleTriggerFastQC(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, exists := s.store.Job(id); !exists {
		response.Detail(c, http.StatusNotFound, "not found")
		return
	}
	if err := s.sim.Trigger(id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "started"})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Detail(c, http.StatusNotFound, "not found")
		return 0, false
	}
	return id, true
}
