// Package mockapi is a self-contained stand-in for the lab's Django backend.
// It serves the same wire contract (bare resources, {"detail": ...} errors,
// session cookies with CSRF) from an in-memory store, so the console can be
// exercised end to end without the real deployment.
package mockapi

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/reslab-bio/omics-console/internal/models"
	appErrors "github.com/reslab-bio/omics-console/pkg/errors"
)

var (
	errBadRequest = appErrors.New("BAD_REQUEST", http.StatusBadRequest, "invalid request")
	errNotFound   = appErrors.New("NOT_FOUND", http.StatusNotFound, "not found")
)

type userRecord struct {
	models.User
	passwordHash []byte
}

type projectRecord struct {
	models.Project
	deleted bool
}

type sampleRecord struct {
	models.Sample
	deleted bool
}

// Store holds all backend state behind one lock. Every accessor returns
// copies so handlers never leak mutable references.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	users     []userRecord
	organisms []models.Organism
	tissues   []models.TissueType

	projects map[int64]*projectRecord
	samples  map[int64]*sampleRecord
	jobs     map[int64]*models.Job
	reports  map[int64]*models.FastQCReport

	seq int64
}

// NewStore builds a store pre-seeded with a demo account, a taxonomy
// vocabulary, and one example project.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	s := &Store{
		now:      now,
		projects: make(map[int64]*projectRecord),
		samples:  make(map[int64]*sampleRecord),
		jobs:     make(map[int64]*models.Job),
		reports:  make(map[int64]*models.FastQCReport),
	}
	s.seed()
	return s
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) seed() {
	hash, _ := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.MinCost)
	s.users = []userRecord{
		{User: models.User{ID: 1, Username: "demo", Email: "demo@reslab.dev"}, passwordHash: hash},
	}

	type organismSeed struct {
		taxon      int64
		scientific string
		common     string
		kingdom    models.Kingdom
	}
	seeds := []organismSeed{
		{4530, "Oryza sativa", "rice", models.KingdomPlant},
		{3702, "Arabidopsis thaliana", "thale cress", models.KingdomPlant},
		{4577, "Zea mays", "maize", models.KingdomPlant},
		{214687, "Musa acuminata", "banana", models.KingdomPlant},
		{10090, "Mus musculus", "house mouse", models.KingdomAnimal},
		{7955, "Danio rerio", "zebrafish", models.KingdomAnimal},
		{5061, "Aspergillus niger", "", models.KingdomFungus},
		{4932, "Saccharomyces cerevisiae", "baker's yeast", models.KingdomFungus},
		{562, "Escherichia coli", "", models.KingdomBacteria},
		{2681611, "Escherichia virus Lambda", "phage lambda", models.KingdomVirus},
		{2190, "Methanocaldococcus jannaschii", "", models.KingdomArchaea},
	}
	for _, seed := range seeds {
		s.organisms = append(s.organisms, models.Organism{
			ID:             seed.taxon,
			DBID:           s.nextID(),
			ScientificName: seed.scientific,
			CommonName:     seed.common,
			TaxonomyID:     seed.taxon,
			Kingdom:        seed.kingdom,
		})
	}

	tissueSeeds := []struct {
		name     string
		kingdom  models.Kingdom
		ontology string
	}{
		{"leaf", models.KingdomPlant, "PO:0025034"},
		{"root", models.KingdomPlant, "PO:0009005"},
		{"stem", models.KingdomPlant, "PO:0009047"},
		{"seed", models.KingdomPlant, "PO:0009010"},
		{"liver", models.KingdomAnimal, "UBERON:0002107"},
		{"brain", models.KingdomAnimal, "UBERON:0000955"},
		{"muscle", models.KingdomAnimal, "UBERON:0001630"},
		{"mycelium", models.KingdomFungus, ""},
		{"spore", models.KingdomFungus, ""},
		{"culture pellet", models.KingdomBacteria, ""},
		{"culture pellet", models.KingdomVirus, ""},
		{"culture pellet", models.KingdomArchaea, ""},
	}
	for _, seed := range tissueSeeds {
		s.tissues = append(s.tissues, models.TissueType{
			ID:         s.nextID(),
			Name:       seed.name,
			Kingdom:    seed.kingdom,
			OntologyID: seed.ontology,
		})
	}

	projectID := s.nextID()
	s.projects[projectID] = &projectRecord{Project: models.Project{
		ID:          projectID,
		Name:        "Demo RNA-seq study",
		Description: "Seeded example project",
		CreatedAt:   s.now().UTC(),
	}}
}

// Authenticate verifies a username/password pair.
func (s *Store) Authenticate(username, password string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username &&
			bcrypt.CompareHashAndPassword(user.passwordHash, []byte(password)) == nil {
			return user.User, true
		}
	}
	return models.User{}, false
}

// UserByID resolves a session subject back to its account.
func (s *Store) UserByID(id int64) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			return user.User, true
		}
	}
	return models.User{}, false
}

// Projects lists active projects ordered by id.
func (s *Store) Projects() []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Project
	for _, rec := range s.projects {
		if !rec.deleted {
			out = append(out, rec.Project)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CreateProject adds an active project.
func (s *Store) CreateProject(name, description string) (models.Project, error) {
	if strings.TrimSpace(name) == "" {
		return models.Project{}, appErrors.Clone(errBadRequest, "This field may not be blank.")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	project := models.Project{
		ID:          s.nextID(),
		Name:        strings.TrimSpace(name),
		Description: description,
		CreatedAt:   s.now().UTC(),
	}
	s.projects[project.ID] = &projectRecord{Project: project}
	return project, nil
}

// UpdateProject edits name and description.
func (s *Store) UpdateProject(id int64, name, description *string) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.projects[id]
	if !ok || rec.deleted {
		return models.Project{}, errNotFound
	}
	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return models.Project{}, appErrors.Clone(errBadRequest, "This field may not be blank.")
		}
		rec.Name = strings.TrimSpace(*name)
	}
	if description != nil {
		rec.Description = *description
	}
	return rec.Project, nil
}

// SoftDeleteProject moves a project to the trash.
func (s *Store) SoftDeleteProject(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.projects[id]
	if !ok || rec.deleted {
		return errNotFound
	}
	rec.deleted = true
	return nil
}

// RestoreProject brings a trashed project back.
func (s *Store) RestoreProject(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.projects[id]
	if !ok || !rec.deleted {
		return errNotFound
	}
	rec.deleted = false
	return nil
}

// TrashedProjects lists soft-deleted projects.
func (s *Store) TrashedProjects() []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Project
	for _, rec := range s.projects {
		if rec.deleted {
			out = append(out, rec.Project)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Samples lists active samples, optionally scoped to one project, with the
// denormalised organism/tissue names and attached files the real backend
// serialises.
func (s *Store) Samples(projectID int64) []models.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Sample
	for _, rec := range s.samples {
		if rec.deleted {
			continue
		}
		if projectID != 0 && rec.Project != projectID {
			continue
		}
		out = append(out, s.denormalizeLocked(rec.Sample))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SampleByID returns an active sample.
func (s *Store) SampleByID(id int64) (models.Sample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.samples[id]
	if !ok || rec.deleted {
		return models.Sample{}, false
	}
	return s.denormalizeLocked(rec.Sample), true
}

func (s *Store) denormalizeLocked(sample models.Sample) models.Sample {
	if sample.Organism != nil {
		for _, organism := range s.organisms {
			if organism.DBID == *sample.Organism {
				sample.OrganismName = organism.ScientificName
				break
			}
		}
	}
	if sample.TissueType != nil {
		for _, tissue := range s.tissues {
			if tissue.ID == *sample.TissueType {
				sample.TissueTypeName = tissue.Name
				break
			}
		}
	}
	sample.Files = sample.Files[:len(sample.Files):len(sample.Files)]
	return sample
}

// SampleInput is the create/update payload for samples. Organism references
// the organism's storage id (db_id).
type SampleInput struct {
	SampleID    string          `json:"sample_id"`
	Project     int64           `json:"project"`
	Organism    *int64          `json:"organism"`
	TissueType  *int64          `json:"tissue_type"`
	DataType    models.DataType `json:"data_type"`
	CollectedOn *string         `json:"collected_on"`
}

func (s *Store) validateSampleLocked(in SampleInput, selfID int64) error {
	if strings.TrimSpace(in.SampleID) == "" {
		return appErrors.Clone(errBadRequest, "sample_id: This field may not be blank.")
	}
	project, ok := s.projects[in.Project]
	if !ok || project.deleted {
		return appErrors.Clone(errBadRequest, "project: Invalid pk.")
	}
	valid := false
	for _, dt := range models.DataTypes {
		if dt == in.DataType {
			valid = true
			break
		}
	}
	if !valid {
		return appErrors.Clone(errBadRequest, "data_type: not a valid choice.")
	}
	if in.Organism != nil {
		found := false
		for _, organism := range s.organisms {
			if organism.DBID == *in.Organism {
				found = true
				break
			}
		}
		if !found {
			return appErrors.Clone(errBadRequest, "organism: Invalid pk.")
		}
	}
	if in.TissueType != nil {
		found := false
		for _, tissue := range s.tissues {
			if tissue.ID == *in.TissueType {
				found = true
				break
			}
		}
		if !found {
			return appErrors.Clone(errBadRequest, "tissue_type: Invalid pk.")
		}
	}
	if in.CollectedOn != nil && *in.CollectedOn != "" {
		if _, err := time.Parse("2006-01-02", *in.CollectedOn); err != nil {
			return appErrors.Clone(errBadRequest, "collected_on: Date has wrong format.")
		}
	}
	for _, rec := range s.samples {
		if rec.ID == selfID || rec.deleted {
			continue
		}
		if rec.Project == in.Project && rec.Sample.SampleID == strings.TrimSpace(in.SampleID) {
			return appErrors.Clone(errBadRequest, "sample_id: must be unique within the project.")
		}
	}
	return nil
}

// CreateSample validates and stores a new sample.
func (s *Store) CreateSample(in SampleInput) (models.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.validateSampleLocked(in, 0); err != nil {
		return models.Sample{}, err
	}
	sample := models.Sample{
		ID:          s.nextID(),
		Project:     in.Project,
		SampleID:    strings.TrimSpace(in.SampleID),
		Organism:    in.Organism,
		TissueType:  in.TissueType,
		DataType:    in.DataType,
		CollectedOn: in.CollectedOn,
		CreatedAt:   s.now().UTC(),
	}
	s.samples[sample.ID] = &sampleRecord{Sample: sample}
	return s.denormalizeLocked(sample), nil
}

// UpdateSample applies a partial edit.
func (s *Store) UpdateSample(id int64, in SampleInput) (models.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.samples[id]
	if !ok || rec.deleted {
		return models.Sample{}, errNotFound
	}
	if in.Project == 0 {
		in.Project = rec.Project
	}
	if strings.TrimSpace(in.SampleID) == "" {
		in.SampleID = rec.Sample.SampleID
	}
	if in.DataType == "" {
		in.DataType = rec.DataType
	}
	if err := s.validateSampleLocked(in, id); err != nil {
		return models.Sample{}, err
	}
	rec.Project = in.Project
	rec.Sample.SampleID = strings.TrimSpace(in.SampleID)
	rec.Organism = in.Organism
	rec.TissueType = in.TissueType
	rec.DataType = in.DataType
	rec.CollectedOn = in.CollectedOn
	return s.denormalizeLocked(rec.Sample), nil
}

// SoftDeleteSample moves a sample to the trash.
func (s *Store) SoftDeleteSample(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.samples[id]
	if !ok || rec.deleted {
		return errNotFound
	}
	rec.deleted = true
	return nil
}

// RestoreSample brings a trashed sample back.
func (s *Store) RestoreSample(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.samples[id]
	if !ok || !rec.deleted {
		return errNotFound
	}
	rec.deleted = false
	return nil
}

// TrashedSamples lists soft-deleted samples.
func (s *Store) TrashedSamples() []models.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Sample
	for _, rec := range s.samples {
		if rec.deleted {
			out = append(out, s.denormalizeLocked(rec.Sample))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddFile attaches an uploaded file record to a sample.
func (s *Store) AddFile(sampleID int64, fileType models.FileType, path string, size int64) (models.OmicsFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.samples[sampleID]
	if !ok || rec.deleted {
		return models.OmicsFile{}, appErrors.Clone(errBadRequest, "sample: Invalid pk.")
	}
	file := models.OmicsFile{
		ID:         s.nextID(),
		Sample:     sampleID,
		FileType:   fileType,
		File:       path,
		UploadedAt: s.now().UTC(),
		SizeBytes:  size,
	}
	rec.Files = append(rec.Files, file)
	return file, nil
}

// SearchOrganisms filters the vocabulary by kingdom and a case-insensitive
// substring on either name.
func (s *Store) SearchOrganisms(query string, kingdom models.Kingdom) []models.Organism {
	s.mu.Lock()
	defer s.mu.Unlock()
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Organism, 0)
	for _, organism := range s.organisms {
		if kingdom != "" && organism.Kingdom != kingdom {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(organism.ScientificName), query) &&
			!strings.Contains(strings.ToLower(organism.CommonName), query) {
			continue
		}
		out = append(out, organism)
	}
	return out
}

// Tissues lists the vocabulary, optionally scoped to one kingdom.
func (s *Store) Tissues(kingdom models.Kingdom) []models.TissueType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.TissueType, 0)
	for _, tissue := range s.tissues {
		if kingdom != "" && tissue.Kingdom != kingdom {
			continue
		}
		out = append(out, tissue)
	}
	return out
}

// CreateJob registers a job for a sample.
func (s *Store) CreateJob(sampleID int64, jobType models.JobType, status models.JobStatus) (models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.samples[sampleID]
	if !ok || rec.deleted {
		return models.Job{}, appErrors.Clone(errBadRequest, "sample: Invalid pk.")
	}
	if status == "" {
		status = models.JobStatusPending
	}
	job := models.Job{
		ID:      s.nextID(),
		Sample:  sampleID,
		JobType: jobType,
		Status:  status,
	}
	s.jobs[job.ID] = &job
	return job, nil
}

// Job returns a job by id.
func (s *Store) Job(id int64) (models.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return models.Job{}, false
	}
	return *job, true
}

// MarkJobRunning transitions a pending job to running.
func (s *Store) MarkJobRunning(id int64) (models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return models.Job{}, errNotFound
	}
	if job.Status.Terminal() {
		return models.Job{}, appErrors.Clone(errBadRequest, "job already finished.")
	}
	started := s.now().UTC()
	job.Status = models.JobStatusRunning
	job.StartedAt = &started
	return *job, nil
}

// FinishJob transitions a job to a terminal state.
func (s *Store) FinishJob(id int64, status models.JobStatus, outputPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return
	}
	finished := s.now().UTC()
	job.Status = status
	job.FinishedAt = &finished
	job.OutputPath = outputPath
}

// JobsForSample lists a sample's jobs, newest first.
func (s *Store) JobsForSample(sampleID int64) []models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Job, 0)
	for _, job := range s.jobs {
		if job.Sample == sampleID {
			out = append(out, *job)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// PutReport stores the latest FastQC report for a sample.
func (s *Store) PutReport(sampleID int64, report models.FastQCReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[sampleID] = &report
}

// Report returns the latest FastQC report for a sample, or a running job's
// partial view while no report row exists yet.
func (s *Store) Report(sampleID int64) (models.FastQCReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[sampleID]
	if !ok {
		return models.FastQCReport{}, false
	}
	return *report, true
}
