package models

import "time"

// QCStatus is the PASS/WARN/FAIL/UNKNOWN classification FastQC assigns to a
// module or to the whole report.
type QCStatus string

const (
	QCStatusPass    QCStatus = "PASS"
	QCStatusWarn    QCStatus = "WARN"
	QCStatusFail    QCStatus = "FAIL"
	QCStatusUnknown QCStatus = "UNKNOWN"
)

// ModuleResult is one row of the FastQC module summary.
type ModuleResult struct {
	Module string   `json:"module"`
	Status QCStatus `json:"status"`
}

// FastQCReport is the payload of GET /api/samples/{id}/fastqc/. Fields are
// inconsistently present depending on backend version and job state, so
// consumers derive the overall outcome through the qc package rather than
// reading OverallStatus directly.
type FastQCReport struct {
	SampleID      int64          `json:"sample_id"`
	SampleName    string         `json:"sample_name"`
	HTMLReport    string         `json:"html_report,omitempty"`
	ZipDownload   string         `json:"zip_download,omitempty"`
	GeneratedOn   *time.Time     `json:"generated_on"`
	OverallStatus QCStatus       `json:"overall_status,omitempty"`
	JobStatus     JobStatus      `json:"job_status,omitempty"`
	JobID         int64          `json:"job_id,omitempty"`
	Summary       []ModuleResult `json:"summary,omitempty"`
}
