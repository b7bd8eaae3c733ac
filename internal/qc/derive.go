// Package qc derives overall quality-control outcomes from FastQC reports.
//
// Backend payloads are inconsistent about the overall_status field: older job
// records omit it, some report UNKNOWN, and the module summary may or may not
// be present. Outcome makes the "no determinable status" case explicit so
// callers never confuse it with a real PASS/WARN/FAIL.
package qc

import "github.com/reslab-bio/omics-console/internal/models"

// Outcome is the tagged result of an overall-status derivation.
type Outcome struct {
	status models.QCStatus
	known  bool
}

// Known wraps a determinable status.
func Known(status models.QCStatus) Outcome {
	return Outcome{status: status, known: true}
}

// Unknown is the outcome when nothing determinable exists.
func Unknown() Outcome {
	return Outcome{}
}

// IsKnown reports whether a status could be derived.
func (o Outcome) IsKnown() bool {
	return o.known
}

// Status returns the derived status and whether it is valid.
func (o Outcome) Status() (models.QCStatus, bool) {
	return o.status, o.known
}

// Or returns the derived status, or fallback when nothing was determinable.
func (o Outcome) Or(fallback models.QCStatus) models.QCStatus {
	if o.known {
		return o.status
	}
	return fallback
}

// DeriveOverall computes the overall QC status for a FastQC report.
//
// An explicit overall_status wins unless it is UNKNOWN. Otherwise the module
// summary decides by precedence: any FAIL yields FAIL, else any WARN yields
// WARN, else any PASS yields PASS. An empty summary derives nothing.
func DeriveOverall(report models.FastQCReport) Outcome {
	if report.OverallStatus != "" && report.OverallStatus != models.QCStatusUnknown {
		return Known(report.OverallStatus)
	}

	var hasFail, hasWarn, hasPass bool
	for _, row := range report.Summary {
		switch row.Status {
		case models.QCStatusFail:
			hasFail = true
		case models.QCStatusWarn:
			hasWarn = true
		case models.QCStatusPass:
			hasPass = true
		}
	}

	switch {
	case hasFail:
		return Known(models.QCStatusFail)
	case hasWarn:
		return Known(models.QCStatusWarn)
	case hasPass:
		return Known(models.QCStatusPass)
	default:
		return Unknown()
	}
}
