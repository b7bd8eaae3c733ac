package models

// TissueType is a kingdom-scoped controlled-vocabulary entry for the tissue a
// sample originates from.
type TissueType struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Kingdom    Kingdom `json:"kingdom"`
	OntologyID string  `json:"ontology_id,omitempty"`
}
