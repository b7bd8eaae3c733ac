package models

import "time"

// DataType is the backend short code for a sample's experimental data type.
type DataType string

const (
	DataTypeDNA   DataType = "DNA"
	DataTypeRNA   DataType = "RNA"
	DataTypeMeta  DataType = "META"
	DataTypeProt  DataType = "PROT"
	DataTypeMetab DataType = "METAB"
)

// DataTypeLabels maps wire codes to the labels shown to users. The backend
// only ever sees the short code.
var DataTypeLabels = map[DataType]string{
	DataTypeDNA:   "DNA-seq",
	DataTypeRNA:   "RNA-seq",
	DataTypeMeta:  "Metagenomics",
	DataTypeProt:  "Proteomics",
	DataTypeMetab: "Metabolomics",
}

// DataTypes lists the closed enumeration in display order.
var DataTypes = []DataType{DataTypeDNA, DataTypeRNA, DataTypeMeta, DataTypeProt, DataTypeMetab}

// DataTypeFromLabel resolves a user-facing label back to its wire code.
func DataTypeFromLabel(label string) (DataType, bool) {
	for code, l := range DataTypeLabels {
		if l == label {
			return code, true
		}
	}
	return "", false
}

// Label returns the user-facing label, falling back to the raw code.
func (d DataType) Label() string {
	if label, ok := DataTypeLabels[d]; ok {
		return label
	}
	return string(d)
}

// Sample is a single biological specimen record. Organism and TissueType are
// foreign keys (organism by storage id); the *_name fields are denormalised
// by the backend for display.
type Sample struct {
	ID             int64       `json:"id"`
	Project        int64       `json:"project"`
	SampleID       string      `json:"sample_id"`
	Organism       *int64      `json:"organism"`
	TissueType     *int64      `json:"tissue_type"`
	OrganismName   string      `json:"organism_name,omitempty"`
	TissueTypeName string      `json:"tissue_type_name,omitempty"`
	DataType       DataType    `json:"data_type"`
	CollectedOn    *string     `json:"collected_on"`
	CreatedAt      time.Time   `json:"created_at"`
	Files          []OmicsFile `json:"files,omitempty"`
}
