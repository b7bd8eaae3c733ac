package models

// Kingdom is the top-level taxonomic grouping used to scope organism search
// and tissue vocabularies.
type Kingdom string

const (
	KingdomPlant    Kingdom = "Plant"
	KingdomAnimal   Kingdom = "Animal"
	KingdomFungus   Kingdom = "Fungus"
	KingdomBacteria Kingdom = "Bacteria"
	KingdomVirus    Kingdom = "Virus"
	KingdomArchaea  Kingdom = "Archaea"
)

// Kingdoms is the closed set offered by the wizard.
var Kingdoms = []Kingdom{
	KingdomPlant,
	KingdomAnimal,
	KingdomFungus,
	KingdomBacteria,
	KingdomVirus,
	KingdomArchaea,
}

// Valid reports whether k is one of the known kingdoms.
func (k Kingdom) Valid() bool {
	for _, known := range Kingdoms {
		if k == known {
			return true
		}
	}
	return false
}

// Organism is a taxonomy reference entry. The backend exposes two
// identifiers: ID is the display-level id some listings use, DBID is the
// storage primary key that foreign keys must reference. Submitting the wrong
// one silently links the sample to a different organism, so callers go
// through StorageID.
type Organism struct {
	ID             int64   `json:"id"`
	DBID           int64   `json:"db_id,omitempty"`
	ScientificName string  `json:"scientific_name"`
	CommonName     string  `json:"common_name,omitempty"`
	TaxonomyID     int64   `json:"taxonomy_id,omitempty"`
	Kingdom        Kingdom `json:"kingdom"`
}

// StorageID resolves the identifier used in foreign keys: the storage-level
// db_id when present, otherwise the plain id.
func (o Organism) StorageID() int64 {
	if o.DBID != 0 {
		return o.DBID
	}
	return o.ID
}
