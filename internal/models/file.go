package models

import "time"

// FileType classifies an uploaded data artifact.
type FileType string

const (
	FileTypeFASTQ  FileType = "FASTQ"
	FileTypeBAM    FileType = "BAM"
	FileTypeVCF    FileType = "VCF"
	FileTypeGFF    FileType = "GFF"
	FileTypeCounts FileType = "COUNTS"
	FileTypeMeta   FileType = "META"
	FileTypeOther  FileType = "OTHER"
)

// FileTypes lists the closed enumeration in display order.
var FileTypes = []FileType{
	FileTypeFASTQ,
	FileTypeBAM,
	FileTypeVCF,
	FileTypeGFF,
	FileTypeCounts,
	FileTypeMeta,
	FileTypeOther,
}

// Valid reports whether the file type is one of the known codes.
func (f FileType) Valid() bool {
	for _, known := range FileTypes {
		if f == known {
			return true
		}
	}
	return false
}

// OmicsFile is an uploaded data artifact attached to a sample. File holds the
// backend storage location; the payload itself is never mirrored client-side.
type OmicsFile struct {
	ID         int64     `json:"id"`
	Sample     int64     `json:"sample"`
	FileType   FileType  `json:"file_type"`
	File       string    `json:"file"`
	UploadedAt time.Time `json:"uploaded_at"`
	Checksum   string    `json:"checksum,omitempty"`
	SizeBytes  int64     `json:"size_bytes"`
}
