package services

import (
	"path/filepath"
	"strings"

	"statement-ingest/internal/models"
)

// formatDetector implements FormatDetectorInterface
type formatDetector struct{}

// NewFormatDetector creates a file-kind detector.
func NewFormatDetector() FormatDetectorInterface {
	return &formatDetector{}
}

// Detect classifies a statement file from its name. Unrecognized extensions
// come back as FileKindUnknown, which is terminal for the import.
func (d *formatDetector) Detect(fileName string) models.FileKind {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return models.FileKindCSV
	case ".xls", ".xlsx", ".xlsm":
		return models.FileKindExcel
	case ".json":
		return models.FileKindJSON
	case ".txt", ".tsv":
		return models.FileKindText
	case ".pdf":
		return models.FileKindPDF
	default:
		return models.FileKindUnknown
	}
}
