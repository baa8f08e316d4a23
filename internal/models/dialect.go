package models

// FileKind classifies a statement file by its container format.
type FileKind string

const (
	FileKindCSV     FileKind = "csv"
	FileKindExcel   FileKind = "excel"
	FileKindJSON    FileKind = "json"
	FileKindText    FileKind = "text"
	FileKindPDF     FileKind = "pdf"
	FileKindUnknown FileKind = "unknown"
)

// StatementDialect identifies the column vocabulary a statement was exported
// with. Detection runs in a fixed priority order; see DialectPriority.
type StatementDialect string

const (
	DialectGoogle  StatementDialect = "google"
	DialectUPI     StatementDialect = "upi"
	DialectBank    StatementDialect = "bank"
	DialectGeneric StatementDialect = "generic"
	DialectUnknown StatementDialect = "unknown"
)

// DialectPriority is the order dialects are tried during detection. More
// specific vocabularies come first so a generic match never shadows them.
var DialectPriority = []StatementDialect{
	DialectGoogle,
	DialectUPI,
	DialectBank,
	DialectGeneric,
}

// IsValidFileKind checks if the file kind is one the parser understands.
func IsValidFileKind(kind FileKind) bool {
	switch kind {
	case FileKindCSV, FileKindExcel, FileKindJSON, FileKindText, FileKindPDF:
		return true
	default:
		return false
	}
}
