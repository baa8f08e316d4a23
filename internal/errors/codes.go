package errors

// ErrorCode represents a standardized error code used throughout the API
type ErrorCode string

// Authentication error codes (AUTH_*)
const (
	AuthMissingToken       ErrorCode = "AUTH_001"
	AuthExpiredToken       ErrorCode = "AUTH_002"
	AuthInvalidTokenFormat ErrorCode = "AUTH_003"
)

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
)

// Ingestion error codes (INGEST_*)
const (
	IngestUnsupportedFileKind ErrorCode = "INGEST_001"
	IngestUnknownDialect      ErrorCode = "INGEST_002"
	IngestEmptyFile           ErrorCode = "INGEST_003"
	IngestParseFailed         ErrorCode = "INGEST_004"
	IngestUploadFailed        ErrorCode = "INGEST_005"
	IngestFetchFailed         ErrorCode = "INGEST_006"
	IngestJobNotFound         ErrorCode = "INGEST_007"
	IngestFileTooLarge        ErrorCode = "INGEST_008"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_004"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	// Authentication errors
	AuthMissingToken:       "Authorization token is required",
	AuthExpiredToken:       "Authorization token has expired",
	AuthInvalidTokenFormat: "Invalid authorization token format",

	// Validation errors
	ValidationGeneral:       "Validation failed",
	ValidationRequiredField: "Required field is missing",
	ValidationInvalidFormat: "Invalid field format",

	// Ingestion errors
	IngestUnsupportedFileKind: "Unsupported statement file type",
	IngestUnknownDialect:      "Statement columns do not match any known export format",
	IngestEmptyFile:           "Statement file contains no data rows",
	IngestParseFailed:         "Statement file could not be parsed",
	IngestUploadFailed:        "Statement rows could not be saved",
	IngestFetchFailed:         "Existing transactions could not be loaded",
	IngestJobNotFound:         "Import job not found",
	IngestFileTooLarge:        "Statement file exceeds the maximum allowed size",

	// System errors
	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemDatabaseError:      "Database connection error",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a valid registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}
