package validation

import (
	"reflect"
	"strings"

	"statement-ingest/internal/models"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

// singleton instance of the validator
var instance *Validator

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	if instance == nil {
		instance = NewValidator()
	}
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("file_kind", validateFileKind)
	_ = v.RegisterValidation("statement_dialect", validateStatementDialect)
	_ = v.RegisterValidation("statement_filename", validateStatementFileName)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Custom validation functions

// validateFileKind checks that a value names a supported statement file type
func validateFileKind(fl validator.FieldLevel) bool {
	return models.IsValidFileKind(models.FileKind(fl.Field().String()))
}

// validateStatementDialect checks that a value names a known export dialect
func validateStatementDialect(fl validator.FieldLevel) bool {
	dialect := models.StatementDialect(fl.Field().String())
	for _, known := range models.DialectPriority {
		if dialect == known {
			return true
		}
	}
	return false
}

// validateStatementFileName rejects names without an extension and names
// with path separators, which would defeat extension-based detection
func validateStatementFileName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" || strings.ContainsAny(name, `/\`) {
		return false
	}
	dot := strings.LastIndex(name, ".")
	return dot > 0 && dot < len(name)-1
}
