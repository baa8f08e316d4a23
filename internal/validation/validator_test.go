package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fileKindField struct {
	Kind string `validate:"file_kind"`
}

type dialectField struct {
	Dialect string `validate:"statement_dialect"`
}

type fileNameField struct {
	Name string `validate:"statement_filename"`
}

func TestValidateFileKind(t *testing.T) {
	v := NewValidator().GetValidate()

	assert.NoError(t, v.Struct(fileKindField{Kind: "csv"}))
	assert.NoError(t, v.Struct(fileKindField{Kind: "excel"}))
	assert.NoError(t, v.Struct(fileKindField{Kind: "pdf"}))
	assert.Error(t, v.Struct(fileKindField{Kind: "unknown"}))
	assert.Error(t, v.Struct(fileKindField{Kind: "docx"}))
}

func TestValidateStatementDialect(t *testing.T) {
	v := NewValidator().GetValidate()

	assert.NoError(t, v.Struct(dialectField{Dialect: "google"}))
	assert.NoError(t, v.Struct(dialectField{Dialect: "generic"}))
	assert.Error(t, v.Struct(dialectField{Dialect: "unknown"}))
	assert.Error(t, v.Struct(dialectField{Dialect: ""}))
}

func TestValidateStatementFileName(t *testing.T) {
	v := NewValidator().GetValidate()

	assert.NoError(t, v.Struct(fileNameField{Name: "statement.csv"}))
	assert.NoError(t, v.Struct(fileNameField{Name: "feb.2026.xlsx"}))
	assert.Error(t, v.Struct(fileNameField{Name: "no-extension"}))
	assert.Error(t, v.Struct(fileNameField{Name: ".hidden"}))
	assert.Error(t, v.Struct(fileNameField{Name: "trailing."}))
	assert.Error(t, v.Struct(fileNameField{Name: "../escape.csv"}))
	assert.Error(t, v.Struct(fileNameField{Name: `dir\statement.csv`}))
	assert.Error(t, v.Struct(fileNameField{Name: ""}))
}
