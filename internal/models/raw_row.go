package models

import (
	"strconv"
	"strings"
)

// CellKind tags the scalar type held by a CellValue.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
)

// CellValue is a tagged scalar read from one statement cell. Keeping the
// original type explicit avoids silent coercion when dialects disagree on
// whether a column holds text or numbers.
type CellValue struct {
	Kind CellKind
	Str  string
	Num  float64
}

func StringCell(s string) CellValue {
	if strings.TrimSpace(s) == "" {
		return CellValue{Kind: CellEmpty}
	}
	return CellValue{Kind: CellString, Str: s}
}

func NumberCell(n float64) CellValue {
	return CellValue{Kind: CellNumber, Num: n}
}

func EmptyCell() CellValue {
	return CellValue{Kind: CellEmpty}
}

// IsEmpty returns true when the cell holds no usable value.
func (v CellValue) IsEmpty() bool {
	return v.Kind == CellEmpty
}

// Text returns the string form of the cell regardless of kind.
func (v CellValue) Text() string {
	switch v.Kind {
	case CellString:
		return strings.TrimSpace(v.Str)
	case CellNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return ""
	}
}

// RawRow maps normalized header names to the cell values of one source row.
// It is transient: rows are discarded once mapped into a candidate.
type RawRow map[string]CellValue

// NormalizeHeader lowercases a header and strips everything outside [a-z0-9]
// so that "Transaction Date", "transaction_date" and "TRANSACTION-DATE" all
// key the same cell.
func NormalizeHeader(header string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(header) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Get returns the first non-empty cell among the given normalized keys.
func (r RawRow) Get(keys ...string) CellValue {
	for _, key := range keys {
		if v, ok := r[key]; ok && !v.IsEmpty() {
			return v
		}
	}
	return EmptyCell()
}

// ToMap converts the row to a plain map for audit storage.
func (r RawRow) ToMap() map[string]interface{} {
	if len(r) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(r))
	for k, v := range r {
		switch v.Kind {
		case CellNumber:
			out[k] = v.Num
		case CellString:
			out[k] = v.Str
		default:
			out[k] = ""
		}
	}
	return out
}
