package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"statement-ingest/internal/models"
)

// parseJSON accepts either a top-level array of row objects or an object
// carrying a "transactions" array. Any other shape yields zero rows.
func (p *statementParser) parseJSON(ctx context.Context, r io.Reader, fn ChunkFunc) (int, error) {
	var payload interface{}
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return 0, fmt.Errorf("malformed JSON: %w", err)
	}

	var elements []interface{}
	switch v := payload.(type) {
	case []interface{}:
		elements = v
	case map[string]interface{}:
		if txns, ok := v["transactions"].([]interface{}); ok {
			elements = txns
		}
	}
	if len(elements) == 0 {
		return 0, nil
	}

	var headers []string
	headerSet := make(map[string]struct{})
	rows := make([]models.RawRow, 0, len(elements))

	for _, element := range elements {
		obj, ok := element.(map[string]interface{})
		if !ok {
			continue
		}
		row := make(models.RawRow, len(obj))
		for key, value := range obj {
			header := models.NormalizeHeader(key)
			if header == "" {
				continue
			}
			row[header] = jsonCell(value)
			headerSet[header] = struct{}{}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}

	headers = make([]string, 0, len(headerSet))
	for header := range headerSet {
		headers = append(headers, header)
	}
	sort.Strings(headers)

	total := 0
	for start := 0; start < len(rows); start += p.chunkSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		end := start + p.chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := fn(headers, rows[start:end]); err != nil {
			return total, err
		}
		total += end - start
	}
	return total, nil
}

func jsonCell(value interface{}) models.CellValue {
	switch v := value.(type) {
	case string:
		return models.StringCell(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return models.NumberCell(f)
		}
		return models.StringCell(v.String())
	case bool:
		if v {
			return models.StringCell("true")
		}
		return models.StringCell("false")
	default:
		return models.EmptyCell()
	}
}
