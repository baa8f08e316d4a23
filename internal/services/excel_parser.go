package services

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"statement-ingest/internal/models"

	"github.com/xuri/excelize/v2"
)

// syntheticHeaderRe matches placeholder column names spreadsheet readers
// produce when the sheet has no real header row.
var syntheticHeaderRe = regexp.MustCompile(`^(column|col|unnamed|field)\d*$`)

// parseExcel reads the first sheet of a workbook. When the header row is
// synthetic, real headers are re-derived from the first data row and the
// data shifts up by one.
func (p *statementParser) parseExcel(ctx context.Context, r io.Reader, fn ChunkFunc) (int, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return 0, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return 0, nil
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return 0, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	headers := normalizeHeaders(rows[0])
	dataStart := 1
	if isSyntheticHeader(headers) && len(rows) > 1 {
		headers = normalizeHeaders(rows[1])
		dataStart = 2
	}

	total := 0
	chunk := make([]models.RawRow, 0, p.chunkSize)

	for i := dataStart; i < len(rows); i++ {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		if isBlankRecord(rows[i]) {
			continue
		}

		chunk = append(chunk, recordToRow(headers, rows[i]))
		total++

		if len(chunk) >= p.chunkSize {
			if err := fn(headers, chunk); err != nil {
				return total, err
			}
			chunk = make([]models.RawRow, 0, p.chunkSize)
		}
	}

	if len(chunk) > 0 {
		if err := fn(headers, chunk); err != nil {
			return total, err
		}
	}
	return total, nil
}

// isSyntheticHeader reports whether every header cell is empty or a reader
// placeholder like "column1".
func isSyntheticHeader(headers []string) bool {
	sawAny := false
	for _, h := range headers {
		if h == "" {
			continue
		}
		sawAny = true
		if !syntheticHeaderRe.MatchString(h) {
			return false
		}
	}
	return sawAny || allEmpty(headers)
}

func allEmpty(headers []string) bool {
	for _, h := range headers {
		if h != "" {
			return false
		}
	}
	return true
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
