package services

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"statement-ingest/internal/models"
)

var (
	ErrNoRows              = errors.New("no rows found")
	ErrUnsupportedFileKind = errors.New("unsupported file type")
)

// statementParser implements StatementParserInterface
type statementParser struct {
	chunkSize int
}

// NewStatementParser creates a parser that delivers rows in chunks of at
// most chunkSize.
func NewStatementParser(chunkSize int) StatementParserInterface {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	return &statementParser{chunkSize: chunkSize}
}

// Parse extracts raw rows from the file and hands them to fn chunk by chunk.
func (p *statementParser) Parse(ctx context.Context, kind models.FileKind, r io.Reader, fn ChunkFunc) (int, error) {
	var (
		total int
		err   error
	)

	switch kind {
	case models.FileKindCSV:
		total, err = p.parseDelimited(ctx, r, ',', fn)
	case models.FileKindExcel:
		total, err = p.parseExcel(ctx, r, fn)
	case models.FileKindJSON:
		total, err = p.parseJSON(ctx, r, fn)
	case models.FileKindText, models.FileKindPDF:
		total, err = p.parseSniffedText(ctx, r, fn)
	default:
		return 0, ErrUnsupportedFileKind
	}

	if err != nil {
		return total, err
	}
	if total == 0 {
		return 0, ErrNoRows
	}
	return total, nil
}

// parseDelimited streams a delimiter-separated file. Peak memory stays at
// one chunk regardless of file size.
func (p *statementParser) parseDelimited(ctx context.Context, r io.Reader, comma rune, fn ChunkFunc) (int, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headerRecord, err := reader.Read()
	if err == io.EOF {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read header row: %w", err)
	}
	headers := normalizeHeaders(headerRecord)

	total := 0
	chunk := make([]models.RawRow, 0, p.chunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return total, fmt.Errorf("malformed row at line %d: %w", parseErr.Line, err)
			}
			return total, fmt.Errorf("malformed row after %d rows: %w", total, err)
		}

		chunk = append(chunk, recordToRow(headers, record))
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

// parseSniffedText treats text and PDF-extracted-text files as tables with
// an unknown delimiter. The delimiter is whichever of comma, tab, pipe or
// semicolon splits the header line into the most fields.
func (p *statementParser) parseSniffedText(ctx context.Context, r io.Reader, fn ChunkFunc) (int, error) {
	buffered := bufio.NewReader(r)

	headerLine, err := readNonEmptyLine(buffered)
	if err == io.EOF {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read header line: %w", err)
	}

	delimiter := sniffDelimiter(headerLine)
	full := io.MultiReader(strings.NewReader(headerLine+"\n"), buffered)
	return p.parseDelimited(ctx, full, delimiter, fn)
}

// sniffDelimiter picks the candidate that splits the header into the most
// fields. Comma wins ties by candidate order.
func sniffDelimiter(headerLine string) rune {
	candidates := []rune{',', '\t', '|', ';'}
	best := candidates[0]
	bestCount := 0
	for _, candidate := range candidates {
		count := len(strings.Split(headerLine, string(candidate)))
		if count > bestCount {
			best = candidate
			bestCount = count
		}
	}
	return best
}

func readNonEmptyLine(r *bufio.Reader) (string, error) {
	for {
		line, err := r.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(trimmed) != "" {
			return trimmed, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// normalizeHeaders lowercases headers and strips non-alphanumerics. A UTF-8
// BOM on the first header is dropped so the first column keys correctly.
func normalizeHeaders(record []string) []string {
	headers := make([]string, len(record))
	for i, h := range record {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		headers[i] = models.NormalizeHeader(h)
	}
	return headers
}

func recordToRow(headers []string, record []string) models.RawRow {
	row := make(models.RawRow, len(headers))
	for i, header := range headers {
		if header == "" {
			continue
		}
		if i < len(record) {
			row[header] = models.StringCell(record[i])
		} else {
			row[header] = models.EmptyCell()
		}
	}
	return row
}
