package services

import (
	"context"
	"strings"
	"testing"

	"statement-ingest/internal/models"

	"github.com/stretchr/testify/suite"
)

type StatementParserTestSuite struct {
	suite.Suite
	parser StatementParserInterface
}

func TestStatementParserSuite(t *testing.T) {
	suite.Run(t, new(StatementParserTestSuite))
}

func (s *StatementParserTestSuite) SetupTest() {
	s.parser = NewStatementParser(2)
}

type collectedChunk struct {
	headers []string
	rows    []models.RawRow
}

func collect(chunks *[]collectedChunk) ChunkFunc {
	return func(headers []string, rows []models.RawRow) error {
		copied := make([]models.RawRow, len(rows))
		copy(copied, rows)
		*chunks = append(*chunks, collectedChunk{headers: headers, rows: copied})
		return nil
	}
}

func (s *StatementParserTestSuite) TestParseCSV_ChunkedDelivery() {
	csvData := "Date,Amount,Description\n" +
		"01/01/2026,100,row one\n" +
		"02/01/2026,200,row two\n" +
		"03/01/2026,300,row three\n" +
		"04/01/2026,400,row four\n" +
		"05/01/2026,500,row five\n"

	var chunks []collectedChunk
	total, err := s.parser.Parse(context.Background(), models.FileKindCSV, strings.NewReader(csvData), collect(&chunks))

	s.NoError(err)
	s.Equal(5, total)
	s.Len(chunks, 3)
	s.Len(chunks[0].rows, 2)
	s.Len(chunks[1].rows, 2)
	s.Len(chunks[2].rows, 1)
	s.Equal([]string{"date", "amount", "description"}, chunks[0].headers)
	s.Equal("row one", chunks[0].rows[0].Get("description").Text())
}

func (s *StatementParserTestSuite) TestParseCSV_BOMStripped() {
	csvData := "\uFEFFDate,Amount\n01/01/2026,100\n"

	var chunks []collectedChunk
	total, err := s.parser.Parse(context.Background(), models.FileKindCSV, strings.NewReader(csvData), collect(&chunks))

	s.NoError(err)
	s.Equal(1, total)
	s.Equal([]string{"date", "amount"}, chunks[0].headers)
	s.Equal("100", chunks[0].rows[0].Get("amount").Text())
}

func (s *StatementParserTestSuite) TestParseCSV_RaggedRows() {
	// Short rows key their missing cells as empty, long rows drop extras.
	csvData := "Date,Amount,Description\n01/01/2026,100\n02/01/2026,200,desc,extra\n"

	var chunks []collectedChunk
	total, err := s.parser.Parse(context.Background(), models.FileKindCSV, strings.NewReader(csvData), collect(&chunks))

	s.NoError(err)
	s.Equal(2, total)
	s.True(chunks[0].rows[0].Get("description").IsEmpty())
	s.Equal("desc", chunks[0].rows[1].Get("description").Text())
}

func (s *StatementParserTestSuite) TestParseCSV_EmptyFile() {
	var chunks []collectedChunk
	_, err := s.parser.Parse(context.Background(), models.FileKindCSV, strings.NewReader(""), collect(&chunks))
	s.ErrorIs(err, ErrNoRows)

	_, err = s.parser.Parse(context.Background(), models.FileKindCSV, strings.NewReader("Date,Amount\n"), collect(&chunks))
	s.ErrorIs(err, ErrNoRows)
}

func (s *StatementParserTestSuite) TestParseText_SniffsPipeDelimiter() {
	textData := "Date|Amount|Description\n01/01/2026|100|pipe row\n"

	var chunks []collectedChunk
	total, err := s.parser.Parse(context.Background(), models.FileKindText, strings.NewReader(textData), collect(&chunks))

	s.NoError(err)
	s.Equal(1, total)
	s.Equal([]string{"date", "amount", "description"}, chunks[0].headers)
	s.Equal("pipe row", chunks[0].rows[0].Get("description").Text())
}

func (s *StatementParserTestSuite) TestParseText_SniffsTabDelimiter() {
	textData := "Date\tAmount\tDescription\n01/01/2026\t100\ttab row\n"

	var chunks []collectedChunk
	total, err := s.parser.Parse(context.Background(), models.FileKindText, strings.NewReader(textData), collect(&chunks))

	s.NoError(err)
	s.Equal(1, total)
	s.Equal("tab row", chunks[0].rows[0].Get("description").Text())
}

func (s *StatementParserTestSuite) TestParseText_SkipsLeadingBlankLines() {
	textData := "\n\nDate,Amount\n01/01/2026,100\n"

	var chunks []collectedChunk
	total, err := s.parser.Parse(context.Background(), models.FileKindText, strings.NewReader(textData), collect(&chunks))

	s.NoError(err)
	s.Equal(1, total)
	s.Equal([]string{"date", "amount"}, chunks[0].headers)
}

func (s *StatementParserTestSuite) TestParseJSON_TopLevelArray() {
	jsonData := `[
		{"date": "01/01/2026", "amount": 100.5, "description": "json row"},
		{"date": "02/01/2026", "amount": 200, "description": "second"}
	]`

	var chunks []collectedChunk
	total, err := s.parser.Parse(context.Background(), models.FileKindJSON, strings.NewReader(jsonData), collect(&chunks))

	s.NoError(err)
	s.Equal(2, total)
	s.Equal([]string{"amount", "date", "description"}, chunks[0].headers)
	s.Equal("100.5", chunks[0].rows[0].Get("amount").Text())
}

func (s *StatementParserTestSuite) TestParseJSON_TransactionsWrapper() {
	jsonData := `{"transactions": [{"date": "01/01/2026", "amount": "100"}]}`

	var chunks []collectedChunk
	total, err := s.parser.Parse(context.Background(), models.FileKindJSON, strings.NewReader(jsonData), collect(&chunks))

	s.NoError(err)
	s.Equal(1, total)
}

func (s *StatementParserTestSuite) TestParseJSON_UnknownShape() {
	var chunks []collectedChunk
	_, err := s.parser.Parse(context.Background(), models.FileKindJSON, strings.NewReader(`{"rows": 3}`), collect(&chunks))
	s.ErrorIs(err, ErrNoRows)
}

func (s *StatementParserTestSuite) TestParseJSON_Malformed() {
	var chunks []collectedChunk
	_, err := s.parser.Parse(context.Background(), models.FileKindJSON, strings.NewReader(`{not json`), collect(&chunks))
	s.Error(err)
	s.NotErrorIs(err, ErrNoRows)
}

func (s *StatementParserTestSuite) TestParse_UnsupportedKind() {
	var chunks []collectedChunk
	_, err := s.parser.Parse(context.Background(), models.FileKindUnknown, strings.NewReader("x"), collect(&chunks))
	s.ErrorIs(err, ErrUnsupportedFileKind)
}

func (s *StatementParserTestSuite) TestParse_CancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	csvData := "Date,Amount\n01/01/2026,100\n"
	var chunks []collectedChunk
	_, err := s.parser.Parse(ctx, models.FileKindCSV, strings.NewReader(csvData), collect(&chunks))
	s.ErrorIs(err, context.Canceled)
}

func (s *StatementParserTestSuite) TestParse_ChunkCallbackErrorAborts() {
	csvData := "Date,Amount\n01/01/2026,100\n02/01/2026,200\n03/01/2026,300\n"

	calls := 0
	_, err := s.parser.Parse(context.Background(), models.FileKindCSV, strings.NewReader(csvData), func(headers []string, rows []models.RawRow) error {
		calls++
		return ErrUnknownDialect
	})

	s.ErrorIs(err, ErrUnknownDialect)
	s.Equal(1, calls)
}

func TestSniffDelimiter(t *testing.T) {
	cases := map[string]rune{
		"a,b,c":     ',',
		"a\tb\tc":   '\t',
		"a|b|c":     '|',
		"a;b;c":     ';',
		"plaintext": ',',
	}
	for header, want := range cases {
		if got := sniffDelimiter(header); got != want {
			t.Errorf("sniffDelimiter(%q) = %q, want %q", header, got, want)
		}
	}
}
