package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
)

// Parser turns a backing file into material records.
type Parser interface {
	Parse(r io.Reader) ([]domain.MaterialRecord, error)
}

// Options configures the parsers returned by ParserFor.
type Options struct {
	Layout       Layout
	CSVDelimiter rune
}

// DefaultOptions uses the default layout and comma-separated CSV.
func DefaultOptions() Options {
	return Options{Layout: DefaultLayout(), CSVDelimiter: ','}
}

// ParserFor picks a parser from the file extension.
func ParserFor(filename string, opts Options) (Parser, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return &XLSXParser{Layout: opts.Layout}, nil
	case ".csv":
		return &CSVParser{Layout: opts.Layout, Comma: opts.CSVDelimiter}, nil
	default:
		return nil, &domain.IngestionError{
			Source: filename,
			Layout: opts.Layout.Describe(),
			Err:    fmt.Errorf("unsupported file type %q (expected .xlsx, .xlsm or .csv)", filepath.Ext(filename)),
		}
	}
}

// ParseFile picks a parser for filename and parses r.
// Failures are always returned as *domain.IngestionError naming the file.
func ParseFile(filename string, r io.Reader, opts Options) ([]domain.MaterialRecord, error) {
	parser, err := ParserFor(filename, opts)
	if err != nil {
		return nil, err
	}

	records, err := parser.Parse(r)
	if err != nil {
		var ingestErr *domain.IngestionError
		if errors.As(err, &ingestErr) && ingestErr.Source == "" {
			ingestErr.Source = filename
		}
		return nil, err
	}
	return records, nil
}

// XLSXParser reads Excel workbooks.
type XLSXParser struct {
	Layout Layout
}

// Parse reads the preferred sheet, or the first sheet when it is absent.
func (p *XLSXParser) Parse(r io.Reader) ([]domain.MaterialRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, p.fail(fmt.Errorf("open workbook: %w", err))
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, p.fail(errors.New("workbook has no sheets"))
	}

	sheet := sheets[0]
	for _, name := range sheets {
		if name == p.Layout.PreferredSheet {
			sheet = name
			break
		}
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, p.fail(fmt.Errorf("read rows from sheet %s: %w", sheet, err))
	}

	return p.Layout.Records(rows), nil
}

func (p *XLSXParser) fail(err error) error {
	return &domain.IngestionError{Layout: p.Layout.Describe(), Err: err}
}

// CSVParser reads delimited text exports of the same sheet.
type CSVParser struct {
	Layout Layout
	Comma  rune
}

// Parse reads every row; ragged rows are allowed since trailing empty cells are often trimmed.
func (p *CSVParser) Parse(r io.Reader) ([]domain.MaterialRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, p.fail(fmt.Errorf("read csv: %w", err))
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	if p.Comma != 0 {
		reader.Comma = p.Comma
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, p.fail(fmt.Errorf("parse csv: %w", err))
	}

	return p.Layout.Records(rows), nil
}

func (p *CSVParser) fail(err error) error {
	return &domain.IngestionError{Layout: p.Layout.Describe(), Err: err}
}
