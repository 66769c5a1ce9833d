// Package csv turns report text into a header row and data rows. The whole
// input is held in memory; daily reports are a few hundred kilobytes.
//
// Two modes are available:
//
//   - naive (default): every line is split on the delimiter with no notion
//     of quoting, matching the layout the report tooling has always assumed.
//   - quoted: encoding/csv in lenient mode, for files whose cells contain
//     quoted delimiters (e.g. "Los Angeles, California, US").
package csv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Mode selects how lines are split into cells.
type Mode string

const (
	ModeNaive  Mode = "naive"
	ModeQuoted Mode = "quoted"
)

// Options configures the parser. The zero value splits on ',' in naive mode
// and keeps cells verbatim.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// Mode selects naive or quoted splitting. Empty means naive.
	Mode Mode

	// TrimSpace trims leading/trailing white space from each cell.
	TrimSpace bool
}

// Table is a parsed report: the header row and the data rows after it.
type Table struct {
	Header []string
	Rows   [][]string

	// Skipped counts rows the quoted reader could not parse. Naive mode never
	// skips rows.
	Skipped int
}

// Parser parses report text according to Options. It is safe to reuse
// across inputs.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	if opt.Comma == 0 {
		opt.Comma = ','
	}
	if opt.Mode == "" {
		opt.Mode = ModeNaive
	}
	return &Parser{opt: opt}
}

// Parse reads all of r and splits it into a Table. Blank lines are skipped
// and a UTF-8 BOM on the first header cell is removed. An empty input yields
// an empty Table.
func (p *Parser) Parse(r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("read csv: %w", err)
	}
	switch p.opt.Mode {
	case ModeNaive:
		return p.parseNaive(string(data)), nil
	case ModeQuoted:
		return p.parseQuoted(data)
	default:
		return Table{}, fmt.Errorf("csv: unknown mode %q", p.opt.Mode)
	}
}

func (p *Parser) parseNaive(text string) Table {
	var t Table
	sep := string(p.opt.Comma)
	first := true
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		cells := p.clean(strings.Split(line, sep))
		if first {
			t.Header = StripHeaderBOM(cells)
			first = false
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func (p *Parser) parseQuoted(data []byte) (Table, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = p.opt.Comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	var t Table
	first := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				// Soft-fail this row and continue.
				t.Skipped++
				continue
			}
			return Table{}, fmt.Errorf("read csv: %w", err)
		}
		cells := p.clean(row)
		if first {
			t.Header = StripHeaderBOM(cells)
			first = false
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

func (p *Parser) clean(cells []string) []string {
	if !p.opt.TrimSpace {
		return cells
	}
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}
