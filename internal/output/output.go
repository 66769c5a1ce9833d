// Package output renders pipeline results as the five numbered answer lines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"covidstats/internal/config"
	"covidstats/internal/pipeline"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// Format selects the renderer.
type Format string

const (
	FormatText  Format = "text"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// Line is one numbered answer. Value already holds the no-data message when
// NoData is set.
type Line struct {
	N      int    `json:"n"`
	Label  string `json:"label"`
	Value  string `json:"value"`
	NoData bool   `json:"no_data,omitempty"`
}

// Lines turns res into the five answers in their fixed order. Empty names
// and sums without qualifying records are replaced by noData.
func Lines(res pipeline.Results, noData string) []Line {
	if noData == "" {
		noData = config.DefaultNoDataMessage
	}
	sum := func(s pipeline.Sum) string {
		if !s.OK {
			return ""
		}
		return strconv.FormatInt(s.Value, 10)
	}
	raw := []struct{ label, value string }{
		{"most confirmed", strings.Join(res.MostConfirmed, ", ")},
		{"death sum", sum(res.DeathSum)},
		{"southern hemisphere", res.Hemispheres.Southern},
		{"northern hemisphere", res.Hemispheres.Northern},
		{"active sum", sum(res.ActiveSum)},
	}
	out := make([]Line, len(raw))
	for i, r := range raw {
		out[i] = Line{N: i + 1, Label: r.label, Value: r.value}
		if r.value == "" {
			out[i].Value = noData
			out[i].NoData = true
		}
	}
	return out
}

// Options configures a Writer.
type Options struct {
	Format Format
	NoData string
	// Color enables ANSI colors in text and table headings.
	Color bool
}

// Writer renders results to an io.Writer.
type Writer struct {
	w      io.Writer
	opt    Options
	number *color.Color
	muted  *color.Color
	title  *color.Color
}

// NewWriter returns a Writer for opt.Format. An empty format means text.
func NewWriter(w io.Writer, opt Options) (*Writer, error) {
	switch opt.Format {
	case "":
		opt.Format = FormatText
	case FormatText, FormatTable, FormatJSON:
	default:
		return nil, fmt.Errorf("output: unknown format %q", opt.Format)
	}
	wr := &Writer{
		w:      w,
		opt:    opt,
		number: color.New(color.Bold),
		muted:  color.New(color.FgYellow),
		title:  color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{wr.number, wr.muted, wr.title} {
		if opt.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return wr, nil
}

// Write renders every result in order. Text and table output label each
// block with its source when more than one report is written.
func (w *Writer) Write(results ...pipeline.Results) error {
	switch w.opt.Format {
	case FormatJSON:
		return w.writeJSON(results)
	case FormatTable:
		for _, res := range results {
			if err := w.writeTable(res, len(results) > 1); err != nil {
				return err
			}
		}
	default:
		for i, res := range results {
			if err := w.writeText(res, len(results) > 1, i > 0); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Writer) writeText(res pipeline.Results, heading, gap bool) error {
	if gap {
		if _, err := fmt.Fprintln(w.w); err != nil {
			return err
		}
	}
	if heading {
		if _, err := w.title.Fprintf(w.w, "== %s ==\n", res.Source); err != nil {
			return err
		}
	}
	for _, l := range Lines(res, w.opt.NoData) {
		value := l.Value
		if l.NoData {
			value = w.muted.Sprint(value)
		}
		if _, err := fmt.Fprintf(w.w, "%s %s\n", w.number.Sprintf("%d)", l.N), value); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeTable(res pipeline.Results, heading bool) error {
	if heading {
		if _, err := w.title.Fprintf(w.w, "\n%s\n", res.Source); err != nil {
			return err
		}
	}
	table := tablewriter.NewWriter(w.w)
	table.SetHeader([]string{"#", "Statistic", "Value"})
	table.SetAutoWrapText(false)
	for _, l := range Lines(res, w.opt.NoData) {
		table.Append([]string{strconv.Itoa(l.N), l.Label, l.Value})
	}
	table.Render()
	return nil
}

type jsonReport struct {
	Source string `json:"source,omitempty"`
	Digest string `json:"digest"`
	Lines  []Line `json:"lines"`
	pipeline.Stats
}

func (w *Writer) writeJSON(results []pipeline.Results) error {
	out := make([]jsonReport, len(results))
	for i, res := range results {
		out[i] = jsonReport{
			Source: res.Source,
			Digest: fmt.Sprintf("%016x", res.Digest),
			Lines:  Lines(res, w.opt.NoData),
			Stats:  res.Stats,
		}
	}
	enc := json.NewEncoder(w.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("output: encode json: %w", err)
	}
	return nil
}
