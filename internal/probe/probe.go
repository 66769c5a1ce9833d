// Package probe inspects the start of a report and suggests a pipeline
// config for it: the delimiter, whether quoted splitting is needed and
// which statistic roles the header provides.
package probe

import (
	"bytes"
	"strings"

	"covidstats/internal/config"
	pcsv "covidstats/internal/parser/csv"
	"covidstats/internal/report"
)

// candidates are the delimiters considered, in tie-break order.
var candidates = []rune{',', ';', '\t', '|'}

// Options configures Probe.
type Options struct {
	// Job is written into the suggested pipeline. Empty keeps the default.
	Job string
}

// Result is what Probe learned from a sample.
type Result struct {
	Header []string `json:"header"`

	// Columns maps each role found to its column index.
	Columns map[string]int `json:"columns"`

	// Missing lists roles no header matched. Queries that need them
	// report no data.
	Missing []string `json:"missing"`

	Pipeline config.Pipeline `json:"pipeline"`
}

// Probe analyzes sample, typically the first few kilobytes of a report.
// A trailing partial line is ignored. An empty sample yields a Result with
// every role missing.
func Probe(sample []byte, opt Options) Result {
	if i := bytes.LastIndexByte(sample, '\n'); i > 0 {
		sample = sample[:i+1]
	}
	headerLine := firstLine(sample)
	comma := DetectComma(headerLine)
	quoted := bytes.IndexByte(sample, '"') >= 0

	mode := pcsv.ModeNaive
	if quoted {
		mode = pcsv.ModeQuoted
	}
	tbl, err := pcsv.NewParser(pcsv.Options{Comma: comma, Mode: mode, TrimSpace: true}).Parse(bytes.NewReader(sample))
	if err != nil {
		tbl = pcsv.Table{}
	}

	res := Result{
		Header:   tbl.Header,
		Columns:  map[string]int{},
		Missing:  []string{},
		Pipeline: config.Default(),
	}
	idx := report.MapFields(tbl.Header)
	for _, r := range report.AllRoles() {
		if i, ok := idx[r]; ok {
			res.Columns[r.String()] = i
		} else {
			res.Missing = append(res.Missing, r.String())
		}
	}

	if opt.Job != "" {
		res.Pipeline.Job = opt.Job
	}
	if comma != ',' {
		res.Pipeline.Parser.Options["comma"] = string(comma)
	}
	if quoted {
		res.Pipeline.Parser.Options["mode"] = string(pcsv.ModeQuoted)
	}
	return res
}

// DetectComma returns the candidate delimiter that occurs most often in
// line, or ',' when none occurs.
func DetectComma(line string) rune {
	best, bestN := ',', 0
	for _, c := range candidates {
		if n := strings.Count(line, string(c)); n > bestN {
			best, bestN = c, n
		}
	}
	return best
}

func firstLine(sample []byte) string {
	for _, line := range strings.Split(string(sample), "\n") {
		if line = strings.TrimRight(line, "\r"); line != "" {
			return line
		}
	}
	return ""
}
