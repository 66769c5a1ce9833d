// Package config defines the JSON-serializable configuration model for a
// covidstats run: where the daily report comes from, how it is parsed, the
// query parameters, output and metrics.
//
// Example (trimmed):
//
//	{
//	  "job":    "daily-report",
//	  "source": { "kind": "http", "http": { "base_url": "https://raw.githubusercontent.com/..." } },
//	  "parser": { "kind": "csv", "options": { "mode": "quoted" } },
//	  "query":  { "many_cases_threshold": 1000000 },
//	  "output": { "format": "table" }
//	}
//
// Fields left out of a file keep the values from Default.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"covidstats/internal/aggregate"
)

// DefaultReportsURL is the directory of the JHU CSSE daily reports.
const DefaultReportsURL = "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/csse_covid_19_daily_reports"

// DefaultNoDataMessage replaces results that could not be computed.
const DefaultNoDataMessage = "<<insufficient valid data for this computation>>"

// Pipeline describes a full run. It is the top-level object decoded from a
// pipeline file.
type Pipeline struct {
	// Job names the run for logs and metrics.
	Job string `json:"job"`

	// Source describes where report bytes come from.
	Source Source `json:"source"`

	// Parser configures how report bytes are split into rows.
	Parser Parser `json:"parser"`

	Query   Query         `json:"query"`
	Output  Output        `json:"output"`
	Metrics Metrics       `json:"metrics"`
	Runtime RuntimeConfig `json:"runtime"`
}

// Source identifies the data source kind.
type Source struct {
	// Kind selects the source implementation: "file" or "http".
	Kind string `json:"kind"`

	File SourceFile `json:"file"`
	HTTP SourceHTTP `json:"http"`
}

// SourceFile holds configuration for the "file" source kind. Report names
// given on the command line are resolved relative to Dir.
type SourceFile struct {
	Dir string `json:"dir"`
}

// SourceHTTP holds configuration for the "http" source kind.
type SourceHTTP struct {
	// BaseURL is the directory URL that report names are appended to.
	BaseURL string `json:"base_url"`

	TimeoutSeconds     int  `json:"timeout_seconds"`
	InsecureSkipVerify bool `json:"insecure_skip_verify"`
}

// Parser selects how to parse the raw source.
type Parser struct {
	// Kind selects the parser implementation. Current value: "csv".
	Kind string `json:"kind"`

	// Options is interpreted by the parser. For CSV:
	//   comma (string), mode ("naive"|"quoted"), trim_space (bool)
	Options Options `json:"options"`
}

// Query holds the parameters of the report statistics.
type Query struct {
	TopConfirmed       int   `json:"top_confirmed"`
	ManyCasesThreshold int64 `json:"many_cases_threshold"`
	ActiveStage        int   `json:"active_stage"`
	ConfirmedStage     int   `json:"confirmed_stage"`
}

// Output controls how results are rendered.
type Output struct {
	// Format is "text", "table" or "json".
	Format string `json:"format"`

	// NoDataMessage replaces values that could not be computed.
	NoDataMessage string `json:"no_data_message"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is "none", "pushgateway" or "datadog".
	Backend        string `json:"backend"`
	PushgatewayURL string `json:"pushgateway_url"`
	DatadogAddr    string `json:"datadog_addr"`
}

// RuntimeConfig controls concurrency when several reports are evaluated.
type RuntimeConfig struct {
	Workers int `json:"workers"`
}

// Default returns a pipeline that reads local files with the naive CSV
// parser and prints text output.
func Default() Pipeline {
	return Pipeline{
		Job:    "covidstats",
		Source: Source{Kind: "file", HTTP: SourceHTTP{BaseURL: DefaultReportsURL, TimeoutSeconds: 30}},
		Parser: Parser{Kind: "csv", Options: Options{}},
		Query: Query{
			TopConfirmed:       aggregate.DefaultTopConfirmed,
			ManyCasesThreshold: aggregate.DefaultManyCasesThreshold,
			ActiveStage:        aggregate.DefaultActiveStage,
			ConfirmedStage:     aggregate.DefaultConfirmedStage,
		},
		Output:  Output{Format: "text", NoDataMessage: DefaultNoDataMessage},
		Metrics: Metrics{Backend: "none"},
		Runtime: RuntimeConfig{Workers: 4},
	}
}

// Load decodes the pipeline file at path over Default.
func Load(path string) (Pipeline, error) {
	p := Default()
	f, err := os.Open(path)
	if err != nil {
		return p, fmt.Errorf("config: open: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return p, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return p, nil
}

// Options is a small helper to fetch typed values from arbitrary JSON maps.
// It performs only minimal type coercion and returns provided defaults when a
// key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// UnmarshalJSON makes a missing or null "options" object decode to a
// non-nil, empty Options map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
