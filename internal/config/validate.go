// Package config provides configuration models and helpers for covidstats.
//
// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"net/url"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "source.kind",
// "parser.options.mode"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation / linting of a Pipeline.
//
// It does not mutate the pipeline. Callers may decide whether to treat
// warnings as fatal or not.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateQuery(p.Query)...)
	issues = append(issues, validateOutput(p.Output)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	issues = append(issues, validateRuntime(p.Runtime)...)

	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	switch strings.TrimSpace(s.Kind) {
	case "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
	case "file":
		// Dir may be empty: names are then used as given.
	case "http":
		u, err := url.Parse(s.HTTP.BaseURL)
		if strings.TrimSpace(s.HTTP.BaseURL) == "" || err != nil || u.Scheme == "" || u.Host == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.http.base_url",
				Message:  fmt.Sprintf("http source requires an absolute base_url, got %q", s.HTTP.BaseURL),
			})
		}
		if s.HTTP.TimeoutSeconds < 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.http.timeout_seconds",
				Message:  "timeout_seconds must not be negative",
			})
		}
		if s.HTTP.InsecureSkipVerify {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "source.http.insecure_skip_verify",
				Message:  "TLS certificate verification is disabled",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unknown source kind %q; want file or http", s.Kind),
		})
	}
	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Kind) == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  "parser.kind must not be empty",
		})
	}
	if p.Kind != "csv" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unknown parser kind %q; only csv is supported", p.Kind),
		})
	}

	switch mode := p.Options.String("mode", "naive"); mode {
	case "naive", "quoted":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.mode",
			Message:  fmt.Sprintf("unknown csv mode %q; want naive or quoted", mode),
		})
	}
	if c := p.Options.String("comma", ","); len([]rune(c)) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.comma",
			Message:  fmt.Sprintf("comma must be a single character, got %q", c),
		})
	}
	return issues
}

func validateQuery(q Query) []Issue {
	var issues []Issue

	positive := []struct {
		path string
		v    int
	}{
		{"query.top_confirmed", q.TopConfirmed},
		{"query.active_stage", q.ActiveStage},
		{"query.confirmed_stage", q.ConfirmedStage},
	}
	for _, f := range positive {
		if f.v <= 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     f.path,
				Message:  fmt.Sprintf("must be positive, got %d", f.v),
			})
		}
	}
	if q.ConfirmedStage > q.ActiveStage && q.ActiveStage > 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "query.confirmed_stage",
			Message:  fmt.Sprintf("confirmed_stage=%d exceeds active_stage=%d; the second selection keeps everything", q.ConfirmedStage, q.ActiveStage),
		})
	}
	if q.ManyCasesThreshold < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "query.many_cases_threshold",
			Message:  "many_cases_threshold must not be negative",
		})
	}
	return issues
}

func validateOutput(o Output) []Issue {
	switch o.Format {
	case "text", "table", "json":
		return nil
	}
	return []Issue{{
		Severity: SeverityError,
		Path:     "output.format",
		Message:  fmt.Sprintf("unknown output format %q; want text, table or json", o.Format),
	}}
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none":
		return nil
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			return []Issue{{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires pushgateway_url",
			}}
		}
		return nil
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			return []Issue{{
				Severity: SeverityError,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend requires datadog_addr",
			}}
		}
		return nil
	}
	return []Issue{{
		Severity: SeverityWarning,
		Path:     "metrics.backend",
		Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be disabled", m.Backend),
	}}
}

func validateRuntime(r RuntimeConfig) []Issue {
	if r.Workers < 0 {
		return []Issue{{
			Severity: SeverityError,
			Path:     "runtime.workers",
			Message:  "workers must not be negative",
		}}
	}
	if r.Workers == 0 {
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "runtime.workers",
			Message:  "workers=0; reports will be evaluated one at a time",
		}}
	}
	return nil
}
