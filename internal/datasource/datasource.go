// Package datasource defines where report bytes come from. Implementations
// live in subpackages: file (local disk) and httpds (HTTP).
package datasource

import (
	"context"
	"errors"
	"io"
	"regexp"
)

// ErrNotFound is returned (wrapped) by sources when the requested report
// does not exist.
var ErrNotFound = errors.New("report not found")

// Source opens one report for reading.
type Source interface {
	// Open returns the report contents. The caller must close it.
	Open(ctx context.Context) (io.ReadCloser, error)

	// Name identifies the report in logs and output.
	Name() string
}

// reportName matches the daily report naming scheme, e.g. 02-17-2022.csv.
var reportName = regexp.MustCompile(`^(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])-\d{4}\.csv$`)

// IsReportName reports whether name follows the MM-DD-YYYY.csv scheme used
// by the published daily reports.
func IsReportName(name string) bool {
	return reportName.MatchString(name)
}
