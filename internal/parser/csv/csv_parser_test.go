package csv_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pcsv "covidstats/internal/parser/csv"
)

func TestParseSample(t *testing.T) {
	path := filepath.Join("..", "..", "..", "testdata", "daily_report.csv")
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })

	tbl, err := pcsv.NewParser(pcsv.Options{}).Parse(f)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got, want := len(tbl.Rows), 14; got != want {
		t.Fatalf("len=%d want=%d", got, want)
	}
	if got := tbl.Header[3]; got != "Country_Region" {
		t.Fatalf("header[3]=%q want Country_Region", got)
	}
	if got := tbl.Rows[1][2]; got != "New South Wales" {
		t.Fatalf("rows[1][2]=%q want New South Wales", got)
	}
}

func TestParseNaive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		in         string
		wantHeader []string
		wantRows   [][]string
	}{
		{
			name:       "crlf and trailing newline",
			in:         "country,confirmed\r\nPeru,10\r\nChile,20\r\n",
			wantHeader: []string{"country", "confirmed"},
			wantRows:   [][]string{{"Peru", "10"}, {"Chile", "20"}},
		},
		{
			name:       "blank lines are skipped",
			in:         "\ncountry\n\nPeru\n\n",
			wantHeader: []string{"country"},
			wantRows:   [][]string{{"Peru"}},
		},
		{
			name:       "quotes are not interpreted",
			in:         "country,key\nUS,\"Los Angeles, California\"\n",
			wantHeader: []string{"country", "key"},
			wantRows:   [][]string{{"US", "\"Los Angeles", " California\""}},
		},
		{
			name:       "cells are kept verbatim",
			in:         "country, confirmed\n Peru , 10\n",
			wantHeader: []string{"country", " confirmed"},
			wantRows:   [][]string{{" Peru ", " 10"}},
		},
		{
			name:       "bom is stripped",
			in:         "\uFEFFcountry\nPeru\n",
			wantHeader: []string{"country"},
			wantRows:   [][]string{{"Peru"}},
		},
		{
			name:       "header only",
			in:         "country,confirmed",
			wantHeader: []string{"country", "confirmed"},
		},
		{
			name: "empty input",
			in:   "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tbl, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.wantHeader, tbl.Header)
			assert.Equal(t, tt.wantRows, tbl.Rows)
			assert.Zero(t, tbl.Skipped)
		})
	}
}

func TestParseOptions(t *testing.T) {
	t.Parallel()

	tbl, err := pcsv.NewParser(pcsv.Options{Comma: ';', TrimSpace: true}).
		Parse(strings.NewReader("country ; confirmed\n Peru ; 10 \n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"country", "confirmed"}, tbl.Header)
	assert.Equal(t, [][]string{{"Peru", "10"}}, tbl.Rows)
}

func TestParseQuoted(t *testing.T) {
	t.Parallel()

	in := "country,key,confirmed\nUS,\"Los Angeles, California, US\",10\nPeru,Lima,5\n"
	tbl, err := pcsv.NewParser(pcsv.Options{Mode: pcsv.ModeQuoted}).Parse(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"country", "key", "confirmed"}, tbl.Header)
	assert.Equal(t, [][]string{
		{"US", "Los Angeles, California, US", "10"},
		{"Peru", "Lima", "5"},
	}, tbl.Rows)
}

func TestParseUnknownMode(t *testing.T) {
	t.Parallel()

	_, err := pcsv.NewParser(pcsv.Options{Mode: "fixed"}).Parse(strings.NewReader("a\n"))
	assert.Error(t, err)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestParseReadError(t *testing.T) {
	t.Parallel()

	_, err := pcsv.NewParser(pcsv.Options{}).Parse(failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}
