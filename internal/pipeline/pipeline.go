// Package pipeline evaluates one daily report end to end:
//
//	read -> parse -> map fields -> normalize -> merge -> filter -> query
//
// Each stage is timed and reported through the metrics package. The core
// stages never fail; only reading and quoted-mode parsing can return errors.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"covidstats/internal/aggregate"
	"covidstats/internal/config"
	"covidstats/internal/datasource"
	"covidstats/internal/metrics"
	pcsv "covidstats/internal/parser/csv"
	"covidstats/internal/report"

	"github.com/rs/zerolog/log"
	"github.com/zeebo/xxh3"
)

// Query names, used as keys in Stats.Dropped and in log fields.
const (
	QueryMostConfirmed = "most_confirmed"
	QueryDeathSum      = "death_sum"
	QueryHemispheres   = "hemispheres"
	QueryActiveSum     = "active_sum"
)

// Config parameterizes a run. Zero numeric fields fall back to the
// aggregate package defaults.
type Config struct {
	Job    string
	Parser pcsv.Options

	TopConfirmed       int
	ManyCasesThreshold int64
	ActiveStage        int
	ConfirmedStage     int
}

// ConfigFrom extracts the run parameters from a pipeline file.
func ConfigFrom(p config.Pipeline) Config {
	return Config{
		Job: p.Job,
		Parser: pcsv.Options{
			Comma:     p.Parser.Options.Rune("comma", ','),
			Mode:      pcsv.Mode(p.Parser.Options.String("mode", string(pcsv.ModeNaive))),
			TrimSpace: p.Parser.Options.Bool("trim_space", false),
		},
		TopConfirmed:       p.Query.TopConfirmed,
		ManyCasesThreshold: p.Query.ManyCasesThreshold,
		ActiveStage:        p.Query.ActiveStage,
		ConfirmedStage:     p.Query.ConfirmedStage,
	}
}

func (c Config) withDefaults() Config {
	if c.Job == "" {
		c.Job = "covidstats"
	}
	if c.TopConfirmed <= 0 {
		c.TopConfirmed = aggregate.DefaultTopConfirmed
	}
	if c.ManyCasesThreshold <= 0 {
		c.ManyCasesThreshold = aggregate.DefaultManyCasesThreshold
	}
	if c.ActiveStage <= 0 {
		c.ActiveStage = aggregate.DefaultActiveStage
	}
	if c.ConfirmedStage <= 0 {
		c.ConfirmedStage = aggregate.DefaultConfirmedStage
	}
	return c
}

// Sum is an aggregate total. OK is false when no record qualified.
type Sum struct {
	Value int64 `json:"value"`
	OK    bool  `json:"ok"`
}

// Stats counts what flowed through the stages.
type Stats struct {
	Rows    int            `json:"rows"`
	Skipped int            `json:"skipped"`
	Records int            `json:"records"`
	Dropped map[string]int `json:"dropped"`
}

// Results are the five answers for one report plus bookkeeping.
type Results struct {
	Source        string                `json:"source"`
	MostConfirmed []string              `json:"most_confirmed"`
	DeathSum      Sum                   `json:"death_sum"`
	Hemispheres   aggregate.Hemispheres `json:"hemispheres"`
	ActiveSum     Sum                   `json:"active_sum"`

	// Digest is the xxh3 hash of the raw report bytes.
	Digest uint64 `json:"digest"`
	Stats  Stats  `json:"stats"`
}

// Run reads src and evaluates it. The report is read fully before parsing.
func Run(ctx context.Context, src datasource.Source, cfg Config) (Results, error) {
	cfg = cfg.withDefaults()

	start := time.Now()
	data, err := read(ctx, src)
	metrics.RecordStep(cfg.Job, "read", err, time.Since(start))
	if err != nil {
		return Results{}, err
	}
	log.Debug().
		Str("job", cfg.Job).
		Str("step", "read").
		Str("source", src.Name()).
		Int("bytes", len(data)).
		Msg("report read")

	res, err := Evaluate(data, cfg)
	if err != nil {
		return Results{}, fmt.Errorf("%s: %w", src.Name(), err)
	}
	res.Source = src.Name()
	return res, nil
}

func read(ctx context.Context, src datasource.Source) ([]byte, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Name(), err)
	}
	return data, nil
}

// Evaluate runs every stage after reading over the raw report bytes.
func Evaluate(data []byte, cfg Config) (Results, error) {
	cfg = cfg.withDefaults()
	job := cfg.Job

	start := time.Now()
	tbl, err := pcsv.NewParser(cfg.Parser).Parse(bytes.NewReader(data))
	metrics.RecordStep(job, "parse", err, time.Since(start))
	if err != nil {
		return Results{}, fmt.Errorf("parse: %w", err)
	}
	metrics.RecordRow(job, "parsed", int64(len(tbl.Rows)))
	metrics.RecordRow(job, "skipped", int64(tbl.Skipped))

	start = time.Now()
	idx := report.MapFields(tbl.Header)
	rows := report.Normalize(tbl.Rows, idx)
	metrics.RecordStep(job, "normalize", nil, time.Since(start))
	log.Debug().
		Str("job", job).
		Str("step", "normalize").
		Int("rows", len(rows)).
		Int("skipped", tbl.Skipped).
		Stringer("roles", rolesField(idx.Roles())).
		Msg("rows normalized")

	start = time.Now()
	recs := report.Merge(rows)
	metrics.RecordStep(job, "merge", nil, time.Since(start))
	metrics.RecordRow(job, "records", int64(len(recs)))
	log.Debug().
		Str("job", job).
		Str("step", "merge").
		Int("rows", len(rows)).
		Int("records", len(recs)).
		Msg("rows merged")

	start = time.Now()
	res := Results{
		Digest: xxh3.Hash(data),
		Stats: Stats{
			Rows:    len(tbl.Rows),
			Skipped: tbl.Skipped,
			Records: len(recs),
			Dropped: make(map[string]int, 4),
		},
	}
	filter := func(query string, req report.Requirements) []report.Record {
		valid := report.FilterValid(recs, req, func(r report.Rejected) {
			log.Debug().
				Str("job", job).
				Str("query", query).
				Str("country", r.Record.Country).
				Str("field", r.Role.String()).
				Msg(r.Reason)
		})
		dropped := len(recs) - len(valid)
		res.Stats.Dropped[query] = dropped
		metrics.RecordRow(job, "dropped", int64(dropped))
		return valid
	}

	res.MostConfirmed = aggregate.MostConfirmed(
		filter(QueryMostConfirmed, aggregate.MostConfirmedRequirements), cfg.TopConfirmed)
	res.DeathSum.Value, res.DeathSum.OK = aggregate.DeathSum(
		filter(QueryDeathSum, aggregate.DeathSumRequirements), cfg.ActiveStage, cfg.ConfirmedStage)
	res.Hemispheres = aggregate.MostDeathsByHemisphere(
		filter(QueryHemispheres, aggregate.HemisphereRequirements))
	res.ActiveSum.Value, res.ActiveSum.OK = aggregate.SumActiveForManyCases(
		filter(QueryActiveSum, aggregate.ActiveSumRequirements), cfg.ManyCasesThreshold)
	metrics.RecordStep(job, "query", nil, time.Since(start))

	log.Debug().
		Str("job", job).
		Str("step", "query").
		Int("records", len(recs)).
		Interface("dropped", res.Stats.Dropped).
		Str("digest", fmt.Sprintf("%016x", res.Digest)).
		Msg("queries evaluated")
	return res, nil
}

// rolesField renders the roles a header provided, for logging.
type rolesField report.RoleSet

func (s rolesField) String() string {
	var b []byte
	for _, r := range report.AllRoles() {
		if !report.RoleSet(s).Has(r) {
			continue
		}
		if len(b) > 0 {
			b = append(b, ',')
		}
		b = append(b, r.String()...)
	}
	return string(b)
}
