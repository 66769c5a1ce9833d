package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"covidstats/internal/config"
	"covidstats/internal/datasource"
	"covidstats/internal/datasource/file"
	"covidstats/internal/datasource/httpds"
	"covidstats/internal/metrics"
	"covidstats/internal/output"
	"covidstats/internal/pipeline"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var errWrongArgs = errors.New("expected at least one CSV file name, e.g. covidstats run 02-17-2022.csv")

func newRunCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [reports...]",
		Short: "Evaluate one or more daily reports",
		Long: `Evaluate daily reports and print the five statistics for each.

With the file source (default) arguments are paths, resolved against
--dir when set. With the http source arguments are report names in the
MM-DD-YYYY.csv form, fetched from --base-url.

Examples:
  covidstats run 02-17-2022.csv
  covidstats run --format table --dir ./reports 02-17-2022.csv 02-18-2022.csv
  covidstats run --source http --list february.txt`,
		Args: func(cmd *cobra.Command, args []string) error {
			list, _ := cmd.Flags().GetString("list")
			if len(args) == 0 && list == "" {
				return errWrongArgs
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReports(cmd, v, args)
		},
	}

	f := cmd.Flags()
	f.String("list", "", "file with one report name per line ('#' comments allowed)")
	f.String("job", "", "job name for logs and metrics")
	f.String("source", "", "report source: file or http")
	f.String("dir", "", "directory file reports are resolved against")
	f.String("base-url", "", "base URL for the http source")
	f.String("mode", "", "CSV split mode: naive or quoted")
	f.String("format", "", "output format: text, table or json")
	f.Int("workers", 0, "reports evaluated concurrently")
	f.String("metrics-backend", "", "metrics backend: none, pushgateway or datadog")
	f.String("pushgateway-url", "", "Pushgateway base URL")
	f.String("datadog-addr", "", "DogStatsD address")
	return cmd
}

// applyOverrides layers flags and COVIDSTATS_* environment variables over p.
// Only values that were explicitly set replace the pipeline's.
func applyOverrides(p *config.Pipeline, v *viper.Viper) {
	setString := func(key string, dst *string) {
		if v.IsSet(key) && v.GetString(key) != "" {
			*dst = v.GetString(key)
		}
	}
	setString("job", &p.Job)
	setString("source", &p.Source.Kind)
	setString("dir", &p.Source.File.Dir)
	setString("base-url", &p.Source.HTTP.BaseURL)
	setString("format", &p.Output.Format)
	setString("metrics-backend", &p.Metrics.Backend)
	setString("pushgateway-url", &p.Metrics.PushgatewayURL)
	setString("datadog-addr", &p.Metrics.DatadogAddr)
	if v.IsSet("mode") && v.GetString("mode") != "" {
		if p.Parser.Options == nil {
			p.Parser.Options = config.Options{}
		}
		p.Parser.Options["mode"] = v.GetString("mode")
	}
	if v.IsSet("workers") && v.GetInt("workers") > 0 {
		p.Runtime.Workers = v.GetInt("workers")
	}
}

func runReports(cmd *cobra.Command, v *viper.Viper, args []string) error {
	p, err := loadPipeline(v)
	if err != nil {
		return err
	}
	applyOverrides(&p, v)

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		log.Warn().Str("path", iss.Path).Str("severity", string(iss.Severity)).Msg(iss.Message)
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("invalid configuration: %w", firstError(issues))
	}

	names := args
	if list := v.GetString("list"); list != "" {
		listed, err := file.ReadList(list)
		if err != nil {
			return err
		}
		names = append(append([]string(nil), args...), listed...)
	}
	if len(names) == 0 {
		return errWrongArgs
	}

	sources, err := buildSources(p, names)
	if err != nil {
		return err
	}

	out, err := output.NewWriter(cmd.OutOrStdout(), output.Options{
		Format: output.Format(p.Output.Format),
		NoData: p.Output.NoDataMessage,
		Color:  cmd.OutOrStdout() == os.Stdout && !color.NoColor,
	})
	if err != nil {
		return err
	}

	flush := setupMetrics(p)
	defer flush()

	results, err := evaluate(cmd, p, sources)
	if err != nil {
		return err
	}
	return out.Write(results...)
}

// evaluate runs one pipeline per source, at most p.Runtime.Workers at a
// time. Results keep the order of sources.
func evaluate(cmd *cobra.Command, p config.Pipeline, sources []datasource.Source) ([]pipeline.Results, error) {
	cfg := pipeline.ConfigFrom(p)
	workers := p.Runtime.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make([]pipeline.Results, len(sources))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(workers)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			start := time.Now()
			res, err := pipeline.Run(ctx, src, cfg)
			metrics.RecordReport(cfg.Job, err)
			if err != nil {
				if errors.Is(err, datasource.ErrNotFound) {
					return fmt.Errorf("input file not found: %s", src.Name())
				}
				return err
			}
			log.Info().
				Str("job", cfg.Job).
				Str("source", src.Name()).
				Dur("elapsed", time.Since(start)).
				Msg("report evaluated")
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// buildSources turns report arguments into sources for p.Source.Kind.
func buildSources(p config.Pipeline, names []string) ([]datasource.Source, error) {
	out := make([]datasource.Source, 0, len(names))
	switch p.Source.Kind {
	case "http":
		client := httpds.NewClient(httpds.Config{
			Timeout:            time.Duration(p.Source.HTTP.TimeoutSeconds) * time.Second,
			InsecureSkipVerify: p.Source.HTTP.InsecureSkipVerify,
		})
		for _, name := range names {
			rep, err := httpds.NewReport(client, p.Source.HTTP.BaseURL, name)
			if err != nil {
				return nil, err
			}
			out = append(out, rep)
		}
	default:
		for _, name := range names {
			path := name
			if p.Source.File.Dir != "" && !filepath.IsAbs(name) {
				path = filepath.Join(p.Source.File.Dir, name)
			}
			out = append(out, file.NewLocal(path))
		}
	}
	return out, nil
}

func firstError(issues []config.Issue) error {
	for _, iss := range issues {
		if iss.Severity == config.SeverityError {
			return iss
		}
	}
	return nil
}
