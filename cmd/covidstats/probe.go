package main

import (
	"encoding/json"
	"fmt"
	"io"

	"covidstats/internal/probe"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newProbeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe <report>",
		Short: "Inspect a report header and print a starter pipeline config",
		Long: `Probe reads the first bytes of a report, detects the delimiter and
quoting, maps the header to the statistic roles and prints the result with
a suggested pipeline config as JSON. Edit the config and pass it to run
with --config.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadPipeline(v)
			if err != nil {
				return err
			}
			applyOverrides(&p, v)

			sources, err := buildSources(p, args)
			if err != nil {
				return err
			}
			rc, err := sources[0].Open(cmd.Context())
			if err != nil {
				return err
			}
			defer rc.Close()

			sample, err := io.ReadAll(io.LimitReader(rc, v.GetInt64("bytes")))
			if err != nil {
				return fmt.Errorf("probe: read sample: %w", err)
			}

			res := probe.Probe(sample, probe.Options{Job: v.GetString("job")})
			if len(res.Missing) > 0 {
				log.Warn().Strs("missing", res.Missing).Msg("header lacks roles; queries needing them report no data")
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().Int64("bytes", 20000, "number of bytes to sample from the start of the report")
	cmd.Flags().String("job", "", "job name written into the suggested config")
	cmd.Flags().String("source", "", "report source: file or http")
	cmd.Flags().String("dir", "", "directory file reports are resolved against")
	cmd.Flags().String("base-url", "", "base URL for the http source")
	return cmd
}
