package main

import (
	"io"
	"os"
	"strings"

	"covidstats/internal/config"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix is prepended to flag names to form environment variables, e.g.
// COVIDSTATS_LOG_LEVEL, COVIDSTATS_METRICS_BACKEND.
const envPrefix = "COVIDSTATS"

// newRootCmd builds the command tree. Each call gets its own viper instance.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "covidstats",
		Short: "Statistics over JHU CSSE daily COVID-19 reports",
		Long: `covidstats reads a daily report (one row per location), merges rows per
country and prints:

  1) the three countries with most confirmed cases
  2) the death sum of the most-confirmed among the most-active countries
  3) the southern hemisphere country with most deaths
  4) the northern hemisphere country with most deaths
  5) the active cases of countries with at least a million confirmed`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			v.SetEnvPrefix(envPrefix)
			v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			v.AutomaticEnv()
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			initLogging(v, stderr)
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().String("config", "", "pipeline config JSON path (defaults are used when empty)")
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error, disabled)")

	root.AddCommand(newRunCmd(v), newValidateCmd(v), newProbeCmd(v))
	return root
}

// initLogging configures the global zerolog logger. Logs go to stderr so
// they never mix with report output.
func initLogging(v *viper.Viper, stderr io.Writer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	switch v.GetString("log-level") {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.Disabled)
	}

	if f, ok := stderr.(*os.File); ok && isTerminal(f) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: stderr})
		return
	}
	log.Logger = zerolog.New(stderr).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// loadPipeline returns the pipeline from --config, or the defaults.
func loadPipeline(v *viper.Viper) (config.Pipeline, error) {
	path := v.GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
