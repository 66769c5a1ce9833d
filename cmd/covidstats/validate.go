package main

import (
	"errors"
	"fmt"

	"covidstats/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newValidateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a pipeline config file and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := v.GetString("config")
			if path == "" {
				return errors.New("validate: --config is required")
			}
			p, err := config.Load(path)
			if err != nil {
				return err
			}

			issues := config.ValidatePipeline(p)
			for _, iss := range issues {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
			}
			if config.HasErrors(issues) {
				return fmt.Errorf("configuration is invalid: %s", path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration is valid: %s\n", path)
			return nil
		},
	}
}
