package config

import (
	"fmt"

	"github.com/marmos91/dittocifs/pkg/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the dcifs configuration file.

Checks for syntax errors and invalid values.

Examples:
  # Validate default config
  dcifs config validate

  # Validate specific config file
  dcifs config validate --config /etc/dcifs/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	var warnings []string
	if cfg.Client.Reassembly == "sequential" {
		warnings = append(warnings, "sequential reassembly ignores DataDisplacement; out-of-order frames will be misplaced")
	}
	if cfg.Cache.Enabled && cfg.Cache.Dir == "" {
		warnings = append(warnings, "cache is enabled without a directory and will not survive restarts")
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  Log level:         %s\n", cfg.Logging.Level)
	_, _ = fmt.Fprintf(out, "  Reassembly:        %s\n", cfg.Client.Reassembly)
	_, _ = fmt.Fprintf(out, "  Max transaction:   %s\n", cfg.Client.MaxTransactionSize)
	_, _ = fmt.Fprintf(out, "  Cache:             %t\n", cfg.Cache.Enabled)

	return nil
}
