package config

import (
	"fmt"

	"github.com/marmos91/dittocifs/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample dcifs configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/dcifs/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  dcifs config init

  # Force overwrite existing config
  dcifs config init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	var err error
	if configPath != "" {
		err = config.InitConfigToPath(configPath, initForce)
	} else {
		configPath, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file created at: %s\n", configPath)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Edit the client section to match your server")
	_, _ = fmt.Fprintf(out, "  2. List a share: dcifs ls --config %s --capture <file>\n", configPath)
	return nil
}
