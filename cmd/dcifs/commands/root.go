// Package commands implements the dcifs command-line client.
package commands

import (
	"os"

	configcmd "github.com/marmos91/dittocifs/cmd/dcifs/commands/config"
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Flags holds the global flag values shared by subcommands.
var Flags struct {
	ConfigFile string
	Capture    string
	TreeID     uint16
	Output     string
	NoColor    bool
	LogLevel   string
	Metrics    bool
	Cache      bool
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dcifs",
	Short: "dcifs - SMB1 TRANS2 directory and metadata client",
	Long: `dcifs lists directories and queries file metadata with SMB1 TRANS2
transactions (FIND_FIRST2/FIND_NEXT2, QUERY_PATH_INFORMATION) and the legacy
QUERY_INFORMATION fallback.

Requests run over a session recorded in a YAML capture file, so server
behaviour can be inspected offline.

Use "dcifs [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&Flags.ConfigFile, "config", "", "config file (default: $XDG_CONFIG_HOME/dcifs/config.yaml)")
	pf.StringVar(&Flags.Capture, "capture", "", "YAML capture file replayed as the server session")
	pf.Uint16Var(&Flags.TreeID, "tid", 1, "Tree id of the connected share")
	pf.StringVarP(&Flags.Output, "output", "o", "table", "Output format (table|json|yaml)")
	pf.BoolVar(&Flags.NoColor, "no-color", false, "Disable colored output")
	pf.StringVar(&Flags.LogLevel, "log-level", "", "Override the configured log level")
	pf.BoolVar(&Flags.Metrics, "metrics", false, "Collect metrics and print them on exit")
	pf.BoolVar(&Flags.Cache, "cache", false, "Serve repeated lookups from the stat cache")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configcmd.Cmd)
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
