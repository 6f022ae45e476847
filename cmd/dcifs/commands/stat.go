package commands

import (
	"github.com/marmos91/dittocifs/pkg/trans2"
	"github.com/spf13/cobra"
)

var statVariant string

var statCmd = &cobra.Command{
	Use:   "stat <path>",
	Short: "Show file metadata",
	Long: `Show the metadata of a single path.

By default the Basic and Standard info levels are merged (falling back to
QUERY_INFORMATION on servers without NT SMBs). --variant runs one query
instead: basic, standard or legacy.

Examples:
  # Full metadata
  dcifs stat '\docs\report.txt' --capture stat.yaml

  # Only the legacy QUERY_INFORMATION result, as YAML
  dcifs stat '\docs\report.txt' --variant legacy --capture legacy.yaml -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runStat,
}

func init() {
	statCmd.Flags().StringVar(&statVariant, "variant", "", "Single query variant (basic|standard|legacy)")
}

func runStat(cmd *cobra.Command, args []string) error {
	path := args[0]

	var variant trans2.Variant
	if statVariant != "" {
		v, err := trans2.ParseVariant(statVariant)
		if err != nil {
			return err
		}
		variant = v
	}

	ctx := cmd.Context()
	rt, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	var rec *trans2.FileRecord
	if variant == 0 {
		rec, err = rt.lookups.Fstat(ctx, path)
	} else {
		rec, err = rt.client.QueryPathInfo(ctx, path, variant)
	}
	if err != nil {
		return err
	}
	return printRecord(rt.printer, rec)
}
