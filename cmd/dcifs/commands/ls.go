package commands

import (
	"github.com/marmos91/dittocifs/internal/cli/output"
	"github.com/marmos91/dittocifs/internal/logger"
	"github.com/spf13/cobra"
)

const defaultPattern = `\*`

var lsCmd = &cobra.Command{
	Use:   "ls [pattern]",
	Short: "List a directory",
	Long: `List the entries matching a search pattern with FIND_FIRST2 and
FIND_NEXT2, following continuation pages until the server reports the end
of the search.

The pattern is a server path with wildcards, for example \docs\*.txt.
Without a pattern the share root is listed.

Examples:
  # List the share root from a capture
  dcifs ls --capture root.yaml

  # List a subdirectory as JSON
  dcifs ls '\docs\*' --capture docs.yaml -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

func runLs(cmd *cobra.Command, args []string) error {
	pattern := defaultPattern
	if len(args) == 1 {
		pattern = args[0]
	}

	ctx := cmd.Context()
	rt, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	records, err := rt.lookups.Find(ctx, pattern)
	if err != nil {
		return err
	}
	logger.Debug("listing complete", logger.Pattern(pattern), logger.Entries(len(records)))

	if len(records) == 0 && rt.printer.Format() == output.FormatTable {
		rt.printer.Println("No entries found.")
		return nil
	}
	return rt.printer.Print(recordList(records))
}
