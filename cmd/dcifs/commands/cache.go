package commands

import (
	"errors"
	"fmt"

	"github.com/marmos91/dittocifs/internal/cli/prompt"
	"github.com/marmos91/dittocifs/pkg/statcache"
	"github.com/spf13/cobra"
)

var cachePurgeForce bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the on-disk stat cache",
	Long: `Manage the listing/stat cache configured under cache.dir.

Subcommands:
  purge       Drop every cached listing and stat result
  invalidate  Drop the cached entries for one path`,
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Drop every cached entry",
	Long: `Drop every cached listing and stat result.

Examples:
  # Purge after confirming
  dcifs cache purge

  # Purge without a prompt
  dcifs cache purge --force`,
	Args: cobra.NoArgs,
	RunE: runCachePurge,
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate <path>",
	Short: "Drop the cached entries for a path",
	Long: `Drop the cached stat result for a path and every cached listing
of the tree selected with --tid.`,
	Args: cobra.ExactArgs(1),
	RunE: runCacheInvalidate,
}

func init() {
	cachePurgeCmd.Flags().BoolVarP(&cachePurgeForce, "force", "f", false, "Skip confirmation prompt")
	cacheCmd.AddCommand(cachePurgeCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)
}

// openDiskCache opens the configured on-disk cache.
func openDiskCache() (*statcache.Cache, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := InitLogger(cfg); err != nil {
		return nil, err
	}
	if cfg.Cache.Dir == "" {
		return nil, errors.New("cache.dir is not configured: an in-memory cache does not outlive a command")
	}
	return statcache.Open(statcache.Config{Dir: cfg.Cache.Dir, TTL: cfg.Cache.TTL})
}

func runCachePurge(cmd *cobra.Command, args []string) error {
	ok, err := prompt.ConfirmWithForce("Drop every cached entry?", cachePurgeForce)
	if err != nil {
		return err
	}
	if !ok {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}

	cache, err := openDiskCache()
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	if err := cache.Purge(); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cache purged.")
	return nil
}

func runCacheInvalidate(cmd *cobra.Command, args []string) error {
	cache, err := openDiskCache()
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	if err := cache.Invalidate(Flags.TreeID, args[0]); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Invalidated %s\n", args[0])
	return nil
}
