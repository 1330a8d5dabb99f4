package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the tile, geocode and export cache",
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete expired cache entries and stale exports",
	Long: `Run one cache sweep: delete map tiles and geocode answers older than
their TTL, finished exports older than the export TTL and abandoned
export scratch directories.

Use --all to ignore the TTLs and empty every category.`,
	RunE: runCacheClean,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheCleanCmd)
	cacheCleanCmd.Flags().Bool("all", false, "Delete every entry regardless of age")
}

func runCacheClean(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	now := time.Now()
	if mustGetBool(cmd, "all") {
		// a sweep with a cutoff in the future removes everything
		now = now.Add(100 * 365 * 24 * time.Hour)
	}

	stats, err := a.janitor().Sweep(now)
	fmt.Printf("Removed %d tiles, %d geocode entries, %d exports, %d scratch directories\n",
		stats.Tiles, stats.Geocode, stats.Exports, stats.ExportTemp)
	if err != nil {
		return fmt.Errorf("cache sweep incomplete: %w", err)
	}
	return nil
}
