package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or purge the fetch cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show fetch cache entry count and size",
	RunE:  runCacheStats,
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete all fetch cache entries",
	RunE:  runCachePurge,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}

type statsCache interface {
	Stats() (entries int, bytes int64)
}

type purgeCache interface {
	Purge() (int, error)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cache := initCache()
	defer cache.Close()

	sc, ok := cache.Cache.(statsCache)
	if !ok {
		return eris.Errorf("cache backend %q does not track stats", cfg.Fetch.CacheBackend)
	}

	entries, bytes := sc.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "backend: %s\nentries: %d\nsize:    %s\n",
		cfg.Fetch.CacheBackend, entries, formatBytes(bytes))
	return nil
}

func runCachePurge(cmd *cobra.Command, args []string) error {
	cache := initCache()
	defer cache.Close()

	pc, ok := cache.Cache.(purgeCache)
	if !ok {
		return eris.Errorf("cache backend %q cannot be purged", cfg.Fetch.CacheBackend)
	}

	removed, err := pc.Purge()
	if err != nil {
		return eris.Wrap(err, "purge cache")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries\n", removed)
	return nil
}

func formatBytes(n int64) string {
	const kb, mb = 1 << 10, 1 << 20
	switch {
	case n >= mb:
		return fmt.Sprintf("%.1f MiB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.1f KiB", float64(n)/kb)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
