/*
# Module: cmd/bundlecore/cmd_cache.go
CLI commands for inspecting and clearing the persistent job cache.

## Linked Modules
- [root](./root.go) - Root command
- [../../pkg/cache](../../pkg/cache/bolt.go) - Persisted cache set

## Tags
cli, cache, commands

## Exports
cacheCmd
*/

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bundlecore/bundlecore/pkg/cache"
	"github.com/bundlecore/bundlecore/pkg/cli"
)

var cacheTarget string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the persistent job cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show persistent job cache statistics",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the persistent job cache",
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheCmd.PersistentFlags().StringVarP(&cacheTarget, "target", "t", ".", "project root whose .bundlecore cache to use")
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(cacheTarget)
	if err != nil {
		return fmt.Errorf("resolve target: %w", err)
	}

	depHash := computeDependencyTreeHash(root)
	set, err := cache.NewCacheSet(root, depHash)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer set.Close()

	stats, err := set.Stats()
	if err != nil {
		return fmt.Errorf("read cache stats: %w", err)
	}

	out := cli.NewOutputFormatter(false, false, false)
	out.CacheStats(stats, filepath.Join(root, ".bundlecore"))

	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	out := cli.NewOutputFormatter(false, false, false)

	root, err := filepath.Abs(cacheTarget)
	if err != nil {
		return fmt.Errorf("resolve target: %w", err)
	}

	out.Info("clearing persistent cache")

	depHash := computeDependencyTreeHash(root)
	set, err := cache.NewCacheSet(root, depHash)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}

	statsBefore, err := set.Stats()
	if err != nil {
		set.Close()
		return fmt.Errorf("read cache stats: %w", err)
	}

	if err := set.Clear(); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}

	var totalEntries int
	for _, s := range statsBefore {
		totalEntries += s.EntryCount
	}
	out.Success("cleared %d entries", totalEntries)
	return nil
}
