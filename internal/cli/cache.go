package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/carelist/internal/cache"
	"github.com/rshade/carelist/internal/logging"
)

const bytesPerKB = 1024

// newCacheCmd creates the cache command group for the on-disk page cache.
func newCacheCmd(state *rootState) *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Page cache commands"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "Show page cache location, size and entry count",
			RunE: func(cmd *cobra.Command, _ []string) error {
				store, err := openCache(cmd, state)
				if err != nil {
					return err
				}
				count, err := store.Count()
				if err != nil {
					return err
				}
				size, err := store.Size()
				if err != nil {
					return err
				}
				p := message.NewPrinter(language.English)
				cmd.Println(p.Sprintf("Directory: %s", store.Dir()))
				cmd.Println(p.Sprintf("TTL:       %s", cache.FormatDuration(store.TTL())))
				cmd.Println(p.Sprintf("Entries:   %d", count))
				cmd.Println(p.Sprintf("Size:      %d KB", size/bytesPerKB))
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every cached page",
			RunE: func(cmd *cobra.Command, _ []string) error {
				store, err := openCache(cmd, state)
				if err != nil {
					return err
				}
				if err = store.Clear(); err != nil {
					return fmt.Errorf("clearing cache: %w", err)
				}
				cmd.Println("Cache cleared")
				return nil
			},
		},
		&cobra.Command{
			Use:   "prune",
			Short: "Delete expired cached pages",
			RunE: func(cmd *cobra.Command, _ []string) error {
				store, err := openCache(cmd, state)
				if err != nil {
					return err
				}
				removed, err := store.CleanupExpired()
				if err != nil {
					return fmt.Errorf("pruning cache: %w", err)
				}
				cmd.Printf("Removed %d expired entries\n", removed)
				return nil
			},
		},
	)
	return cmd
}

func openCache(cmd *cobra.Command, state *rootState) (*cache.FileStore, error) {
	cfg, err := state.config()
	if err != nil {
		return nil, err
	}
	if !cfg.Cache.Enabled {
		return nil, cache.ErrDisabled
	}
	return cache.NewFileStore(cfg.Cache, cache.WithLogger(logging.FromContext(cmd.Context())))
}
