package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photogrid/pkg/cache"
)

// cacheDir is $XDG_CACHE_HOME/photogrid, or ~/.cache/photogrid.
func cacheDir() (string, error) {
	if base := os.Getenv("XDG_CACHE_HOME"); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate cache dir: %w", err)
	}
	return filepath.Join(home, ".cache", appName), nil
}

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or empty the cache of composed grids and previews",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached grid and preview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return err
			}
			p := c.printer()
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				p.info("Nothing cached yet")
				return nil
			}
			n, err := clearCache(dir)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("cache cleared", "dir", dir, "entries", n)
			p.success("Removed %d cached entries", n)
			p.detail("%s", dir)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, dir)
			return nil
		},
	})

	return cmd
}

// clearCache empties the file cache rooted at dir and reports how many
// entries it removed.
func clearCache(dir string) (int, error) {
	c, err := cache.NewFileCache(dir)
	if err != nil {
		return 0, err
	}
	return c.(*cache.FileCache).Clear()
}
