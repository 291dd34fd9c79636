// Package cli implements the photogrid command line.
//
// Commands log through a charmbracelet logger carried in the command context
// (stderr) and print their results through a lipgloss printer (stdout).
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/photogrid/pkg/buildinfo"
	"github.com/matzehuels/photogrid/pkg/cache"
	"github.com/matzehuels/photogrid/pkg/pipeline"
)

const appName = "photogrid"

// Log levels for callers that do not import charmbracelet/log.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI is the state shared by every command.
type CLI struct {
	Logger *log.Logger

	out     io.Writer
	verbose bool
}

// New returns a CLI logging to w at level. Results are printed to stdout.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), out: os.Stdout}
}

// SetLogLevel changes the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects printed results, mainly for tests.
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

func (c *CLI) printer() printer {
	return printer{w: c.out}
}

// RootCommand builds the command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Arrange captioned images into a grid",
		Long: `photogrid composes images into one PNG grid with a caption band under every
cell. Use it from the terminal, or run the browser upload UI with "photogrid serve".`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}
	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		c.composeCommand(),
		c.fontsCommand(),
		c.serveCommand(),
		c.cacheCommand(),
		c.completionCommand(),
		c.versionCommand(),
	)
	return root
}

// newRunner returns a runner over the user's file cache, or over no cache at
// all when noCache is set or the cache directory cannot be determined.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	var store cache.Cache = cache.NewNullCache()
	if !noCache {
		if dir, err := cacheDir(); err != nil {
			c.Logger.Warn("caching disabled", "err", err)
		} else if store, err = cache.NewFileCache(dir); err != nil {
			return nil, err
		}
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}
