package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photogrid/pkg/errors"
	"github.com/matzehuels/photogrid/pkg/grid"
	"github.com/matzehuels/photogrid/pkg/pipeline"
)

var errAborted = stderrors.New("aborted")

// composeOpts holds the command-line flags for the compose command.
type composeOpts struct {
	pipeline.Options
	captions    []string
	interactive bool
	output      string
	noCache     bool
}

// composeCommand creates the compose command.
func (c *CLI) composeCommand() *cobra.Command {
	var opts composeOpts

	cmd := &cobra.Command{
		Use:   "compose IMAGE...",
		Short: "Arrange images into a captioned grid PNG",
		Long: `Arrange images into a grid, left to right and top to bottom, with a
caption band below every cell. Images are stretched to the cell size.
Captions are wrapped at 25 characters and at most two lines are drawn.

Captions are matched to images by position:

  photogrid compose beach.jpg hike.png --caption "Beach day" --caption "Hike"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompose(cmd.Context(), args, opts)
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&opts.captions, "caption", nil, "caption for the image at the same position (repeatable)")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "enter captions interactively")
	f.IntVarP(&opts.Columns, "columns", "c", pipeline.DefaultColumns, "number of grid columns")
	f.IntVar(&opts.CellWidth, "cell-width", pipeline.DefaultCellSize, "cell width in pixels")
	f.IntVar(&opts.CellHeight, "cell-height", pipeline.DefaultCellSize, "cell height in pixels")
	f.IntVar(&opts.CaptionHeight, "caption-height", pipeline.DefaultCaptionHeight, "caption band height in pixels")
	f.StringVar(&opts.Background, "background", pipeline.DefaultBackground, "canvas color (#rgb or #rrggbb)")
	f.StringArrayVar(&opts.FontNames, "font", nil, "caption font file name, most preferred first (repeatable)")
	f.StringArrayVar(&opts.FontDirs, "font-dir", nil, "extra directory searched for fonts (repeatable)")
	f.StringVarP(&opts.output, "output", "o", pipeline.DownloadName, "output file")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runCompose reads the images, composes the grid and writes the PNG.
func (c *CLI) runCompose(ctx context.Context, paths []string, opts composeOpts) error {
	logger := loggerFromContext(ctx)

	if len(opts.captions) > len(paths) {
		return errors.New(errors.ErrCodeInvalidInput, "got %d captions for %d images", len(opts.captions), len(paths))
	}
	if opts.interactive {
		names := make([]string, len(paths))
		for i, p := range paths {
			names[i] = filepath.Base(p)
		}
		captions, err := promptCaptions(names, opts.captions)
		if err != nil {
			return err
		}
		opts.captions = captions
	}

	cells, err := loadCells(paths, opts.captions)
	if err != nil {
		return err
	}

	opts.Logger = logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Composing %s...", plural(len(cells), "image")))
	spinner.Start()
	prog := newProgress(logger)
	result, err := runner.Compose(ctx, cells, opts.Options)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Composed %s", plural(len(cells), "cell")))

	for _, i := range result.Skipped {
		logger.Warn("image could not be decoded, left blank", "file", paths[i])
	}

	if err := os.WriteFile(opts.output, result.PNG, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}

	p := c.printer()
	p.success("Grid written")
	p.file(opts.output)
	p.stats(result.Width, result.Height, result.Cells, result.Rows, result.CacheHit)
	return nil
}

// loadCells reads every image file and pairs it with the caption at the same
// position. A file that cannot be read is an error; content that turns out
// not to be an image is left for the compositor to skip.
func loadCells(paths, captions []string) ([]grid.Cell, error) {
	cells := make([]grid.Cell, len(paths))
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read image %s", path)
		}
		cells[i].Image = data
		if i < len(captions) {
			if err := errors.ValidateCaption(captions[i]); err != nil {
				return nil, err
			}
			cells[i].Caption = captions[i]
		}
	}
	return cells, nil
}
