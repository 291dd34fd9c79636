package grid

import (
	"image"
	"image/color"
	"image/draw"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/image/font"

	"github.com/matzehuels/photogrid/pkg/errors"
	"github.com/matzehuels/photogrid/pkg/fonts"
)

// Caption layout constants, in runes and pixels.
const (
	WrapWidth        = 25
	MaxCaptionLines  = 2
	LineGap          = 4
	CaptionTopMargin = 6
)

var (
	White = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	Ink   = color.RGBA{A: 0xff}
)

// Cell is one image and caption destined for one grid position.
type Cell struct {
	Image   []byte // encoded PNG, JPEG or GIF; empty means no image
	Caption string
}

// Layout is the geometry of a grid. It is read-only during composition.
type Layout struct {
	Columns       int
	CellWidth     int
	CellHeight    int
	CaptionHeight int
	Background    color.RGBA
}

// DefaultLayout returns a four-column layout of 300x300 cells with a 60px
// caption band on white.
func DefaultLayout() Layout {
	return Layout{
		Columns:       4,
		CellWidth:     300,
		CellHeight:    300,
		CaptionHeight: 60,
		Background:    White,
	}
}

// Bounds on the canvas Compose allocates. MaxCanvasPixels is 1 GiB of RGBA.
const (
	MaxCanvasSide   = 1 << 20
	MaxCanvasPixels = 1 << 28
)

// Validate reports layouts that cannot produce a canvas, including rows
// wider or cells taller than MaxCanvasSide.
func (l Layout) Validate() error {
	if err := errors.ValidateColumns(l.Columns, 0); err != nil {
		return err
	}
	if err := errors.ValidateCellSize(l.CellWidth, l.CellHeight, l.CaptionHeight); err != nil {
		return err
	}
	if l.CellWidth > MaxCanvasSide/l.Columns {
		return errors.New(errors.ErrCodeInvalidLayout,
			"grid width %d columns x %dpx exceeds %d pixels", l.Columns, l.CellWidth, MaxCanvasSide)
	}
	if l.CellHeight > MaxCanvasSide-l.CaptionHeight {
		return errors.New(errors.ErrCodeInvalidLayout,
			"row height %dpx + %dpx exceeds %d pixels", l.CellHeight, l.CaptionHeight, MaxCanvasSide)
	}
	return nil
}

// validateCanvas checks that n cells fit the canvas bounds. l must already
// be valid.
func (l Layout) validateCanvas(n int) error {
	rows := l.Rows(n)
	if rows > MaxCanvasSide/l.pitch() {
		return errors.New(errors.ErrCodeInvalidLayout,
			"grid height %d rows x %dpx exceeds %d pixels", rows, l.pitch(), MaxCanvasSide)
	}
	size := l.Size(n)
	if int64(size.X)*int64(size.Y) > MaxCanvasPixels {
		return errors.New(errors.ErrCodeInvalidLayout,
			"grid of %dx%d exceeds %d pixels", size.X, size.Y, MaxCanvasPixels)
	}
	return nil
}

// Rows returns how many rows n cells occupy.
func (l Layout) Rows(n int) int {
	return (n + l.Columns - 1) / l.Columns
}

// Size returns the canvas size for n cells.
func (l Layout) Size(n int) image.Point {
	return image.Pt(l.Columns*l.CellWidth, l.Rows(n)*l.pitch())
}

// Origin returns the top-left corner of cell i.
func (l Layout) Origin(i int) image.Point {
	return image.Pt((i%l.Columns)*l.CellWidth, (i/l.Columns)*l.pitch())
}

// pitch is the vertical distance between the tops of two rows.
func (l Layout) pitch() int { return l.CellHeight + l.CaptionHeight }

// Option configures a single Compose call.
type Option func(*composer)

type composer struct {
	face      font.Face
	fontOpts  fonts.Options
	logger    *log.Logger
	onSkipped func(index int, err error)
}

// WithFace draws captions with face instead of resolving one.
func WithFace(face font.Face) Option {
	return func(c *composer) { c.face = face }
}

// WithFonts sets the names, directories and size used to resolve the
// caption face.
func WithFonts(opts fonts.Options) Option {
	return func(c *composer) { c.fontOpts = opts }
}

// WithLogger receives debug output about skipped cells and font fallback.
func WithLogger(l *log.Logger) Option {
	return func(c *composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSkipped calls fn for every cell whose image could not be decoded.
func WithSkipped(fn func(index int, err error)) Option {
	return func(c *composer) { c.onSkipped = fn }
}

// Compose lays out cells on a fresh canvas. It returns nil, nil when cells
// is empty and an error only when the layout is invalid.
func Compose(cells []Cell, layout Layout, opts ...Option) (*image.RGBA, error) {
	if len(cells) == 0 {
		return nil, nil
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if err := layout.validateCanvas(len(cells)); err != nil {
		return nil, err
	}

	c := composer{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(&c)
	}

	size := layout.Size(len(cells))
	canvas := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	bg := layout.Background
	bg.A = 0xff
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	captions := newCaptioner(canvas, c.resolveFace())

	for i, cell := range cells {
		origin := layout.Origin(i)
		if len(cell.Image) > 0 {
			if err := place(canvas, cell.Image, image.Rectangle{
				Min: origin,
				Max: origin.Add(image.Pt(layout.CellWidth, layout.CellHeight)),
			}); err != nil {
				c.logger.Debug("cell image skipped", "index", i, "err", err)
				if c.onSkipped != nil {
					c.onSkipped(i, err)
				}
			}
		}
		if text := strings.TrimSpace(cell.Caption); text != "" {
			captions.draw(text, origin, layout)
		}
	}

	return canvas, nil
}

func (c *composer) resolveFace() font.Face {
	if c.face != nil {
		return c.face
	}
	face, skipped := fonts.Resolve(c.fontOpts)
	for _, a := range skipped {
		c.logger.Debug("caption font unavailable", "font", a.Name, "err", a.Err)
	}
	c.logger.Debug("caption font", "font", face.Name, "path", face.Path)
	return face.Face
}
