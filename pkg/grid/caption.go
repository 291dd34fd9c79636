package grid

import (
	"image"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// captioner draws caption lines onto one canvas with one face.
type captioner struct {
	dc      *gg.Context
	measure *measurer
	ascent  int
}

func newCaptioner(canvas *image.RGBA, face font.Face) *captioner {
	if face == nil {
		face = basicfont.Face7x13
	}
	dc := gg.NewContextForRGBA(canvas)
	c := &captioner{dc: dc}
	if !safeCall(func() { dc.SetFontFace(face) }) {
		face = basicfont.Face7x13
		dc.SetFontFace(face)
	}
	c.measure = newMeasurer(face, dc)
	safeCall(func() { c.ascent = face.Metrics().Ascent.Ceil() })
	dc.SetColor(Ink)
	return c
}

// draw renders up to MaxCaptionLines lines of text centered under the cell
// at origin. Line li's top edge sits at
// origin.Y + CellHeight + li*(lineHeight+LineGap) + CaptionTopMargin.
func (c *captioner) draw(text string, origin image.Point, l Layout) {
	for li, line := range CaptionLines(text) {
		tw, th := c.measure.measure(line)
		tx := origin.X + floorDiv(l.CellWidth-tw, 2)
		ty := origin.Y + l.CellHeight + li*(th+LineGap) + CaptionTopMargin
		safeCall(func() {
			c.dc.DrawString(line, float64(tx), float64(ty+c.ascent))
		})
	}
}

// safeCall runs fn and reports whether it returned without panicking.
func safeCall(fn func()) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	fn()
	return true
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
