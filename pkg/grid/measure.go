package grid

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// Fallback glyph cell used when a face cannot measure text at all.
const (
	estimateRuneWidth = 6
	estimateHeight    = 12
)

var (
	errNoFace      = errors.New("no font face")
	errEmptyBounds = errors.New("text has empty bounds")
)

// measureFunc is one measuring strategy. It may fail or panic.
type measureFunc func(text string) (w, h int, err error)

// measurer tries each strategy in order and falls back to an estimate.
type measurer struct {
	tiers []measureFunc
}

func newMeasurer(face font.Face, dc *gg.Context) *measurer {
	return &measurer{tiers: []measureFunc{
		glyphBounds(face),
		advanceSize(face, dc),
	}}
}

// Measure returns the pixel size of text rendered with face: the union of
// its glyph bounds if the face reports them, else its advance width and the
// face's line height, else six pixels per rune by twelve.
func Measure(text string, face font.Face) (w, h int) {
	var dc *gg.Context
	if face != nil {
		dc = gg.NewContext(1, 1)
	}
	return newMeasurer(face, dc).measure(text)
}

func (m *measurer) measure(text string) (int, int) {
	for _, tier := range m.tiers {
		if w, h, err := try(tier, text); err == nil {
			return w, h
		}
	}
	return estimate(text)
}

func try(fn measureFunc, text string) (w, h int, err error) {
	defer func() {
		if r := recover(); r != nil {
			w, h, err = 0, 0, fmt.Errorf("measure %q: %v", text, r)
		}
	}()
	return fn(text)
}

func glyphBounds(face font.Face) measureFunc {
	return func(text string) (int, int, error) {
		if face == nil {
			return 0, 0, errNoFace
		}
		b, _ := font.BoundString(face, text)
		w := (b.Max.X - b.Min.X).Ceil()
		h := (b.Max.Y - b.Min.Y).Ceil()
		if w <= 0 || h <= 0 {
			return 0, 0, errEmptyBounds
		}
		return w, h, nil
	}
}

func advanceSize(face font.Face, dc *gg.Context) measureFunc {
	return func(text string) (int, int, error) {
		if face == nil || dc == nil {
			return 0, 0, errNoFace
		}
		dc.SetFontFace(face)
		w, h := dc.MeasureString(text)
		if w <= 0 || h <= 0 {
			return 0, 0, errEmptyBounds
		}
		return int(math.Ceil(w)), int(math.Ceil(h)), nil
	}
}

func estimate(text string) (int, int) {
	return utf8.RuneCountInString(text) * estimateRuneWidth, estimateHeight
}
