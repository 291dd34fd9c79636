package grid

import (
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// panicFace panics on every method through its nil embedded face.
type panicFace struct{ font.Face }

// advanceOnlyFace reports no glyph bounds but keeps basicfont's advances.
type advanceOnlyFace struct{ font.Face }

func (advanceOnlyFace) GlyphBounds(rune) (fixed.Rectangle26_6, fixed.Int26_6, bool) {
	return fixed.Rectangle26_6{}, 0, false
}

func TestMeasure(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		face  font.Face
		wantW int
		wantH int
	}{
		{"glyph bounds", "a cat", basicfont.Face7x13, 4*7 + 6, 13},
		{"advance fallback", "a cat", advanceOnlyFace{basicfont.Face7x13}, 5 * 7, 13},
		{"panicking face", "a cat", panicFace{}, 5 * 6, 12},
		{"nil face", "héllo", nil, 5 * 6, 12},
		{"estimate counts runes", "日本語", nil, 3 * 6, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Measure(tt.text, tt.face)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Measure(%q) = (%d, %d), want (%d, %d)", tt.text, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestMeasurerOrder(t *testing.T) {
	var calls []string
	m := &measurer{tiers: []measureFunc{
		func(string) (int, int, error) { calls = append(calls, "a"); panic("boom") },
		func(string) (int, int, error) { calls = append(calls, "b"); return 0, 0, errEmptyBounds },
	}}

	w, h := m.measure("abcd")
	if w != 24 || h != 12 {
		t.Errorf("measure = (%d, %d), want estimate (24, 12)", w, h)
	}
	if len(calls) != 2 || calls[0] != "a" || calls[1] != "b" {
		t.Errorf("tiers called %v, want [a b]", calls)
	}
}

func TestMeasurerStopsAtFirstSuccess(t *testing.T) {
	second := false
	m := &measurer{tiers: []measureFunc{
		func(string) (int, int, error) { return 10, 20, nil },
		func(string) (int, int, error) { second = true; return 1, 1, nil },
	}}

	if w, h := m.measure("x"); w != 10 || h != 20 {
		t.Errorf("measure = (%d, %d), want (10, 20)", w, h)
	}
	if second {
		t.Error("second tier should not run after the first succeeds")
	}
}
