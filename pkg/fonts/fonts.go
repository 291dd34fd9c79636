// Package fonts resolves the face used to draw grid captions.
//
// Resolution walks a prioritized list of font file names, locating each one
// in the caller's extra directories or the platform font directories (via
// go-findfont), and parses the first usable TrueType file at a fixed size.
// When nothing resolves, the built-in 7x13 bitmap face is returned so that
// captions are always drawable.
//
// Faces are resolved per call and never cached: composition is infrequent
// and a process-wide face would be shared mutable state (truetype faces keep
// a glyph cache and are not safe for concurrent use).
package fonts

import (
	"os"
	"path/filepath"

	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// DefaultSize is the caption size in points.
const DefaultSize = 18

// DefaultNames lists the caption fonts in order of preference. Noto and
// DejaVu cover most scripts; Arial is there for Windows hosts.
var DefaultNames = []string{
	"NotoSans-Regular.ttf",
	"DejaVuSans.ttf",
	"arial.ttf",
}

// BuiltinName is reported as [Face.Name] when no named font could be loaded.
const BuiltinName = "basicfont 7x13"

// Options controls font resolution.
type Options struct {
	Names []string // font file names, most preferred first
	Dirs  []string // extra directories searched before the system ones
	Size  float64  // points at 72 DPI, i.e. pixels per em
}

// WithDefaults returns a copy with zero fields filled in.
func (o Options) WithDefaults() Options {
	if len(o.Names) == 0 {
		o.Names = DefaultNames
	}
	if o.Size <= 0 {
		o.Size = DefaultSize
	}
	return o
}

// Face is a resolved caption font.
type Face struct {
	font.Face
	Name    string // file name that matched, or BuiltinName
	Path    string // absolute path of the loaded file, empty for the builtin
	Builtin bool
}

// Attempt records why a candidate name was passed over.
type Attempt struct {
	Name string
	Err  error
}

// Resolve returns the first loadable face from opts.Names, falling back to
// the built-in face. It never fails; skipped candidates are reported so
// callers can log them.
func Resolve(opts Options) (Face, []Attempt) {
	opts = opts.WithDefaults()

	var skipped []Attempt
	for _, name := range opts.Names {
		path, err := locate(name, opts.Dirs)
		if err != nil {
			skipped = append(skipped, Attempt{Name: name, Err: err})
			continue
		}
		face, err := load(path, opts.Size)
		if err != nil {
			skipped = append(skipped, Attempt{Name: name, Err: err})
			continue
		}
		return Face{Face: face, Name: name, Path: path}, skipped
	}
	return Builtin(), skipped
}

// Builtin returns the bitmap fallback face.
func Builtin() Face {
	return Face{Face: basicfont.Face7x13, Name: BuiltinName, Builtin: true}
}

func locate(name string, dirs []string) (string, error) {
	for _, dir := range dirs {
		candidate := filepath.Join(dir, name)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, nil
		}
	}
	return findfont.Find(name)
}

func load(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
