package fonts

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/basicfont"
)

func TestWithDefaults(t *testing.T) {
	opts := Options{}.WithDefaults()
	if opts.Size != DefaultSize {
		t.Errorf("Size = %v, want %v", opts.Size, DefaultSize)
	}
	if len(opts.Names) != 3 || opts.Names[0] != "NotoSans-Regular.ttf" {
		t.Errorf("Names = %v, want defaults", opts.Names)
	}

	custom := Options{Names: []string{"x.ttf"}, Size: 12}.WithDefaults()
	if custom.Size != 12 || len(custom.Names) != 1 {
		t.Errorf("WithDefaults overwrote explicit values: %+v", custom)
	}
}

func TestResolveFallsBackToBuiltin(t *testing.T) {
	face, skipped := Resolve(Options{
		Names: []string{"photogrid-missing-font-4f1c.ttf", "photogrid-missing-font-9a2e.ttf"},
	})

	if !face.Builtin {
		t.Fatalf("expected builtin face, got %q", face.Name)
	}
	if face.Face != basicfont.Face7x13 {
		t.Error("builtin face should be basicfont.Face7x13")
	}
	if face.Name != BuiltinName || face.Path != "" {
		t.Errorf("Name/Path = %q/%q, want %q/empty", face.Name, face.Path, BuiltinName)
	}
	if len(skipped) != 2 {
		t.Errorf("skipped = %d attempts, want 2", len(skipped))
	}
}

func TestResolveSkipsUnparseableFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.ttf"), []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}

	face, skipped := Resolve(Options{Names: []string{"broken.ttf"}, Dirs: []string{dir}})
	if !face.Builtin {
		t.Fatalf("broken font should not resolve, got %q", face.Name)
	}
	if len(skipped) != 1 || skipped[0].Name != "broken.ttf" || skipped[0].Err == nil {
		t.Errorf("skipped = %+v, want one parse failure for broken.ttf", skipped)
	}
}

func TestLocatePrefersExtraDirs(t *testing.T) {
	dir := t.TempDir()
	want := filepath.Join(dir, "custom.ttf")
	if err := os.WriteFile(want, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := locate("custom.ttf", []string{t.TempDir(), dir})
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if got != want {
		t.Errorf("locate = %q, want %q", got, want)
	}
}
