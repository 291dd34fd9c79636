package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/photogrid/pkg/errors"
)

func TestNew(t *testing.T) {
	s := New(time.Hour)
	if !ValidID(s.ID) {
		t.Errorf("ID %q is not valid", s.ID)
	}
	if s.Columns != DefaultColumns {
		t.Errorf("Columns = %d, want %d", s.Columns, DefaultColumns)
	}
	if s.IsExpired() {
		t.Error("new session should not be expired")
	}
	if New(time.Hour).ID == s.ID {
		t.Error("IDs should be unique")
	}
}

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{GenerateID(), true},
		{"", false},
		{"../../etc/passwd", false},
		{"not-a-uuid", false},
		{"{" + GenerateID() + "}", false},
	}
	for _, tt := range tests {
		if got := ValidID(tt.id); got != tt.want {
			t.Errorf("ValidID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestAddUpload(t *testing.T) {
	s := New(time.Hour)
	s.SetResult([]byte("old"))

	if err := s.AddUpload("cat.png", []byte("img")); err != nil {
		t.Fatalf("AddUpload: %v", err)
	}
	if len(s.Uploads) != 1 || s.Uploads[0].Name != "cat.png" {
		t.Fatalf("Uploads = %+v", s.Uploads)
	}
	if s.Result != nil {
		t.Error("new upload should invalidate the result")
	}

	err := s.AddUpload("anim.gif", []byte("img"))
	if !errors.Is(err, errors.ErrCodeUnsupportedType) {
		t.Errorf("gif upload error = %v, want %v", err, errors.ErrCodeUnsupportedType)
	}
	if len(s.Uploads) != 1 {
		t.Error("rejected upload was stored")
	}
}

func TestSetCaption(t *testing.T) {
	s := New(time.Hour)
	_ = s.AddUpload("a.jpg", []byte("a"))
	_ = s.AddUpload("b.jpg", []byte("b"))

	if err := s.SetCaption(1, "a dog"); err != nil {
		t.Fatalf("SetCaption: %v", err)
	}
	if s.Uploads[1].Caption != "a dog" || s.Uploads[0].Caption != "" {
		t.Errorf("captions = %q, %q", s.Uploads[0].Caption, s.Uploads[1].Caption)
	}

	if err := s.SetCaption(2, "x"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("out of range error = %v", err)
	}
	if err := s.SetCaption(-1, "x"); err == nil {
		t.Error("negative index should fail")
	}
}

func TestSetCaptionKeepsResultWhenUnchanged(t *testing.T) {
	s := New(time.Hour)
	_ = s.AddUpload("a.png", nil)
	_ = s.SetCaption(0, "same")
	s.SetResult([]byte("png"))

	_ = s.SetCaption(0, "same")
	if s.Result == nil {
		t.Error("unchanged caption should keep the result")
	}
	_ = s.SetCaption(0, "different")
	if s.Result != nil {
		t.Error("changed caption should drop the result")
	}
}

func TestSetColumns(t *testing.T) {
	s := New(time.Hour)
	tests := []struct{ in, want int }{
		{3, 3},
		{0, MinColumns},
		{-4, MinColumns},
		{11, MaxColumns},
		{10, 10},
	}
	for _, tt := range tests {
		if got := s.SetColumns(tt.in); got != tt.want || s.Columns != tt.want {
			t.Errorf("SetColumns(%d) = %d (stored %d), want %d", tt.in, got, s.Columns, tt.want)
		}
	}
}

func TestCells(t *testing.T) {
	s := New(time.Hour)
	if s.Cells() != nil {
		t.Error("empty session should yield nil cells")
	}

	_ = s.AddUpload("a.png", []byte("A"))
	_ = s.AddUpload("b.png", []byte("B"))
	_ = s.SetCaption(0, "first")

	cells := s.Cells()
	if len(cells) != 2 {
		t.Fatalf("len(Cells) = %d, want 2", len(cells))
	}
	if string(cells[0].Image) != "A" || cells[0].Caption != "first" || cells[1].Caption != "" {
		t.Errorf("Cells = %+v", cells)
	}

	cells[0].Caption = "mutated"
	if s.Uploads[0].Caption != "first" {
		t.Error("Cells should not alias session state")
	}
}

func TestResetFlow(t *testing.T) {
	s := New(time.Hour)
	id := s.ID
	_ = s.AddUpload("a.png", []byte("A"))
	s.SetColumns(2)
	s.SetResult([]byte("png"))
	s.SetNotice("hello")

	if s.ConfirmReset() {
		t.Fatal("ConfirmReset without RequestReset should do nothing")
	}
	if len(s.Uploads) != 1 {
		t.Fatal("uploads cleared without confirmation")
	}

	s.RequestReset()
	s.CancelReset()
	if s.ResetPending {
		t.Error("CancelReset should clear the flag")
	}

	s.RequestReset()
	if !s.ConfirmReset() {
		t.Fatal("ConfirmReset after RequestReset should clear")
	}
	if len(s.Uploads) != 0 || s.Result != nil || s.Notice != "" || s.ResetPending {
		t.Errorf("session not cleared: %+v", s)
	}
	if s.Columns != DefaultColumns {
		t.Errorf("Columns = %d, want default", s.Columns)
	}
	if s.ID != id {
		t.Error("reset should keep the session ID")
	}
}

func TestTakeNotice(t *testing.T) {
	s := New(time.Hour)
	s.SetNotice("Please upload at least one image.")
	if got := s.TakeNotice(); got != "Please upload at least one image." {
		t.Errorf("TakeNotice = %q", got)
	}
	if got := s.TakeNotice(); got != "" {
		t.Errorf("second TakeNotice = %q, want empty", got)
	}
}

// storeContract runs the behavior every Store must share.
func storeContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if got, err := store.Get(ctx, GenerateID()); got != nil || err != nil {
		t.Fatalf("Get(missing) = %v, %v; want nil, nil", got, err)
	}

	s := New(time.Hour)
	_ = s.AddUpload("cat.png", []byte("img"))
	_ = s.SetCaption(0, "a cat")
	s.SetColumns(2)
	if err := store.Set(ctx, s); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, s.ID)
	if err != nil || got == nil {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if got.ID != s.ID || got.Columns != 2 || len(got.Uploads) != 1 || got.Uploads[0].Caption != "a cat" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if string(got.Uploads[0].Data) != "img" {
		t.Errorf("upload data = %q", got.Uploads[0].Data)
	}

	if err := store.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.Get(ctx, s.ID); got != nil {
		t.Error("session survived Delete")
	}

	expired := New(time.Hour)
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	_ = store.Set(ctx, expired)
	if got, _ := store.Get(ctx, expired.ID); got != nil {
		t.Error("expired session returned")
	}
	if err := store.Cleanup(ctx); err != nil {
		t.Errorf("Cleanup: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := New(time.Hour)
	_ = s.AddUpload("a.png", nil)
	_ = store.Set(ctx, s)

	_ = s.AddUpload("b.png", nil)
	got, _ := store.Get(ctx, s.ID)
	if len(got.Uploads) != 1 {
		t.Error("store should hold a copy, not the caller's session")
	}
}

func TestMemoryStoreCleanup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	live := New(time.Hour)
	dead := New(time.Hour)
	dead.ExpiresAt = time.Now().Add(-time.Second)
	_ = store.Set(ctx, live)
	_ = store.Set(ctx, dead)

	if err := store.Cleanup(ctx); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 1 {
		t.Errorf("Len after Cleanup = %d, want 1", store.Len())
	}
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	storeContract(t, store)
}

func TestFileStoreRejectsBadIDs(t *testing.T) {
	ctx := context.Background()
	store, _ := NewFileStore(t.TempDir())

	if got, err := store.Get(ctx, "../escape"); got != nil || err != nil {
		t.Errorf("Get(bad id) = %v, %v", got, err)
	}
	if err := store.Set(ctx, &Session{ID: "../escape", ExpiresAt: time.Now().Add(time.Hour)}); err == nil {
		t.Error("Set with bad id should fail")
	}
}

func TestFileStoreCleanupRemovesLeftovers(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	live := New(time.Hour)
	dead := New(time.Hour)
	dead.ExpiresAt = time.Now().Add(-time.Second)
	for _, s := range []*Session{live, dead} {
		if err := store.Set(ctx, s); err != nil {
			t.Fatal(err)
		}
	}
	junk := filepath.Join(store.Dir(), "broken.json")
	if err := os.WriteFile(junk, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(store.Dir(), live.ID+".123.tmp")
	if err := os.WriteFile(stale, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	if err := store.Cleanup(ctx); err != nil {
		t.Fatal(err)
	}

	entries, _ := os.ReadDir(store.Dir())
	if len(entries) != 1 || entries[0].Name() != live.ID+".json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("files after Cleanup = %v, want only %s.json", names, live.ID)
	}
}
