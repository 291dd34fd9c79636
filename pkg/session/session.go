// Package session holds the state of one visitor to the upload UI.
//
// A [Session] is an explicit value owned by the web layer: the uploaded
// images with their captions, the column count, the pending-reset flag and
// the last composed grid. Handlers load it from a [Store], mutate it through
// its methods and save it back. The compositor never sees a session; it
// receives the snapshot returned by [Session.Cells].
//
// Store implementations:
//   - [MemoryStore]: in-process map for a single instance
//   - [FileStore]: JSON files for single-instance deployments that survive restarts
//   - [RedisStore]: shared storage for multi-instance deployments
//
// # Usage
//
//	sess, err := store.Get(ctx, cookie.Value)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    sess = session.New(session.DefaultTTL)
//	}
//	sess.SetColumns(3)
//	err = store.Set(ctx, sess)
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/photogrid/pkg/errors"
	"github.com/matzehuels/photogrid/pkg/grid"
)

// Default values.
const (
	// DefaultTTL is how long an idle session is kept.
	DefaultTTL = 24 * time.Hour

	DefaultColumns = 4
	MinColumns     = 1
	MaxColumns     = 10
)

// Upload is one image submitted through the form.
type Upload struct {
	Name    string `json:"name"`
	Data    []byte `json:"data"`
	Caption string `json:"caption"`
}

// Session stores one visitor's uploads and form state.
type Session struct {
	ID           string    `json:"id"`
	Uploads      []Upload  `json:"uploads"`
	Columns      int       `json:"columns"`
	ResetPending bool      `json:"reset_pending"`
	Result       []byte    `json:"result,omitempty"`
	Notice       string    `json:"notice,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist, has expired or the
	// ID is malformed.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session until its ExpiresAt.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (no-op for Redis).
	Cleanup(ctx context.Context) error
}

// GenerateID returns a random session ID.
func GenerateID() string {
	return uuid.NewString()
}

// ValidID reports whether id could have come from GenerateID. Cookie values
// are untrusted and some stores build paths and keys from them.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}

// New creates an empty session.
func New(ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        GenerateID(),
		Columns:   DefaultColumns,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch extends the session by ttl from now.
func (s *Session) Touch(ttl time.Duration) {
	s.ExpiresAt = time.Now().Add(ttl)
}

// AddUpload appends an image. Only png, jpg and jpeg names are accepted;
// the bytes themselves are not inspected here.
func (s *Session) AddUpload(name string, data []byte) error {
	if err := errors.ValidateUploadFilename(name); err != nil {
		return err
	}
	s.Uploads = append(s.Uploads, Upload{Name: name, Data: data})
	s.Result = nil
	return nil
}

// SetCaption sets the caption of upload i.
func (s *Session) SetCaption(i int, caption string) error {
	if i < 0 || i >= len(s.Uploads) {
		return errors.New(errors.ErrCodeNotFound, "no upload at index %d", i)
	}
	if err := errors.ValidateCaption(caption); err != nil {
		return err
	}
	if s.Uploads[i].Caption != caption {
		s.Uploads[i].Caption = caption
		s.Result = nil
	}
	return nil
}

// SetColumns clamps n to [MinColumns, MaxColumns] and returns the stored value.
func (s *Session) SetColumns(n int) int {
	n = max(MinColumns, min(MaxColumns, n))
	if s.Columns != n {
		s.Columns = n
		s.Result = nil
	}
	return n
}

// Cells returns the uploads as compositor input. The returned slice is
// independent of the session.
func (s *Session) Cells() []grid.Cell {
	if len(s.Uploads) == 0 {
		return nil
	}
	cells := make([]grid.Cell, len(s.Uploads))
	for i, u := range s.Uploads {
		cells[i] = grid.Cell{Image: u.Data, Caption: u.Caption}
	}
	return cells
}

// SetResult stores the PNG of the last composed grid.
func (s *Session) SetResult(png []byte) {
	s.Result = png
}

// SetNotice stores a one-shot message for the next page render.
func (s *Session) SetNotice(msg string) {
	s.Notice = msg
}

// TakeNotice returns and clears the pending message.
func (s *Session) TakeNotice() string {
	msg := s.Notice
	s.Notice = ""
	return msg
}

// RequestReset asks for confirmation before clearing.
func (s *Session) RequestReset() { s.ResetPending = true }

// CancelReset dismisses a pending reset.
func (s *Session) CancelReset() { s.ResetPending = false }

// ConfirmReset clears uploads, result and notice. It is a no-op unless a
// reset was requested. The ID and expiry are kept.
func (s *Session) ConfirmReset() bool {
	if !s.ResetPending {
		return false
	}
	s.Uploads = nil
	s.Result = nil
	s.Notice = ""
	s.Columns = DefaultColumns
	s.ResetPending = false
	return true
}

// clone copies the session so stores never share slices with callers.
// Image bytes are immutable once uploaded and are shared.
func (s *Session) clone() *Session {
	c := *s
	if s.Uploads != nil {
		c.Uploads = append([]Upload(nil), s.Uploads...)
	}
	return &c
}
