package server

import (
	"context"
	"embed"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/photogrid/pkg/buildinfo"
	"github.com/matzehuels/photogrid/pkg/cache"
	"github.com/matzehuels/photogrid/pkg/errors"
	"github.com/matzehuels/photogrid/pkg/pipeline"
	"github.com/matzehuels/photogrid/pkg/session"
)

// CookieName is the session cookie.
const CookieName = "photogrid_session"

// formField is the multipart field carrying uploaded images.
const formField = "images"

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	return template.New("index.html").Funcs(template.FuncMap{
		"mib": func(n int64) string { return fmt.Sprintf("%d MiB", n>>20) },
		"inc": func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/index.html")
}

// =============================================================================
// Page
// =============================================================================

type uploadView struct {
	Index   int
	Name    string
	Caption string
}

type pageData struct {
	Uploads      []uploadView
	Columns      int
	MinColumns   int
	MaxColumns   int
	ResetPending bool
	HasResult    bool
	ResultTag    string
	Notice       string
	MaxUpload    int64
	Version      string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	data := pageData{
		Columns:      sess.Columns,
		MinColumns:   session.MinColumns,
		MaxColumns:   session.MaxColumns,
		ResetPending: sess.ResetPending,
		HasResult:    len(sess.Result) > 0,
		Notice:       sess.TakeNotice(),
		MaxUpload:    s.cfg.MaxUploadBytes,
		Version:      buildinfo.Short(),
	}
	for i, u := range sess.Uploads {
		data.Uploads = append(data.Uploads, uploadView{Index: i, Name: u.Name, Caption: u.Caption})
	}
	if data.HasResult {
		data.ResultTag = cache.Hash(sess.Result)[:12]
	}
	// Saving here also persists a freshly created session and its expiry.
	if err := s.saveSession(r.Context(), sess); err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.page.Execute(w, data); err != nil {
		s.logger.Error("render page", "err", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

// handleStats reports the counters installed by Open. A server built with
// New alone reports zeros.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	json.NewEncoder(w).Encode(s.stats.Snapshot())
}

// =============================================================================
// Uploads
// =============================================================================

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.cfg.MaxUploadBytes {
		s.fail(w, r, errors.New(errors.ErrCodeTooLarge, "upload exceeds %d bytes", s.cfg.MaxUploadBytes))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.fail(w, r, errors.New(errors.ErrCodeTooLarge, "upload exceeds %d bytes", s.cfg.MaxUploadBytes))
			return
		}
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read upload form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	sess, err := s.loadSession(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res := s.addUploads(sess, r.MultipartForm.File[formField])
	if msg := res.notice(); msg != "" {
		sess.SetNotice(msg)
	}
	s.logger.Debug("uploads added", "session", sess.ID, "added", res.added,
		"rejected", len(res.rejected), "unreadable", len(res.unreadable))
	s.saveAndRedirect(w, r, sess)
}

// uploadResult tallies one upload form submission.
type uploadResult struct {
	added      int
	rejected   []string // not a PNG or JPEG image
	unreadable []string // failed to open or read from the form
}

func (s *Server) addUploads(sess *session.Session, files []*multipart.FileHeader) uploadResult {
	var res uploadResult
	for _, fh := range files {
		data, err := readFormFile(fh)
		if err != nil {
			s.logger.Warn("upload unreadable", "name", fh.Filename, "err", err)
			res.unreadable = append(res.unreadable, fh.Filename)
			continue
		}
		if err := sess.AddUpload(fh.Filename, data); err != nil {
			s.logger.Debug("upload rejected", "name", fh.Filename, "err", err)
			res.rejected = append(res.rejected, fh.Filename)
			continue
		}
		res.added++
	}
	return res
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (u uploadResult) notice() string {
	var parts []string
	if n := len(u.rejected); n > 0 {
		parts = append(parts, fmt.Sprintf("Skipped %d file(s) that are not PNG or JPEG images: %s", n, joinNames(u.rejected)))
	}
	if n := len(u.unreadable); n > 0 {
		parts = append(parts, fmt.Sprintf("Could not read %d uploaded file(s): %s", n, joinNames(u.unreadable)))
	}
	if len(parts) == 0 && u.added == 0 {
		return "Choose one or more images to upload."
	}
	return strings.Join(parts, " ")
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || i < 0 || i >= len(sess.Uploads) {
		http.NotFound(w, r)
		return
	}

	thumb, err := s.runner.Preview(r.Context(), sess.Uploads[i].Data)
	if err != nil {
		http.Error(w, "Cannot preview", http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", pipeline.MIMEType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(thumb)
}

// =============================================================================
// Compose
// =============================================================================

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read form"))
		return
	}
	sess, err := s.loadSession(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if v := r.PostForm.Get("columns"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			sess.SetColumns(n)
		}
	}
	for i := range sess.Uploads {
		key := fmt.Sprintf("caption-%d", i)
		if _, ok := r.PostForm[key]; !ok {
			continue
		}
		if err := sess.SetCaption(i, r.PostForm.Get(key)); err != nil {
			sess.SetNotice(errors.UserMessage(err))
			s.saveAndRedirect(w, r, sess)
			return
		}
	}

	cells := sess.Cells()
	if len(cells) == 0 {
		sess.SetNotice("Upload at least one image before composing.")
		s.saveAndRedirect(w, r, sess)
		return
	}

	opts := s.cfg.Grid
	opts.Columns = sess.Columns
	result, err := s.runner.Compose(r.Context(), cells, opts)
	if err != nil {
		s.logger.Error("compose failed", "session", sess.ID, "err", err)
		sess.SetNotice(errors.UserMessage(err))
		s.saveAndRedirect(w, r, sess)
		return
	}

	sess.SetResult(result.PNG)
	if n := len(result.Skipped); n > 0 {
		sess.SetNotice(fmt.Sprintf("%d image(s) could not be read and were left blank.", n))
	}
	s.logger.Info("grid composed",
		"session", sess.ID,
		"cells", result.Cells,
		"size", fmt.Sprintf("%dx%d", result.Width, result.Height),
		"cached", result.CacheHit)
	s.saveAndRedirect(w, r, sess)
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(sess.Result) == 0 {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", pipeline.MIMEType)
	w.Header().Set("Cache-Control", "no-store")
	if r.URL.Query().Get("download") == "1" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pipeline.DownloadName))
	}
	w.Write(sess.Result)
}

// =============================================================================
// Reset
// =============================================================================

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, (*session.Session).RequestReset)
}

func (s *Server) handleResetConfirm(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(sess *session.Session) { sess.ConfirmReset() })
}

func (s *Server) handleResetCancel(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, (*session.Session).CancelReset)
}

func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(*session.Session)) {
	sess, err := s.loadSession(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	fn(sess)
	s.saveAndRedirect(w, r, sess)
}

// =============================================================================
// Session plumbing
// =============================================================================

// loadSession returns the visitor's session, creating one (and its cookie)
// when the cookie is missing, invalid or expired.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	var sess *session.Session
	if c, err := r.Cookie(CookieName); err == nil {
		sess, err = s.store.Get(r.Context(), c.Value)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeSession, err, "load session")
		}
	}
	if sess == nil {
		sess = session.New(s.cfg.SessionTTL)
		s.logger.Debug("session created", "session", sess.ID)
	}
	sess.Touch(s.cfg.SessionTTL)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	return sess, nil
}

func (s *Server) saveSession(ctx context.Context, sess *session.Session) error {
	if err := s.store.Set(ctx, sess); err != nil {
		return errors.Wrap(errors.ErrCodeSession, err, "save session")
	}
	return nil
}

// saveAndRedirect stores sess and sends the browser back to the page
// (post/redirect/get).
func (s *Server) saveAndRedirect(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := s.saveSession(r.Context(), sess); err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// fail writes err as a plain-text response with the status its code maps to.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	http.Error(w, errors.UserMessage(err), status)
}

func joinNames(names []string) string {
	const limit = 3
	out := ""
	for i, n := range names {
		if i == limit {
			return out + fmt.Sprintf(" and %d more", len(names)-limit)
		}
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
