package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// AllowedImageExtensions lists the upload extensions accepted by the UI.
var AllowedImageExtensions = []string{".png", ".jpg", ".jpeg"}

// MaxCaptionLength bounds a single caption in runes. Only the first two
// wrapped lines are ever drawn, so anything beyond this is never visible.
const MaxCaptionLength = 1000

// ValidateUploadFilename validates the filename of an uploaded image.
// It rejects names that could be used for path traversal and anything
// outside of png/jpg/jpeg.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators
//   - Maximum length of 255 characters
//   - Extension must be .png, .jpg or .jpeg (case-insensitive)
func ValidateUploadFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "upload filename cannot be empty")
	}

	if len(name) > 255 {
		return New(ErrCodeInvalidInput, "upload filename too long (max 255 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "upload filename contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "upload filename cannot contain path separators")
	}

	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedImageExtensions {
		if ext == allowed {
			return nil
		}
	}
	return New(ErrCodeUnsupportedType, "%s: only png, jpg and jpeg files are accepted", name)
}

// ValidateColumns validates a grid column count. A max of 0 means unbounded.
func ValidateColumns(n, max int) error {
	if n < 1 {
		return New(ErrCodeInvalidLayout, "columns must be at least 1, got %d", n)
	}
	if max > 0 && n > max {
		return New(ErrCodeInvalidLayout, "columns must be at most %d, got %d", max, n)
	}
	return nil
}

// ValidateCellSize validates the pixel size of one grid cell and its caption band.
func ValidateCellSize(width, height, band int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidLayout, "cell size must be positive, got %dx%d", width, height)
	}
	if band < 0 {
		return New(ErrCodeInvalidLayout, "caption band cannot be negative, got %d", band)
	}
	return nil
}

// ValidateCaption validates a caption string. Newlines and tabs are allowed
// since the wrapper folds them into spaces.
func ValidateCaption(caption string) error {
	n := 0
	for _, r := range caption {
		n++
		if r == '\x00' {
			return New(ErrCodeInvalidInput, "caption contains a null byte")
		}
	}
	if n > MaxCaptionLength {
		return New(ErrCodeInvalidInput, "caption too long (max %d characters)", MaxCaptionLength)
	}
	return nil
}
