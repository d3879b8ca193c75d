package upload

import (
	"errors"
	"fmt"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/units"
)

// MaxFileSize is the largest accepted upload, inclusive.
const MaxFileSize = 5 * 1024 * 1024

var allowedTypes = map[string]bool{
	"image/svg+xml": true,
	"image/png":     true,
	"image/jpeg":    true,
	"image/gif":     true,
}

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUploadFailed    = errors.New("upload failed")
)

// IsAllowedType reports whether contentType is one of the accepted image
// types. The comparison is exact.
func IsAllowedType(contentType string) bool {
	return allowedTypes[contentType]
}

// Validate checks a single file's type and size.
func Validate(f File) error {
	if !IsAllowedType(f.ContentType) {
		return fmt.Errorf("%w: %s: only SVG, PNG, JPG, and GIF are allowed", ErrUnsupportedType, f.Name)
	}
	if f.Size() > MaxFileSize {
		return fmt.Errorf("%w: %s: file size exceeds the limit of %s", ErrFileTooLarge, f.Name, units.FormatSize(MaxFileSize))
	}
	return nil
}

func validateTypes(files []File) error {
	for _, f := range files {
		if !IsAllowedType(f.ContentType) {
			return fmt.Errorf("%w: some files are not of the allowed types (SVG, PNG, JPG, GIF)", ErrUnsupportedType)
		}
	}
	return nil
}
