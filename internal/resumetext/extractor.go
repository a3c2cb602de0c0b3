// Package resumetext extracts plain text from uploaded resume files.
// Only the raw byte-to-text step lives here; all interpretation of the
// text happens downstream.
package resumetext

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for anything other than .pdf or .docx.
var ErrUnsupportedFormat = errors.New("unsupported resume format")

// Extractor turns an uploaded file into plain text.
type Extractor interface {
	Extract(filename string, data []byte) (string, error)
}

// FileExtractor dispatches on the file extension.
type FileExtractor struct{}

// NewFileExtractor returns the default extractor.
func NewFileExtractor() FileExtractor {
	return FileExtractor{}
}

// Extract returns the plain text of a .pdf or .docx file.
func (FileExtractor) Extract(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		return extractDOCX(data)
	default:
		return "", ErrUnsupportedFormat
	}
}
