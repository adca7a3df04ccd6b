package ingest

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeText FileType = "txt"
)

// DetectFileType looks at the content type first and falls back to the
// file extension.
func DetectFileType(contentType, filename string) (FileType, bool) {
	if ct := strings.ToLower(contentType); ct != "" {
		if strings.Contains(ct, "pdf") {
			return FileTypePDF, true
		}
		if strings.HasPrefix(ct, "text/") {
			return FileTypeText, true
		}
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FileTypePDF, true
	case ".txt":
		return FileTypeText, true
	}
	return "", false
}

func ExtractText(data []byte, fileType FileType) (string, error) {
	switch fileType {
	case FileTypePDF:
		return extractPDF(data)
	case FileTypeText:
		return strings.ToValidUTF8(string(data), ""), nil
	default:
		return "", ErrUnsupportedFileType
	}
}

// extractPDF recovers from parser panics, which malformed files can trigger.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(raw), nil
}
