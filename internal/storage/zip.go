package storage

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9\s\-_.]`)

// SanitizeDownloadName strips every character outside letters, digits,
// whitespace, '-', '_' and '.' from the whole name, then appends .zip.
// Separators are stripped too, so "a/b.pdf" becomes "ab.pdf.zip".
func SanitizeDownloadName(name string) string {
	clean := strings.TrimSpace(unsafeNameChars.ReplaceAllString(name, ""))
	if strings.Trim(clean, ".") == "" {
		return "attachment.zip"
	}
	return clean + ".zip"
}

// SingleFileZip packs r into an in-memory zip archive holding one entry.
func SingleFileZip(entryName string, modified time.Time, r io.Reader) ([]byte, error) {
	entryName = filepath.Base(entryName)
	if entryName == "" || entryName == "." || entryName == string(filepath.Separator) {
		entryName = "attachment"
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     entryName,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create zip entry")
	}
	if _, err := io.Copy(w, r); err != nil {
		return nil, errors.Wrap(err, "write zip entry")
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "finish zip")
	}
	return buf.Bytes(), nil
}
