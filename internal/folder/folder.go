// Package folder lists, writes and removes the PDF files in the user's
// selected folder.
package folder

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"github.com/pdfmailer/internal/model"
)

// PDFSuffix is matched case-sensitively; "report.PDF" is not listed.
const PDFSuffix = ".pdf"

// ErrInvalidFilename is returned by Write for names that are empty or would
// escape the target folder.
var ErrInvalidFilename = errors.New("folder: invalid filename")

// ListResult separates "nothing matched" from "the folder could not be read".
// Items is never nil.
type ListResult struct {
	Items []model.FileListItem
	Err   error
}

// List returns the non-directory entries directly inside dir whose names end
// in PDFSuffix, in directory order.
func List(dir string) ListResult {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ListResult{Items: []model.FileListItem{}, Err: fmt.Errorf("reading %s: %w", dir, err)}
	}

	items := make([]model.FileListItem, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, PDFSuffix) {
			continue
		}
		items = append(items, model.FileListItem{
			Name:  name,
			Email: strings.TrimSuffix(name, PDFSuffix),
		})
	}
	return ListResult{Items: items}
}

// Write stores data as dir/filename, replacing any existing file. The bytes
// are written unmodified. It returns the number of bytes written.
func Write(dir, filename string, data []byte) (int64, error) {
	if err := validateFilename(filename); err != nil {
		return 0, err
	}

	full := filepath.Join(dir, filename)
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", full, err)
	}

	mt := mimetype.Detect(data)
	if !mt.Is("application/pdf") {
		slog.Warn("folder: written file is not a PDF", "path", full, "detected", mt.String())
	}
	slog.Debug("folder: wrote file", "path", full, "size", humanize.Bytes(uint64(len(data))))

	return int64(len(data)), nil
}

// Remove deletes the file at path.
func Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

func validateFilename(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidFilename, name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q contains NUL", ErrInvalidFilename, name)
	}
	return nil
}
