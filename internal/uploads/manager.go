// Package uploads stores listing images in a single flat directory, addressed
// by sanitized filename.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SanitizeFilename strips path components and unsafe characters from a
// client-supplied filename. Returns "" if nothing usable remains.
func SanitizeFilename(name string) string {
	// Windows clients may send backslash-separated paths.
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	// Collapse dot runs so no ".." survives, then strip leading/trailing
	// dots and underscores (keeps the result visible and traversal-free).
	for strings.Contains(name, "..") {
		name = strings.ReplaceAll(name, "..", ".")
	}
	return strings.Trim(name, "._")
}

// Manager writes uploaded files into a fixed directory and deletes them on
// listing replace/delete. Two uploads that sanitize to the same name
// overwrite each other; there is no collision avoidance.
type Manager struct {
	dir string
}

// NewManager creates the upload directory if needed and returns a Manager
// rooted at it.
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &Manager{dir: dir}, nil
}

// Dir returns the upload directory, for static-file wiring.
func (m *Manager) Dir() string {
	return m.dir
}

// Path returns the on-disk path for a stored filename.
func (m *Manager) Path(filename string) string {
	return filepath.Join(m.dir, filename)
}

// Store writes the uploaded file into the upload directory under its
// sanitized name and returns that name. A nil or empty upload returns ""
// with no error, meaning the caller keeps no image reference.
func (m *Manager) Store(file *multipart.FileHeader) (string, error) {
	if file == nil || file.Filename == "" {
		return "", nil
	}

	name := SanitizeFilename(file.Filename)
	if name == "" {
		return "", fmt.Errorf("uploaded filename %q sanitizes to nothing", file.Filename)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(m.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file %s: %w", name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write upload file %s: %w", name, err)
	}
	return name, nil
}

// Delete removes a stored file. A missing file is not an error, and a name
// that would escape the upload directory is refused.
func (m *Manager) Delete(filename string) error {
	if filename == "" {
		return nil
	}
	if SanitizeFilename(filename) != filename {
		return fmt.Errorf("refusing to delete unsafe filename %q", filename)
	}
	if err := os.Remove(filepath.Join(m.dir, filename)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete upload file %s: %w", filename, err)
	}
	return nil
}
