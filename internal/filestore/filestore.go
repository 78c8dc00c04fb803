// Package filestore manages the single working directory used for uploaded
// inputs and converted outputs.
package filestore

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"video-to-mp3-service/internal/constants"
)

var (
	filenameSanitizeRegex   = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
	multipleUnderscoreRegex = regexp.MustCompile(`_+`)
)

// Store provides filesystem operations scoped to one working directory.
// Handlers never touch the filesystem directly; they go through a Store.
type Store struct {
	dir string
}

// New creates a Store rooted at dir. The directory is not created until
// EnsureDirectory is called.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the working directory path.
func (s *Store) Dir() string {
	return s.dir
}

// EnsureDirectory creates the working directory if absent. Idempotent.
func (s *Store) EnsureDirectory() error {
	if s.dir == "" {
		return fmt.Errorf("empty directory path")
	}
	if err := os.MkdirAll(s.dir, constants.DirectoryPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", s.dir, err)
	}
	return nil
}

// GenerateUniqueName returns a filename unique within the process, combining
// a nanosecond timestamp with a random suffix. It does not check for on-disk
// collisions; the suffix entropy makes them negligible.
func (s *Store) GenerateUniqueName(extension string) string {
	if extension != "" && !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), suffix, extension)
}

// Path joins a filename with the working directory.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Exists reports whether the given path exists.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Stat returns file metadata for the given path.
func (s *Store) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Delete removes a file. A missing file is a no-op, not an error.
func (s *Store) Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

// FileAge pairs a filename with how long ago it was last modified.
type FileAge struct {
	Name string
	Age  time.Duration
}

// ListWithAge re-reads the working directory and returns each regular file
// with its age. Subdirectories are skipped.
func (s *Store) ListWithAge() ([]FileAge, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", s.dir, err)
	}

	now := time.Now()
	files := make([]FileAge, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		files = append(files, FileAge{Name: entry.Name(), Age: now.Sub(info.ModTime())})
	}
	return files, nil
}

// CleanupOlderThan removes files older than maxAge and returns how many were
// deleted. The first filesystem error aborts the pass, so a failed pass is
// incomplete even though earlier deletions stand.
func (s *Store) CleanupOlderThan(maxAge time.Duration) (int, error) {
	files, err := s.ListWithAge()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, file := range files {
		if file.Age <= maxAge {
			continue
		}
		if err := os.Remove(s.Path(file.Name)); err != nil {
			if os.IsNotExist(err) {
				continue // already gone, e.g. deleted by a concurrent request
			}
			return removed, fmt.Errorf("failed to remove old file %s: %w", file.Name, err)
		}
		removed++
	}
	return removed, nil
}

// SanitizeFilename sanitizes a filename to be safe for file system operations
func SanitizeFilename(fileName string) string {
	if fileName == "" {
		return fallbackFilename()
	}

	baseName := filepath.Base(fileName)
	sanitized := filenameSanitizeRegex.ReplaceAllString(baseName, "_")
	sanitized = multipleUnderscoreRegex.ReplaceAllString(sanitized, "_")
	sanitized = strings.Trim(sanitized, "._")

	if len(sanitized) > constants.MaxFilenameLength {
		ext := filepath.Ext(sanitized)
		baseRunes := []rune(strings.TrimSuffix(sanitized, ext))
		maxBaseLen := constants.MaxFilenameLength - len(ext)

		if maxBaseLen < 0 {
			sanitizedRunes := []rune(sanitized)
			maxLen := constants.MaxFilenameLength
			if len(sanitizedRunes) < maxLen {
				maxLen = len(sanitizedRunes)
			}
			sanitized = string(sanitizedRunes[:maxLen])
		} else if len(baseRunes) > maxBaseLen {
			sanitized = string(baseRunes[:maxBaseLen]) + ext
		}
	}

	if sanitized == "" || sanitized == "." || sanitized == ".." {
		return fallbackFilename()
	}
	return sanitized
}

func fallbackFilename() string {
	return fmt.Sprintf("sanitized_fallback_%d", time.Now().UnixNano())
}
