// Package upload validates and persists incoming multipart video files.
package upload

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"video-to-mp3-service/internal/filestore"
	"video-to-mp3-service/internal/models"
)

// AllowedExtensions is the allow-list of accepted video source extensions,
// matched case-insensitively.
var AllowedExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".flv":  true,
	".wmv":  true,
	".webm": true,
}

var (
	// ErrUnsupportedFormat indicates the file extension is outside the allow-list.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrFileTooLarge indicates the upload exceeds the configured size cap.
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
)

// AllowedExtensionList returns the allow-list as a sorted, comma-separated
// string for error messages.
func AllowedExtensionList() string {
	exts := make([]string, 0, len(AllowedExtensions))
	for ext := range AllowedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

// Accept validates file against the extension allow-list and maxSize, then
// persists it to the store under a generated unique name that keeps the
// original extension. Nothing is written to disk before validation passes.
// The client-supplied filename is sanitized before it is echoed anywhere.
func Accept(file multipart.File, header *multipart.FileHeader, store *filestore.Store, maxSize int64) (*models.UploadedFile, error) {
	extension := strings.ToLower(filepath.Ext(header.Filename))
	if !AllowedExtensions[extension] {
		return nil, fmt.Errorf("%w: %q (allowed: %s)", ErrUnsupportedFormat, extension, AllowedExtensionList())
	}

	if header.Size > maxSize {
		return nil, ErrFileTooLarge
	}

	storedPath := store.Path(store.GenerateUniqueName(extension))
	out, err := os.Create(storedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file for upload: %w", err)
	}

	// The declared header size is client-controlled, so cap the copy too.
	limited := &io.LimitedReader{R: file, N: maxSize + 1}
	written, err := io.Copy(out, limited)
	if closeErr := out.Close(); closeErr != nil {
		log.Printf("WARN: Error closing saved upload file %s: %v", storedPath, closeErr)
	}
	if err != nil {
		removeQuietly(store, storedPath)
		return nil, fmt.Errorf("failed to save uploaded file: %w", err)
	}
	if limited.N <= 0 {
		removeQuietly(store, storedPath)
		return nil, ErrFileTooLarge
	}

	return &models.UploadedFile{
		OriginalName: filestore.SanitizeFilename(header.Filename),
		StoredPath:   storedPath,
		Extension:    extension,
		Size:         written,
	}, nil
}

func removeQuietly(store *filestore.Store, path string) {
	if err := store.Delete(path); err != nil {
		log.Printf("WARN: Failed to remove upload file %s: %v", path, err)
	}
}
