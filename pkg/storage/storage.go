package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// File categories, each a subdirectory of the storage root.
const (
	CategoryAdmissionForms = "admission_forms"
	CategoryNotes          = "notes"
	CategoryTestResults    = "test_results"

	tempDir = "tmp"
)

// ErrFileTooLarge is returned when an upload exceeds the size limit.
var ErrFileTooLarge = errors.New("file size exceeds maximum allowed size")

// Storage is the file vault for uploaded and generated files.
type Storage struct {
	basePath    string
	maxFileSize int64
}

// NewStorage creates the storage root and its category directories.
func NewStorage(basePath string, maxFileSize int64) (*Storage, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage path: %w", err)
	}

	for _, dir := range []string{CategoryAdmissionForms, CategoryNotes, CategoryTestResults, tempDir} {
		if err := os.MkdirAll(filepath.Join(abs, dir), 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	return &Storage{
		basePath:    abs,
		maxFileSize: maxFileSize,
	}, nil
}

// BasePath returns the absolute storage root.
func (s *Storage) BasePath() string {
	return s.basePath
}

// CheckSize returns ErrFileTooLarge when size is over the upload limit.
func (s *Storage) CheckSize(size int64) error {
	if size > s.maxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// SaveUpload stores an uploaded file under category as SecureFilename(name).
// A file with the same name is overwritten. Image uploads also get a thumbnail.
func (s *Storage) SaveUpload(file *multipart.FileHeader, category, name string) (string, error) {
	if err := s.CheckSize(file.Size); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	return s.save(src, category, name, strings.HasPrefix(file.Header.Get("Content-Type"), "image/"))
}

// save copies src into place through WriteFile, so a failed copy leaves
// nothing behind.
func (s *Storage) save(src io.Reader, category, name string, image bool) (string, error) {
	filePath, err := s.WriteFile(category, name, func(w io.Writer) error {
		if _, err := io.Copy(w, src); err != nil {
			return fmt.Errorf("failed to copy file: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if image {
		if err := s.createThumbnail(filePath); err != nil {
			slog.Warn("failed to create thumbnail", "path", filePath, "error", err)
		}
	}

	return filePath, nil
}

// WriteFile writes a generated file under category. fn writes into a
// temporary file which is moved into place only when fn succeeds, so a
// failed build never leaves a file at the returned path.
func (s *Storage) WriteFile(category, name string, fn func(w io.Writer) error) (string, error) {
	fileName := SecureFilename(name)
	if fileName == "" {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	finalPath := filepath.Join(s.basePath, category, fileName)
	tmpPath := filepath.Join(s.basePath, tempDir, uuid.New().String()+filepath.Ext(fileName))

	tmp, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := fn(tmp); err != nil {
		tmp.Close()
		_ = s.DeleteFile(tmpPath)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = s.DeleteFile(tmpPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = s.DeleteFile(tmpPath)
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	return finalPath, nil
}

// Exists reports whether path names an existing regular file.
func (s *Storage) Exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// createThumbnail writes a 300x300 JPEG next to an image.
func (s *Storage) createThumbnail(filePath string) error {
	img, err := imaging.Open(filePath)
	if err != nil {
		return err
	}

	thumbnail := imaging.Fit(img, 300, 300, imaging.Lanczos)

	return imaging.Save(thumbnail, s.ThumbnailPath(filePath), imaging.JPEGQuality(85))
}

// DeleteFile removes a file and its thumbnail, if any.
func (s *Storage) DeleteFile(filePath string) error {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	if err := os.Remove(s.ThumbnailPath(filePath)); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to delete thumbnail", "path", filePath, "error", err)
	}

	return nil
}

// ThumbnailPath returns where the thumbnail of filePath lives.
func (s *Storage) ThumbnailPath(filePath string) string {
	return strings.TrimSuffix(filePath, filepath.Ext(filePath)) + "_thumb.jpg"
}

// CleanupTemp removes temp files older than maxAge, left by interrupted writes.
func (s *Storage) CleanupTemp(maxAge time.Duration) error {
	dir := filepath.Join(s.basePath, tempDir)

	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && time.Since(info.ModTime()) > maxAge {
			return os.Remove(path)
		}

		return nil
	})
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces name to a flat ASCII file name: path separators and
// whitespace become underscores, other unsafe characters are dropped, and
// leading dots and underscores are trimmed.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "/", " ")
	name = strings.ReplaceAll(name, "\\", " ")
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}
