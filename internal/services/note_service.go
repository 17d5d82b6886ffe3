package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"coachdesk/internal/models"
	"coachdesk/internal/repository"
	"coachdesk/pkg/storage"
)

// NoteService stores study notes and serves them back.
type NoteService struct {
	notes   repository.NoteRepository
	storage *storage.Storage
	now     func() time.Time
}

// NewNoteService creates the note service.
func NewNoteService(notes repository.NoteRepository, vault *storage.Storage) *NoteService {
	return &NoteService{
		notes:   notes,
		storage: vault,
		now:     time.Now,
	}
}

// UploadNote saves the file as <subject>_<title>_<YYYYMMDD>_<file> and records it.
func (s *NoteService) UploadNote(ctx context.Context, title, subject string, file *multipart.FileHeader) (*models.Note, error) {
	if file == nil || file.Filename == "" {
		return nil, invalid("No file selected!")
	}
	title = strings.TrimSpace(title)
	subject = strings.TrimSpace(subject)
	if title == "" || subject == "" {
		return nil, invalid("Title and subject are required!")
	}

	now := s.now()
	name := fmt.Sprintf("%s_%s_%s_%s", subject, title, now.Format("20060102"), file.Filename)

	path, err := s.storage.SaveUpload(file, storage.CategoryNotes, name)
	if errors.Is(err, storage.ErrFileTooLarge) {
		return nil, invalid("Note file is too large!")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save note: %w", err)
	}

	note := &models.Note{
		Title:      title,
		Subject:    subject,
		FilePath:   path,
		UploadDate: models.Today(now),
	}
	if err := s.notes.Create(ctx, note); err != nil {
		_ = s.storage.DeleteFile(path)
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	return note, nil
}

// ListNotes returns notes, only those of subject when it is not empty.
func (s *NoteService) ListNotes(ctx context.Context, subject string) ([]models.Note, error) {
	return s.notes.List(ctx, subject)
}

// NoteFile returns the stored file of a note.
func (s *NoteService) NoteFile(ctx context.Context, id uint) (*StoredFile, error) {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Note not found!")
	}
	if !s.storage.Exists(note.FilePath) {
		return nil, notFound("File not found on server")
	}

	return &StoredFile{
		Path:         note.FilePath,
		DownloadName: filepath.Base(note.FilePath),
	}, nil
}
