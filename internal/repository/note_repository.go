package repository

import (
	"context"

	"coachdesk/internal/models"

	"gorm.io/gorm"
)

// NoteRepository provides access to study notes.
type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, id uint) (*models.Note, error)
	// List returns all notes, or only those of subject when it is not empty.
	List(ctx context.Context, subject string) ([]models.Note, error)
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository creates a note repository.
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *models.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *noteRepository) GetByID(ctx context.Context, id uint) (*models.Note, error) {
	var note models.Note
	if err := r.db.WithContext(ctx).First(&note, id).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *noteRepository) List(ctx context.Context, subject string) ([]models.Note, error) {
	query := r.db.WithContext(ctx).Order("id ASC")
	if subject != "" {
		query = query.Where("subject = ?", subject)
	}
	var notes []models.Note
	err := query.Find(&notes).Error
	return notes, err
}
