package repository

import (
	"context"

	"coachdesk/internal/models"

	"gorm.io/gorm"
)

// TestRepository provides access to tests.
type TestRepository interface {
	Create(ctx context.Context, test *models.Test) error
	GetByID(ctx context.Context, id uint) (*models.Test, error)
	List(ctx context.Context) ([]models.Test, error)
	ListByClass(ctx context.Context, classLevel string) ([]models.Test, error)
}

type testRepository struct {
	db *gorm.DB
}

// NewTestRepository creates a test repository.
func NewTestRepository(db *gorm.DB) TestRepository {
	return &testRepository{db: db}
}

func (r *testRepository) Create(ctx context.Context, test *models.Test) error {
	return r.db.WithContext(ctx).Create(test).Error
}

func (r *testRepository) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	if err := r.db.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *testRepository) List(ctx context.Context) ([]models.Test, error) {
	var tests []models.Test
	err := r.db.WithContext(ctx).Order("id ASC").Find(&tests).Error
	return tests, err
}

func (r *testRepository) ListByClass(ctx context.Context, classLevel string) ([]models.Test, error) {
	var tests []models.Test
	err := r.db.WithContext(ctx).Where("class_level = ?", classLevel).Order("id ASC").Find(&tests).Error
	return tests, err
}
