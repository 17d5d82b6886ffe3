package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"coachdesk/internal/models"

	"gorm.io/gorm"
)

// StudentRepository provides access to students.
type StudentRepository interface {
	// CreateWithAdmissionNumber assigns the next admission number of the
	// student's class and inserts the student in one transaction.
	CreateWithAdmissionNumber(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id uint) (*models.Student, error)
	GetByUsername(ctx context.Context, username string) (*models.Student, error)
	GetByAdmissionNumber(ctx context.Context, admissionNumber string) (*models.Student, error)
	// GetByLogin looks up by username first, then by admission number.
	GetByLogin(ctx context.Context, login string) (*models.Student, error)
	List(ctx context.Context) ([]models.Student, error)
	ListByClass(ctx context.Context, classLevel string) ([]models.Student, error)
	CountByIDs(ctx context.Context, ids []uint) (int64, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	UpdateAdmissionFormPath(ctx context.Context, id uint, path string) error
	Delete(ctx context.Context, id uint) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository creates a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) CreateWithAdmissionNumber(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last models.Student
		err := tx.Where("class_level = ?", student.ClassLevel).Order("id DESC").First(&last).Error

		seq := 1
		switch {
		case err == nil:
			n, perr := admissionSequence(last.AdmissionNumber, student.ClassLevel)
			if perr != nil {
				return perr
			}
			seq = n + 1
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		student.AdmissionNumber = FormatAdmissionNumber(student.ClassLevel, seq)
		return tx.Create(student).Error
	})
}

// FormatAdmissionNumber renders PCC<class><5-digit seq>.
func FormatAdmissionNumber(classLevel string, seq int) string {
	return fmt.Sprintf("%s%05d", models.AdmissionPrefix(classLevel), seq)
}

func admissionSequence(admissionNumber, classLevel string) (int, error) {
	prefix := models.AdmissionPrefix(classLevel)
	if !strings.HasPrefix(admissionNumber, prefix) {
		return 0, fmt.Errorf("admission number %q does not start with %q", admissionNumber, prefix)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(admissionNumber, prefix))
	if err != nil {
		return 0, fmt.Errorf("admission number %q has no numeric sequence: %w", admissionNumber, err)
	}
	return n, nil
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (*models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) GetByUsername(ctx context.Context, username string) (*models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) GetByAdmissionNumber(ctx context.Context, admissionNumber string) (*models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Where("admission_number = ?", admissionNumber).First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) GetByLogin(ctx context.Context, login string) (*models.Student, error) {
	student, err := r.GetByUsername(ctx, login)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.GetByAdmissionNumber(ctx, login)
	}
	return student, err
}

func (r *studentRepository) List(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).Order("id ASC").Find(&students).Error
	return students, err
}

func (r *studentRepository) ListByClass(ctx context.Context, classLevel string) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).Where("class_level = ?", classLevel).Order("id ASC").Find(&students).Error
	return students, err
}

func (r *studentRepository) CountByIDs(ctx context.Context, ids []uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Student{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}

func (r *studentRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Student{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *studentRepository) UpdateAdmissionFormPath(ctx context.Context, id uint, path string) error {
	result := r.db.WithContext(ctx).Model(&models.Student{}).
		Where("id = ?", id).
		Update("admission_form_path", path)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *studentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Student{}, id).Error
}
