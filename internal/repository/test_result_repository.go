package repository

import (
	"context"

	"coachdesk/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TestResultRepository provides access to test results and their cached PDFs.
type TestResultRepository interface {
	// UpsertMany writes marks for one test. An existing (test_id, student_id)
	// row gets the new marks and loses its report card; the test's group PDF
	// is dropped because it no longer matches the marks. It returns the paths
	// of the dropped PDFs so the caller can remove the files.
	UpsertMany(ctx context.Context, testID uint, results []models.TestResult) ([]string, error)
	GetByID(ctx context.Context, id uint) (*models.TestResult, error)
	ListByTest(ctx context.Context, testID uint) ([]models.TestResult, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.TestResult, error)
	// FirstByTest returns the lowest-id result of the test.
	FirstByTest(ctx context.Context, testID uint) (*models.TestResult, error)
	SetReportCardPath(ctx context.Context, id uint, path string) error
	// SetGroupPDFPath stores path on every result of the test.
	SetGroupPDFPath(ctx context.Context, testID uint, path string) error
	MarkShared(ctx context.Context, testID uint) error
}

type testResultRepository struct {
	db *gorm.DB
}

// NewTestResultRepository creates a test result repository.
func NewTestResultRepository(db *gorm.DB) TestResultRepository {
	return &testResultRepository{db: db}
}

func (r *testResultRepository) UpsertMany(ctx context.Context, testID uint, results []models.TestResult) ([]string, error) {
	var stale []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		studentIDs := make([]uint, 0, len(results))
		for _, res := range results {
			studentIDs = append(studentIDs, res.StudentID)
		}

		var cards []string
		if err := tx.Model(&models.TestResult{}).
			Where("test_id = ? AND student_id IN ?", testID, studentIDs).
			Where("report_card_path IS NOT NULL AND report_card_path <> ''").
			Pluck("report_card_path", &cards).Error; err != nil {
			return err
		}

		var sheets []string
		if err := tx.Model(&models.TestResult{}).
			Where("test_id = ? AND pdf_path IS NOT NULL AND pdf_path <> ''", testID).
			Distinct("pdf_path").
			Pluck("pdf_path", &sheets).Error; err != nil {
			return err
		}

		for i := range results {
			results[i].TestID = testID
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "test_id"}, {Name: "student_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"marks_obtained":   results[i].MarksObtained,
					"report_card_path": nil,
				}),
			}).Create(&results[i]).Error
			if err != nil {
				return err
			}
		}

		if err := tx.Model(&models.TestResult{}).
			Where("test_id = ?", testID).
			Update("pdf_path", nil).Error; err != nil {
			return err
		}

		stale = append(cards, sheets...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stale, nil
}

func (r *testResultRepository) GetByID(ctx context.Context, id uint) (*models.TestResult, error) {
	var result models.TestResult
	err := r.db.WithContext(ctx).Preload("Test").Preload("Student").First(&result, id).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *testResultRepository) ListByTest(ctx context.Context, testID uint) ([]models.TestResult, error) {
	var results []models.TestResult
	err := r.db.WithContext(ctx).Preload("Student").
		Where("test_id = ?", testID).
		Order("id ASC").Find(&results).Error
	return results, err
}

func (r *testResultRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.TestResult, error) {
	var results []models.TestResult
	err := r.db.WithContext(ctx).Preload("Test").
		Where("student_id = ?", studentID).
		Order("id ASC").Find(&results).Error
	return results, err
}

func (r *testResultRepository) FirstByTest(ctx context.Context, testID uint) (*models.TestResult, error) {
	var result models.TestResult
	err := r.db.WithContext(ctx).Where("test_id = ?", testID).Order("id ASC").First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *testResultRepository) SetReportCardPath(ctx context.Context, id uint, path string) error {
	return r.db.WithContext(ctx).Model(&models.TestResult{}).
		Where("id = ?", id).
		Update("report_card_path", path).Error
}

func (r *testResultRepository) SetGroupPDFPath(ctx context.Context, testID uint, path string) error {
	return r.db.WithContext(ctx).Model(&models.TestResult{}).
		Where("test_id = ?", testID).
		Update("pdf_path", path).Error
}

func (r *testResultRepository) MarkShared(ctx context.Context, testID uint) error {
	return r.db.WithContext(ctx).Model(&models.TestResult{}).
		Where("test_id = ?", testID).
		Update("shared_to_whatsapp", true).Error
}
