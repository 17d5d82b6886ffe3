package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"coachdesk/internal/models"
	"coachdesk/internal/repository"
	"coachdesk/pkg/storage"
)

// CreateTestInput describes a new test.
type CreateTestInput struct {
	Name       string `json:"name"`
	Subject    string `json:"subject"`
	ClassLevel string `json:"class_level"`
	Date       string `json:"date"`
	MaxMarks   int    `json:"max_marks"`
}

// ResultEntry is one student's marks.
type ResultEntry struct {
	StudentID     uint    `json:"student_id"`
	MarksObtained float64 `json:"marks_obtained"`
}

// TestService manages tests, their results and the admin's class selection.
type TestService struct {
	tests    repository.TestRepository
	results  repository.TestResultRepository
	students repository.StudentRepository
	admins   repository.AdminRepository
	storage  *storage.Storage
}

// NewTestService creates the test service.
func NewTestService(
	tests repository.TestRepository,
	results repository.TestResultRepository,
	students repository.StudentRepository,
	admins repository.AdminRepository,
	vault *storage.Storage,
) *TestService {
	return &TestService{
		tests:    tests,
		results:  results,
		students: students,
		admins:   admins,
		storage:  vault,
	}
}

// CreateTest records a new test. MaxMarks must be positive.
func (s *TestService) CreateTest(ctx context.Context, in CreateTestInput) (*models.Test, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Subject = strings.TrimSpace(in.Subject)
	in.ClassLevel = strings.TrimSpace(in.ClassLevel)
	if in.Name == "" || in.Subject == "" || in.ClassLevel == "" {
		return nil, invalid("Name, subject and class level are required!")
	}

	date, err := models.ParseDate(in.Date)
	if err != nil {
		return nil, invalid("Invalid date format!")
	}
	if in.MaxMarks <= 0 {
		return nil, invalid("Maximum marks must be greater than zero!")
	}

	test := &models.Test{
		Name:       in.Name,
		Subject:    in.Subject,
		ClassLevel: in.ClassLevel,
		Date:       date,
		MaxMarks:   in.MaxMarks,
	}
	if err := s.tests.Create(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}

	return test, nil
}

// GetTest loads a test.
func (s *TestService) GetTest(ctx context.Context, id uint) (*models.Test, error) {
	test, err := s.tests.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Test not found!")
	}
	return test, nil
}

// ListTests returns every test.
func (s *TestService) ListTests(ctx context.Context) ([]models.Test, error) {
	return s.tests.List(ctx)
}

// ListClassTests returns the tests of the admin's selected class.
func (s *TestService) ListClassTests(ctx context.Context, admin *models.Admin) ([]models.Test, error) {
	classLevel, err := selectedClass(admin)
	if err != nil {
		return nil, err
	}
	return s.tests.ListByClass(ctx, classLevel)
}

// RecordResults stores marks for a test. Resubmitted marks replace the old
// ones and any PDF built from them is dropped.
func (s *TestService) RecordResults(ctx context.Context, testID uint, entries []ResultEntry) error {
	if _, err := s.GetTest(ctx, testID); err != nil {
		return err
	}
	if len(entries) == 0 {
		return invalid("Results list is required!")
	}

	ids := make([]uint, 0, len(entries))
	seen := make(map[uint]struct{}, len(entries))
	results := make([]models.TestResult, 0, len(entries))
	for _, e := range entries {
		if e.MarksObtained < 0 {
			return invalid("Marks cannot be negative!")
		}
		if _, ok := seen[e.StudentID]; !ok {
			seen[e.StudentID] = struct{}{}
			ids = append(ids, e.StudentID)
		}
		results = append(results, models.TestResult{
			StudentID:     e.StudentID,
			MarksObtained: e.MarksObtained,
		})
	}

	if err := checkStudentsExist(ctx, s.students, ids); err != nil {
		return err
	}

	stale, err := s.results.UpsertMany(ctx, testID, results)
	if err != nil {
		return fmt.Errorf("failed to record results: %w", err)
	}

	// cached PDFs show the old marks
	for _, path := range stale {
		if err := s.storage.DeleteFile(path); err != nil {
			slog.Warn("failed to delete stale PDF", "test_id", testID, "path", path, "error", err)
		}
	}

	return nil
}

// ListTestResults returns a test's results with students loaded.
func (s *TestService) ListTestResults(ctx context.Context, testID uint) ([]models.TestResult, error) {
	if _, err := s.GetTest(ctx, testID); err != nil {
		return nil, err
	}
	return s.results.ListByTest(ctx, testID)
}

// StudentResults returns a student's results with tests loaded.
func (s *TestService) StudentResults(ctx context.Context, studentID uint) ([]models.TestResult, error) {
	return s.results.ListByStudent(ctx, studentID)
}

// SelectClass sets the class the admin works with.
func (s *TestService) SelectClass(ctx context.Context, admin *models.Admin, classLevel string) error {
	classLevel = strings.TrimSpace(classLevel)
	if classLevel == "" {
		return invalid("Class level is required!")
	}

	if err := s.admins.UpdateSelectedClass(ctx, admin.ID, classLevel); err != nil {
		return lookup(err, "Admin not found!")
	}
	admin.SelectedClass = &classLevel

	return nil
}

// CurrentClass returns the admin's selected class, nil if never set.
func (s *TestService) CurrentClass(admin *models.Admin) *string {
	return admin.SelectedClass
}
