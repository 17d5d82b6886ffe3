package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"coachdesk/internal/models"
	"coachdesk/internal/repository"
	"coachdesk/pkg/storage"
)

// CreateStudentInput is the admin's enrolment form.
type CreateStudentInput struct {
	Name          string
	Email         string
	Phone         string
	SchoolName    string
	ClassLevel    string
	AdmissionForm *multipart.FileHeader
}

// CreatedStudent is a new student with the generated login. Password is the
// plain value and is never stored or shown again.
type CreatedStudent struct {
	Student  *models.Student
	Username string
	Password string
}

// StoredFile is a file to be sent as an attachment.
type StoredFile struct {
	Path         string
	DownloadName string
}

// StudentService enrols students and manages their admission forms.
type StudentService struct {
	students    repository.StudentRepository
	storage     *storage.Storage
	credentials CredentialVerifier
	now         func() time.Time
}

// NewStudentService creates the student service.
func NewStudentService(
	students repository.StudentRepository,
	vault *storage.Storage,
	credentials CredentialVerifier,
) *StudentService {
	return &StudentService{
		students:    students,
		storage:     vault,
		credentials: credentials,
		now:         time.Now,
	}
}

// CreateStudent enrols a student, assigning the next admission number of the
// class and a username derived from the name.
func (s *StudentService) CreateStudent(ctx context.Context, in CreateStudentInput) (*CreatedStudent, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.ClassLevel = strings.TrimSpace(in.ClassLevel)
	if in.Name == "" {
		return nil, invalid("Student name is required!")
	}
	if in.ClassLevel == "" {
		return nil, invalid("Class level is required!")
	}
	if in.AdmissionForm != nil {
		if err := s.storage.CheckSize(in.AdmissionForm.Size); err != nil {
			return nil, invalid("Admission form is too large!")
		}
	}

	username, err := s.uniqueUsername(ctx, BaseUsername(in.Name))
	if err != nil {
		return nil, err
	}
	password := username + "123"

	stored, err := s.credentials.Hash(password)
	if err != nil {
		return nil, err
	}

	student := &models.Student{
		Username:      username,
		Password:      stored,
		Name:          in.Name,
		Email:         in.Email,
		Phone:         in.Phone,
		SchoolName:    in.SchoolName,
		ClassLevel:    in.ClassLevel,
		AdmissionDate: models.Today(s.now()),
	}
	if err := s.students.CreateWithAdmissionNumber(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	if in.AdmissionForm != nil && in.AdmissionForm.Filename != "" {
		if err := s.attachForm(ctx, student, in.AdmissionForm); err != nil {
			// a retry must not enrol the student twice
			if derr := s.students.Delete(ctx, student.ID); derr != nil {
				slog.Error("failed to roll back student", "student_id", student.ID, "error", derr)
			}
			return nil, err
		}
	}

	return &CreatedStudent{
		Student:  student,
		Username: username,
		Password: password,
	}, nil
}

// BaseUsername lowercases name and joins its words with underscores.
func BaseUsername(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// uniqueUsername returns base, or base_2, base_3 ... if base is taken.
func (s *StudentService) uniqueUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for n := 2; ; n++ {
		taken, err := s.students.UsernameTaken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "_" + strconv.Itoa(n)
	}
}

// ListStudents returns every student.
func (s *StudentService) ListStudents(ctx context.Context) ([]models.Student, error) {
	return s.students.List(ctx)
}

// ListClassStudents returns the students of the admin's selected class.
func (s *StudentService) ListClassStudents(ctx context.Context, admin *models.Admin) ([]models.Student, error) {
	classLevel, err := selectedClass(admin)
	if err != nil {
		return nil, err
	}
	return s.students.ListByClass(ctx, classLevel)
}

// UploadAdmissionForm stores a form for an existing student, replacing any
// earlier one.
func (s *StudentService) UploadAdmissionForm(ctx context.Context, studentID uint, file *multipart.FileHeader) error {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return lookup(err, "Student not found!")
	}
	if file == nil || file.Filename == "" {
		return invalid("No file selected!")
	}

	return s.attachForm(ctx, student, file)
}

func (s *StudentService) attachForm(ctx context.Context, student *models.Student, file *multipart.FileHeader) error {
	path, err := s.storage.SaveUpload(file, storage.CategoryAdmissionForms, student.AdmissionNumber+"_"+file.Filename)
	if errors.Is(err, storage.ErrFileTooLarge) {
		return invalid("Admission form is too large!")
	}
	if err != nil {
		return fmt.Errorf("failed to save admission form: %w", err)
	}

	previous := student.AdmissionFormPath
	if err := s.students.UpdateAdmissionFormPath(ctx, student.ID, path); err != nil {
		if path != previous {
			_ = s.storage.DeleteFile(path)
		}
		return fmt.Errorf("failed to store admission form path: %w", err)
	}
	student.AdmissionFormPath = path

	if previous != "" && previous != path {
		if err := s.storage.DeleteFile(previous); err != nil {
			slog.Warn("failed to delete old admission form", "student_id", student.ID, "error", err)
		}
	}

	return nil
}

// AdmissionForm returns the student's own admission form.
func (s *StudentService) AdmissionForm(student *models.Student) (*StoredFile, error) {
	if !student.HasAdmissionForm() {
		return nil, notFound("No admission form available!")
	}
	if !s.storage.Exists(student.AdmissionFormPath) {
		return nil, notFound("File not found on server")
	}

	return &StoredFile{
		Path:         student.AdmissionFormPath,
		DownloadName: student.AdmissionNumber + "_admission_form" + filepath.Ext(student.AdmissionFormPath),
	}, nil
}

// AdmissionFormFor returns a student's admission form for an admin.
func (s *StudentService) AdmissionFormFor(ctx context.Context, studentID uint) (*StoredFile, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, lookup(err, "Student not found!")
	}
	return s.AdmissionForm(student)
}

// AdmissionFormThumbnail returns the preview of an image admission form.
func (s *StudentService) AdmissionFormThumbnail(ctx context.Context, studentID uint) (*StoredFile, error) {
	form, err := s.AdmissionFormFor(ctx, studentID)
	if err != nil {
		return nil, err
	}

	thumb := s.storage.ThumbnailPath(form.Path)
	if !s.storage.Exists(thumb) {
		return nil, notFound("No thumbnail available!")
	}

	return &StoredFile{
		Path:         thumb,
		DownloadName: filepath.Base(thumb),
	}, nil
}

func selectedClass(admin *models.Admin) (string, error) {
	if admin == nil || admin.SelectedClass == nil || *admin.SelectedClass == "" {
		return "", invalid("No class selected!")
	}
	return *admin.SelectedClass, nil
}
