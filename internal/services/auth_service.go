package services

import (
	"context"
	"errors"
	"fmt"

	"coachdesk/internal/jwt"
	"coachdesk/internal/models"
	"coachdesk/internal/repository"

	"gorm.io/gorm"
)

// Identity is the resolved holder of a valid token.
type Identity struct {
	Role    models.Role
	Admin   *models.Admin
	Student *models.Student
}

// IsAdmin reports whether the identity is an administrator.
func (i *Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// StudentLoginResult is returned on a successful student login.
type StudentLoginResult struct {
	Token           string `json:"token"`
	StudentID       uint   `json:"student_id"`
	Name            string `json:"name"`
	AdmissionNumber string `json:"admission_number"`
	ClassLevel      string `json:"class_level"`
}

// AuthService issues tokens and resolves them back to admins and students.
type AuthService struct {
	admins      repository.AdminRepository
	students    repository.StudentRepository
	tokens      *jwt.Manager
	credentials CredentialVerifier
}

// NewAuthService creates the auth service.
func NewAuthService(
	admins repository.AdminRepository,
	students repository.StudentRepository,
	tokens *jwt.Manager,
	credentials CredentialVerifier,
) *AuthService {
	return &AuthService{
		admins:      admins,
		students:    students,
		tokens:      tokens,
		credentials: credentials,
	}
}

// AdminLogin checks admin credentials and returns a token.
func (s *AuthService) AdminLogin(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	admin, err := s.admins.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("failed to load admin: %w", err)
	}

	if !s.credentials.Verify(admin.Password, password) {
		return "", ErrInvalidCredentials
	}

	return s.tokens.GenerateToken(models.RoleAdmin, admin.ID)
}

// StudentLogin checks student credentials. login may be the username or the
// admission number.
func (s *AuthService) StudentLogin(ctx context.Context, login, password string) (*StudentLoginResult, error) {
	if login == "" || password == "" {
		return nil, invalid("Username and password are required!")
	}

	student, err := s.students.GetByLogin(ctx, login)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load student: %w", err)
	}

	if !s.credentials.Verify(student.Password, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(models.RoleStudent, student.ID)
	if err != nil {
		return nil, err
	}

	return &StudentLoginResult{
		Token:           token,
		StudentID:       student.ID,
		Name:            student.Name,
		AdmissionNumber: student.AdmissionNumber,
		ClassLevel:      student.ClassLevel,
	}, nil
}

// Authenticate validates a token and loads its subject. A token whose subject
// no longer exists is rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	identity := &Identity{Role: claims.Role}

	switch claims.Role {
	case models.RoleAdmin:
		identity.Admin, err = s.admins.GetByID(ctx, claims.AdminID)
	case models.RoleStudent:
		identity.Student, err = s.students.GetByID(ctx, claims.StudentID)
	default:
		return nil, ErrUnauthorized
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token subject: %w", err)
	}

	return identity, nil
}
