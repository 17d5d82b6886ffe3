package services

import (
	"context"
	"fmt"

	"coachdesk/internal/models"
	"coachdesk/internal/repository"
)

// AttendanceEntry marks one student on the submitted date.
type AttendanceEntry struct {
	StudentID uint `json:"student_id"`
	Present   bool `json:"present"`
}

// AttendanceService records and reports daily attendance.
type AttendanceService struct {
	attendance repository.AttendanceRepository
	students   repository.StudentRepository
}

// NewAttendanceService creates the attendance service.
func NewAttendanceService(attendance repository.AttendanceRepository, students repository.StudentRepository) *AttendanceService {
	return &AttendanceService{
		attendance: attendance,
		students:   students,
	}
}

// MarkAttendance stores presence for every entry on date (YYYY-MM-DD).
// Marking the same student twice on a date keeps the last value.
func (s *AttendanceService) MarkAttendance(ctx context.Context, date string, entries []AttendanceEntry) error {
	day, err := models.ParseDate(date)
	if err != nil {
		return invalid("Invalid date format!")
	}
	if len(entries) == 0 {
		return invalid("Attendance list is required!")
	}

	ids := make([]uint, 0, len(entries))
	seen := make(map[uint]struct{}, len(entries))
	records := make([]models.Attendance, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.StudentID]; !ok {
			seen[e.StudentID] = struct{}{}
			ids = append(ids, e.StudentID)
		}
		records = append(records, models.Attendance{
			StudentID: e.StudentID,
			Date:      day,
			Present:   e.Present,
		})
	}

	if err := checkStudentsExist(ctx, s.students, ids); err != nil {
		return err
	}

	if err := s.attendance.UpsertMany(ctx, records); err != nil {
		return fmt.Errorf("failed to mark attendance: %w", err)
	}

	return nil
}

// StudentAttendance returns a student's attendance ordered by date.
func (s *AttendanceService) StudentAttendance(ctx context.Context, studentID uint) ([]models.Attendance, error) {
	return s.attendance.ListByStudent(ctx, studentID)
}

// AttendanceOn returns every record for one date with the students loaded.
func (s *AttendanceService) AttendanceOn(ctx context.Context, date string) ([]models.Attendance, error) {
	day, err := models.ParseDate(date)
	if err != nil {
		return nil, invalid("Invalid date format!")
	}
	return s.attendance.ListByDate(ctx, day)
}

// checkStudentsExist fails with a ValidationError unless every id (distinct)
// names a student.
func checkStudentsExist(ctx context.Context, students repository.StudentRepository, ids []uint) error {
	count, err := students.CountByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to check students: %w", err)
	}
	if count != int64(len(ids)) {
		return invalid("Unknown student in list!")
	}
	return nil
}
