package handlers

import (
	"net/http"
	"time"

	"coachdesk/internal/models"
	"coachdesk/internal/services"

	"github.com/gin-gonic/gin"
)

// AttendanceHandler serves attendance marking and reports.
type AttendanceHandler struct {
	attendanceService *services.AttendanceService
}

// NewAttendanceHandler creates the attendance handler.
func NewAttendanceHandler(attendanceService *services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceService: attendanceService,
	}
}

// MarkAttendanceRequest is the body of POST /api/admin/attendance.
type MarkAttendanceRequest struct {
	Date       string                     `json:"date"`
	Attendance []services.AttendanceEntry `json:"attendance"`
}

// MarkAttendance handles POST /api/admin/attendance.
func (h *AttendanceHandler) MarkAttendance(c *gin.Context) {
	var req MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body!"})
		return
	}

	if err := h.attendanceService.MarkAttendance(c.Request.Context(), req.Date, req.Attendance); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attendance marked successfully"})
}

// StudentAttendance handles GET /api/student/attendance.
func (h *AttendanceHandler) StudentAttendance(c *gin.Context) {
	identity := currentIdentity(c)

	records, err := h.attendanceService.StudentAttendance(c.Request.Context(), identity.Student.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(records))
	for _, r := range records {
		out = append(out, gin.H{
			"date":    r.Date.Format(models.DateLayout),
			"present": r.Present,
		})
	}

	c.JSON(http.StatusOK, out)
}

// AttendanceOn handles GET /api/admin/attendance?date=YYYY-MM-DD, today by default.
func (h *AttendanceHandler) AttendanceOn(c *gin.Context) {
	date := c.DefaultQuery("date", models.Today(time.Now()).Format(models.DateLayout))

	records, err := h.attendanceService.AttendanceOn(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(records))
	for _, r := range records {
		entry := gin.H{
			"student_id": r.StudentID,
			"date":       r.Date.Format(models.DateLayout),
			"present":    r.Present,
		}
		if r.Student != nil {
			entry["name"] = r.Student.Name
			entry["admission_number"] = r.Student.AdmissionNumber
		}
		out = append(out, entry)
	}

	c.JSON(http.StatusOK, out)
}
