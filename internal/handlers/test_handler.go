package handlers

import (
	"net/http"

	"coachdesk/internal/models"
	"coachdesk/internal/services"

	"github.com/gin-gonic/gin"
)

// TestHandler serves tests and their results.
type TestHandler struct {
	testService *services.TestService
}

// NewTestHandler creates the test handler.
func NewTestHandler(testService *services.TestService) *TestHandler {
	return &TestHandler{
		testService: testService,
	}
}

// RecordResultsRequest is the body of POST /api/admin/tests/:id/results.
type RecordResultsRequest struct {
	Results []services.ResultEntry `json:"results"`
}

func testResponse(t models.Test) gin.H {
	return gin.H{
		"id":          t.ID,
		"name":        t.Name,
		"subject":     t.Subject,
		"class_level": t.ClassLevel,
		"date":        t.Date.Format(models.DateLayout),
		"max_marks":   t.MaxMarks,
	}
}

func testsResponse(tests []models.Test) []gin.H {
	out := make([]gin.H, 0, len(tests))
	for _, t := range tests {
		out = append(out, testResponse(t))
	}
	return out
}

// CreateTest handles POST /api/admin/tests.
func (h *TestHandler) CreateTest(c *gin.Context) {
	var req services.CreateTestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body!"})
		return
	}

	test, err := h.testService.CreateTest(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Test added successfully",
		"test_id": test.ID,
	})
}

// ListTests handles GET /api/admin/tests.
func (h *TestHandler) ListTests(c *gin.Context) {
	tests, err := h.testService.ListTests(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, testsResponse(tests))
}

// ListClassTests handles GET /api/admin/class-tests.
func (h *TestHandler) ListClassTests(c *gin.Context) {
	identity := currentIdentity(c)

	tests, err := h.testService.ListClassTests(c.Request.Context(), identity.Admin)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, testsResponse(tests))
}

// RecordResults handles POST /api/admin/tests/:id/results.
func (h *TestHandler) RecordResults(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req RecordResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body!"})
		return
	}

	if err := h.testService.RecordResults(c.Request.Context(), id, req.Results); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Test results added successfully"})
}

// ListTestResults handles GET /api/admin/tests/:id/results.
func (h *TestHandler) ListTestResults(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	test, err := h.testService.GetTest(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	results, err := h.testService.ListTestResults(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(results))
	for _, r := range results {
		entry := gin.H{
			"id":                 r.ID,
			"student_id":         r.StudentID,
			"marks_obtained":     r.MarksObtained,
			"percentage":         services.FormatPercentage(r.MarksObtained, test.MaxMarks),
			"shared_to_whatsapp": r.SharedToWhatsApp,
		}
		if r.Student != nil {
			entry["student_name"] = r.Student.Name
			entry["admission_number"] = r.Student.AdmissionNumber
		}
		out = append(out, entry)
	}

	c.JSON(http.StatusOK, out)
}

// StudentTests handles GET /api/student/tests.
func (h *TestHandler) StudentTests(c *gin.Context) {
	identity := currentIdentity(c)

	results, err := h.testService.StudentResults(c.Request.Context(), identity.Student.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(results))
	for _, r := range results {
		if r.Test == nil {
			continue
		}
		out = append(out, gin.H{
			"id":             r.ID,
			"test_id":        r.TestID,
			"test_name":      r.Test.Name,
			"subject":        r.Test.Subject,
			"date":           r.Test.Date.Format(models.DateLayout),
			"max_marks":      r.Test.MaxMarks,
			"marks_obtained": r.MarksObtained,
			"percentage":     services.FormatPercentage(r.MarksObtained, r.Test.MaxMarks),
		})
	}

	c.JSON(http.StatusOK, out)
}
