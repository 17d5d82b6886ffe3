package handlers

import (
	"fmt"
	"net/http"

	"coachdesk/internal/services"

	"github.com/gin-gonic/gin"
)

const pdfContentType = "application/pdf"

// ReportHandler serves report cards, results sheets and result sharing.
type ReportHandler struct {
	reportService *services.ReportService
	shareService  *services.ShareService
}

// NewReportHandler creates the report handler.
func NewReportHandler(reportService *services.ReportService, shareService *services.ShareService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		shareService:  shareService,
	}
}

// StudentResultPDF handles GET /api/student/test-results/:id/pdf.
func (h *ReportHandler) StudentResultPDF(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	identity := currentIdentity(c)

	file, err := h.reportService.StudentResultPDF(c.Request.Context(), identity.Student.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	sendAttachment(c, file, pdfContentType)
}

// GenerateTestResultsPDF handles POST /api/admin/generate-test-results-pdf/:id.
func (h *ReportHandler) GenerateTestResultsPDF(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.reportService.GenerateTestResultsPDF(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Test results PDF generated successfully!",
		"pdf_url": fmt.Sprintf("/api/admin/test-results-pdf/%d", id),
	})
}

// TestResultsPDF handles GET /api/admin/test-results-pdf/:id.
func (h *ReportHandler) TestResultsPDF(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	file, err := h.reportService.TestResultsPDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	sendAttachment(c, file, pdfContentType)
}

// ShareResults handles GET /api/admin/share-results-whatsapp/:id.
func (h *ReportHandler) ShareResults(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	result, err := h.shareService.ShareResults(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
