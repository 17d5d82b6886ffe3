package handlers

import (
	"fmt"
	"net/http"

	"coachdesk/internal/services"

	"github.com/gin-gonic/gin"
)

// ClassHandler serves the admin's working class selection.
type ClassHandler struct {
	testService *services.TestService
}

// NewClassHandler creates the class handler.
func NewClassHandler(testService *services.TestService) *ClassHandler {
	return &ClassHandler{
		testService: testService,
	}
}

// SelectClassRequest is the body of POST /api/admin/select-class.
type SelectClassRequest struct {
	ClassLevel string `json:"class_level"`
}

// SelectClass handles POST /api/admin/select-class.
func (h *ClassHandler) SelectClass(c *gin.Context) {
	var req SelectClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Class level is required!"})
		return
	}

	identity := currentIdentity(c)
	if err := h.testService.SelectClass(c.Request.Context(), identity.Admin, req.ClassLevel); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Class %s selected successfully!", *identity.Admin.SelectedClass)})
}

// CurrentClass handles GET /api/admin/current-class.
func (h *ClassHandler) CurrentClass(c *gin.Context) {
	identity := currentIdentity(c)

	c.JSON(http.StatusOK, gin.H{"selected_class": h.testService.CurrentClass(identity.Admin)})
}
