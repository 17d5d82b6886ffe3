package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"coachdesk/internal/services"

	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "Internal server error"

// respondError writes err as {"message": ...} with the matching status.
func respondError(c *gin.Context, err error) {
	var (
		validation *services.ValidationError
		missing    *services.NotFoundError
		render     *services.RenderError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"message": validation.Message})
	case errors.As(err, &missing):
		c.JSON(http.StatusNotFound, gin.H{"message": missing.Message})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found!"})
	case errors.Is(err, services.ErrPDFNotGenerated):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Generate PDF first!"})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token!"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials!"})
	case errors.As(err, &render):
		slog.Error("failed to build PDF", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": render.Error()})
	default:
		slog.Error("unhandled error", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": internalErrorMessage})
	}
}

// recoverPanic turns a panic into the generic 500 body.
func recoverPanic(c *gin.Context, recovered any) {
	slog.Error("panic recovered", "method", c.Request.Method, "path", c.Request.URL.Path, "panic", recovered)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": internalErrorMessage})
}

// idParam parses a positive integer path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid " + name + "!"})
		return 0, false
	}
	return uint(id), true
}

// sendAttachment streams a stored file as a download.
func sendAttachment(c *gin.Context, file *services.StoredFile, contentType string) {
	if contentType != "" {
		c.Header("Content-Type", contentType)
	}
	c.FileAttachment(file.Path, file.DownloadName)
}
