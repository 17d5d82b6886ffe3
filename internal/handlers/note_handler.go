package handlers

import (
	"net/http"

	"coachdesk/internal/models"
	"coachdesk/internal/services"

	"github.com/gin-gonic/gin"
)

// NoteHandler serves study notes.
type NoteHandler struct {
	noteService *services.NoteService
}

// NewNoteHandler creates the note handler.
func NewNoteHandler(noteService *services.NoteService) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
	}
}

// UploadNote handles POST /api/admin/notes (form: note_file, title, subject).
func (h *NoteHandler) UploadNote(c *gin.Context) {
	file, err := c.FormFile("note_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file part!"})
		return
	}

	note, err := h.noteService.UploadNote(c.Request.Context(), c.PostForm("title"), c.PostForm("subject"), file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Note uploaded successfully",
		"id":      note.ID,
	})
}

// ListNotes handles GET /api/notes?subject=.
func (h *NoteHandler) ListNotes(c *gin.Context) {
	notes, err := h.noteService.ListNotes(c.Request.Context(), c.Query("subject"))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(notes))
	for _, n := range notes {
		out = append(out, gin.H{
			"id":          n.ID,
			"title":       n.Title,
			"subject":     n.Subject,
			"upload_date": n.UploadDate.Format(models.DateLayout),
		})
	}

	c.JSON(http.StatusOK, out)
}

// DownloadNote handles GET /api/notes/:id/download.
func (h *NoteHandler) DownloadNote(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	file, err := h.noteService.NoteFile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	sendAttachment(c, file, "")
}
