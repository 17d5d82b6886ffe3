package handlers

import (
	"errors"
	"net/http"

	"coachdesk/internal/models"
	"coachdesk/internal/services"

	"github.com/gin-gonic/gin"
)

// StudentHandler serves student records and admission forms.
type StudentHandler struct {
	studentService *services.StudentService
}

// NewStudentHandler creates the student handler.
func NewStudentHandler(studentService *services.StudentService) *StudentHandler {
	return &StudentHandler{
		studentService: studentService,
	}
}

func studentResponse(s models.Student) gin.H {
	return gin.H{
		"id":                 s.ID,
		"admission_number":   s.AdmissionNumber,
		"name":               s.Name,
		"email":              s.Email,
		"phone":              s.Phone,
		"school_name":        s.SchoolName,
		"class_level":        s.ClassLevel,
		"admission_date":     s.AdmissionDate.Format(models.DateLayout),
		"has_admission_form": s.HasAdmissionForm(),
	}
}

func studentsResponse(students []models.Student) []gin.H {
	out := make([]gin.H, 0, len(students))
	for _, s := range students {
		out = append(out, studentResponse(s))
	}
	return out
}

// ListStudents handles GET /api/admin/students.
func (h *StudentHandler) ListStudents(c *gin.Context) {
	students, err := h.studentService.ListStudents(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, studentsResponse(students))
}

// ListClassStudents handles GET /api/admin/class-students.
func (h *StudentHandler) ListClassStudents(c *gin.Context) {
	identity := currentIdentity(c)

	students, err := h.studentService.ListClassStudents(c.Request.Context(), identity.Admin)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, studentsResponse(students))
}

// CreateStudent handles POST /api/admin/students. The body is a form with an
// optional admission_form file.
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	in := services.CreateStudentInput{
		Name:       c.PostForm("name"),
		Email:      c.PostForm("email"),
		Phone:      c.PostForm("phone"),
		SchoolName: c.PostForm("school_name"),
		ClassLevel: c.PostForm("class_level"),
	}

	file, err := c.FormFile("admission_form")
	switch {
	case err == nil:
		in.AdmissionForm = file
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid form data!"})
		return
	}

	created, err := h.studentService.CreateStudent(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":          "Student added successfully!",
		"id":               created.Student.ID,
		"admission_number": created.Student.AdmissionNumber,
		"username":         created.Username,
		"password":         created.Password,
	})
}

// UploadAdmissionForm handles POST /api/admin/students/:id/admission-form.
func (h *StudentHandler) UploadAdmissionForm(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	file, err := c.FormFile("admission_form")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file part!"})
		return
	}

	if err := h.studentService.UploadAdmissionForm(c.Request.Context(), id, file); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Admission form uploaded successfully"})
}

// OwnAdmissionForm handles GET /api/student/admission-form.
func (h *StudentHandler) OwnAdmissionForm(c *gin.Context) {
	identity := currentIdentity(c)

	file, err := h.studentService.AdmissionForm(identity.Student)
	if err != nil {
		respondError(c, err)
		return
	}

	sendAttachment(c, file, "")
}

// AdmissionForm handles GET /api/admin/students/:id/admission-form.
func (h *StudentHandler) AdmissionForm(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	file, err := h.studentService.AdmissionFormFor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	sendAttachment(c, file, "")
}

// AdmissionFormThumbnail handles GET /api/admin/students/:id/admission-form/thumbnail.
func (h *StudentHandler) AdmissionFormThumbnail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	file, err := h.studentService.AdmissionFormThumbnail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.File(file.Path)
}
