package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"coachdesk/internal/jwt"
	"coachdesk/internal/metrics"
	"coachdesk/internal/repository"
	"coachdesk/internal/services"
	"coachdesk/pkg/database"
	"coachdesk/pkg/report"
	"coachdesk/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

type server struct {
	t      *testing.T
	router *gin.Engine
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	db, err := database.NewDatabase(filepath.Join(dir, "test.db"), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.CreateDefaultAdmin("pcc", "pcc@8618"))

	vault, err := storage.NewStorage(filepath.Join(dir, "uploads"), 1<<20)
	require.NoError(t, err)

	verifier := services.PlainVerifier{}
	adminRepo := repository.NewAdminRepository(db.DB)
	studentRepo := repository.NewStudentRepository(db.DB)
	testRepo := repository.NewTestRepository(db.DB)
	resultRepo := repository.NewTestResultRepository(db.DB)
	m := metrics.New()

	reports := services.NewReportService(testRepo, resultRepo, vault, report.NewRenderer(), m, services.ReportOptions{
		InstituteName:     "Padashetty Coaching Class",
		WhatsAppGroupLink: "https://chat.whatsapp.com/example",
	})

	svc := Services{
		Auth:       services.NewAuthService(adminRepo, studentRepo, jwt.NewManager("test-secret", time.Hour), verifier),
		Students:   services.NewStudentService(studentRepo, vault, verifier),
		Attendance: services.NewAttendanceService(repository.NewAttendanceRepository(db.DB), studentRepo),
		Notes:      services.NewNoteService(repository.NewNoteRepository(db.DB), vault),
		Tests:      services.NewTestService(testRepo, resultRepo, studentRepo, adminRepo, vault),
		Reports:    reports,
		Share: services.NewShareService(reports, resultRepo, vault, nil, services.ShareOptions{
			WhatsAppGroupLink: "https://chat.whatsapp.com/example",
			WhatsAppShareBase: "https://wa.me/",
		}),
	}

	return &server{t: t, router: NewRouter(svc, m, RouterOptions{CORSOrigins: []string{"*"}})}
}

func (s *server) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *server) json(method, path, token string, payload any) *httptest.ResponseRecorder {
	s.t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(s.t, err)
	return s.do(method, path, token, bytes.NewReader(data), "application/json")
}

func (s *server) form(path, token string, fields map[string]string, fileField, fileName string, content []byte) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(s.t, mw.WriteField(k, v))
	}
	if fileField != "" {
		part, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(s.t, err)
		_, err = part.Write(content)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())
	return s.do(http.MethodPost, path, token, &buf, mw.FormDataContentType())
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, w)["message"].(string)
}

func (s *server) adminToken() string {
	s.t.Helper()
	w := s.json(http.MethodPost, "/api/admin/login", "", map[string]string{"username": "pcc", "password": "pcc@8618"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	return decode[map[string]string](s.t, w)["token"]
}

type enrolled struct {
	ID              uint   `json:"id"`
	AdmissionNumber string `json:"admission_number"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	token           string
}

func (s *server) enrol(admin, name, class string) enrolled {
	s.t.Helper()
	w := s.form("/api/admin/students", admin, map[string]string{
		"name": name, "class_level": class, "phone": "98450",
	}, "", "", nil)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	e := decode[enrolled](s.t, w)

	w = s.json(http.MethodPost, "/api/student/login", "", map[string]string{"username": e.Username, "password": e.Password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	e.token = decode[map[string]any](s.t, w)["token"].(string)
	return e
}

func (s *server) createTest(admin string) uint {
	s.t.Helper()
	w := s.json(http.MethodPost, "/api/admin/tests", admin, map[string]any{
		"name": "Unit 1", "subject": "Maths", "class_level": "7th", "date": "2024-07-01", "max_marks": 50,
	})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	return uint(decode[map[string]any](s.t, w)["test_id"].(float64))
}

func TestAuthRequired(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/api/admin/students", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token is missing!", message(t, w))

	w = s.do(http.MethodGet, "/api/admin/students", "garbage", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token!", message(t, w))

	w = s.do(http.MethodGet, "/api/notes", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleSeparation(t *testing.T) {
	s := newServer(t)
	admin := s.adminToken()
	student := s.enrol(admin, "Asha", "7th")

	w := s.do(http.MethodGet, "/api/admin/students", student.token, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not authorized!", message(t, w))

	w = s.do(http.MethodGet, "/api/student/tests", admin, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not accessible by admin!", message(t, w))

	w = s.do(http.MethodGet, "/api/student/tests", student.token, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestLoginFailures(t *testing.T) {
	s := newServer(t)

	w := s.json(http.MethodPost, "/api/admin/login", "", map[string]string{"username": "pcc", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", message(t, w))

	w = s.json(http.MethodPost, "/api/student/login", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username and password are required!", message(t, w))

	w = s.json(http.MethodPost, "/api/student/login", "", map[string]string{"username": "ghost", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials!", message(t, w))
}

func TestStudentEnrolmentAndAdmissionLogin(t *testing.T) {
	s := newServer(t)
	admin := s.adminToken()

	first := s.enrol(admin, "Asha", "7th")
	second := s.enrol(admin, "Ravi", "7th")

	assert.Equal(t, "PCC7th00001", first.AdmissionNumber)
	assert.Equal(t, "PCC7th00002", second.AdmissionNumber)

	w := s.json(http.MethodPost, "/api/student/login", "", map[string]string{
		"admission_number": first.AdmissionNumber, "password": first.Password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	assert.Equal(t, "Asha", body["name"])
	assert.Equal(t, "7th", body["class_level"])

	w = s.do(http.MethodGet, "/api/admin/students", admin, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 2)

	w = s.form("/api/admin/students", admin, map[string]string{"class_level": "7th"}, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Student name is required!", message(t, w))
}

func TestAdmissionFormUploadAndDownload(t *testing.T) {
	s := newServer(t)
	admin := s.adminToken()
	student := s.enrol(admin, "Asha", "7th")

	w := s.do(http.MethodGet, "/api/student/admission-form", student.token, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No admission form available!", message(t, w))

	w = s.form(fmt.Sprintf("/api/admin/students/%d/admission-form", student.ID), admin, nil,
		"admission_form", "form.pdf", []byte("%PDF-1.4 form"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/student/admission-form", student.token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4 form", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "PCC7th00001_admission_form.pdf")

	w = s.do(http.MethodGet, "/api/admin/students/999/admission-form", admin, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Student not found!", message(t, w))
}

func TestAttendanceMarkingIsIdempotent(t *testing.T) {
	s := newServer(t)
	admin := s.adminToken()
	student := s.enrol(admin, "Asha", "7th")

	mark := func(present bool) {
		w := s.json(http.MethodPost, "/api/admin/attendance", admin, map[string]any{
			"date":       "2024-07-01",
			"attendance": []map[string]any{{"student_id": student.ID, "present": present}},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	mark(true)
	mark(false)

	w := s.do(http.MethodGet, "/api/admin/attendance?date=2024-07-01", admin, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	records := decode[[]map[string]any](t, w)
	require.Len(t, records, 1)
	assert.Equal(t, false, records[0]["present"])
	assert.Equal(t, "Asha", records[0]["name"])

	w = s.do(http.MethodGet, "/api/student/attendance", student.token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"date":"2024-07-01","present":false}]`, w.Body.String())

	w = s.json(http.MethodPost, "/api/admin/attendance", admin, map[string]any{
		"date":       "01-07-2024",
		"attendance": []map[string]any{{"student_id": student.ID, "present": true}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid date format!", message(t, w))
}

func TestResultsUpsertAndReportCard(t *testing.T) {
	s := newServer(t)
	admin := s.adminToken()
	student := s.enrol(admin, "Asha", "7th")
	testID := s.createTest(admin)

	record := func(marks float64) {
		w := s.json(http.MethodPost, fmt.Sprintf("/api/admin/tests/%d/results", testID), admin, map[string]any{
			"results": []map[string]any{{"student_id": student.ID, "marks_obtained": marks}},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	record(30)
	record(42)

	w := s.do(http.MethodGet, fmt.Sprintf("/api/admin/tests/%d/results", testID), admin, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	results := decode[[]map[string]any](t, w)
	require.Len(t, results, 1)
	assert.Equal(t, 42.0, results[0]["marks_obtained"])
	assert.Equal(t, "84.00%", results[0]["percentage"])

	w = s.do(http.MethodGet, "/api/student/tests", student.token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	tests := decode[[]map[string]any](t, w)
	require.Len(t, tests, 1)
	resultID := uint(tests[0]["id"].(float64))

	w = s.do(http.MethodGet, fmt.Sprintf("/api/student/test-results/%d/pdf", resultID), student.token, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))

	other := s.enrol(admin, "Ravi", "7th")
	w = s.do(http.MethodGet, fmt.Sprintf("/api/student/test-results/%d/pdf", resultID), other.token, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Test result not found!", message(t, w))
}

func TestGroupResultsPDFAndShare(t *testing.T) {
	s := newServer(t)
	admin := s.adminToken()
	student := s.enrol(admin, "Asha", "7th")
	testID := s.createTest(admin)

	w := s.do(http.MethodGet, fmt.Sprintf("/api/admin/share-results-whatsapp/%d", testID), admin, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Generate PDF first!", message(t, w))

	w = s.do(http.MethodPost, fmt.Sprintf("/api/admin/generate-test-results-pdf/%d", testID), admin, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No results found for this test!", message(t, w))

	w = s.json(http.MethodPost, fmt.Sprintf("/api/admin/tests/%d/results", testID), admin, map[string]any{
		"results": []map[string]any{{"student_id": student.ID, "marks_obtained": 40}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/admin/generate-test-results-pdf/%d", testID), admin, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	pdfURL := decode[map[string]string](t, w)["pdf_url"]
	assert.Equal(t, fmt.Sprintf("/api/admin/test-results-pdf/%d", testID), pdfURL)

	w = s.do(http.MethodGet, pdfURL+"?token="+admin, "", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))

	w = s.do(http.MethodGet, pdfURL+"?token="+student.token, "", nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/admin/share-results-whatsapp/%d", testID), admin, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	share := decode[map[string]string](t, w)
	assert.Equal(t, "https://chat.whatsapp.com/example", share["whatsapp_link"])
	assert.True(t, strings.HasPrefix(share["whatsapp_share_link"], "https://wa.me/?text=Test%20results%20for%20Unit%201"))
	assert.Equal(t, "Test results for Unit 1 are ready to share!", share["message"])

	w = s.do(http.MethodGet, fmt.Sprintf("/api/admin/tests/%d/results", testID), admin, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[[]map[string]any](t, w)[0]["shared_to_whatsapp"])
}

func TestNotesUploadListAndDownload(t *testing.T) {
	s := newServer(t)
	admin := s.adminToken()
	student := s.enrol(admin, "Asha", "7th")

	w := s.form("/api/admin/notes", admin, map[string]string{"title": "Fractions", "subject": "Maths"},
		"note_file", "fractions.txt", []byte("halves and quarters"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	noteID := uint(decode[map[string]any](t, w)["id"].(float64))

	w = s.form("/api/admin/notes", admin, map[string]string{"title": "Fractions"},
		"note_file", "fractions.txt", []byte("x"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Title and subject are required!", message(t, w))

	w = s.do(http.MethodGet, "/api/notes?subject=Maths", student.token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	notes := decode[[]map[string]any](t, w)
	require.Len(t, notes, 1)
	assert.Equal(t, "Fractions", notes[0]["title"])

	w = s.do(http.MethodGet, "/api/notes?subject=Physics", student.token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = s.do(http.MethodGet, fmt.Sprintf("/api/notes/%d/download?token=%s", noteID, student.token), "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "halves and quarters", w.Body.String())

	w = s.do(http.MethodGet, fmt.Sprintf("/api/notes/%d/download", noteID), "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClassSelection(t *testing.T) {
	s := newServer(t)
	admin := s.adminToken()
	s.enrol(admin, "Asha", "7th")
	s.enrol(admin, "Meera", "8th")

	w := s.do(http.MethodGet, "/api/admin/class-students", admin, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No class selected!", message(t, w))

	w = s.json(http.MethodPost, "/api/admin/select-class", admin, map[string]string{"class_level": "8th"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Class 8th selected successfully!", message(t, w))

	w = s.do(http.MethodGet, "/api/admin/current-class", admin, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"selected_class":"8th"}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/admin/class-students", admin, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	students := decode[[]map[string]any](t, w)
	require.Len(t, students, 1)
	assert.Equal(t, "Meera", students[0]["name"])
}

func TestInvalidIDAndUnknownRoute(t *testing.T) {
	s := newServer(t)
	admin := s.adminToken()

	w := s.do(http.MethodGet, "/api/admin/tests/abc/results", admin, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid id!", message(t, w))

	w = s.do(http.MethodGet, "/api/admin/tests/7/results", admin, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Test not found!", message(t, w))

	w = s.do(http.MethodGet, "/nowhere", "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPanicBecomesJSON500(t *testing.T) {
	s := newServer(t)
	s.router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := s.do(http.MethodGet, "/boom", "", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", message(t, w))
}

func TestHealthHeadersAndMetrics(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = s.do(http.MethodGet, "/metrics", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="/health",status="200"} 1`)
}
