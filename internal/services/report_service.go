package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"coachdesk/internal/metrics"
	"coachdesk/internal/models"
	"coachdesk/internal/repository"
	"coachdesk/pkg/report"
	"coachdesk/pkg/storage"

	"gorm.io/gorm"
)

// Results sheet columns.
var resultsColumns = []report.Column{
	{Title: "Student Name", Width: 55},
	{Title: "Admission Number", Width: 40},
	{Title: "Phone", Width: 35},
	{Title: "Marks Obtained", Width: 33},
	{Title: "Percentage", Width: 32},
}

const (
	fileTimestampLayout = "20060102150405"
	notAvailable        = "N/A"
)

// ReportOptions are the institute details printed on results sheets.
type ReportOptions struct {
	InstituteName     string
	WhatsAppGroupLink string
}

// ReportService builds report cards and results sheets and caches them on
// the result records.
//
// A report card is cached per result in report_card_path. A results sheet is
// cached per test in pdf_path, which all results of the test share. A cached
// path is used only while its file exists.
type ReportService struct {
	tests    repository.TestRepository
	results  repository.TestResultRepository
	storage  *storage.Storage
	renderer *report.Renderer
	metrics  *metrics.Metrics
	opts     ReportOptions
	now      func() time.Time
}

// NewReportService creates the report service. m may be nil.
func NewReportService(
	tests repository.TestRepository,
	results repository.TestResultRepository,
	vault *storage.Storage,
	renderer *report.Renderer,
	m *metrics.Metrics,
	opts ReportOptions,
) *ReportService {
	return &ReportService{
		tests:    tests,
		results:  results,
		storage:  vault,
		renderer: renderer,
		metrics:  m,
		opts:     opts,
		now:      time.Now,
	}
}

// StudentResultPDF returns the report card of one of the student's own
// results, building it if there is no usable cached file.
func (s *ReportService) StudentResultPDF(ctx context.Context, studentID, resultID uint) (*StoredFile, error) {
	result, err := s.results.GetByID(ctx, resultID)
	if err != nil {
		return nil, lookup(err, "Test result not found!")
	}
	if result.StudentID != studentID || result.Test == nil || result.Student == nil {
		return nil, notFound("Test result not found!")
	}

	if result.ReportCardPath != nil && s.storage.Exists(*result.ReportCardPath) {
		s.metrics.ObserveReport(metrics.ModeSingle, metrics.OutcomeCached)
		return pdfFile(*result.ReportCardPath), nil
	}

	now := s.now()
	doc := ReportCardDocument(result.Test, result.Student, result, now)
	// admission numbers are unique where names are not
	name := fmt.Sprintf("%s_%s_%s.pdf", result.Test.Name, result.Student.AdmissionNumber, now.Format(fileTimestampLayout))

	path, err := s.build(doc, name)
	if err != nil {
		s.metrics.ObserveReport(metrics.ModeSingle, metrics.OutcomeError)
		return nil, err
	}

	if err := s.results.SetReportCardPath(ctx, result.ID, path); err != nil {
		return nil, fmt.Errorf("failed to store report card path: %w", err)
	}
	s.metrics.ObserveReport(metrics.ModeSingle, metrics.OutcomeOK)

	slog.Info("report card generated", "result_id", result.ID, "path", path)

	return pdfFile(path), nil
}

// GenerateTestResultsPDF always builds a fresh results sheet for the test and
// points every result at it. It returns the new path.
func (s *ReportService) GenerateTestResultsPDF(ctx context.Context, testID uint) (string, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return "", lookup(err, "Test not found!")
	}

	results, err := s.results.ListByTest(ctx, testID)
	if err != nil {
		return "", fmt.Errorf("failed to load results: %w", err)
	}
	if len(results) == 0 {
		return "", notFound("No results found for this test!")
	}

	var previous string
	if results[0].PDFPath != nil {
		previous = *results[0].PDFPath
	}

	now := s.now()
	doc := ResultsSheetDocument(s.opts, test, results, now)
	name := fmt.Sprintf("%s_%s_%s_%s_results.pdf", test.ClassLevel, test.Subject, test.Name, now.Format(fileTimestampLayout))

	path, err := s.build(doc, name)
	if err != nil {
		s.metrics.ObserveReport(metrics.ModeAggregate, metrics.OutcomeError)
		return "", err
	}

	if err := s.results.SetGroupPDFPath(ctx, testID, path); err != nil {
		return "", fmt.Errorf("failed to store results sheet path: %w", err)
	}
	s.metrics.ObserveReport(metrics.ModeAggregate, metrics.OutcomeOK)

	if previous != "" && previous != path {
		if err := s.storage.DeleteFile(previous); err != nil {
			slog.Warn("failed to delete old results sheet", "test_id", testID, "error", err)
		}
	}

	slog.Info("results sheet generated", "test_id", testID, "path", path)

	return path, nil
}

// TestResultsPDF returns the test's cached results sheet.
func (s *ReportService) TestResultsPDF(ctx context.Context, testID uint) (*StoredFile, error) {
	_, path, err := s.groupPDF(ctx, testID)
	switch {
	case errors.Is(err, ErrPDFNotGenerated):
		return nil, notFound("PDF not found!")
	case err != nil:
		return nil, err
	case !s.storage.Exists(path):
		return nil, notFound("PDF file not found on server!")
	}

	s.metrics.ObserveReport(metrics.ModeAggregate, metrics.OutcomeCached)
	return pdfFile(path), nil
}

// groupPDF loads the test and the path of its results sheet. It returns
// ErrPDFNotGenerated when no sheet was ever built or all results changed since.
func (s *ReportService) groupPDF(ctx context.Context, testID uint) (*models.Test, string, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return nil, "", lookup(err, "Test not found!")
	}

	first, err := s.results.FirstByTest(ctx, testID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return test, "", ErrPDFNotGenerated
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load results: %w", err)
	}
	if first.PDFPath == nil || *first.PDFPath == "" {
		return test, "", ErrPDFNotGenerated
	}

	return test, *first.PDFPath, nil
}

// build renders doc into the results directory. The returned path exists.
func (s *ReportService) build(doc *report.Document, name string) (string, error) {
	path, err := s.storage.WriteFile(storage.CategoryTestResults, name, func(w io.Writer) error {
		return s.renderer.Render(w, doc)
	})
	if err != nil {
		return "", &RenderError{Err: err}
	}
	if !s.storage.Exists(path) {
		return "", &RenderError{Err: fmt.Errorf("generated file %s is missing", path)}
	}
	return path, nil
}

func pdfFile(path string) *StoredFile {
	return &StoredFile{
		Path:         path,
		DownloadName: filepath.Base(path),
	}
}

// ReportCardDocument lays out one student's result for one test.
func ReportCardDocument(test *models.Test, student *models.Student, result *models.TestResult, createdAt time.Time) *report.Document {
	return &report.Document{
		Title: "Test Result: " + test.Name,
		Fields: []report.Field{
			{Label: "Student", Value: student.Name},
			{Label: "Subject", Value: test.Subject},
			{Label: "Class", Value: test.ClassLevel},
			{Label: "Date", Value: test.Date.Format(models.DateLayout)},
			{Label: "Maximum Marks", Value: strconv.Itoa(test.MaxMarks)},
			{Label: "Marks Obtained", Value: FormatMarks(result.MarksObtained)},
			{Label: "Percentage", Value: FormatPercentage(result.MarksObtained, test.MaxMarks)},
		},
		CreatedAt: createdAt,
	}
}

// ResultsSheetDocument lays out every result of a test as a table. Results
// without a loaded student are left out.
func ResultsSheetDocument(opts ReportOptions, test *models.Test, results []models.TestResult, createdAt time.Time) *report.Document {
	table := &report.Table{Columns: resultsColumns}
	for _, r := range results {
		if r.Student == nil {
			continue
		}
		phone := r.Student.Phone
		if phone == "" {
			phone = notAvailable
		}
		table.Rows = append(table.Rows, []string{
			r.Student.Name,
			r.Student.AdmissionNumber,
			phone,
			FormatMarks(r.MarksObtained),
			FormatPercentage(r.MarksObtained, test.MaxMarks),
		})
	}

	doc := &report.Document{
		Title: fmt.Sprintf("%s - %s Results", opts.InstituteName, test.Name),
		Fields: []report.Field{
			{Label: "Subject", Value: test.Subject},
			{Label: "Class", Value: test.ClassLevel},
			{Label: "Date", Value: test.Date.Format(models.DateLayout)},
			{Label: "Maximum Marks", Value: strconv.Itoa(test.MaxMarks)},
		},
		Table:     table,
		CreatedAt: createdAt,
	}

	if opts.WhatsAppGroupLink != "" {
		doc.Notes = []string{"Join our WhatsApp group for more updates:", opts.WhatsAppGroupLink}
		doc.QRCode = opts.WhatsAppGroupLink
	}

	return doc
}

// FormatPercentage renders marks/max as a percentage with two decimals,
// e.g. 45 of 50 is "90.00%". A non-positive max renders as N/A.
func FormatPercentage(marks float64, max int) string {
	if max <= 0 {
		return notAvailable
	}
	return fmt.Sprintf("%.2f%%", marks/float64(max)*100)
}

// FormatMarks renders marks with at least one decimal place: 45 is "45.0",
// 42.5 is "42.5".
func FormatMarks(marks float64) string {
	s := strconv.FormatFloat(marks, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
