package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"coachdesk/internal/repository"
	"coachdesk/pkg/storage"
	"coachdesk/pkg/whatsapp"
)

// ResultsBroadcaster posts a published results sheet somewhere outside the API.
type ResultsBroadcaster interface {
	SendDocument(caption, path string) error
}

// ShareResult holds the links returned when results are published.
type ShareResult struct {
	WhatsAppLink      string `json:"whatsapp_link"`
	WhatsAppShareLink string `json:"whatsapp_share_link"`
	Message           string `json:"message"`
}

// ShareOptions configure the links handed out on publication.
type ShareOptions struct {
	WhatsAppGroupLink string
	WhatsAppShareBase string
}

// ShareService publishes a test's results sheet.
type ShareService struct {
	reports     *ReportService
	results     repository.TestResultRepository
	storage     *storage.Storage
	broadcaster ResultsBroadcaster
	opts        ShareOptions
}

// NewShareService creates the share service. broadcaster may be nil.
func NewShareService(
	reports *ReportService,
	results repository.TestResultRepository,
	vault *storage.Storage,
	broadcaster ResultsBroadcaster,
	opts ShareOptions,
) *ShareService {
	return &ShareService{
		reports:     reports,
		results:     results,
		storage:     vault,
		broadcaster: broadcaster,
		opts:        opts,
	}
}

// ShareResults marks the test's results as shared and returns the group link
// and a pre-filled share link. The results sheet must have been generated.
func (s *ShareService) ShareResults(ctx context.Context, testID uint) (*ShareResult, error) {
	test, path, err := s.reports.groupPDF(ctx, testID)
	if err != nil && !errors.Is(err, ErrPDFNotGenerated) {
		return nil, err
	}
	if errors.Is(err, ErrPDFNotGenerated) || !s.storage.Exists(path) {
		return nil, ErrPDFNotGenerated
	}

	if err := s.results.MarkShared(ctx, testID); err != nil {
		return nil, fmt.Errorf("failed to mark results shared: %w", err)
	}

	text := whatsapp.ShareText(test.Name, test.ClassLevel, test.Subject, test.MaxMarks)

	if s.broadcaster != nil {
		if err := s.broadcaster.SendDocument(text, path); err != nil {
			slog.Error("failed to broadcast results", "test_id", testID, "error", err)
		}
	}

	return &ShareResult{
		WhatsAppLink:      s.opts.WhatsAppGroupLink,
		WhatsAppShareLink: whatsapp.ShareLink(s.opts.WhatsAppShareBase, text),
		Message:           fmt.Sprintf("Test results for %s are ready to share!", test.Name),
	}, nil
}
