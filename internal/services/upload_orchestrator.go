package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Lllllllleong/ticketflow/internal/config"
	"github.com/Lllllllleong/ticketflow/internal/models"
)

// UploadOrchestratorDeps are the collaborators of the upload orchestrator.
// Notifier is optional.
type UploadOrchestratorDeps struct {
	Splitter PageSplitter
	Store    ObjectStore
	Records  RecordStore
	Notifier UploadNotifier
	Logger   *slog.Logger
	// NewID generates object names and page identifiers. Defaults to random UUIDs.
	NewID func() string
}

// UploadOrchestrator splits a PDF, uploads each page and records a row per page.
type UploadOrchestrator struct {
	splitter PageSplitter
	store    ObjectStore
	records  RecordStore
	notifier UploadNotifier
	fields   config.FieldNames
	logger   *slog.Logger
	newID    func() string
}

// NewUploadOrchestrator creates an UploadOrchestrator.
func NewUploadOrchestrator(fields config.FieldNames, deps UploadOrchestratorDeps) *UploadOrchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	newID := deps.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &UploadOrchestrator{
		splitter: deps.Splitter,
		store:    deps.Store,
		records:  deps.Records,
		notifier: deps.Notifier,
		fields:   fields,
		logger:   logger,
		newID:    newID,
	}
}

// Process splits src and handles its pages one at a time, in order. A page that
// fails to upload or record is logged and skipped; only a split failure fails
// the whole call.
func (o *UploadOrchestrator) Process(ctx context.Context, src io.Reader, source string) (*models.UploadSummary, error) {
	logCtx := o.logger.With("source", source)

	pages, err := o.splitter.Split(ctx, src)
	if err != nil {
		logCtx.Error("Failed to split PDF", "error", err)
		return nil, fmt.Errorf("split pdf: %w", err)
	}
	logCtx.Info("PDF split into pages.", "pageCount", len(pages))

	summary := &models.UploadSummary{
		PageCount: len(pages),
		Tickets:   make([]models.PageUpload, 0, len(pages)),
	}

	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pageNumber := i + 1
		upload, failure := o.processPage(ctx, logCtx.With("page", pageNumber), pageNumber, page)
		if failure != nil {
			summary.Failures = append(summary.Failures, *failure)
			continue
		}
		summary.Tickets = append(summary.Tickets, *upload)
	}

	summary.ProcessedCount = len(summary.Tickets)
	summary.Success = true
	logCtx.Info("Uploaded and recorded pages.", "processedCount", summary.ProcessedCount, "failedCount", len(summary.Failures))

	o.notify(ctx, logCtx, source, summary)
	return summary, nil
}

func (o *UploadOrchestrator) processPage(ctx context.Context, logCtx *slog.Logger, pageNumber int, data []byte) (*models.PageUpload, *models.PageFailure) {
	objectName := o.newID() + ".pdf"

	pdfURL, err := o.store.Upload(ctx, objectName, data)
	if err != nil {
		logCtx.Error("Failed to upload page", "error", err, "object", objectName)
		return nil, &models.PageFailure{Page: pageNumber, Stage: models.StageUpload, Error: err.Error()}
	}
	logCtx.Info("Uploaded page.", "url", pdfURL)

	pageID := o.newID()
	fields := map[string]any{
		o.fields.PageNumber: pageNumber,
		o.fields.PageID:     pageID,
		o.fields.Attachment: []models.Attachment{{
			URL:      pdfURL,
			Filename: fmt.Sprintf("ticket-page-%d.pdf", pageNumber),
		}},
	}
	if err := o.records.Create(ctx, fields); err != nil {
		logCtx.Error("Failed to create record for page", "error", err)
		// Nothing references the object once its record is gone.
		if delErr := o.store.Delete(ctx, objectName); delErr != nil {
			logCtx.Error("Failed to delete orphaned page object", "error", delErr, "object", objectName)
		}
		return nil, &models.PageFailure{Page: pageNumber, Stage: models.StageRecord, Error: err.Error()}
	}
	logCtx.Info("Record created for page.", "pageId", pageID)

	return &models.PageUpload{ID: pageID, Page: pageNumber, PDFURL: pdfURL}, nil
}

func (o *UploadOrchestrator) notify(ctx context.Context, logCtx *slog.Logger, source string, summary *models.UploadSummary) {
	if o.notifier == nil || summary.ProcessedCount == 0 {
		return
	}
	handoff := models.UploadHandoff{
		Source:         source,
		PageCount:      summary.PageCount,
		ProcessedCount: summary.ProcessedCount,
		Tickets:        summary.Tickets,
	}
	if err := o.notifier.NotifyUpload(ctx, handoff); err != nil {
		logCtx.Error("Failed to hand off upload to workflow", "error", err)
		return
	}
	logCtx.Info("Hand-off to workflow complete.")
}
