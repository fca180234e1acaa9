package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/ticketflow/internal/common"
	"github.com/Lllllllleong/ticketflow/internal/config"
	"github.com/Lllllllleong/ticketflow/internal/models"
)

// TicketProcessorDeps are the collaborators of the ticket processor.
type TicketProcessorDeps struct {
	Records    RecordStore
	Downloader Downloader
	Extractor  TextExtractor
	Agent      FieldAgent
	Logger     *slog.Logger
}

// TicketProcessor fills a record's ticket fields from its attached PDF.
type TicketProcessor struct {
	records    RecordStore
	downloader Downloader
	extractor  TextExtractor
	agent      FieldAgent
	fields     config.FieldNames
	logger     *slog.Logger
}

// NewTicketProcessor creates a TicketProcessor.
func NewTicketProcessor(fields config.FieldNames, deps TicketProcessorDeps) *TicketProcessor {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &TicketProcessor{
		records:    deps.Records,
		downloader: deps.Downloader,
		extractor:  deps.Extractor,
		agent:      deps.Agent,
		fields:     fields,
		logger:     logger,
	}
}

// Process runs fetch, download, text extraction, inference, sanitization and
// write-back for one record, returning the fields it wrote. Each failure ends
// the request; nothing is retried.
func (p *TicketProcessor) Process(ctx context.Context, recordID string) (models.ExtractedFields, error) {
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return nil, common.NewAppError(common.CodeBadRequest, "Missing recordId", nil)
	}
	logCtx := p.logger.With("recordId", recordID)
	logCtx.Info("Processing ticket record.")

	record, err := p.records.Fetch(ctx, recordID)
	if err != nil {
		logCtx.Error("Failed to fetch record", "error", err)
		return nil, common.NewAppError(common.CodeUpstreamFetch, fmt.Sprintf("Failed to fetch record: %s", common.MessageOf(err)), err)
	}

	attachments := record.Attachments(p.fields.Attachment)
	if len(attachments) == 0 || attachments[0].URL == "" {
		logCtx.Warn("Record has no PDF attachment.", "field", p.fields.Attachment)
		return nil, common.NewAppError(common.CodeBadRequest, "No PDF attachment found", nil)
	}
	pdfURL := attachments[0].URL
	ticketText := record.Text(p.fields.TicketText)

	pdfBytes, err := p.downloader.Download(ctx, pdfURL)
	if err != nil {
		logCtx.Error("Failed to download attachment", "error", err, "url", pdfURL)
		return nil, common.NewAppError(common.CodeDownload, "Failed to download PDF", err)
	}

	pdfText, err := p.extractor.ExtractText(ctx, pdfBytes)
	if err != nil {
		logCtx.Error("Failed to extract text from attachment", "error", err)
		return nil, common.NewAppError(common.CodeParse, "Failed to read PDF attachment", err)
	}
	logCtx.Debug("Texts prepared for inference.", "ticketText", ticketText, "pdfText", pdfText)

	extracted, reply, err := p.agent.Extract(ctx, ticketText, pdfText)
	if err != nil {
		// The agent already returns a typed error with a caller-facing message.
		return nil, err
	}
	logCtx.Debug("Model reply received.", "reply", reply)

	cleaned := SanitizeFields(extracted)
	logCtx.Info("Updating record with extracted fields.", "fields", cleaned.Values())

	if err := p.records.Update(ctx, recordID, cleaned.Values()); err != nil {
		logCtx.Error("Failed to update record", "error", err)
		return nil, common.NewAppError(common.CodeRemoteWrite, fmt.Sprintf("Failed to update record: %s", common.MessageOf(err)), err)
	}

	logCtx.Info("Ticket processed successfully.",
		"showName", cleaned.Get(models.FieldShowName),
		"agentOrderId", cleaned.Get(models.FieldAgentOrderID),
	)
	return cleaned, nil
}
