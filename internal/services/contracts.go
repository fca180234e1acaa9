package services

import (
	"context"
	"io"

	"github.com/Lllllllleong/ticketflow/internal/models"
)

// TextExtractor turns PDF bytes into page-ordered plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, pdf []byte) (string, error)
}

// PageSplitter splits a PDF into standalone single-page PDFs, in page order.
type PageSplitter interface {
	Split(ctx context.Context, src io.Reader) ([][]byte, error)
}

// ObjectStore stores page PDFs and returns a URL they can be fetched from without credentials.
type ObjectStore interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
	Delete(ctx context.Context, name string) error
}

// RecordStore is a thin CRUD wrapper over the tabular backend.
type RecordStore interface {
	Fetch(ctx context.Context, id string) (*models.TicketRecord, error)
	Create(ctx context.Context, fields map[string]any) error
	Update(ctx context.Context, id string, fields map[string]any) error
}

// Completer sends one prompt to a language model and returns its text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// FieldAgent extracts the ticket fields from the record text and the PDF text.
// The returned string is the model's raw reply, kept for diagnostics.
type FieldAgent interface {
	Extract(ctx context.Context, ticketText, pdfText string) (models.ExtractedFields, string, error)
}

// Downloader fetches attachment bytes from a URL.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// UploadNotifier hands a finished upload to downstream processing.
type UploadNotifier interface {
	NotifyUpload(ctx context.Context, handoff models.UploadHandoff) error
}
