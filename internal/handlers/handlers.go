// Package handlers adapts the orchestrators to HTTP and CloudEvent functions.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/Lllllllleong/ticketflow/internal/models"
)

// TicketService processes one ticket record.
type TicketService interface {
	Process(ctx context.Context, recordID string) (models.ExtractedFields, error)
}

// UploadService splits and records one PDF.
type UploadService interface {
	Process(ctx context.Context, src io.Reader, source string) (*models.UploadSummary, error)
}

// ObjectSource opens stored objects for the ingest path.
type ObjectSource interface {
	Open(ctx context.Context, bucket, object string) (io.ReadCloser, error)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
