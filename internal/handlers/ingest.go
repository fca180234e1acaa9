package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// GCSEvent is the payload of a GCS object event.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// IngestPDF returns the CloudEvent function that runs the upload orchestrator
// for PDFs finalized in a GCS bucket. Events from pagesBucket are ignored,
// since that is where split pages are written.
func IngestPDF(svc UploadService, source ObjectSource, pagesBucket string) func(context.Context, cloudevents.Event) error {
	return func(ctx context.Context, e cloudevents.Event) error {
		var gcsEvent GCSEvent
		if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
			slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
			return fmt.Errorf("json.Unmarshal: %w", err)
		}
		logCtx := slog.With("gcsBucket", gcsEvent.Bucket, "gcsObject", gcsEvent.Name, "eventId", e.ID())

		if gcsEvent.Bucket == pagesBucket {
			logCtx.Info("Ignoring event from the split pages bucket.")
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(gcsEvent.Name), ".pdf") {
			logCtx.Info("Ignoring non-PDF object.")
			return nil
		}

		reader, err := source.Open(ctx, gcsEvent.Bucket, gcsEvent.Name)
		if err != nil {
			logCtx.Error("Failed to open source PDF", "error", err)
			return err
		}
		defer reader.Close()

		uri := fmt.Sprintf("gs://%s/%s", gcsEvent.Bucket, gcsEvent.Name)
		summary, err := svc.Process(ctx, reader, uri)
		if err != nil {
			// Returning it marks the function invocation as failed.
			return err
		}
		logCtx.Info("Ingested PDF.", "processedCount", summary.ProcessedCount, "pageCount", summary.PageCount)
		return nil
	}
}
