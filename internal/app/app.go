// Package app builds the production clients and orchestrators from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/Lllllllleong/ticketflow/internal/airtable"
	"github.com/Lllllllleong/ticketflow/internal/config"
	"github.com/Lllllllleong/ticketflow/internal/gcp"
	"github.com/Lllllllleong/ticketflow/internal/openai"
	"github.com/Lllllllleong/ticketflow/internal/pdf"
	"github.com/Lllllllleong/ticketflow/internal/services"
)

// App holds the wired orchestrators and every client that needs closing.
type App struct {
	Tickets *services.TicketProcessor
	Uploads *services.UploadOrchestrator
	Objects *gcp.ObjectStore

	closers []func() error
}

// New creates all clients for cfg. storageOpts are passed to the GCS client.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, storageOpts ...option.ClientOption) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{}
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	records, err := a.recordStore(ctx, cfg, httpClient, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	completer, err := a.completer(ctx, cfg, httpClient, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	storageClient, err := storage.NewClient(ctx, storageOpts...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	a.closers = append(a.closers, storageClient.Close)
	a.Objects = gcp.NewObjectStore(storageClient, gcp.ObjectStoreConfig{
		Bucket:        cfg.SplitPagesBucket,
		PublicBaseURL: cfg.PublicBaseURL,
		PublicRead:    cfg.PublicRead,
	}, logger)

	var notifier services.UploadNotifier
	if cfg.WorkflowID != "" {
		wf, err := gcp.NewWorkflowNotifier(ctx, cfg.ProjectID, cfg.WorkflowLocation, cfg.WorkflowID)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, wf.Close)
		notifier = wf
	}

	a.Tickets = services.NewTicketProcessor(cfg.Fields, services.TicketProcessorDeps{
		Records:    records,
		Downloader: services.NewHTTPDownloader(httpClient, cfg.HTTPTimeout),
		Extractor:  pdf.NewTextExtractor(),
		Agent:      services.NewTicketAgent(completer, logger),
		Logger:     logger,
	})
	a.Uploads = services.NewUploadOrchestrator(cfg.Fields, services.UploadOrchestratorDeps{
		Splitter: pdf.NewSplitter("", logger),
		Store:    a.Objects,
		Records:  records,
		Notifier: notifier,
		Logger:   logger,
	})

	logger.Info("Application initialized.",
		"recordBackend", cfg.RecordBackend,
		"llmProvider", cfg.LLMProvider,
		"model", cfg.LLMModel,
		"pagesBucket", cfg.SplitPagesBucket,
		"workflowHandoff", notifier != nil,
	)
	return a, nil
}

func (a *App) recordStore(ctx context.Context, cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (services.RecordStore, error) {
	switch cfg.RecordBackend {
	case config.BackendFirestore:
		client, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return gcp.NewRecordStore(client, cfg.FirestoreCollection), nil
	case config.BackendAirtable:
		return airtable.NewClient(airtable.Config{
			APIKey:    cfg.AirtableAPIKey,
			BaseID:    cfg.AirtableBaseID,
			TableName: cfg.AirtableTableName,
			BaseURL:   cfg.AirtableAPIURL,
			Timeout:   cfg.HTTPTimeout,
		}, httpClient, logger), nil
	default:
		return nil, fmt.Errorf("unknown record backend %q", cfg.RecordBackend)
	}
}

func (a *App) completer(ctx context.Context, cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (services.Completer, error) {
	switch cfg.LLMProvider {
	case config.ProviderVertex:
		client, err := gcp.NewVertexClient(ctx, gcp.VertexConfig{
			ProjectID:         cfg.ProjectID,
			Region:            cfg.VertexAIRegion,
			Model:             cfg.LLMModel,
			MaxOutputTokens:   cfg.LLMMaxTokens,
			SystemInstruction: services.TicketExtractionSystemPrompt,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return client, nil
	case config.ProviderOpenAI:
		return openai.NewClient(openai.Config{
			APIKey:    cfg.OpenAIAPIKey,
			BaseURL:   cfg.OpenAIBaseURL,
			Model:     cfg.LLMModel,
			MaxTokens: cfg.LLMMaxTokens,
			Timeout:   cfg.HTTPTimeout,
		}, httpClient, logger), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}

// Close releases every client in reverse creation order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
