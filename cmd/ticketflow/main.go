package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Lllllllleong/ticketflow/internal/app"
	"github.com/Lllllllleong/ticketflow/internal/config"
	"github.com/Lllllllleong/ticketflow/internal/handlers"
)

var (
	appInstance *app.App
	cfg         *config.Config
	once        sync.Once
	initErr     error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("ProcessTicket", processTicket)
	functions.HTTP("UploadPDF", uploadPDF)
	functions.CloudEvent("IngestPDF", ingestPDF)
}

// main starts the Functions Framework locally. Deployed functions only use init.
func main() {
	if err := initialize(); err != nil {
		os.Exit(1)
	}
	slog.Info("Starting functions framework", "port", cfg.Port)
	if err := funcframework.Start(cfg.Port); err != nil {
		slog.Error("funcframework.Start failed", "error", err)
		os.Exit(1)
	}
}

// initialize builds the clients once per instance.
func initialize() error {
	once.Do(func() {
		cfg, initErr = config.Load()
		if initErr != nil {
			return
		}
		appInstance, initErr = app.New(context.Background(), cfg, slog.Default())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
	}
	return initErr
}

func processTicket(w http.ResponseWriter, r *http.Request) {
	if err := initialize(); err != nil {
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}
	handlers.ProcessTicket(appInstance.Tickets).ServeHTTP(w, r)
}

func uploadPDF(w http.ResponseWriter, r *http.Request) {
	if err := initialize(); err != nil {
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}
	handlers.UploadPDF(appInstance.Uploads).ServeHTTP(w, r)
}

func ingestPDF(ctx context.Context, e cloudevents.Event) error {
	if err := initialize(); err != nil {
		return err
	}
	return handlers.IngestPDF(appInstance.Uploads, appInstance.Objects, appInstance.Objects.Bucket())(ctx, e)
}
