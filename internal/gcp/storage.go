package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"github.com/Lllllllleong/ticketflow/internal/common"
)

// ObjectStoreConfig configures where split pages are written and how they are addressed.
type ObjectStoreConfig struct {
	Bucket string
	// PublicBaseURL replaces https://storage.googleapis.com/<bucket> in returned URLs.
	PublicBaseURL string
	// PublicRead applies the publicRead predefined ACL. Leave false for
	// buckets with uniform bucket-level access that are already public.
	PublicRead bool
}

// ObjectStore uploads page PDFs to a GCS bucket.
type ObjectStore struct {
	client *storage.Client
	cfg    ObjectStoreConfig
	logger *slog.Logger
}

// NewObjectStore creates an ObjectStore on an existing storage client.
func NewObjectStore(client *storage.Client, cfg ObjectStoreConfig, logger *slog.Logger) *ObjectStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ObjectStore{client: client, cfg: cfg, logger: logger}
}

// Upload writes data to objectName only if it doesn't already exist and returns its public URL.
func (s *ObjectStore) Upload(ctx context.Context, objectName string, data []byte) (string, error) {
	writer := s.client.Bucket(s.cfg.Bucket).Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = "application/pdf"
	if s.cfg.PublicRead {
		writer.PredefinedACL = "publicRead"
	}

	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		return "", uploadError(objectName, err)
	}
	if err := writer.Close(); err != nil {
		return "", uploadError(objectName, err)
	}
	return s.PublicURL(objectName), nil
}

// Delete removes an object. A missing object is not an error.
func (s *ObjectStore) Delete(ctx context.Context, objectName string) error {
	err := s.client.Bucket(s.cfg.Bucket).Object(objectName).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete gs://%s/%s: %w", s.cfg.Bucket, objectName, err)
	}
	return nil
}

// Open streams an object from any bucket the service account can read.
func (s *ObjectStore) Open(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	gcsReader, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, err)
	}
	return gcsReader, nil
}

// Bucket is the bucket split pages are written to.
func (s *ObjectStore) Bucket() string {
	return s.cfg.Bucket
}

// PublicURL is the unauthenticated URL of objectName.
func (s *ObjectStore) PublicURL(objectName string) string {
	escaped := (&url.URL{Path: objectName}).EscapedPath()
	if s.cfg.PublicBaseURL != "" {
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + escaped
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.cfg.Bucket, escaped)
}

func uploadError(objectName string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusForbidden:
			return common.NewAppError(common.CodeUpload, fmt.Sprintf("permission denied writing %s", objectName), err)
		case http.StatusPreconditionFailed:
			return common.NewAppError(common.CodeUpload, fmt.Sprintf("object %s already exists", objectName), err)
		}
	}
	return common.NewAppError(common.CodeUpload, fmt.Sprintf("failed to write %s to GCS", objectName), err)
}
