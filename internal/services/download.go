package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxAttachmentBytes caps how much of an attachment is read into memory.
const maxAttachmentBytes = 64 << 20

// HTTPDownloader fetches attachments with unauthenticated GET requests.
type HTTPDownloader struct {
	client *http.Client
}

// NewHTTPDownloader creates an HTTPDownloader. A nil client gets a default with the given timeout.
func NewHTTPDownloader(client *http.Client, timeout time.Duration) *HTTPDownloader {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPDownloader{client: client}
}

// Download returns the body of url, failing on any non-200 status.
func (d *HTTPDownloader) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: unexpected status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAttachmentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read attachment body: %w", err)
	}
	if len(data) > maxAttachmentBytes {
		return nil, fmt.Errorf("attachment exceeds %d bytes", maxAttachmentBytes)
	}
	return data, nil
}
