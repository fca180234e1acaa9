// Package airtable implements the record store over the Airtable REST API.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Lllllllleong/ticketflow/internal/common"
	"github.com/Lllllllleong/ticketflow/internal/models"
)

// Config for the Airtable client.
type Config struct {
	APIKey    string
	BaseID    string
	TableName string
	BaseURL   string        // default https://api.airtable.com/v0
	Timeout   time.Duration // http client timeout
}

// Client reads and writes rows of one Airtable table.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

type recordPayload struct {
	ID     string         `json:"id,omitempty"`
	Fields map[string]any `json:"fields"`
}

// NewClient creates a Client. A nil httpClient gets a default with cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.airtable.com/v0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

// Fetch returns the row with the given id.
func (c *Client) Fetch(ctx context.Context, id string) (*models.TicketRecord, error) {
	raw, err := c.do(ctx, http.MethodGet, c.recordURL(id), nil)
	if err != nil {
		return nil, err
	}
	var rec recordPayload
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode airtable record %s: %w", id, err)
	}
	if rec.ID == "" {
		rec.ID = id
	}
	if rec.Fields == nil {
		rec.Fields = map[string]any{}
	}
	return &models.TicketRecord{ID: rec.ID, Fields: rec.Fields}, nil
}

// Create inserts a new row. The new record id is not needed downstream.
func (c *Client) Create(ctx context.Context, fields map[string]any) error {
	_, err := c.do(ctx, http.MethodPost, c.tableURL(), recordPayload{Fields: fields})
	return err
}

// Update overwrites the named fields of an existing row. Nil values are sent as null.
func (c *Client) Update(ctx context.Context, id string, fields map[string]any) error {
	_, err := c.do(ctx, http.MethodPatch, c.recordURL(id), recordPayload{Fields: fields})
	return err
}

func (c *Client) tableURL() string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.BaseID), url.PathEscape(c.cfg.TableName))
}

func (c *Client) recordURL(id string) string {
	return c.tableURL() + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, common.NewAppError(common.CodeRemote, fmt.Sprintf("airtable request failed: %v", err), err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger.Warn("airtable response body close error", "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read airtable response: %w", err)
	}
	c.logger.Debug("airtable.http.response",
		"method", method,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, common.NewAppError(common.CodeNotFound, string(raw), nil)
	case resp.StatusCode/100 != 2:
		return nil, common.NewAppError(common.CodeRemote, string(raw), fmt.Errorf("airtable status %d", resp.StatusCode))
	}
	return raw, nil
}
