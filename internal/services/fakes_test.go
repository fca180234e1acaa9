package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Lllllllleong/ticketflow/internal/common"
	"github.com/Lllllllleong/ticketflow/internal/config"
	"github.com/Lllllllleong/ticketflow/internal/models"
)

var testFields = config.FieldNames{
	Attachment: "Attachment",
	TicketText: "Ticket Text",
	PageNumber: "Page Number",
	PageID:     "Page UUID",
}

type updateCall struct {
	ID     string
	Fields map[string]any
}

type fakeRecords struct {
	mu        sync.Mutex
	records   map[string]*models.TicketRecord
	fetchErr  error
	updateErr error
	// createErrAt fails the n-th Create call (1-based).
	createErrAt map[int]error
	creates     []map[string]any
	updates     []updateCall
}

func (f *fakeRecords) Fetch(ctx context.Context, id string) (*models.TicketRecord, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	rec, ok := f.records[id]
	if !ok {
		return nil, common.NewAppError(common.CodeNotFound, `{"error":"NOT_FOUND"}`, nil)
	}
	return rec, nil
}

func (f *fakeRecords) Create(ctx context.Context, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, fields)
	if err := f.createErrAt[len(f.creates)]; err != nil {
		return err
	}
	return nil
}

func (f *fakeRecords) Update(ctx context.Context, id string, fields map[string]any) error {
	f.updates = append(f.updates, updateCall{ID: id, Fields: fields})
	return f.updateErr
}

type fakeDownloader struct {
	data  map[string][]byte
	err   error
	calls []string
}

func (d *fakeDownloader) Download(ctx context.Context, url string) ([]byte, error) {
	d.calls = append(d.calls, url)
	if d.err != nil {
		return nil, d.err
	}
	b, ok := d.data[url]
	if !ok {
		return nil, fmt.Errorf("download %s: unexpected status 404", url)
	}
	return b, nil
}

type fakeExtractor struct {
	text string
	err  error
	got  []byte
}

func (e *fakeExtractor) ExtractText(ctx context.Context, pdf []byte) (string, error) {
	e.got = pdf
	return e.text, e.err
}

type fakeCompleter struct {
	reply   string
	err     error
	prompts []string
}

func (c *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	return c.reply, c.err
}

type fakeSplitter struct {
	pages [][]byte
	err   error
	read  []byte
}

func (s *fakeSplitter) Split(ctx context.Context, src io.Reader) ([][]byte, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	s.read = b
	return s.pages, s.err
}

type fakeStore struct {
	// uploadErrAt fails the n-th Upload call (1-based).
	uploadErrAt map[int]error
	deleteErr   error
	uploads     []string
	deleted     []string
	stored      map[string][]byte
}

func (s *fakeStore) Upload(ctx context.Context, name string, data []byte) (string, error) {
	s.uploads = append(s.uploads, name)
	if err := s.uploadErrAt[len(s.uploads)]; err != nil {
		return "", err
	}
	if s.stored == nil {
		s.stored = map[string][]byte{}
	}
	s.stored[name] = data
	return "https://storage.googleapis.com/ticket-pages/" + name, nil
}

func (s *fakeStore) Delete(ctx context.Context, name string) error {
	s.deleted = append(s.deleted, name)
	delete(s.stored, name)
	return s.deleteErr
}

type fakeNotifier struct {
	err      error
	handoffs []models.UploadHandoff
}

func (n *fakeNotifier) NotifyUpload(ctx context.Context, h models.UploadHandoff) error {
	n.handoffs = append(n.handoffs, h)
	return n.err
}

// sequentialIDs returns id-1, id-2, ... so tests can predict generated names.
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

var errBoom = errors.New("boom")
