package gcp

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Lllllllleong/ticketflow/internal/common"
	"github.com/Lllllllleong/ticketflow/internal/models"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// RecordStore keeps ticket records as documents of one Firestore collection.
type RecordStore struct {
	client     *firestore.Client
	collection string
}

// NewRecordStore creates a RecordStore.
func NewRecordStore(client *firestore.Client, collection string) *RecordStore {
	return &RecordStore{client: client, collection: collection}
}

// Fetch returns the document with the given id.
func (s *RecordStore) Fetch(ctx context.Context, id string) (*models.TicketRecord, error) {
	snap, err := s.client.Collection(s.collection).Doc(id).Get(ctx)
	if err != nil {
		return nil, firestoreError(id, err)
	}
	return &models.TicketRecord{ID: snap.Ref.ID, Fields: snap.Data()}, nil
}

// Create adds a document with a generated id.
func (s *RecordStore) Create(ctx context.Context, fields map[string]any) error {
	if _, _, err := s.client.Collection(s.collection).Add(ctx, fields); err != nil {
		return common.NewAppError(common.CodeRemote, fmt.Sprintf("failed to create document: %v", err), err)
	}
	return nil
}

// Update overwrites the named fields of an existing document; nil values are written as null.
func (s *RecordStore) Update(ctx context.Context, id string, fields map[string]any) error {
	if _, err := s.client.Collection(s.collection).Doc(id).Update(ctx, buildUpdates(fields)); err != nil {
		return firestoreError(id, err)
	}
	return nil
}

// buildUpdates uses FieldPath so names with spaces are not parsed as dotted paths.
func buildUpdates(fields map[string]any) []firestore.Update {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	updates := make([]firestore.Update, 0, len(names))
	for _, name := range names {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{name}, Value: fields[name]})
	}
	return updates
}

func firestoreError(id string, err error) error {
	if status.Code(err) == codes.NotFound {
		return common.NewAppError(common.CodeNotFound, fmt.Sprintf("document %s not found", id), err)
	}
	return common.NewAppError(common.CodeRemote, err.Error(), err)
}
