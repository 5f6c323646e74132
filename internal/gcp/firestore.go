package gcp

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/techfourbate/MindSpero-V1/internal/models"
)

// MetadataStore persists run outcomes in the notes collection and answers
// entitlement queries from the profiles collection.
type MetadataStore struct {
	client             *firestore.Client
	profilesCollection string
	notesCollection    string
}

// NewMetadataStore creates and returns a MetadataStore for the given project.
func NewMetadataStore(ctx context.Context, projectID string) (*MetadataStore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return &MetadataStore{
		client:             client,
		profilesCollection: GetEnv("PROFILES_COLLECTION", "profiles"),
		notesCollection:    GetEnv("NOTES_COLLECTION", "notes"),
	}, nil
}

// HasActiveEntitlement reports whether any of the user's trial, bonus-trial
// or subscription windows ends strictly after now. A missing profile means
// no entitlement, not an error.
func (m *MetadataStore) HasActiveEntitlement(ctx context.Context, userID string, now time.Time) (bool, error) {
	snap, err := m.client.Collection(m.profilesCollection).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load profile for %s: %w", userID, err)
	}

	var profile models.Profile
	if err := snap.DataTo(&profile); err != nil {
		return false, fmt.Errorf("failed to decode profile for %s: %w", userID, err)
	}
	return profile.HasActiveWindow(now), nil
}

// InsertResult writes one outcome record. Records are immutable after write.
func (m *MetadataStore) InsertResult(ctx context.Context, record *models.NoteRecord) error {
	if _, _, err := m.client.Collection(m.notesCollection).Add(ctx, record); err != nil {
		return fmt.Errorf("failed to insert note record: %w", err)
	}
	return nil
}

func (m *MetadataStore) Close() error {
	return m.client.Close()
}
