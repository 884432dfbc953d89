package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/click-call/click-call-backend/internal/projects/domain"
)

// Store is the persistence surface for projects. Lookup misses return
// (nil, nil): "not found" is a display state, never an error.
type Store interface {
	List(ctx context.Context) ([]domain.Project, error)
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetBySegments(ctx context.Context, user, call string) (*domain.Project, error)
	Upsert(ctx context.Context, p domain.Project) (*domain.Project, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// RemoteStore is a Store that can absorb a batch of locally staged records.
type RemoteStore interface {
	Store
	Sync(ctx context.Context, upserts, inserts []domain.Project) SyncResult
}

// RemoteError carries the row-store failure verbatim to write-path callers,
// with an HTTP-status-like signal. Read paths never produce one.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote store: %s (status %d)", e.Message, e.Status)
}

// SyncResult reports each partition of a sync independently: a failed insert
// batch does not mask a successful upsert batch, and vice versa.
type SyncResult struct {
	Upserted  int
	Inserted  int
	UpsertErr error
	InsertErr error
}

func (r SyncResult) OK() bool {
	return r.UpsertErr == nil && r.InsertErr == nil
}

// Err combines the partition failures, or nil when both applied.
func (r SyncResult) Err() error {
	switch {
	case r.UpsertErr != nil && r.InsertErr != nil:
		return fmt.Errorf("upsert batch: %v; insert batch: %v", r.UpsertErr, r.InsertErr)
	case r.UpsertErr != nil:
		return r.UpsertErr
	case r.InsertErr != nil:
		return r.InsertErr
	default:
		return nil
	}
}

// Status picks the first failing partition's status, 200 when both applied.
func (r SyncResult) Status() int {
	for _, err := range []error{r.UpsertErr, r.InsertErr} {
		if re, ok := err.(*RemoteError); ok {
			return re.Status
		}
	}
	if !r.OK() {
		return 500
	}
	return 200
}

// IsValidUUID reports whether id can be sent to a backend with UUID primary
// keys. Locally generated fallback ids (timestamps and the like) fail this.
func IsValidUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Partition splits records for a sync: valid-UUID ids go to the upsert batch
// unchanged, anything else goes to the insert batch with its id stripped so
// the backend assigns one.
func Partition(records []domain.Project) (upserts, inserts []domain.Project) {
	for _, p := range records {
		if IsValidUUID(p.ID) {
			upserts = append(upserts, p)
			continue
		}
		p.ID = ""
		inserts = append(inserts, p)
	}
	return upserts, inserts
}
