package service

import (
	"context"
	"log"

	"github.com/click-call/click-call-backend/internal/projects/domain"
	"github.com/click-call/click-call-backend/internal/projects/repository"
)

// Service applies the store policy on top of the selected backend: reads
// degrade to the local cache and never fail visibly, writes surface their
// failure to the caller.
type Service struct {
	primary repository.Store
	local   repository.Store
	remote  repository.RemoteStore // nil when running local-only
}

// New selects the backend once at construction. When remote is nil every
// operation runs against the local store and Sync reports remote-disabled.
func New(remote repository.RemoteStore, local *repository.LocalStore) *Service {
	s := &Service{local: local}
	if remote != nil {
		s.primary = remote
		s.remote = remote
	} else {
		s.primary = local
	}
	return s
}

// RemoteEnabled reports which backend was selected at construction.
func (s *Service) RemoteEnabled() bool {
	return s.remote != nil
}

// List returns all projects, newest first. Backend read errors degrade to
// the local cache and, failing that, to an empty list.
func (s *Service) List(ctx context.Context) []domain.Project {
	arr, err := s.primary.List(ctx)
	if err != nil {
		log.Printf("[projects] list failed, falling back to local cache: %v", err)
		arr, err = s.local.List(ctx)
		if err != nil {
			return []domain.Project{}
		}
	}
	if arr == nil {
		arr = []domain.Project{}
	}
	return arr
}

// GetByID returns nil on a miss. Remote errors fall back to a local scan.
func (s *Service) GetByID(ctx context.Context, id string) *domain.Project {
	p, err := s.primary.GetByID(ctx, id)
	if err != nil {
		log.Printf("[projects] get %s failed, falling back to local cache: %v", id, err)
		p, _ = s.local.GetByID(ctx, id)
	}
	return p
}

// GetBySegments resolves a public {user}/{call} address. Absent segments
// coerce to empty strings, which only match a project that explicitly has
// empty segments.
func (s *Service) GetBySegments(ctx context.Context, user, call string) *domain.Project {
	p, err := s.primary.GetBySegments(ctx, user, call)
	if err != nil {
		log.Printf("[projects] resolve %s/%s failed, falling back to local cache: %v", user, call, err)
		p, _ = s.local.GetBySegments(ctx, user, call)
	}
	return p
}

// Upsert writes through the selected backend. A non-UUID id marks the record
// as locally born: it is stripped so the backend assigns a real one.
func (s *Service) Upsert(ctx context.Context, p domain.Project) (*domain.Project, error) {
	if p.ID != "" && !repository.IsValidUUID(p.ID) {
		p.ID = ""
	}
	return s.primary.Upsert(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	return s.primary.Delete(ctx, id)
}

// SyncLocal pushes the locally staged records to the remote backend in two
// batches: valid-UUID ids are upserted, the rest are inserted with their ids
// stripped. Each batch fails or applies as a whole, independently.
func (s *Service) SyncLocal(ctx context.Context) repository.SyncResult {
	if s.remote == nil {
		err := &repository.RemoteError{Status: 503, Message: domain.ErrRemoteDisabled.Error()}
		return repository.SyncResult{UpsertErr: err, InsertErr: err}
	}

	records, err := s.local.List(ctx)
	if err != nil || len(records) == 0 {
		return repository.SyncResult{}
	}

	upserts, inserts := repository.Partition(records)
	return s.remote.Sync(ctx, upserts, inserts)
}

// Export snapshots the full project list for download.
func (s *Service) Export(ctx context.Context) []domain.Project {
	return s.List(ctx)
}

// Import upserts every record in the payload through the normal write path,
// so locally born ids get regenerated by the backend. The first write
// failure aborts the import.
func (s *Service) Import(ctx context.Context, records []domain.Project) (int, error) {
	for i, p := range records {
		if _, err := s.Upsert(ctx, p); err != nil {
			return i, err
		}
	}
	return len(records), nil
}
