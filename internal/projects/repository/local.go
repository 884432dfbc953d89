package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/click-call/click-call-backend/internal/projects/domain"
	"github.com/click-call/click-call-backend/internal/storage/localstore"
)

// projectsSlot matches the key the frontend used in browser localStorage.
const projectsSlot = "cc_projects"

// LocalStore keeps the whole project list in a single JSON slot. It is both
// the standalone backend when no remote is configured and the read cache /
// sync staging area when one is.
type LocalStore struct {
	slots *localstore.Store
}

func NewLocalStore(slots *localstore.Store) *LocalStore {
	return &LocalStore{slots: slots}
}

func (s *LocalStore) load() []domain.Project {
	var arr []domain.Project
	// Corrupt or missing slot degrades to an empty list, never an error.
	s.slots.ReadSlot(projectsSlot, &arr)
	return arr
}

func (s *LocalStore) save(arr []domain.Project) error {
	return s.slots.WriteSlot(projectsSlot, arr)
}

func (s *LocalStore) List(ctx context.Context) ([]domain.Project, error) {
	return s.load(), nil
}

func (s *LocalStore) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	for _, p := range s.load() {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

// GetBySegments scans newest-first so that duplicate {user}/{call} pairs
// resolve the same way the remote backend does: most recently created wins.
func (s *LocalStore) GetBySegments(ctx context.Context, user, call string) (*domain.Project, error) {
	arr := s.load()
	for i := len(arr) - 1; i >= 0; i-- {
		if arr[i].DomainUser == user && arr[i].DomainCall == call {
			return &arr[i], nil
		}
	}
	return nil, nil
}

func (s *LocalStore) Upsert(ctx context.Context, p domain.Project) (*domain.Project, error) {
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	arr := s.load()
	replaced := false
	for i := range arr {
		if arr[i].ID == p.ID {
			if p.CreatedAt.IsZero() {
				p.CreatedAt = arr[i].CreatedAt
			}
			arr[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		arr = append(arr, p)
	}

	if err := s.save(arr); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *LocalStore) Delete(ctx context.Context, id string) (bool, error) {
	arr := s.load()
	kept := arr[:0]
	for _, p := range arr {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(arr) {
		return false, nil
	}
	return true, s.save(kept)
}

// Replace swaps the whole list at once, used by import and by sync pullback.
func (s *LocalStore) Replace(ctx context.Context, arr []domain.Project) error {
	if arr == nil {
		arr = []domain.Project{}
	}
	return s.save(arr)
}
