package feedback

import (
	"context"
	"sync"

	"github.com/click-call/click-call-backend/internal/storage/localstore"
)

const feedbackSlot = "cc_feedback"

// LocalSink appends records to a JSON list in its own named slot.
type LocalSink struct {
	mu    sync.Mutex
	slots *localstore.Store
}

func NewLocalSink(slots *localstore.Store) *LocalSink {
	return &LocalSink{slots: slots}
}

func (s *LocalSink) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var arr []Record
	s.slots.ReadSlot(feedbackSlot, &arr)
	arr = append(arr, rec)
	return s.slots.WriteSlot(feedbackSlot, arr)
}
