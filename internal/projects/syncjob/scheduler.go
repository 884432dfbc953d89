package syncjob

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/click-call/click-call-backend/internal/projects/service"
)

// Scheduler pushes the locally staged project list to the remote backend on
// a cron schedule, so records created while the backend was unreachable
// eventually land there without an operator clicking sync.
type Scheduler struct {
	c   *cron.Cron
	svc *service.Service
}

func New(svc *service.Service) *Scheduler {
	return &Scheduler{
		c:   cron.New(cron.WithSeconds()),
		svc: svc,
	}
}

// Start registers the sync job. schedule uses the 6-field cron format.
func (s *Scheduler) Start(schedule string) error {
	if _, err := s.c.AddFunc(schedule, s.runOnce); err != nil {
		return err
	}

	log.Printf("Sync scheduler started (schedule %q)", schedule)
	s.c.Start()
	return nil
}

func (s *Scheduler) Stop() {
	s.c.Stop()
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res := s.svc.SyncLocal(ctx)
	if err := res.Err(); err != nil {
		log.Printf("[sync] upserted=%d inserted=%d error: %v", res.Upserted, res.Inserted, err)
		return
	}
	log.Printf("[sync] upserted=%d inserted=%d", res.Upserted, res.Inserted)
}
