package services

import (
	"context"
	"time"

	"github.com/sjperalta/bufete-api/internal/jobs"
)

// Refreshable is a record keeper that can catch up with the database
type Refreshable interface {
	Refresh(ctx context.Context) error
}

type JobService struct {
	worker     *jobs.Worker
	refreshers map[string]Refreshable
}

func NewJobService(worker *jobs.Worker, refreshers map[string]Refreshable) *JobService {
	return &JobService{
		worker:     worker,
		refreshers: refreshers,
	}
}

// ScheduleRefresh keeps every in-memory log in sync with the database
func (s *JobService) ScheduleRefresh(interval time.Duration) {
	for domain, r := range s.refreshers {
		s.worker.ScheduleEvery("refresh_"+domain, interval, true, r.Refresh)
	}
}

// RefreshNow queues an immediate refresh of every log
func (s *JobService) RefreshNow() {
	for domain, r := range s.refreshers {
		s.worker.Enqueue("refresh_"+domain, r.Refresh)
	}
}

func (s *JobService) GetStatus() jobs.WorkerStats {
	return s.worker.GetStats()
}
