package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sjperalta/bufete-api/internal/metrics"
	"github.com/sjperalta/bufete-api/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

type namedJob struct {
	name string
	run  Job
}

// Worker runs queued jobs on a fixed pool and drives periodic tasks such as
// refreshing the in-memory record logs.
type Worker struct {
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	queue   chan namedJob
	workers int

	closeOnce sync.Once
	stats     WorkerStats
	statsMu   sync.RWMutex
}

// WorkerStats holds statistics about the worker. Finished counts every run,
// Failed is the subset that returned an error or panicked.
type WorkerStats struct {
	ActiveJobs   int               `json:"active_jobs"`
	FinishedJobs int64             `json:"finished_jobs"`
	FailedJobs   int64             `json:"failed_jobs"`
	QueueLength  int               `json:"queue_length"`
	Workers      int               `json:"workers"`
	LastRun      map[string]JobRun `json:"last_run"`
}

// JobRun describes the most recent run of a named job
type JobRun struct {
	At       time.Time     `json:"at"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// NewWorker creates a worker with numWorkers queue processors
func NewWorker(numWorkers int) *Worker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		ctx:     ctx,
		cancel:  cancel,
		queue:   make(chan namedJob, 100),
		workers: numWorkers,
		stats:   WorkerStats{LastRun: make(map[string]JobRun)},
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	return w
}

// Enqueue adds a job to the pool. A full queue runs the job inline.
func (w *Worker) Enqueue(name string, job Job) {
	if w.ctx.Err() != nil {
		logger.Warn("[Worker] Dropping job after shutdown", "job", name)
		return
	}
	select {
	case w.queue <- namedJob{name: name, run: job}:
	default:
		logger.Warn("[Worker] Queue full, running job synchronously", "job", name)
		w.run(name, job)
	}
}

func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case nj, ok := <-w.queue:
			if !ok {
				return
			}
			logger.Debug(fmt.Sprintf("[Worker %d] Running %s", workerID, nj.name))
			w.run(nj.name, nj.run)
		}
	}
}

// ScheduleEvery runs job every interval. With immediate set the first run
// happens right away instead of after the first tick.
func (w *Worker) ScheduleEvery(name string, interval time.Duration, immediate bool, job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if immediate {
			w.run(name, job)
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.run(name, job)
			}
		}
	}()
}

// run executes one job, recovering panics and recording the outcome
func (w *Worker) run(name string, job Job) {
	w.trackJobStart()
	start := time.Now()

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		err = job(w.ctx)
	}()

	elapsed := time.Since(start)
	if err != nil {
		logger.Error("[Worker] Job failed", "job", name, "error", err, "duration", elapsed)
		metrics.ObserveJob(name, metrics.OutcomeFailed)
	} else {
		logger.Debug("[Worker] Job completed", "job", name, "duration", elapsed)
		metrics.ObserveJob(name, metrics.OutcomeOK)
	}
	w.trackJobEnd(name, start, elapsed, err)
}

// Shutdown stops scheduling and waits for running jobs to return
func (w *Worker) Shutdown() {
	w.closeOnce.Do(func() {
		w.cancel()
		w.wg.Wait()
	})
}

// Context returns the worker's context for checking cancellation
func (w *Worker) Context() context.Context {
	return w.ctx
}

// GetStats returns a copy of the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	stats.Workers = w.workers
	stats.LastRun = make(map[string]JobRun, len(w.stats.LastRun))
	for k, v := range w.stats.LastRun {
		stats.LastRun[k] = v
	}
	return stats
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
}

func (w *Worker) trackJobEnd(name string, at time.Time, elapsed time.Duration, err error) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.FinishedJobs++
	run := JobRun{At: at, Duration: elapsed}
	if err != nil {
		w.stats.FailedJobs++
		run.Error = err.Error()
	}
	w.stats.LastRun[name] = run
}
