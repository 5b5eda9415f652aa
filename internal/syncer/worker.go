package syncer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/portfoliokit/pricesync/internal/apperrors"
	"github.com/portfoliokit/pricesync/internal/model"
)

// LogFileName is the append-only worker log within the log directory.
const LogFileName = "sync_worker.log"

// Job states for the background worker.
const (
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// JobStatus is the polled status object for a background sync job.
type JobStatus struct {
	ID         string             `json:"id"`
	State      string             `json:"state"`
	StartedAt  time.Time          `json:"startedAt"`
	FinishedAt *time.Time         `json:"finishedAt,omitempty"`
	Summary    *model.SyncSummary `json:"summary,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// Worker runs sync passes on a detached goroutine. At most one job runs at
// a time; progress and errors are appended to the worker log file with
// timestamps, and completion is observable through Status.
type Worker struct {
	orch   *Orchestrator
	logDir string

	mu   sync.Mutex
	last *JobStatus
	done chan struct{}
}

// NewWorker returns a Worker writing its log under logDir.
func NewWorker(orch *Orchestrator, logDir string) *Worker {
	return &Worker{orch: orch, logDir: logDir}
}

// LogPath returns the worker log file path.
func (w *Worker) LogPath() string {
	return filepath.Join(w.logDir, LogFileName)
}

// ReadLog returns the worker log contents. A missing log reads as empty.
func (w *Worker) ReadLog() (string, error) {
	data, err := os.ReadFile(w.LogPath())
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Start launches one sync pass in the background and returns its status
// immediately. If a job is already running, the in-flight status is
// returned together with ErrSyncInProgress. Once started a job runs to
// completion; there is no cancellation handle.
func (w *Worker) Start() (JobStatus, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.last != nil && w.last.State == JobRunning {
		return *w.last, apperrors.ErrSyncInProgress
	}

	status := &JobStatus{
		ID:        uuid.NewString(),
		State:     JobRunning,
		StartedAt: time.Now().UTC(),
	}
	w.last = status
	w.done = make(chan struct{})

	go w.run(status, w.done)
	return *status, nil
}

// Status returns the current or most recent job status. The boolean is
// false when no job has ever been started.
func (w *Worker) Status() (JobStatus, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.last == nil {
		return JobStatus{}, false
	}
	return *w.last, true
}

// Wait blocks until the most recently started job finishes. Test helper.
func (w *Worker) Wait() {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (w *Worker) run(status *JobStatus, done chan struct{}) {
	defer close(done)

	log, closeLog, err := w.jobLogger()
	if err != nil {
		w.finish(status, nil, err)
		return
	}
	defer closeLog()

	log.WithField("job", status.ID).Info("sync worker: started")
	summary, err := w.orch.WithLogger(log).SyncAll(context.Background())
	if err != nil {
		log.WithError(err).Error("sync worker: failed")
	} else {
		log.WithField("job", status.ID).Info("sync worker: finished")
	}
	w.finish(status, &summary, err)
}

func (w *Worker) finish(status *JobStatus, summary *model.SyncSummary, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now().UTC()
	status.FinishedAt = &now
	status.Summary = summary
	if err != nil {
		status.State = JobFailed
		status.Error = err.Error()
	} else {
		status.State = JobCompleted
	}
}

// jobLogger builds a logger that tees timestamped lines to the append-only
// worker log and the orchestrator's normal output.
func (w *Worker) jobLogger() (*logrus.Logger, func(), error) {
	if err := os.MkdirAll(w.logDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(w.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open worker log: %w", err)
	}

	log := logrus.New()
	log.SetOutput(io.MultiWriter(f, w.orch.log.Out))
	log.SetLevel(w.orch.log.GetLevel())
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableColors:   true,
	})
	return log, func() { f.Close() }, nil
}
