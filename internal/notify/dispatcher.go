// Package notify delivers best-effort side effects of task changes off the request path.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"task-tracker/internal/domain"
	"task-tracker/internal/storage"
)

// Notifier accepts task events. Implementations must never block the caller
// and never report failure back to it.
type Notifier interface {
	TaskAssigned(a Assignment)
	TaskDeleted(task domain.Task)
}

// Assignment describes a task being handed to a user.
type Assignment struct {
	TaskID     string
	TaskTitle  string
	AssigneeID string
	ActorEmail string
	// Reassigned is set when the assignment came from an edit rather than creation.
	Reassigned bool
}

// UserLookup resolves assignees to their contact details.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type Config struct {
	Workers   int
	QueueSize int
	// JobTimeout bounds each lookup or archive call.
	JobTimeout time.Duration
	Logger     *logrus.Logger
}

type job struct {
	name string
	run  func(ctx context.Context, logger *logrus.Entry)
}

// Dispatcher runs events on a fixed pool of workers fed by a bounded queue.
// Events that do not fit in the queue are dropped.
type Dispatcher struct {
	cfg     Config
	users   UserLookup
	archive storage.Archiver

	queue  chan job
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	ctx    context.Context
}

func NewDispatcher(cfg Config, users UserLookup, archive storage.Archiver) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.JobTimeout == 0 {
		cfg.JobTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Dispatcher{
		cfg:     cfg,
		users:   users,
		archive: archive,
		queue:   make(chan job, cfg.QueueSize),
		ctx:     context.Background(),
	}
}

// Start launches the workers. Jobs keep ctx values but are not cancelled with it,
// so Shutdown can drain what is already queued.
func (d *Dispatcher) Start(ctx context.Context) {
	d.ctx = context.WithoutCancel(ctx)
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for j := range d.queue {
				d.run(j)
			}
		}()
	}
	d.cfg.Logger.Infof("notifier started with %d workers", d.cfg.Workers)
}

// Shutdown stops accepting events and waits for queued ones to finish.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.cfg.Logger.Info("notifier stopped")
}

func (d *Dispatcher) TaskAssigned(a Assignment) {
	if a.AssigneeID == "" {
		return
	}
	d.enqueue(job{
		name: "assignment",
		run: func(ctx context.Context, logger *logrus.Entry) {
			assignee, err := d.users.GetByID(ctx, a.AssigneeID)
			if err != nil || assignee == nil {
				// Dangling or unreachable assignee: nothing to tell anyone.
				logger.WithError(err).Debugf("assignee %s not resolved", a.AssigneeID)
				return
			}
			verb := "has been"
			if a.Reassigned {
				verb = "was"
			}
			logger.WithFields(logrus.Fields{
				"task_id":     a.TaskID,
				"assignee_id": assignee.ID,
			}).Infof("Notification: %s %s assigned Todo: %q by %s", assignee.Email, verb, a.TaskTitle, a.ActorEmail)
		},
	})
}

func (d *Dispatcher) TaskDeleted(task domain.Task) {
	if d.archive == nil {
		return
	}
	d.enqueue(job{
		name: "archive",
		run: func(ctx context.Context, logger *logrus.Entry) {
			location, err := d.archive.ArchiveTask(ctx, task)
			if err != nil {
				logger.WithError(err).WithField("task_id", task.ID).Warn("archive deleted task failed")
				return
			}
			logger.WithField("task_id", task.ID).Infof("archived deleted task to %s", location)
		},
	})
}

func (d *Dispatcher) enqueue(j job) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.cfg.Logger.WithField("job", j.name).Warn("notifier stopped, dropping event")
		return
	}
	select {
	case d.queue <- j:
	default:
		d.cfg.Logger.WithField("job", j.name).Warn("notifier queue full, dropping event")
	}
}

func (d *Dispatcher) run(j job) {
	logger := d.cfg.Logger.WithField("job", j.name)
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("notifier job panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(d.ctx, d.cfg.JobTimeout)
	defer cancel()
	j.run(ctx, logger)
}

var _ Notifier = (*Dispatcher)(nil)
