package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"task-tracker/internal/domain"
)

type fakeUsers struct {
	users map[string]*domain.User
}

func (f fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

type fakeArchiver struct {
	mu    sync.Mutex
	tasks []string
	err   error
}

func (f *fakeArchiver) ArchiveTask(_ context.Context, task domain.Task) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.tasks = append(f.tasks, task.ID)
	return "mem://" + task.ID, nil
}

func newTestDispatcher(archive *fakeArchiver) (*Dispatcher, *test.Hook) {
	logger, hook := test.NewNullLogger()
	users := fakeUsers{users: map[string]*domain.User{
		"bob": {ID: "bob", Email: "bob@x.com"},
	}}
	cfg := Config{Workers: 1, QueueSize: 10, Logger: logger}
	if archive == nil {
		return NewDispatcher(cfg, users, nil), hook
	}
	return NewDispatcher(cfg, users, archive), hook
}

func notifications(hook *test.Hook) []string {
	var out []string
	for _, e := range hook.AllEntries() {
		if strings.HasPrefix(e.Message, "Notification:") {
			out = append(out, e.Message)
		}
	}
	return out
}

func TestTaskAssignedLogsExistingAssignee(t *testing.T) {
	d, hook := newTestDispatcher(nil)
	d.Start(context.Background())

	d.TaskAssigned(Assignment{TaskID: "t1", TaskTitle: "Write spec", AssigneeID: "bob", ActorEmail: "a@x.com"})
	d.TaskAssigned(Assignment{TaskID: "t1", TaskTitle: "Write spec", AssigneeID: "bob", ActorEmail: "a@x.com", Reassigned: true})
	d.Shutdown()

	got := notifications(hook)
	want := []string{
		`Notification: bob@x.com has been assigned Todo: "Write spec" by a@x.com`,
		`Notification: bob@x.com was assigned Todo: "Write spec" by a@x.com`,
	}
	if len(got) != len(want) {
		t.Fatalf("notifications = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("notification[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTaskAssignedIgnoresDanglingAssignee(t *testing.T) {
	d, hook := newTestDispatcher(nil)
	d.Start(context.Background())

	d.TaskAssigned(Assignment{TaskID: "t1", TaskTitle: "Write spec", AssigneeID: "ghost", ActorEmail: "a@x.com"})
	d.TaskAssigned(Assignment{TaskID: "t1", TaskTitle: "Write spec", ActorEmail: "a@x.com"})
	d.Shutdown()

	if got := notifications(hook); len(got) != 0 {
		t.Fatalf("expected no notifications, got %v", got)
	}
	for _, e := range hook.AllEntries() {
		if e.Level <= logrus.ErrorLevel {
			t.Fatalf("unexpected error log %q", e.Message)
		}
	}
}

func TestTaskDeletedArchives(t *testing.T) {
	archive := &fakeArchiver{}
	d, _ := newTestDispatcher(archive)
	d.Start(context.Background())

	d.TaskDeleted(domain.Task{ID: "t1"})
	d.Shutdown()

	if len(archive.tasks) != 1 || archive.tasks[0] != "t1" {
		t.Fatalf("archived = %v, want [t1]", archive.tasks)
	}
}

func TestTaskDeletedArchiveFailureIsLogged(t *testing.T) {
	archive := &fakeArchiver{err: errors.New("bucket gone")}
	d, hook := newTestDispatcher(archive)
	d.Start(context.Background())

	d.TaskDeleted(domain.Task{ID: "t1"})
	d.Shutdown()

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "archive deleted task failed" {
			warned = true
		}
	}
	if !warned {
		t.Fatal("expected archive failure warning")
	}
}

func TestEnqueueDropsWhenFullOrStopped(t *testing.T) {
	logger, hook := test.NewNullLogger()
	d := NewDispatcher(Config{Workers: 1, QueueSize: 1, Logger: logger}, fakeUsers{}, nil)

	// Not started: the single slot fills and the next event is dropped without blocking.
	d.TaskAssigned(Assignment{AssigneeID: "bob"})
	d.TaskAssigned(Assignment{AssigneeID: "bob"})

	d.Start(context.Background())
	d.Shutdown()
	d.TaskAssigned(Assignment{AssigneeID: "bob"})
	d.Shutdown()

	var full, stopped int
	for _, e := range hook.AllEntries() {
		switch e.Message {
		case "notifier queue full, dropping event":
			full++
		case "notifier stopped, dropping event":
			stopped++
		}
	}
	if full != 1 || stopped != 1 {
		t.Fatalf("full=%d stopped=%d, want 1 and 1", full, stopped)
	}
}
