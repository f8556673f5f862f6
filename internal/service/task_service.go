package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/notify"
	"task-tracker/internal/repository"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// CreateTaskInput carries the caller-supplied fields of a new task.
type CreateTaskInput struct {
	Title       string
	Description *string
	Status      domain.TaskStatus
	DueDate     *time.Time
	AssignedTo  *string
}

// ListTasksInput selects a page of the caller's tasks. Nil Page or Limit take
// the defaults; values below 1 are raised to 1.
type ListTasksInput struct {
	Page   *int
	Limit  *int
	Status string
	Search string
}

// TaskPage is one page of a listing plus the total match count.
type TaskPage struct {
	Total int64
	Page  int
	Limit int
	Tasks []domain.Task
}

// TaskService coordinates task level operations on behalf of an authenticated caller.
type TaskService interface {
	CreateTask(ctx context.Context, caller *domain.User, in CreateTaskInput) (*domain.Task, error)
	ListTasks(ctx context.Context, caller *domain.User, in ListTasksInput) (*TaskPage, error)
	GetTask(ctx context.Context, caller *domain.User, id string) (*domain.Task, error)
	UpdateTask(ctx context.Context, caller *domain.User, id string, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, caller *domain.User, id string) error
}

type taskService struct {
	tasks    repository.TaskRepository
	users    repository.UserRepository
	notifier notify.Notifier
}

func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository, notifier notify.Notifier) TaskService {
	return &taskService{
		tasks:    tasks,
		users:    users,
		notifier: notifier,
	}
}

func (s *taskService) CreateTask(ctx context.Context, caller *domain.User, in CreateTaskInput) (*domain.Task, error) {
	if in.Title == "" {
		return nil, validationError("Title is required")
	}
	status := in.Status
	if status == "" {
		status = domain.TaskStatusPending
	}
	if !status.Valid() {
		return nil, invalidStatus(status)
	}

	task := &domain.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		DueDate:     in.DueDate,
		CreatedBy:   caller.ID,
		AssignedTo:  normalizeAssignee(in.AssignedTo),
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	if task.AssignedTo != nil {
		s.notifier.TaskAssigned(notify.Assignment{
			TaskID:     task.ID,
			TaskTitle:  task.Title,
			AssigneeID: *task.AssignedTo,
			ActorEmail: caller.Email,
		})
	}

	s.expand(ctx, task)
	return task, nil
}

func (s *taskService) ListTasks(ctx context.Context, caller *domain.User, in ListTasksInput) (*TaskPage, error) {
	page, limit := defaultPage, defaultLimit
	if in.Page != nil {
		page = max(*in.Page, 1)
	}
	if in.Limit != nil {
		limit = max(*in.Limit, 1)
	}

	tasks, total, err := s.tasks.List(ctx, domain.TaskQuery{
		UserID: caller.ID,
		Status: in.Status,
		Search: in.Search,
		Offset: pageOffset(page, limit),
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	cache := map[string]*domain.UserSummary{}
	for i := range tasks {
		tasks[i].Creator = s.summary(ctx, cache, tasks[i].CreatedBy)
		if tasks[i].AssignedTo != nil {
			tasks[i].Assignee = s.summary(ctx, cache, *tasks[i].AssignedTo)
		}
	}

	return &TaskPage{Total: total, Page: page, Limit: limit, Tasks: tasks}, nil
}

func (s *taskService) GetTask(ctx context.Context, caller *domain.User, id string) (*domain.Task, error) {
	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.VisibleTo(caller.ID) {
		return nil, forbiddenError("Access denied")
	}
	s.expand(ctx, task)
	return task, nil
}

func (s *taskService) UpdateTask(ctx context.Context, caller *domain.User, id string, patch domain.TaskPatch) (*domain.Task, error) {
	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.IsOwner(caller.ID) {
		return nil, forbiddenError("Only creator can edit this todo")
	}

	if patch.Title.Set && patch.Title.Value == "" {
		return nil, validationError("Title is required")
	}
	if patch.Status.Set && !patch.Status.Value.Valid() {
		return nil, invalidStatus(patch.Status.Value)
	}
	if patch.AssignedTo.Set {
		patch.AssignedTo.Value = normalizeAssignee(patch.AssignedTo.Value)
	}

	patch.Apply(task)
	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if patch.AssignedTo.Set && task.AssignedTo != nil {
		s.notifier.TaskAssigned(notify.Assignment{
			TaskID:     task.ID,
			TaskTitle:  task.Title,
			AssigneeID: *task.AssignedTo,
			ActorEmail: caller.Email,
			Reassigned: true,
		})
	}

	s.expand(ctx, task)
	return task, nil
}

func (s *taskService) DeleteTask(ctx context.Context, caller *domain.User, id string) error {
	task, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !task.IsOwner(caller.ID) {
		return forbiddenError("Only creator can delete this todo")
	}

	if err := s.tasks.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	s.notifier.TaskDeleted(*task)
	return nil
}

func (s *taskService) load(ctx context.Context, id string) (*domain.Task, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// expand fills in owner and assignee summaries for a single task.
func (s *taskService) expand(ctx context.Context, task *domain.Task) {
	cache := map[string]*domain.UserSummary{}
	task.Creator = s.summary(ctx, cache, task.CreatedBy)
	task.Assignee = nil
	if task.AssignedTo != nil {
		task.Assignee = s.summary(ctx, cache, *task.AssignedTo)
	}
}

// summary resolves id once per call site; unresolvable ids map to nil.
func (s *taskService) summary(ctx context.Context, cache map[string]*domain.UserSummary, id string) *domain.UserSummary {
	if sum, ok := cache[id]; ok {
		return sum
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		user = nil
	}
	sum := user.Summary()
	cache[id] = sum
	return sum
}

// pageOffset returns the number of rows to skip. Offsets that would overflow
// saturate at math.MaxInt, which is past the end of any listing.
func pageOffset(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

func normalizeAssignee(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	v := *id
	return &v
}

func invalidStatus(status domain.TaskStatus) error {
	return validationError(fmt.Sprintf("Invalid status %q: must be one of pending, in-progress, completed", status))
}
