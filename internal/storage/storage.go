package storage

import (
	"context"

	"task-tracker/internal/domain"
)

// Archiver keeps a copy of tasks after they are removed from the store.
type Archiver interface {
	// ArchiveTask stores a snapshot of task and returns where it was written.
	ArchiveTask(ctx context.Context, task domain.Task) (string, error)
}
