package repository

import (
	"context"
	"fmt"
)

// Store bundles the repositories backed by a single database handle.
type Store struct {
	Users UserRepository
	Tasks TaskRepository

	close func(ctx context.Context) error
}

func NewStore(users UserRepository, tasks TaskRepository, closeFn func(ctx context.Context) error) *Store {
	return &Store{Users: users, Tasks: tasks, close: closeFn}
}

// Init creates tables, collections and indexes. Users go first since tasks reference them.
func (s *Store) Init(ctx context.Context) error {
	if err := s.Users.Init(ctx); err != nil {
		return fmt.Errorf("init user repository: %w", err)
	}
	if err := s.Tasks.Init(ctx); err != nil {
		return fmt.Errorf("init task repository: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
