package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/otenet/task-manager/internal/core/domain"
	"github.com/otenet/task-manager/internal/core/ports"
)

const (
	defaultTaskLimit = 10
	maxTaskLimit     = 100
)

// TaskService implements owner-scoped task operations. The owner always comes
// from the authenticated identity, never from the request body.
type TaskService struct {
	repo ports.TaskRepository
	log  zerolog.Logger
}

func NewTaskService(repo ports.TaskRepository, log zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, log: log}
}

func (s *TaskService) Create(ctx context.Context, owner, description string, completed bool) (*domain.Task, error) {
	description, err := normalizeDescription(description)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &domain.Task{
		Description: description,
		Completed:   completed,
		Owner:       owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.repo.Create(ctx, task)
	if err != nil {
		s.log.Error().Err(err).Str("owner", owner).Msg("failed to create task")
		return nil, err
	}
	return created, nil
}

func (s *TaskService) Get(ctx context.Context, owner, id string) (*domain.Task, error) {
	return s.repo.FindByID(ctx, id, owner)
}

// List returns a page of the owner's tasks. Limit defaults to 10 and is
// capped at 100.
func (s *TaskService) List(ctx context.Context, in ports.ListTasksInput) ([]*domain.Task, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultTaskLimit
	}
	if limit > maxTaskLimit {
		limit = maxTaskLimit
	}
	skip := in.Skip
	if skip < 0 {
		skip = 0
	}

	tasks, err := s.repo.List(ctx, ports.TaskFilter{
		Owner:     in.Owner,
		Completed: in.Completed,
		Limit:     limit,
		Skip:      skip,
	})
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

func (s *TaskService) Update(ctx context.Context, owner, id string, update ports.TaskUpdate) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	if update.Description != nil {
		description, err := normalizeDescription(*update.Description)
		if err != nil {
			return nil, err
		}
		task.Description = description
	}
	if update.Completed != nil {
		task.Completed = *update.Completed
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, owner, id string) (*domain.Task, error) {
	return s.repo.Delete(ctx, id, owner)
}
