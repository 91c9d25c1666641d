package ports

import (
	"context"

	"github.com/otenet/task-manager/internal/core/domain"
)

// ListTasksInput carries the parameters for the task list endpoint.
type ListTasksInput struct {
	Owner     string
	Completed *bool
	Limit     int
	Skip      int
}

// TaskUpdate holds the mutable task fields; nil means unchanged.
type TaskUpdate struct {
	Description *string
	Completed   *bool
}

// TaskService defines owner-scoped task operations.
type TaskService interface {
	Create(ctx context.Context, owner, description string, completed bool) (*domain.Task, error)
	Get(ctx context.Context, owner, id string) (*domain.Task, error)
	List(ctx context.Context, input ListTasksInput) ([]*domain.Task, error)
	Update(ctx context.Context, owner, id string, update TaskUpdate) (*domain.Task, error)
	Delete(ctx context.Context, owner, id string) (*domain.Task, error)
}
