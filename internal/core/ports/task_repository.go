package ports

import (
	"context"

	"github.com/otenet/task-manager/internal/core/domain"
)

// TaskFilter carries the query parameters for listing tasks.
// Owner is always enforced by the service layer.
type TaskFilter struct {
	Owner     string
	Completed *bool // nil = any
	Limit     int
	Skip      int
}

// TaskRepository defines persistence operations for tasks. Every lookup is
// scoped by owner.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id, owner string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	// Delete removes the task and returns the deleted document.
	Delete(ctx context.Context, id, owner string) (*domain.Task, error)
	// DeleteByOwner removes every task owned by owner and reports how many.
	DeleteByOwner(ctx context.Context, owner string) (int64, error)
}
