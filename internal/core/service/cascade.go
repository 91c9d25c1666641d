package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/otenet/task-manager/internal/core/ports"
	"github.com/otenet/task-manager/internal/metrics"
)

// CascadeCoordinator removes a user together with every task it owns.
//
// Tasks go first. If that fails the user is left untouched, so the caller can
// retry; if the user deletion fails afterwards the user survives with an empty
// task set, which is equally consistent and retryable. A task created while a
// deletion is in flight may survive it.
type CascadeCoordinator struct {
	users ports.UserRepository
	tasks ports.TaskRepository
	log   zerolog.Logger
}

func NewCascadeCoordinator(users ports.UserRepository, tasks ports.TaskRepository, log zerolog.Logger) *CascadeCoordinator {
	return &CascadeCoordinator{users: users, tasks: tasks, log: log}
}

// DeleteUser removes userID's tasks, then userID, and reports how many tasks
// were removed.
func (c *CascadeCoordinator) DeleteUser(ctx context.Context, userID string) (int64, error) {
	// Unknown users must not reach the task collection.
	if _, err := c.users.FindByID(ctx, userID); err != nil {
		return 0, fmt.Errorf("delete user %s: %w", userID, err)
	}

	removed, err := c.tasks.DeleteByOwner(ctx, userID)
	if err != nil {
		metrics.AccountDeletionsTotal.WithLabelValues("tasks_failed").Inc()
		c.log.Error().Err(err).Str("user_id", userID).Msg("cascade: task removal failed, user kept")
		return 0, fmt.Errorf("delete user %s: remove tasks: %w", userID, err)
	}
	metrics.CascadeTasksDeletedTotal.Add(float64(removed))

	if err := c.users.Delete(ctx, userID); err != nil {
		metrics.AccountDeletionsTotal.WithLabelValues("user_failed").Inc()
		c.log.Error().Err(err).Str("user_id", userID).Int64("tasks_removed", removed).
			Msg("cascade: user removal failed after tasks were removed")
		return removed, fmt.Errorf("delete user %s: %w", userID, err)
	}

	metrics.AccountDeletionsTotal.WithLabelValues("success").Inc()
	c.log.Info().Str("user_id", userID).Int64("tasks_removed", removed).Msg("account deleted")
	return removed, nil
}
