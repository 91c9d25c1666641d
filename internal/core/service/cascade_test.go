package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/otenet/task-manager/internal/core/domain"
	"github.com/otenet/task-manager/internal/infrastructure/db/memory"
)

// failingTaskRepo makes DeleteByOwner fail while keeping every other call.
type failingTaskRepo struct {
	*memory.TaskRepository
}

func (failingTaskRepo) DeleteByOwner(context.Context, string) (int64, error) {
	return 0, errors.New("tasks collection unavailable")
}

func seedTasks(t *testing.T, svc *TaskService, owner string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := svc.Create(context.Background(), owner, "task", false); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}
}

func TestCascadeCoordinator_DeleteUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tasks := NewTaskService(f.store.Tasks(), zerolog.Nop())
	victim := f.mustCreateUser(t, "andrew@example.com")
	bystander := f.mustCreateUser(t, "jess@example.com")
	seedTasks(t, tasks, victim.ID, 3)
	seedTasks(t, tasks, bystander.ID, 2)

	c := NewCascadeCoordinator(f.store.Users(), f.store.Tasks(), zerolog.Nop())
	removed, err := c.DeleteUser(ctx, victim.ID)
	if err != nil {
		t.Fatalf("DeleteUser returned error: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 tasks removed, got %d", removed)
	}
	if n := f.store.Tasks().CountByOwner(victim.ID); n != 0 {
		t.Fatalf("expected no tasks left for deleted user, got %d", n)
	}
	if n := f.store.Tasks().CountByOwner(bystander.ID); n != 2 {
		t.Fatalf("other users' tasks must survive, got %d", n)
	}
	if _, err := f.store.Users().FindByID(ctx, victim.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user to be gone, got %v", err)
	}
}

func TestCascadeCoordinator_TaskFailureKeepsUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tasks := NewTaskService(f.store.Tasks(), zerolog.Nop())
	user := f.mustCreateUser(t, "andrew@example.com")
	seedTasks(t, tasks, user.ID, 3)

	c := NewCascadeCoordinator(f.store.Users(), failingTaskRepo{f.store.Tasks()}, zerolog.Nop())
	if _, err := c.DeleteUser(ctx, user.ID); err == nil {
		t.Fatal("expected error when task removal fails")
	}

	if _, err := f.store.Users().FindByID(ctx, user.ID); err != nil {
		t.Fatalf("user must survive a failed cascade: %v", err)
	}
	if n := f.store.Tasks().CountByOwner(user.ID); n != 3 {
		t.Fatalf("tasks must be intact, got %d", n)
	}
}

func TestCascadeCoordinator_UnknownUser(t *testing.T) {
	f := newFixture(t)
	tasks := NewTaskService(f.store.Tasks(), zerolog.Nop())
	ghost := "000000000000000000000000"
	seedTasks(t, tasks, ghost, 2)

	c := NewCascadeCoordinator(f.store.Users(), f.store.Tasks(), zerolog.Nop())
	removed, err := c.DeleteUser(context.Background(), ghost)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected nothing removed, got %d", removed)
	}
	if n := f.store.Tasks().CountByOwner(ghost); n != 2 {
		t.Fatalf("tasks of an unknown user must not be touched, got %d", n)
	}
}
