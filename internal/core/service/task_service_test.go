package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/otenet/task-manager/internal/core/domain"
	"github.com/otenet/task-manager/internal/core/ports"
	"github.com/otenet/task-manager/internal/infrastructure/db/memory"
)

func newTaskService() *TaskService {
	return NewTaskService(memory.NewStore().Tasks(), zerolog.Nop())
}

func TestTaskService_Create(t *testing.T) {
	svc := newTaskService()

	task, err := svc.Create(context.Background(), "u1", "  buy milk ", false)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if task.ID == "" || task.Owner != "u1" || task.Description != "buy milk" || task.Completed {
		t.Fatalf("unexpected task: %+v", task)
	}

	if _, err := svc.Create(context.Background(), "u1", "   ", false); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for blank description, got %v", err)
	}
}

func TestTaskService_GetIsOwnerScoped(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService()
	task, _ := svc.Create(ctx, "u1", "mine", false)

	if _, err := svc.Get(ctx, "u2", task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound for another owner, got %v", err)
	}
	if _, err := svc.Get(ctx, "u1", "not-an-id"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound for malformed id, got %v", err)
	}
	got, err := svc.Get(ctx, "u1", task.ID)
	if err != nil || got.ID != task.ID {
		t.Fatalf("expected own task, got %+v %v", got, err)
	}
}

func TestTaskService_List(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService()
	for i := 0; i < 15; i++ {
		if _, err := svc.Create(ctx, "u1", "task", i%3 == 0); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	svc.Create(ctx, "u2", "foreign", true)

	all, err := svc.List(ctx, ports.ListTasksInput{Owner: "u1"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(all) != defaultTaskLimit {
		t.Fatalf("expected default page of %d, got %d", defaultTaskLimit, len(all))
	}

	page, _ := svc.List(ctx, ports.ListTasksInput{Owner: "u1", Limit: 10, Skip: 10})
	if len(page) != 5 {
		t.Fatalf("expected 5 tasks on second page, got %d", len(page))
	}

	done := true
	completed, _ := svc.List(ctx, ports.ListTasksInput{Owner: "u1", Completed: &done, Limit: 100})
	if len(completed) != 5 {
		t.Fatalf("expected 5 completed tasks, got %d", len(completed))
	}
	for _, task := range completed {
		if !task.Completed || task.Owner != "u1" {
			t.Fatalf("unexpected task in filtered list: %+v", task)
		}
	}

	empty, _ := svc.List(ctx, ports.ListTasksInput{Owner: "nobody"})
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", empty)
	}
}

func TestTaskService_Update(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService()
	task, _ := svc.Create(ctx, "u1", "draft", false)

	done := true
	updated, err := svc.Update(ctx, "u1", task.ID, ports.TaskUpdate{Completed: &done})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if !updated.Completed || updated.Description != "draft" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if _, err := svc.Update(ctx, "u2", task.ID, ports.TaskUpdate{Completed: &done}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound for another owner, got %v", err)
	}

	blank := " "
	if _, err := svc.Update(ctx, "u1", task.ID, ports.TaskUpdate{Description: &blank}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService()
	task, _ := svc.Create(ctx, "u1", "temp", false)

	if _, err := svc.Delete(ctx, "u2", task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound for another owner, got %v", err)
	}
	deleted, err := svc.Delete(ctx, "u1", task.ID)
	if err != nil || deleted.ID != task.ID {
		t.Fatalf("expected deleted task, got %+v %v", deleted, err)
	}
	if _, err := svc.Get(ctx, "u1", task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected task to be gone, got %v", err)
	}
}
