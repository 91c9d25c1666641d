// Package memory is an in-process implementation of the user, session and
// task ports. It mirrors the Mongo repositories' semantics (owner scoping,
// unique emails, atomic token updates) and backs tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/otenet/task-manager/internal/core/domain"
	"github.com/otenet/task-manager/internal/core/ports"
)

// Store holds users and tasks behind a single mutex.
type Store struct {
	mu    sync.Mutex
	users map[string]*domain.User
	tasks map[string]*domain.Task
}

func NewStore() *Store {
	return &Store{
		users: make(map[string]*domain.User),
		tasks: make(map[string]*domain.Task),
	}
}

// Users returns the store as a user repository.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Tasks returns the store as a task repository.
func (s *Store) Tasks() *TaskRepository { return &TaskRepository{s: s} }

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Tokens = append([]domain.Token{}, u.Tokens...)
	if u.Avatar != nil {
		c.Avatar = append([]byte(nil), u.Avatar...)
	}
	return &c
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	return &c
}

// ── Users ─────────────────────────────────────────────────────────────────────

// UserRepository implements ports.UserRepository and ports.SessionStore.
type UserRepository struct {
	s *Store
}

var (
	_ ports.UserRepository = (*UserRepository)(nil)
	_ ports.SessionStore   = (*UserRepository)(nil)
)

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	c := cloneUser(user)
	c.ID = primitive.NewObjectID().Hex()
	r.s.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := cloneUser(u)
	c.Avatar = nil
	return c, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			c := cloneUser(u)
			c.Avatar = nil
			return c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	for id, u := range r.s.users {
		if id != user.ID && u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	stored.Name = user.Name
	stored.Email = user.Email
	stored.Age = user.Age
	stored.PasswordHash = user.PasswordHash
	stored.UpdatedAt = user.UpdatedAt
	return nil
}

func (r *UserRepository) SetAvatar(_ context.Context, id string, avatar []byte) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if avatar == nil {
		u.Avatar = nil
	} else {
		u.Avatar = append([]byte(nil), avatar...)
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *UserRepository) FindAvatar(_ context.Context, id string) ([]byte, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return append([]byte(nil), u.Avatar...), nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r *UserRepository) PushToken(_ context.Context, userID, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Tokens = append(u.Tokens, domain.Token{Token: token})
	return nil
}

func (r *UserRepository) PullToken(_ context.Context, userID, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	kept := u.Tokens[:0]
	for _, t := range u.Tokens {
		if t.Token != token {
			kept = append(kept, t)
		}
	}
	u.Tokens = kept
	return nil
}

func (r *UserRepository) ClearTokens(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Tokens = []domain.Token{}
	return nil
}

func (r *UserRepository) HasToken(_ context.Context, userID, token string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return false, nil
	}
	return u.HasToken(token), nil
}

func (r *UserRepository) FindBySession(_ context.Context, userID, token string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok || !u.HasToken(token) {
		return nil, domain.ErrUserNotFound
	}
	c := cloneUser(u)
	c.Avatar = nil
	return c, nil
}

// ── Tasks ─────────────────────────────────────────────────────────────────────

// TaskRepository implements ports.TaskRepository.
type TaskRepository struct {
	s *Store
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

func (r *TaskRepository) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := cloneTask(task)
	c.ID = primitive.NewObjectID().Hex()
	r.s.tasks[c.ID] = c
	return cloneTask(c), nil
}

func (r *TaskRepository) FindByID(_ context.Context, id, owner string) (*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tasks[id]
	if !ok || t.Owner != owner {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

// List orders by creation time then id, matching the Mongo sort.
func (r *TaskRepository) List(_ context.Context, f ports.TaskFilter) ([]*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []*domain.Task
	for _, t := range r.s.tasks {
		if t.Owner != f.Owner {
			continue
		}
		if f.Completed != nil && t.Completed != *f.Completed {
			continue
		}
		matched = append(matched, cloneTask(t))
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	if f.Skip >= len(matched) {
		return []*domain.Task{}, nil
	}
	matched = matched[f.Skip:]
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

func (r *TaskRepository) Update(_ context.Context, task *domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.tasks[task.ID]
	if !ok || stored.Owner != task.Owner {
		return domain.ErrTaskNotFound
	}
	stored.Description = task.Description
	stored.Completed = task.Completed
	stored.UpdatedAt = task.UpdatedAt
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, id, owner string) (*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tasks[id]
	if !ok || t.Owner != owner {
		return nil, domain.ErrTaskNotFound
	}
	delete(r.s.tasks, id)
	return t, nil
}

func (r *TaskRepository) DeleteByOwner(_ context.Context, owner string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, t := range r.s.tasks {
		if t.Owner == owner {
			delete(r.s.tasks, id)
			n++
		}
	}
	return n, nil
}

// CountByOwner reports how many tasks owner currently has.
func (r *TaskRepository) CountByOwner(owner string) int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for _, t := range r.s.tasks {
		if t.Owner == owner {
			n++
		}
	}
	return n
}
