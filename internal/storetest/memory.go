// Package storetest provides an in-memory TaskStore and UserStore for tests.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/repository"
)

type Memory struct {
	mu     sync.Mutex
	tasks  map[int64]*domain.Task
	users  map[int64]*domain.User
	nextID int64
	clock  time.Time

	// Calls counts every store method invocation.
	Calls int
	// Err, when set, is returned by every method.
	Err error
}

func NewMemory() *Memory {
	return &Memory{
		tasks: make(map[int64]*domain.Task),
		users: make(map[int64]*domain.User),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// now advances a fake clock so timestamps are strictly increasing.
func (m *Memory) now() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *Memory) enter() error {
	m.Calls++
	return m.Err
}

func (m *Memory) Create(ctx context.Context, owner domain.OwnerID, d domain.TaskDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	m.nextID++
	now := m.now()
	m.tasks[m.nextID] = &domain.Task{
		ID:          m.nextID,
		UserID:      int64(owner),
		Title:       d.Title,
		Description: copyString(d.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return nil
}

func (m *Memory) ListByOwner(ctx context.Context, owner domain.OwnerID, filter domain.TaskFilter) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	want, constrained := filter.CompletedValue()

	res := make([]*domain.Task, 0)
	for _, t := range m.tasks {
		if t.UserID != int64(owner) {
			continue
		}
		if constrained && domain.CompletedFlag(t.Completed) != want {
			continue
		}
		cp := *t
		cp.Description = copyString(t.Description)
		res = append(res, &cp)
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.After(res[j].CreatedAt)
		}
		return res[i].ID > res[j].ID
	})
	return res, nil
}

func (m *Memory) Update(ctx context.Context, owner domain.OwnerID, id int64, p domain.TaskPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	t, ok := m.tasks[id]
	if !ok || t.UserID != int64(owner) {
		return nil
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.DescriptionSet {
		t.Description = copyString(p.Description)
	}
	t.UpdatedAt = m.now()
	return nil
}

func (m *Memory) SetCompleted(ctx context.Context, owner domain.OwnerID, id int64, completed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	t, ok := m.tasks[id]
	if !ok || t.UserID != int64(owner) {
		return nil
	}
	t.Completed = completed
	t.UpdatedAt = m.now()
	return nil
}

func (m *Memory) Delete(ctx context.Context, owner domain.OwnerID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if t, ok := m.tasks[id]; ok && t.UserID == int64(owner) {
		delete(m.tasks, id)
	}
	return nil
}

// Task returns a copy of the stored task regardless of owner.
func (m *Memory) Task(id int64) (domain.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return domain.Task{}, false
	}
	return *t, true
}

// Users returns a UserStore sharing this memory.
func (m *Memory) Users() repository.UserStore { return memoryUsers{m} }

type memoryUsers struct{ m *Memory }

func (u memoryUsers) Create(ctx context.Context, user *domain.User) error {
	m := u.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	m.nextID++
	now := m.now()
	user.ID = m.nextID
	user.CreatedAt, user.UpdatedAt, user.LastSignedIn = now, now, now
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (u memoryUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	m := u.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (u memoryUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m := u.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	for _, user := range m.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (u memoryUsers) TouchLastSignedIn(ctx context.Context, id int64) error {
	m := u.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if user, ok := m.users[id]; ok {
		user.LastSignedIn = m.now()
	}
	return nil
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
