package repository

import (
	"context"
	"errors"

	"taskboard/internal/domain"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
)

// TaskStore persists tasks. Every method is scoped to owner; a mutation that
// matches no row (missing id or another owner's task) is not an error.
type TaskStore interface {
	Create(ctx context.Context, owner domain.OwnerID, draft domain.TaskDraft) error
	ListByOwner(ctx context.Context, owner domain.OwnerID, filter domain.TaskFilter) ([]*domain.Task, error)
	Update(ctx context.Context, owner domain.OwnerID, id int64, patch domain.TaskPatch) error
	SetCompleted(ctx context.Context, owner domain.OwnerID, id int64, completed bool) error
	Delete(ctx context.Context, owner domain.OwnerID, id int64) error
}

// UserStore persists accounts for the session layer.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	TouchLastSignedIn(ctx context.Context, id int64) error
}
