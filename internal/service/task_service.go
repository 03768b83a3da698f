package service

import (
	"context"
	"fmt"

	"taskboard/internal/auth"
	"taskboard/internal/domain"
	"taskboard/internal/logger"
	"taskboard/internal/repository"
)

// Procedure names shared by every transport.
const (
	ProcList   = "tasks.list"
	ProcCreate = "tasks.create"
	ProcUpdate = "tasks.update"
	ProcDelete = "tasks.delete"
	ProcToggle = "tasks.toggle"
)

type CreateTaskInput struct {
	Title       string  `json:"title" validate:"notblank,max=500"`
	Description *string `json:"description"`
}

// UpdateTaskInput changes only the fields that are present. An empty
// description clears it.
type UpdateTaskInput struct {
	ID          int64   `json:"id" validate:"gt=0"`
	Title       *string `json:"title" validate:"omitempty,notblank,max=500"`
	Description *string `json:"description"`
}

type DeleteTaskInput struct {
	ID int64 `json:"id" validate:"gt=0"`
}

type ToggleTaskInput struct {
	ID        int64 `json:"id" validate:"gt=0"`
	Completed *bool `json:"completed" validate:"required"`
}

// TaskService implements the task procedures for the authenticated caller.
type TaskService struct {
	store repository.TaskStore
}

func NewTaskService(store repository.TaskStore) *TaskService {
	return &TaskService{store: store}
}

// run is the authorization guard: fn only executes for an authenticated
// caller and receives that caller as the owner scope.
func (s *TaskService) run(ctx context.Context, procedure string, fn func(owner domain.OwnerID) error) error {
	id, ok := auth.FromContext(ctx)
	if !ok {
		observe(procedure, ErrUnauthenticated)
		return ErrUnauthenticated
	}

	err := fn(id.Owner())
	observe(procedure, err)
	if err != nil && Classify(err) == KindInternal {
		logger.WithContext(ctx).Error("task procedure failed",
			"procedure", procedure, "user_id", id.UserID, "error", err)
	}
	return err
}

// List returns the caller's tasks, newest first.
func (s *TaskService) List(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := s.run(ctx, ProcList, func(owner domain.OwnerID) error {
		f, err := domain.ParseTaskFilter(string(filter))
		if err != nil {
			return &ValidationError{Field: "filter", Message: "must be one of all, active, completed"}
		}
		tasks, err = s.store.ListByOwner(ctx, owner, f)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) error {
	return s.run(ctx, ProcCreate, func(owner domain.OwnerID) error {
		if err := validateInput(in); err != nil {
			return err
		}
		draft := domain.TaskDraft{
			Title:       in.Title,
			Description: normalizeDescription(in.Description),
		}
		if err := s.store.Create(ctx, owner, draft); err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		return nil
	})
}

// Update matches on id and owner; a task that is missing or belongs to
// someone else is left alone and the call still succeeds.
func (s *TaskService) Update(ctx context.Context, in UpdateTaskInput) error {
	return s.run(ctx, ProcUpdate, func(owner domain.OwnerID) error {
		if err := validateInput(in); err != nil {
			return err
		}

		patch := domain.TaskPatch{Title: in.Title}
		if in.Description != nil {
			patch.DescriptionSet = true
			patch.Description = normalizeDescription(in.Description)
		}
		if patch.Empty() {
			return nil
		}

		if err := s.store.Update(ctx, owner, in.ID, patch); err != nil {
			return fmt.Errorf("update task %d: %w", in.ID, err)
		}
		return nil
	})
}

func (s *TaskService) Delete(ctx context.Context, in DeleteTaskInput) error {
	return s.run(ctx, ProcDelete, func(owner domain.OwnerID) error {
		if err := validateInput(in); err != nil {
			return err
		}
		if err := s.store.Delete(ctx, owner, in.ID); err != nil {
			return fmt.Errorf("delete task %d: %w", in.ID, err)
		}
		return nil
	})
}

// Toggle sets the completion flag to the given value.
func (s *TaskService) Toggle(ctx context.Context, in ToggleTaskInput) error {
	return s.run(ctx, ProcToggle, func(owner domain.OwnerID) error {
		if err := validateInput(in); err != nil {
			return err
		}
		if err := s.store.SetCompleted(ctx, owner, in.ID, *in.Completed); err != nil {
			return fmt.Errorf("toggle task %d: %w", in.ID, err)
		}
		return nil
	})
}

// normalizeDescription stores an empty description as absent.
func normalizeDescription(d *string) *string {
	if d == nil || *d == "" {
		return nil
	}
	v := *d
	return &v
}
