package repository

import (
	"context"
	"fmt"
	"strings"

	"taskboard/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, owner domain.OwnerID, d domain.TaskDraft) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tasks (user_id, title, description, completed) VALUES ($1, $2, $3, 0)`,
		int64(owner), d.Title, d.Description,
	)
	return err
}

func (r *TaskRepository) ListByOwner(ctx context.Context, owner domain.OwnerID, filter domain.TaskFilter) ([]*domain.Task, error) {
	query := `SELECT id, user_id, title, description, completed, created_at, updated_at
		FROM tasks
		WHERE user_id = $1`
	args := []any{int64(owner)}
	if v, ok := filter.CompletedValue(); ok {
		query += ` AND completed = $2`
		args = append(args, v)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

func (r *TaskRepository) Update(ctx context.Context, owner domain.OwnerID, id int64, p domain.TaskPatch) error {
	if p.Empty() {
		return nil
	}

	var sets []string
	var args []any
	if p.Title != nil {
		args = append(args, *p.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if p.DescriptionSet {
		args = append(args, p.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id, int64(owner))

	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d AND user_id = $%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))
	_, err := r.db.Exec(ctx, query, args...)
	return err
}

func (r *TaskRepository) SetCompleted(ctx context.Context, owner domain.OwnerID, id int64, completed bool) error {
	_, err := r.db.Exec(ctx,
		`UPDATE tasks SET completed = $1, updated_at = now() WHERE id = $2 AND user_id = $3`,
		domain.CompletedFlag(completed), id, int64(owner),
	)
	return err
}

func (r *TaskRepository) Delete(ctx context.Context, owner domain.OwnerID, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, int64(owner))
	return err
}

func scanTasks(rows pgx.Rows) ([]*domain.Task, error) {
	res := make([]*domain.Task, 0)
	for rows.Next() {
		var t domain.Task
		var completed int16
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.Completed = completed == 1
		res = append(res, &t)
	}
	return res, rows.Err()
}
