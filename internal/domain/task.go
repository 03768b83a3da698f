package domain

import (
	"fmt"
	"time"
)

// OwnerID is the id of the user a task belongs to. Every task query and
// mutation takes one explicitly.
type OwnerID int64

// MaxTitleLength is counted in characters, not bytes.
const MaxTitleLength = 500

type Task struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"userId"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description"`
	Completed   bool      `db:"completed" json:"completed"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// TaskDraft is what gets inserted on create.
type TaskDraft struct {
	Title       string
	Description *string
}

// TaskPatch lists the fields an update touches. A nil Description with
// DescriptionSet clears the stored description.
type TaskPatch struct {
	Title          *string
	Description    *string
	DescriptionSet bool
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && !p.DescriptionSet
}

type TaskFilter string

const (
	FilterAll       TaskFilter = "all"
	FilterActive    TaskFilter = "active"
	FilterCompleted TaskFilter = "completed"
)

// ParseTaskFilter maps the list view name; empty means all.
func ParseTaskFilter(s string) (TaskFilter, error) {
	switch TaskFilter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive, FilterCompleted:
		return TaskFilter(s), nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// CompletedValue returns the stored completion flag the filter selects
// (0 or 1) and false when the filter does not constrain it.
func (f TaskFilter) CompletedValue() (int16, bool) {
	switch f {
	case FilterActive:
		return 0, true
	case FilterCompleted:
		return 1, true
	}
	return 0, false
}

// CompletedFlag converts the boolean state into its stored 0/1 form.
func CompletedFlag(completed bool) int16 {
	if completed {
		return 1
	}
	return 0
}
