package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskboard/internal/domain"
)

// taskRow is the gorm mapping of the tasks table.
type taskRow struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	UserID      int64     `gorm:"not null;index:idx_tasks_user_created,priority:1"`
	Title       string    `gorm:"size:500;not null"`
	Description *string   `gorm:"type:text"`
	Completed   int16     `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"index:idx_tasks_user_created,priority:2"`
	UpdatedAt   time.Time
}

func (taskRow) TableName() string { return "tasks" }

func (r taskRow) toDomain() *domain.Task {
	return &domain.Task{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed == 1,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type userRow struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"size:320;not null;uniqueIndex"`
	Name         string `gorm:"size:255;not null;default:''"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastSignedIn time.Time
}

func (userRow) TableName() string { return "users" }

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastSignedIn: r.LastSignedIn,
	}
}

// AutoMigrateGorm creates the users and tasks tables.
func AutoMigrateGorm(db *gorm.DB) error {
	if err := db.AutoMigrate(&userRow{}, &taskRow{}); err != nil {
		return fmt.Errorf("migrate db: %w", err)
	}
	return nil
}

// GormTaskRepository handles tasks on a gorm connection (SQLite).
type GormTaskRepository struct {
	db *gorm.DB
}

func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

func (r *GormTaskRepository) Create(ctx context.Context, owner domain.OwnerID, d domain.TaskDraft) error {
	row := taskRow{
		UserID:      int64(owner),
		Title:       d.Title,
		Description: d.Description,
		Completed:   0,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *GormTaskRepository) ListByOwner(ctx context.Context, owner domain.OwnerID, filter domain.TaskFilter) ([]*domain.Task, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", int64(owner))
	if v, ok := filter.CompletedValue(); ok {
		q = q.Where("completed = ?", v)
	}

	var rows []taskRow
	if err := q.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	res := make([]*domain.Task, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.toDomain())
	}
	return res, nil
}

func (r *GormTaskRepository) Update(ctx context.Context, owner domain.OwnerID, id int64, p domain.TaskPatch) error {
	if p.Empty() {
		return nil
	}

	fields := map[string]any{"updated_at": time.Now()}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.DescriptionSet {
		fields["description"] = p.Description
	}

	err := r.db.WithContext(ctx).Model(&taskRow{}).
		Where("id = ? AND user_id = ?", id, int64(owner)).
		Updates(fields).Error
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (r *GormTaskRepository) SetCompleted(ctx context.Context, owner domain.OwnerID, id int64, completed bool) error {
	err := r.db.WithContext(ctx).Model(&taskRow{}).
		Where("id = ? AND user_id = ?", id, int64(owner)).
		Updates(map[string]any{
			"completed":  domain.CompletedFlag(completed),
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("toggle task: %w", err)
	}
	return nil
}

func (r *GormTaskRepository) Delete(ctx context.Context, owner domain.OwnerID, id int64) error {
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, int64(owner)).
		Delete(&taskRow{}).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// GormUserRepository handles accounts on a gorm connection.
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, u *domain.User) error {
	if _, err := r.GetByEmail(ctx, u.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	now := time.Now()
	row := userRow{
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		LastSignedIn: now,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	*u = *row.toDomain()
	return nil
}

func (r *GormUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *GormUserRepository) TouchLastSignedIn(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", id).
		Update("last_signed_in", time.Now()).Error
}

func (r *GormUserRepository) first(ctx context.Context, where string, arg any) (*domain.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).Where(where, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}
