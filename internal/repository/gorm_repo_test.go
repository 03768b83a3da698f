package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"taskboard/internal/domain"
)

func openTestGorm(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrateGorm(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

func TestGormTaskRepositoryScopesByOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewGormTaskRepository(openTestGorm(t))
	alice, bob := domain.OwnerID(1), domain.OwnerID(2)

	desc := "2 litres"
	if err := repo.Create(ctx, alice, domain.TaskDraft{Title: "Buy milk", Description: &desc}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, bob, domain.TaskDraft{Title: "Walk dog"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	tasks, err := repo.ListByOwner(ctx, alice, domain.FilterAll)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" {
		t.Fatalf("unexpected tasks for alice: %+v", tasks)
	}
	task := tasks[0]
	if task.Completed || task.Description == nil || *task.Description != desc {
		t.Fatalf("unexpected stored task: %+v", task)
	}

	// Bob's mutations on Alice's task match nothing and still succeed.
	title := "hijacked"
	if err := repo.Update(ctx, bob, task.ID, domain.TaskPatch{Title: &title}); err != nil {
		t.Fatalf("cross-owner update: %v", err)
	}
	if err := repo.SetCompleted(ctx, bob, task.ID, true); err != nil {
		t.Fatalf("cross-owner toggle: %v", err)
	}
	if err := repo.Delete(ctx, bob, task.ID); err != nil {
		t.Fatalf("cross-owner delete: %v", err)
	}

	tasks, err = repo.ListByOwner(ctx, alice, domain.FilterAll)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" || tasks[0].Completed {
		t.Fatalf("alice's task changed: %+v", tasks)
	}
}

func TestGormTaskRepositoryUpdateAndFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewGormTaskRepository(openTestGorm(t))
	owner := domain.OwnerID(1)

	for _, title := range []string{"first", "second", "third"} {
		desc := title + " notes"
		if err := repo.Create(ctx, owner, domain.TaskDraft{Title: title, Description: &desc}); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}

	all, err := repo.ListByOwner(ctx, owner, domain.FilterAll)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].Title != "third" || all[2].Title != "first" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	second := all[1]
	if err := repo.SetCompleted(ctx, owner, second.ID, true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := repo.Update(ctx, owner, second.ID, domain.TaskPatch{DescriptionSet: true}); err != nil {
		t.Fatalf("clear description: %v", err)
	}

	done, err := repo.ListByOwner(ctx, owner, domain.FilterCompleted)
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if len(done) != 1 || done[0].ID != second.ID || !done[0].Completed {
		t.Fatalf("unexpected completed tasks: %+v", done)
	}
	if done[0].Description != nil {
		t.Fatalf("expected description cleared, got %q", *done[0].Description)
	}
	if done[0].Title != "second" {
		t.Fatalf("title should be untouched, got %q", done[0].Title)
	}

	active, err := repo.ListByOwner(ctx, owner, domain.FilterActive)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active tasks, got %d", len(active))
	}

	if err := repo.Delete(ctx, owner, second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, owner, second.ID); err != nil {
		t.Fatalf("second delete should succeed: %v", err)
	}
	all, err = repo.ListByOwner(ctx, owner, domain.FilterAll)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 tasks after delete, got %d", len(all))
	}
}

func TestGormTaskRepositoryEmptyList(t *testing.T) {
	repo := NewGormTaskRepository(openTestGorm(t))
	tasks, err := repo.ListByOwner(context.Background(), 42, domain.FilterAll)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", tasks)
	}
}

func TestGormUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormUserRepository(openTestGorm(t))

	u := &domain.User{Email: "ana@example.com", Name: "Ana", PasswordHash: "hash"}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == 0 {
		t.Fatalf("expected id to be assigned")
	}

	dup := &domain.User{Email: "ana@example.com", PasswordHash: "hash"}
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	got, err := repo.GetByEmail(ctx, "ana@example.com")
	if err != nil || got.ID != u.ID {
		t.Fatalf("get by email: %+v %v", got, err)
	}
	if _, err := repo.GetByID(ctx, u.ID+100); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.TouchLastSignedIn(ctx, u.ID); err != nil {
		t.Fatalf("touch: %v", err)
	}
}
