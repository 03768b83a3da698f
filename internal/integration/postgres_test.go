package integration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskboard/internal/db"
	"taskboard/internal/domain"
	"taskboard/internal/migrations"
	"taskboard/internal/repository"
)

func openPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := migrations.Apply(ctx, pool, nil); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return pool
}

// freshUser creates a user with a unique email so reruns do not collide.
func freshUser(t *testing.T, users repository.UserStore, name string) *domain.User {
	t.Helper()
	u := &domain.User{
		Email:        fmt.Sprintf("%s-%d@example.com", name, time.Now().UnixNano()),
		Name:         name,
		PasswordHash: "x",
	}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func TestPostgresTaskRepository(t *testing.T) {
	pool := openPostgres(t)
	users := repository.NewUserRepository(pool)

	alice := freshUser(t, users, "alice")
	bob := freshUser(t, users, "bob")

	runTaskStoreContract(t, repository.NewTaskRepository(pool), domain.OwnerID(alice.ID), domain.OwnerID(bob.ID))
}

func TestPostgresUserRepository(t *testing.T) {
	pool := openPostgres(t)
	users := repository.NewUserRepository(pool)
	ctx := context.Background()

	u := freshUser(t, users, "carol")
	if err := users.Create(ctx, &domain.User{Email: u.Email, PasswordHash: "x"}); !errors.Is(err, repository.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	got, err := users.GetByEmail(ctx, u.Email)
	if err != nil || got.ID != u.ID {
		t.Fatalf("get by email: %+v %v", got, err)
	}
	if _, err := users.GetByID(ctx, -1); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := users.TouchLastSignedIn(ctx, u.ID); err != nil {
		t.Fatalf("touch: %v", err)
	}
}

func TestPostgresRejectsInvalidCompletedValue(t *testing.T) {
	pool := openPostgres(t)
	u := freshUser(t, repository.NewUserRepository(pool), "dave")

	_, err := pool.Exec(context.Background(),
		`INSERT INTO tasks (user_id, title, completed) VALUES ($1, 'x', 2)`, u.ID)
	if err == nil {
		t.Fatalf("expected check constraint to reject completed = 2")
	}
}
