package integration

import (
	"context"
	"testing"

	"taskboard/internal/domain"
	"taskboard/internal/repository"
	"taskboard/internal/storetest"
)

// runTaskStoreContract checks the behaviour every TaskStore must share.
// alice and bob must be existing users without tasks.
func runTaskStoreContract(t *testing.T, store repository.TaskStore, alice, bob domain.OwnerID) {
	t.Helper()
	ctx := context.Background()

	list := func(owner domain.OwnerID, f domain.TaskFilter) []*domain.Task {
		t.Helper()
		tasks, err := store.ListByOwner(ctx, owner, f)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if tasks == nil {
			t.Fatalf("list returned nil slice")
		}
		return tasks
	}

	if got := list(alice, domain.FilterAll); len(got) != 0 {
		t.Fatalf("expected fresh owner to have no tasks, got %d", len(got))
	}

	desc := "2 litres"
	if err := store.Create(ctx, alice, domain.TaskDraft{Title: "Buy milk", Description: &desc}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(ctx, alice, domain.TaskDraft{Title: "Call mum"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	tasks := list(alice, domain.FilterAll)
	if len(tasks) != 2 || tasks[0].Title != "Call mum" || tasks[1].Title != "Buy milk" {
		t.Fatalf("expected newest first, got %+v", tasks)
	}
	milk := tasks[1]
	if milk.Completed || milk.UserID != int64(alice) || milk.Description == nil || *milk.Description != desc {
		t.Fatalf("unexpected stored task %+v", milk)
	}
	if tasks[0].Description != nil {
		t.Fatalf("absent description must stay absent")
	}

	// bob matches nothing
	title := "stolen"
	if err := store.Update(ctx, bob, milk.ID, domain.TaskPatch{Title: &title}); err != nil {
		t.Fatalf("cross-owner update: %v", err)
	}
	if err := store.SetCompleted(ctx, bob, milk.ID, true); err != nil {
		t.Fatalf("cross-owner toggle: %v", err)
	}
	if err := store.Delete(ctx, bob, milk.ID); err != nil {
		t.Fatalf("cross-owner delete: %v", err)
	}
	if got := list(bob, domain.FilterAll); len(got) != 0 {
		t.Fatalf("bob sees alice's tasks: %+v", got)
	}
	if got := list(alice, domain.FilterAll); len(got) != 2 || got[1].Title != "Buy milk" || got[1].Completed {
		t.Fatalf("alice's task changed: %+v", got)
	}

	if err := store.SetCompleted(ctx, alice, milk.ID, true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := store.SetCompleted(ctx, alice, milk.ID, true); err != nil {
		t.Fatalf("toggle again: %v", err)
	}
	done := list(alice, domain.FilterCompleted)
	if len(done) != 1 || done[0].ID != milk.ID || !done[0].Completed {
		t.Fatalf("unexpected completed view %+v", done)
	}
	if active := list(alice, domain.FilterActive); len(active) != 1 || active[0].Title != "Call mum" {
		t.Fatalf("unexpected active view %+v", active)
	}

	newTitle := "Buy oat milk"
	if err := store.Update(ctx, alice, milk.ID, domain.TaskPatch{Title: &newTitle}); err != nil {
		t.Fatalf("update title: %v", err)
	}
	if err := store.Update(ctx, alice, milk.ID, domain.TaskPatch{DescriptionSet: true}); err != nil {
		t.Fatalf("clear description: %v", err)
	}
	got := list(alice, domain.FilterCompleted)[0]
	if got.Title != newTitle || got.Description != nil || !got.Completed {
		t.Fatalf("unexpected task after update %+v", got)
	}
	if got.UpdatedAt.Before(milk.UpdatedAt) {
		t.Fatalf("updatedAt went backwards")
	}

	if err := store.Delete(ctx, alice, milk.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, alice, milk.ID); err != nil {
		t.Fatalf("delete again: %v", err)
	}
	if got := list(alice, domain.FilterAll); len(got) != 1 {
		t.Fatalf("expected one task left, got %d", len(got))
	}
}

func TestMemoryStoreContract(t *testing.T) {
	runTaskStoreContract(t, storetest.NewMemory(), 1, 2)
}
