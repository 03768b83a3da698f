package ws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"taskboard/internal/auth"
	"taskboard/internal/domain"
	"taskboard/internal/service"
	"taskboard/internal/storetest"
)

func newDispatcher() (*Dispatcher, *storetest.Memory) {
	mem := storetest.NewMemory()
	return NewDispatcher(service.NewTaskService(mem)), mem
}

func userCtx(id int64) context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{UserID: id})
}

func TestDispatcherCreateAndList(t *testing.T) {
	d, _ := newDispatcher()
	ctx := userCtx(1)

	res, err := d.Call(ctx, service.ProcCreate, json.RawMessage(`{"title":"Buy milk","description":""}`))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res != (SuccessPayload{Success: true}) {
		t.Fatalf("unexpected create result %#v", res)
	}

	res, err = d.Call(ctx, service.ProcList, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	tasks, ok := res.([]*domain.Task)
	if !ok || len(tasks) != 1 || tasks[0].Title != "Buy milk" || tasks[0].Description != nil {
		t.Fatalf("unexpected list result %#v", res)
	}

	res, err = d.Call(ctx, service.ProcList, json.RawMessage(`{"filter":"completed"}`))
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if tasks := res.([]*domain.Task); len(tasks) != 0 {
		t.Fatalf("expected no completed tasks, got %d", len(tasks))
	}
}

func TestDispatcherErrors(t *testing.T) {
	d, mem := newDispatcher()

	_, err := d.Call(userCtx(1), "tasks.archive", nil)
	if p := errorPayload(err); p.Code != CodeNotFound {
		t.Fatalf("unknown procedure code = %s", p.Code)
	}

	_, err = d.Call(userCtx(1), service.ProcToggle, json.RawMessage(`{"id":"x"}`))
	if p := errorPayload(err); p.Code != string(service.KindValidation) || p.Field != "input" {
		t.Fatalf("bad input payload = %+v", p)
	}

	_, err = d.Call(userCtx(1), service.ProcCreate, json.RawMessage(`{"title":"   "}`))
	if p := errorPayload(err); p.Code != string(service.KindValidation) || p.Field != "title" {
		t.Fatalf("blank title payload = %+v", p)
	}

	calls := mem.Calls
	_, err = d.Call(context.Background(), service.ProcList, nil)
	if p := errorPayload(err); p.Code != string(service.KindUnauthenticated) {
		t.Fatalf("anonymous payload = %+v", p)
	}
	if mem.Calls != calls {
		t.Fatalf("anonymous call reached storage")
	}

	mem.Err = errors.New("connection refused on 10.0.0.3")
	_, err = d.Call(userCtx(1), service.ProcList, nil)
	p := errorPayload(err)
	if p.Code != string(service.KindInternal) || p.Message != "internal error" {
		t.Fatalf("internal payload leaks details: %+v", p)
	}
}

func TestIsMutation(t *testing.T) {
	if IsMutation(service.ProcList) {
		t.Fatalf("list is not a mutation")
	}
	for _, p := range []string{service.ProcCreate, service.ProcUpdate, service.ProcDelete, service.ProcToggle} {
		if !IsMutation(p) {
			t.Fatalf("%s should be a mutation", p)
		}
	}
}
