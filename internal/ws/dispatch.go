package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"taskboard/internal/domain"
	"taskboard/internal/service"
)

const CodeNotFound = "NOT_FOUND"

var ErrUnknownProcedure = errors.New("unknown procedure")

// Dispatcher decodes procedure calls and runs them against the task service
// for the caller carried by ctx.
type Dispatcher struct {
	tasks *service.TaskService
}

func NewDispatcher(tasks *service.TaskService) *Dispatcher {
	return &Dispatcher{tasks: tasks}
}

// IsMutation reports whether a successful call changes the task list.
func IsMutation(procedure string) bool {
	switch procedure {
	case service.ProcCreate, service.ProcUpdate, service.ProcDelete, service.ProcToggle:
		return true
	}
	return false
}

// Call runs one procedure. Mutations answer {success: true}.
func (d *Dispatcher) Call(ctx context.Context, procedure string, input json.RawMessage) (any, error) {
	switch procedure {
	case service.ProcList:
		var in ListPayload
		if err := decodeInput(input, &in); err != nil {
			return nil, err
		}
		return d.tasks.List(ctx, domain.TaskFilter(in.Filter))

	case service.ProcCreate:
		var in service.CreateTaskInput
		if err := decodeInput(input, &in); err != nil {
			return nil, err
		}
		return success(d.tasks.Create(ctx, in))

	case service.ProcUpdate:
		var in service.UpdateTaskInput
		if err := decodeInput(input, &in); err != nil {
			return nil, err
		}
		return success(d.tasks.Update(ctx, in))

	case service.ProcDelete:
		var in service.DeleteTaskInput
		if err := decodeInput(input, &in); err != nil {
			return nil, err
		}
		return success(d.tasks.Delete(ctx, in))

	case service.ProcToggle:
		var in service.ToggleTaskInput
		if err := decodeInput(input, &in); err != nil {
			return nil, err
		}
		return success(d.tasks.Toggle(ctx, in))
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownProcedure, procedure)
}

func success(err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return SuccessPayload{Success: true}, nil
}

// decodeInput accepts a missing or null input as an empty object.
func decodeInput(raw json.RawMessage, dst any) error {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &service.ValidationError{Field: "input", Message: "is not valid JSON for this procedure"}
	}
	return nil
}

// errorPayload maps err onto the wire error. Internal details never leave
// the server.
func errorPayload(err error) *ErrorPayload {
	if errors.Is(err, ErrUnknownProcedure) {
		return &ErrorPayload{Code: CodeNotFound, Message: err.Error()}
	}

	kind := service.Classify(err)
	p := &ErrorPayload{Code: string(kind), Message: err.Error()}

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		p.Message = verr.Message
		p.Field = verr.Field
	case kind == service.KindUnauthenticated:
		p.Message = "unauthorized"
	case kind == service.KindInternal:
		p.Message = "internal error"
	}
	return p
}
