package audit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHooksNotifyFansOut(t *testing.T) {
	first := &CaptureHook{}
	second := &CaptureHook{}
	hooks := Hooks{first, second}

	event := Event{
		Verb:       "searchspace.parameter.added",
		ObjectType: "searchspace",
		ObjectID:   "space-1",
		Parameter:  "x",
	}
	if err := hooks.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(first.Events) != 1 || len(second.Events) != 1 {
		t.Fatalf("expected both hooks notified")
	}
	if first.Events[0].OccurredAt.IsZero() {
		t.Fatalf("expected timestamp to be defaulted")
	}
}

func TestHooksNotifySkipsIncompleteEvents(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}

	if err := hooks.Notify(context.Background(), Event{Verb: "only-verb"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected incomplete event to be dropped")
	}
}

func TestHooksNotifyJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := &CaptureHook{Err: boom}
	ok := &CaptureHook{}
	hooks := Hooks{failing, ok}

	err := hooks.Notify(context.Background(), Event{
		Verb:       "v",
		ObjectType: "o",
		ObjectID:   "1",
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(ok.Events) != 1 {
		t.Fatalf("a failing hook must not block the others")
	}
}

func TestHookFuncNilSafe(t *testing.T) {
	var fn HookFunc
	if err := fn.Notify(context.Background(), Event{}); err != nil {
		t.Fatalf("nil HookFunc must be a no-op, got %v", err)
	}
}

func TestNormalizeEventClonesMetadata(t *testing.T) {
	metadata := map[string]any{"key": "value"}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	normalized := NormalizeEvent(Event{
		Verb:       "  v  ",
		ObjectType: "o",
		ObjectID:   " 1 ",
		Metadata:   metadata,
		OccurredAt: now,
	})
	if normalized.Verb != "v" || normalized.ObjectID != "1" {
		t.Fatalf("expected trimmed fields: %+v", normalized)
	}
	if normalized.OccurredAt != now {
		t.Fatalf("expected timestamp preserved")
	}
	metadata["key"] = "mutated"
	if normalized.Metadata["key"] != "value" {
		t.Fatalf("expected metadata clone")
	}
}
