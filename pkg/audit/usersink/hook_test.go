package usersink_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-searchspace/pkg/audit"
	"github.com/goliatone/go-searchspace/pkg/audit/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	tenantID := uuid.New()
	objectID := uuid.New().String()

	event := audit.Event{
		Verb:       "searchspace.parameter.added",
		ActorID:    actorID.String(),
		TenantID:   tenantID.String(),
		ObjectType: "searchspace",
		ObjectID:   objectID,
		Parameter:  "learning_rate",
		Metadata: map[string]any{
			"kind": "range",
		},
		OccurredAt: now,
	}

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID {
		t.Fatalf("expected actor %s got %s", actorID, record.ActorID)
	}
	if record.TenantID != tenantID {
		t.Fatalf("expected tenant %s got %s", tenantID, record.TenantID)
	}
	if record.Verb != "searchspace.parameter.added" || record.ObjectType != "searchspace" || record.ObjectID != objectID {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "searchspace" {
		t.Fatalf("expected default channel searchspace got %q", record.Channel)
	}
	if record.OccurredAt != now {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["parameter"] != "learning_rate" {
		t.Fatalf("expected parameter metadata got %v", record.Data["parameter"])
	}
	if record.Data["kind"] != "range" {
		t.Fatalf("expected metadata passthrough got %v", record.Data["kind"])
	}
}

func TestHookNotifySkipsMissingVerb(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), audit.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookNotifyCustomChannel(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink, Channel: "experiments"}

	err := hook.Notify(context.Background(), audit.Event{
		Verb:       "searchspace.constraints.set",
		ObjectType: "searchspace",
		ObjectID:   "1",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	if sink.records[0].Channel != "experiments" {
		t.Fatalf("expected channel experiments, got %q", sink.records[0].Channel)
	}
	if sink.records[0].OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be defaulted")
	}
}

func TestHookNotifyNilSink(t *testing.T) {
	hook := usersink.Hook{}
	if err := hook.Notify(context.Background(), audit.Event{
		Verb:       "v",
		ObjectType: "o",
		ObjectID:   "1",
	}); err != nil {
		t.Fatalf("nil sink must be a no-op, got %v", err)
	}
}
