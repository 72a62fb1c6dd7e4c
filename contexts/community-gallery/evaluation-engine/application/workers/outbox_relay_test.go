package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"tarmac/contexts/community-gallery/evaluation-engine/adapters/memory"
	"tarmac/contexts/community-gallery/evaluation-engine/ports"
	"tarmac/internal/platform/messaging"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now.UTC()
}

type failingPublisher struct {
	publishLimit int
	published    []string
}

func (p *failingPublisher) Publish(_ context.Context, topic string, _ ports.EventEnvelope) error {
	if len(p.published) >= p.publishLimit {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, topic)
	return nil
}

func decisionEnvelope(eventID string, eventType string, occurredAt time.Time) ports.EventEnvelope {
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt,
		SourceService:    "evaluation-engine",
		SchemaVersion:    1,
		PartitionKeyPath: "submission_id",
		PartitionKey:     "photo-1",
	}
}

func TestOutboxRelayPublishesPendingRowsToBus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := memory.NewStore(nil)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	if err := store.AppendOutbox(ctx, decisionEnvelope("event-1", "submission.approved", now)); err != nil {
		t.Fatalf("append outbox: %v", err)
	}

	bus, err := messaging.NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("new bus: %v", err)
	}
	delivered := make(chan ports.EventEnvelope, 1)
	err = bus.Subscribe(ctx, "submission.approved", "gallery-site-cg", func(_ context.Context, event ports.EventEnvelope) error {
		delivered <- event
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	relay := OutboxRelay{
		Outbox:    store,
		Publisher: bus,
		Clock:     fixedClock{now: now},
		BatchSize: 10,
	}
	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("run once: %v", err)
	}

	select {
	case event := <-delivered:
		if event.EventID != "event-1" || event.EventType != "submission.approved" {
			t.Fatalf("unexpected event delivered: %+v", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected the published decision event to reach the subscriber")
	}

	remaining, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected published row to leave the pending set, %d remain", len(remaining))
	}
}

func TestOutboxRelayStopsOnFirstPublishFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(nil)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	if err := store.AppendOutbox(ctx, decisionEnvelope("event-1", "submission.approved", now)); err != nil {
		t.Fatalf("append outbox: %v", err)
	}
	if err := store.AppendOutbox(ctx, decisionEnvelope("event-2", "submission.rejected", now.Add(time.Second))); err != nil {
		t.Fatalf("append outbox: %v", err)
	}

	publisher := &failingPublisher{publishLimit: 1}
	relay := OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		Clock:     fixedClock{now: now},
		BatchSize: 10,
	}
	if err := relay.RunOnce(ctx); err == nil {
		t.Fatal("expected the relay to surface the publish failure")
	}

	if len(publisher.published) != 1 || publisher.published[0] != "submission.approved" {
		t.Fatalf("expected only the oldest row published, got %v", publisher.published)
	}
	remaining, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(remaining) != 1 || remaining[0].OutboxID != "event-2" {
		t.Fatalf("expected the failed row to stay pending for the next cycle, got %+v", remaining)
	}
}

func TestOutboxRelayNoopWithoutPendingRows(t *testing.T) {
	relay := OutboxRelay{
		Outbox:    memory.NewStore(nil),
		Publisher: &failingPublisher{},
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("expected a clean cycle on an empty outbox, got %v", err)
	}
}
