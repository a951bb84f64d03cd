package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tunelar/backend/internal/core/domain"
)

type collectingAuditRepo struct {
	mu     sync.Mutex
	events []domain.AuditEvent
	done   chan struct{}
	want   int
}

func newCollectingAuditRepo(want int) *collectingAuditRepo {
	return &collectingAuditRepo{done: make(chan struct{}), want: want}
}

func (r *collectingAuditRepo) Insert(_ context.Context, event *domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	if len(r.events) == r.want {
		close(r.done)
	}
	return nil
}

func TestAuditDispatcher_PersistsEvents(t *testing.T) {
	repo := newCollectingAuditRepo(3)
	d := NewAuditDispatcher(2, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	now := time.Now().UTC()
	d.Record(domain.AuditEvent{Actor: "alice", Action: domain.AuditLoginSucceeded, OccurredAt: now})
	d.Record(domain.AuditEvent{Actor: "bob", Action: domain.AuditLoginFailed, OccurredAt: now})
	d.Record(domain.AuditEvent{Actor: "admin", Action: domain.AuditUserDeleted, Target: "carol", OccurredAt: now})

	select {
	case <-repo.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("events not persisted in time")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(repo.events))
	}
}

func TestAuditDispatcher_PerActorOrdering(t *testing.T) {
	repo := newCollectingAuditRepo(5)
	d := NewAuditDispatcher(4, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		d.Record(domain.AuditEvent{Actor: "alice", Action: domain.AuditLoginFailed, Detail: string(rune('a' + i)), OccurredAt: now})
	}

	select {
	case <-repo.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("events not persisted in time")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	for i, ev := range repo.events {
		if ev.Detail != string(rune('a'+i)) {
			t.Fatalf("per-actor ordering violated: %+v", repo.events)
		}
	}
}

func TestAuditDispatcher_RecordNeverBlocks(t *testing.T) {
	// Workers not started: queues fill up and further events are dropped
	// instead of blocking the caller.
	repo := newCollectingAuditRepo(1)
	d := NewAuditDispatcher(1, repo, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Record(domain.AuditEvent{Actor: "alice", Action: domain.AuditLoginFailed})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Record must not block when the queue is full")
	}
}
