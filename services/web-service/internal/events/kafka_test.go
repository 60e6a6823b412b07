package events

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/fabclean/fabclean-web/libs/kafkax"
	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	closed bool
	block  chan struct{}
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.block != nil {
		select {
		case <-w.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWriter) snapshot() ([]kafka.Message, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.msgs...), w.closed
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestKafkaPublisherWritesQueuedEvents(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, discardLogger(), 4)

	e, err := New(context.Background(), TypeCustomerLoggedIn, "asha@example.com", CustomerPayload{Email: "asha@example.com"})
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	p.Publish(context.Background(), e)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		msgs, _ := w.snapshot()
		if len(msgs) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected message to be written")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	msgs, closed := w.snapshot()
	if !closed {
		t.Fatalf("expected writer closed after Run returns")
	}
	m := msgs[0]
	if m.Topic != TypeCustomerLoggedIn {
		t.Fatalf("expected topic %s, got %s", TypeCustomerLoggedIn, m.Topic)
	}
	if string(m.Key) != "asha@example.com" {
		t.Fatalf("expected key by email, got %s", m.Key)
	}
	if kafkax.HeaderValue(m.Headers, kafkax.HeaderEventID) != e.ID {
		t.Fatalf("expected event_id header %s", e.ID)
	}
	if kafkax.HeaderValue(m.Headers, kafkax.HeaderEventType) != TypeCustomerLoggedIn {
		t.Fatalf("expected event_type header")
	}
}

func TestKafkaPublisherDropsWhenFull(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, discardLogger(), 1)

	e, _ := New(context.Background(), TypeOrderSubmitted, "k", OrderPayload{ServiceID: "1"})

	finished := make(chan struct{})
	go func() {
		p.Publish(context.Background(), e)
		p.Publish(context.Background(), e)
		p.Publish(context.Background(), e)
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatalf("expected Publish not to block")
	}
	if got := len(p.inbox); got != 1 {
		t.Fatalf("expected 1 queued event, got %d", got)
	}
}

func TestKafkaPublisherDrainsOnShutdown(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, discardLogger(), 8)
	for i := 0; i < 3; i++ {
		e, _ := New(context.Background(), TypeCustomerSignedUp, "k", CustomerPayload{Email: "k"})
		p.Publish(context.Background(), e)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Run(ctx)

	msgs, closed := w.snapshot()
	if !closed {
		t.Fatalf("expected writer closed")
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 drained messages, got %d", len(msgs))
	}
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	p.Publish(context.Background(), Event{Type: TypeOrderSubmitted})
}
