package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"crafthub/pkg/logger"

	"github.com/segmentio/kafka-go"
)

type fakeReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	fetched   []int64
	committed []int64
	lag       int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.pending) > 0 {
		msg := r.pending[0]
		r.pending = r.pending[1:]
		r.fetched = append(r.fetched, msg.Offset)
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Stats() kafka.ReaderStats { return kafka.ReaderStats{Lag: r.lag} }

func (r *fakeReader) Close() error { return nil }

type fakeWriter struct {
	mu       sync.Mutex
	failures int
	writes   int
	written  []kafka.Message
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes++
	if w.failures > 0 {
		w.failures--
		return errors.New("broker unavailable")
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func newTestConsumer(reader messageReader, writer messageWriter, handler MessageHandler) *Consumer {
	c := &Consumer{
		reader:         reader,
		topic:          "payments",
		groupID:        "bookings",
		maxRetries:     0,
		disposeBackoff: time.Millisecond,
		handler:        handler,
		log:            logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}),
	}
	if writer != nil {
		c.dlqWriter = writer
	}
	return c
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestConsumer_DLQFailureHoldsOffset(t *testing.T) {
	reader := &fakeReader{pending: []kafka.Message{
		{Topic: "payments", Offset: 0, Value: []byte(`{}`)},
		{Topic: "payments", Offset: 1, Value: []byte(`{}`)},
	}}
	writer := &fakeWriter{failures: 2}

	handler := func(ctx context.Context, msg Message) error {
		if msg.Offset == 0 {
			return NewPermanentError("bad payload", nil)
		}
		return nil
	}
	c := newTestConsumer(reader, writer, handler)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	waitFor(t, func() bool {
		reader.mu.Lock()
		defer reader.mu.Unlock()
		return len(reader.committed) == 2
	})
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	reader.mu.Lock()
	defer reader.mu.Unlock()
	if reader.committed[0] != 0 || reader.committed[1] != 1 {
		t.Errorf("expected offsets committed in order [0 1], got %v", reader.committed)
	}
	writer.mu.Lock()
	defer writer.mu.Unlock()
	if writer.writes != 3 {
		t.Errorf("expected 3 DLQ attempts, got %d", writer.writes)
	}
	if len(writer.written) != 1 {
		t.Errorf("expected the failed message parked once, got %d", len(writer.written))
	}
}

func TestConsumer_DLQFailureDoesNotFetchAhead(t *testing.T) {
	reader := &fakeReader{pending: []kafka.Message{
		{Topic: "payments", Offset: 7, Value: []byte(`{}`)},
		{Topic: "payments", Offset: 8, Value: []byte(`{}`)},
	}}
	writer := &fakeWriter{failures: 1 << 30}

	handler := func(ctx context.Context, msg Message) error {
		return NewPermanentError("bad payload", nil)
	}
	c := newTestConsumer(reader, writer, handler)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	waitFor(t, func() bool {
		writer.mu.Lock()
		defer writer.mu.Unlock()
		return writer.writes >= 3
	})
	cancel()
	<-done

	reader.mu.Lock()
	defer reader.mu.Unlock()
	if len(reader.committed) != 0 {
		t.Errorf("nothing may be committed while the DLQ is down, got %v", reader.committed)
	}
	if len(reader.fetched) != 1 || reader.fetched[0] != 7 {
		t.Errorf("expected only offset 7 fetched, got %v", reader.fetched)
	}
}

func TestConsumer_DropsWithoutDLQ(t *testing.T) {
	reader := &fakeReader{pending: []kafka.Message{{Topic: "payments", Offset: 3}}}
	handler := func(ctx context.Context, msg Message) error {
		return NewPermanentError("bad payload", nil)
	}
	c := newTestConsumer(reader, nil, handler)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	waitFor(t, func() bool {
		reader.mu.Lock()
		defer reader.mu.Unlock()
		return len(reader.committed) == 1
	})
	cancel()
	<-done
}

func TestConsumer_Lag(t *testing.T) {
	c := newTestConsumer(&fakeReader{lag: 4}, nil, func(ctx context.Context, msg Message) error { return nil })

	if got := c.Lag(); got != 4 {
		t.Errorf("expected lag 4, got %d", got)
	}
}
