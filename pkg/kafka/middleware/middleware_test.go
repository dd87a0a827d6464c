package kafka_middleware

import (
	"context"
	"errors"
	"testing"

	"slotbook/pkg/kafka"
	"slotbook/pkg/logger"
)

func TestMetricsProducerMiddleware(t *testing.T) {
	m := NewMetrics()
	mw := m.ProducerMiddleware()
	msg := kafka.Message{Key: "k", Value: []byte(`{}`)}

	ok := func(context.Context, kafka.Message) error { return nil }
	fail := func(context.Context, kafka.Message) error { return errors.New("broker down") }

	_ = mw(context.Background(), msg, ok)
	_ = mw(context.Background(), msg, ok)
	if err := mw(context.Background(), msg, fail); err == nil {
		t.Fatal("expected middleware to pass through the error")
	}

	snap := m.Snapshot()
	if snap.Published != 2 || snap.Failed != 1 {
		t.Errorf("snapshot = %+v, want 2 published 1 failed", snap)
	}

	m.Reset()
	if s := m.Snapshot(); s.Published != 0 || s.Failed != 0 {
		t.Errorf("Reset() left %+v", s)
	}
}

func TestLoggingProducerMiddleware_PassesThrough(t *testing.T) {
	mw := LoggingProducerMiddleware(logger.Discard())
	wantErr := errors.New("i/o timeout")

	called := false
	err := mw(context.Background(), kafka.Message{Key: "k"}, func(context.Context, kafka.Message) error {
		called = true
		return wantErr
	})
	if !called {
		t.Fatal("next was not called")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
