package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"marketbill/internal/infrastructure/config"
	"marketbill/pkg/logger"
)

type fakeRelay struct {
	batches  []int
	calls    int
	purged   time.Duration
	batchErr error
}

func (f *fakeRelay) ProcessBatch(context.Context) (int, error) {
	f.calls++
	if f.batchErr != nil {
		return 0, f.batchErr
	}
	if len(f.batches) == 0 {
		return 0, nil
	}
	n := f.batches[0]
	f.batches = f.batches[1:]
	return n, nil
}

func (f *fakeRelay) PurgePublished(_ context.Context, retention time.Duration) (int64, error) {
	f.purged = retention
	return 3, nil
}

func TestRelayWorker_DrainUntilShortBatch(t *testing.T) {
	relay := &fakeRelay{batches: []int{10, 10, 4, 10}}
	w := NewRelayWorker(relay, config.WorkerConfig{BatchSize: 10}, logger.NewNop())

	w.drain(context.Background())

	assert.Equal(t, 3, relay.calls)
	assert.Equal(t, []int{10}, relay.batches)
}

func TestRelayWorker_DrainStopsOnError(t *testing.T) {
	relay := &fakeRelay{batchErr: errors.New("db down")}
	w := NewRelayWorker(relay, config.WorkerConfig{BatchSize: 10}, logger.NewNop())

	w.drain(context.Background())

	assert.Equal(t, 1, relay.calls)
}

func TestRelayWorker_Purge(t *testing.T) {
	relay := &fakeRelay{}
	w := NewRelayWorker(relay, config.WorkerConfig{BatchSize: 10, PurgeRetention: 48 * time.Hour}, logger.NewNop())
	w.purge(context.Background())
	assert.Equal(t, 48*time.Hour, relay.purged)

	relay = &fakeRelay{}
	w = NewRelayWorker(relay, config.WorkerConfig{BatchSize: 10}, logger.NewNop())
	w.purge(context.Background())
	assert.Zero(t, relay.purged)
}

func TestRelayWorker_RunStopsOnCancel(t *testing.T) {
	relay := &fakeRelay{}
	w := NewRelayWorker(relay, config.WorkerConfig{BatchSize: 10, PollInterval: time.Millisecond}, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
