package websocket

import (
	"context"
	"io"
	"testing"
	"time"
	"trafficsense/internal/logger"
	"trafficsense/internal/metrics"
)

func TestHub_UnregisterAfterShutdownReturns(t *testing.T) {
	hub := NewHubService(metrics.NewCollector(), logger.NewWithWriter(io.Discard, logger.LevelError))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		hub.Unregister(nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Unregister blocked after the hub stopped")
	}
}

func TestHub_BroadcastDropsWhenQueueFull(t *testing.T) {
	hub := NewHubService(metrics.NewCollector(), logger.NewWithWriter(io.Discard, logger.LevelError))

	done := make(chan struct{})
	go func() {
		// Run is not started, so nothing drains the queue.
		for i := 0; i < 100; i++ {
			hub.Broadcast([]byte("x"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a full queue")
	}
}
