package http

import (
	"testing"
	"time"
)

func TestStartReturnsNilAfterStop(t *testing.T) {
	srv := NewServer(0, nil, nil, nil)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()
	time.Sleep(100 * time.Millisecond)

	if err := srv.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("expected nil from Start after Stop, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Start did not return after Stop")
	}
}
