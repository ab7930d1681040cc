package wsgate

import (
	"context"
	"testing"
	"time"

	"github.com/nurbek-a/driver-dispatch/pkg/logger"
)

func newTestGate() *Gate {
	return New(logger.InitLogger("wsgate-test", logger.LevelError))
}

// nilConn builds a registered but socketless connection; Close still works.
func nilConn(id string) *Conn {
	return NewConn(context.Background(), id, nil)
}

func TestGate_AddNil(t *testing.T) {
	g := newTestGate()
	if err := g.Add(nil); err != ErrEmptyConn {
		t.Fatalf("expected ErrEmptyConn, got %v", err)
	}
}

func TestGate_DeleteUnknown(t *testing.T) {
	g := newTestGate()
	if err := g.Delete("nope"); err != ErrConnIsNotFound {
		t.Fatalf("expected ErrConnIsNotFound, got %v", err)
	}
}

// Replacing a connection under the same id must not leak a waitgroup slot,
// otherwise Close blocks forever.
func TestGate_ReplaceThenClose(t *testing.T) {
	g := newTestGate()
	if err := g.Add(nilConn("conn-1")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := g.Add(nilConn("conn-1")); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := g.Add(nilConn("conn-2")); err != nil {
		t.Fatalf("add second: %v", err)
	}

	done := make(chan struct{})
	go func() {
		g.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not finish, waitgroup slot leaked on replace")
	}
}
