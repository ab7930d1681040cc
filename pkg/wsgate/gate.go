package wsgate

import (
	"context"
	"errors"
	"sync"

	"github.com/nurbek-a/driver-dispatch/pkg/logger"
	wrap "github.com/nurbek-a/driver-dispatch/pkg/logger/wrapper"
)

var (
	ErrEmptyConn      = errors.New("connection is empty")
	ErrConnIsNotFound = errors.New("connection not found")
)

// Gate holds all active live connections keyed by connection id. It is
// injected into the services that need to push events, replacing any
// process-global socket registry.
type Gate struct {
	clients map[string]*Conn
	l       logger.Logger
	mu      sync.Mutex
	wg      sync.WaitGroup
}

func New(l logger.Logger) *Gate {
	return &Gate{
		clients: make(map[string]*Conn),
		l:       l,
	}
}

// Add registers a new connection. An existing connection under the same id
// is closed first.
func (g *Gate) Add(newConn *Conn) error {
	if newConn == nil {
		return ErrEmptyConn
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), "add_ws_connection")

	existing, replacing := g.clients[newConn.connID]
	if replacing {
		g.l.Warn(ctx,
			"replacing existing connection",
			"connection_id", existing.connID,
		)
		if err := existing.Close(); err != nil {
			g.l.Warn(ctx,
				"failed to close existing conn",
				"connection_id", existing.connID,
				"err", err.Error(),
			)
		}
	}

	g.clients[newConn.connID] = newConn
	// Delete runs Done once per map entry, so a replacement reuses the
	// displaced conn's waitgroup slot.
	if !replacing {
		g.wg.Add(1)
	}

	return nil
}

// Delete removes and closes a connection by id.
func (g *Gate) Delete(connID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), "ws_connection_delete")

	conn, ok := g.clients[connID]
	if !ok {
		g.l.Warn(ctx,
			"delete called for unknown connection",
			"connection_id", connID,
		)
		return ErrConnIsNotFound
	}

	if err := conn.Close(); err != nil {
		g.l.Warn(ctx,
			"failed to close conn",
			"connection_id", conn.connID,
			"err", err.Error(),
		)
	}

	delete(g.clients, connID)
	g.wg.Done()

	return nil
}

// IsLive reports whether a healthy connection is bound to the id.
func (g *Gate) IsLive(connID string) bool {
	g.mu.Lock()
	conn, ok := g.clients[connID]
	g.mu.Unlock()

	if !ok {
		return false
	}
	return conn.Health() == nil
}

// Push sends an event to the connection bound to the id. Returns
// ErrConnIsNotFound if no connection is registered.
func (g *Gate) Push(connID string, event string, payload any) error {
	g.mu.Lock()
	conn, ok := g.clients[connID]
	g.mu.Unlock()

	if !ok {
		return ErrConnIsNotFound
	}
	return conn.Send(event, payload)
}

// Close closes every live connection.
func (g *Gate) Close() {
	ctx := wrap.WithAction(context.Background(), "gate_close")

	// copy clients under the lock
	g.mu.Lock()
	clients := make([]*Conn, 0, len(g.clients))
	for _, conn := range g.clients {
		clients = append(clients, conn)
	}
	g.mu.Unlock()
	// close outside the lock
	for _, conn := range clients {
		_ = g.Delete(conn.connID)
	}

	g.wg.Wait()

	g.l.Info(ctx, "all websocket connections closed gracefully")
}
