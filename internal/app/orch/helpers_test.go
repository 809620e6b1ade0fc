package orch

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Support/internal/adapters/store/memory"
	"github.com/dkeye/Support/internal/core"
	"github.com/dkeye/Support/internal/domain"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func (r *recorder) TrySend(f core.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return core.ErrConnClosed
	}
	r.frames = append(r.frames, f)
	return nil
}

func (r *recorder) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

// events decodes every frame received so far.
func (r *recorder) events(t *testing.T) []map[string]any {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]map[string]any, 0, len(r.frames))
	for _, f := range r.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(f, &m))
		out = append(out, m)
	}
	return out
}

func (r *recorder) ofType(t *testing.T, typ string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, e := range r.events(t) {
		if e["type"] == typ {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.frames = nil
	r.mu.Unlock()
}

type fixture struct {
	o     *Orchestrator
	store *memory.Store
}

func newFixture() *fixture {
	st := memory.New()
	o := New(st, st, Options{})
	o.Now = func() time.Time { return testNow }
	return &fixture{o: o, store: st}
}

func (f *fixture) connect(id string, ident domain.Identity) (*core.Connection, *recorder) {
	rec := &recorder{}
	conn := core.NewConnection(core.ConnID(id), ident, rec, testNow)
	f.o.Registry.Register(conn)
	return conn, rec
}

func customer(id string) domain.Identity {
	return domain.Identity{UserID: domain.UserID(id), Role: domain.RoleCustomer, DisplayName: id, DisplayEmail: id + "@shop.test"}
}

func admin(id string) domain.Identity {
	return domain.Identity{UserID: domain.UserID(id), Role: domain.RoleAdmin, DisplayName: "Agent " + id, DisplayEmail: id + "@support.test"}
}
