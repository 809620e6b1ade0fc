package app

import (
	"sync"
	"time"

	"github.com/dkeye/Support/internal/core"
	"github.com/dkeye/Support/internal/domain"
)

// fakeSignal records frames and reports backpressure once full.
type fakeSignal struct {
	mu     sync.Mutex
	frames []core.Frame
	limit  int
	closed bool
}

func (f *fakeSignal) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return core.ErrConnClosed
	}
	if f.limit > 0 && len(f.frames) >= f.limit {
		return core.ErrBackpressure
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeSignal) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeSignal) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeSignal) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func newConn(id string, uid domain.UserID, role domain.Role) (*core.Connection, *fakeSignal) {
	sig := &fakeSignal{}
	ident := domain.Identity{UserID: uid, Role: role, DisplayName: string(uid), DisplayEmail: string(uid) + "@shop.test"}
	return core.NewConnection(core.ConnID(id), ident, sig, time.Now()), sig
}
