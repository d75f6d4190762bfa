// File: waitset/attachment.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Guards own one source's registration inside a WaitSet.

package waitset

import (
	"time"

	"go.uber.org/zap"

	"github.com/patdhlk/ipcwait/api"
	"github.com/patdhlk/ipcwait/handle"
)

// Guard owns the registration of one event source in one WaitSet.
// Releasing a guard deregisters the source synchronously; release is
// idempotent. A guard is valid only while its WaitSet is alive, and the
// WaitSet refuses to be released while guards remain.
type Guard struct {
	id       api.AttachmentID
	ws       *WaitSet
	listener api.Listener // nil for deadline guards

	period   time.Duration // deadline guards only
	lastFire time.Time     // written by scan, owned by the waiting goroutine

	reg *handle.Handle[api.AttachmentID]
}

// newGuard is called with ws.mu held.
func (ws *WaitSet) newGuard(l api.Listener, period time.Duration) *Guard {
	g := &Guard{
		id:       ws.nextID,
		ws:       ws,
		listener: l,
		period:   period,
	}
	ws.nextID++
	g.reg = handle.Acquire(g.id, func(api.AttachmentID) { ws.detach(g) })
	ws.guards = append(ws.guards, g)
	if ws.metrics != nil {
		ws.metrics.AttachmentsActive.Inc()
	}
	return g
}

// ID returns the guard's stable attachment token. Tokens are assigned
// monotonically per WaitSet and never reused, so Fired records can be
// matched against guards without pointer comparison.
func (g *Guard) ID() api.AttachmentID { return g.id }

// Listener returns the attached listener, or nil for deadline guards.
// Used to honor the drain discipline after a notification fires.
func (g *Guard) Listener() api.Listener { return g.listener }

// Period returns the configured deadline period, 0 for listener guards.
func (g *Guard) Period() time.Duration { return g.period }

// Release deregisters the source from the WaitSet. Must not race an
// in-progress Wait on another goroutine (documented precondition).
func (g *Guard) Release() {
	g.reg.Release()
}

func (ws *WaitSet) detach(g *Guard) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for i, cand := range ws.guards {
		if cand == g {
			ws.guards = append(ws.guards[:i], ws.guards[i+1:]...)
			break
		}
	}
	if g.listener != nil {
		g.listener.RemoveWaker(ws.wake)
	}
	if ws.metrics != nil {
		ws.metrics.AttachmentsActive.Dec()
	}
	ws.log.Debug("detached source", zap.Uint64("attachment", uint64(g.id)))
}
