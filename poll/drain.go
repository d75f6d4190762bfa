// File: poll/drain.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package poll

import "github.com/patdhlk/ipcwait/api"

// Drain fully consumes a listener's queue and returns the identifiers in
// dequeue order. Explicit helper for the drain discipline: a listener
// reported by a wait must be emptied before waiting again, or the
// level-triggered readiness turns the next wait into a busy loop.
func Drain(l api.Listener) []api.EventID {
	var ids []api.EventID
	for {
		id, ok := l.TryDequeue()
		if !ok {
			return ids
		}
		ids = append(ids, id)
	}
}
