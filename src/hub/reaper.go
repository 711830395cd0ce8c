package hub

import (
	"time"

	"github.com/parleychat/relay/src/metrics"
)

// RunReaper sweeps the registry on the given interval, dropping clients
// whose channel no longer answers a ping. Reaped clients are removed
// without an offline presence broadcast, so peers keep the stale online
// state until the user reconnects. Call in a goroutine; returns when the
// hub stops.
func (h *Hub) RunReaper(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.reapDead()
		case <-h.done:
			return
		}
	}
}

func (h *Hub) reapDead() {
	for _, c := range h.snapshot() {
		if c.Alive() {
			continue
		}
		h.logger.Info().
			Str("client_id", c.ID).
			Str("user_id", c.UserID).
			Msg("reaping dead connection")
		metrics.ReapedConnections.Inc()
		h.removeClient(c, false)
	}
}
