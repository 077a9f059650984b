package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mayday/coordinator/internal/auth"
	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/logging"
)

const defaultPingInterval = 15 * time.Second

// StreamHandler handles GET /api/v1/stream as server-sent events. Each
// notification is one "data:" frame; a comment ping keeps proxies from
// closing idle connections.
func StreamHandler(broadcaster *common.Broadcaster, pingInterval time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := http.NewResponseController(w)
		// The server's write timeout would otherwise cut the stream.
		_ = rc.SetWriteDeadline(time.Time{})

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		events, cancel := broadcaster.Subscribe()
		defer cancel()

		if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			logging.Warn("Event stream cannot flush", "error", err.Error())
			return
		}

		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		logging.Debug("Event stream opened", "request_id", auth.GetRequestID(r.Context()))
		for {
			select {
			case <-r.Context().Done():
				return
			case n, ok := <-events:
				if !ok {
					return
				}
				payload, err := json.Marshal(n)
				if err != nil {
					logging.Error("Failed to encode notification", "type", n.Type, "error", err.Error())
					continue
				}
				if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
					return
				}
				if err := rc.Flush(); err != nil {
					return
				}
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				if err := rc.Flush(); err != nil {
					return
				}
			}
		}
	}
}
