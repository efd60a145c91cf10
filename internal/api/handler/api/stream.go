// internal/api/handler/api/stream.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// streamPollInterval is how often the stream checks for a new snapshot.
const streamPollInterval = time.Second

// Stream pushes feed snapshots as server-sent events. A snapshot is
// emitted immediately on connect and then whenever the feed changes.
// EventSource clients reconnect on their own when the server's write
// timeout closes the connection.
func (h *SignalsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	snap := h.feed.Snapshot()
	if err := writeEvent(w, snap); err != nil {
		return
	}
	flusher.Flush()
	last := snap.UpdatedAt
	lastErr := snap.Err

	ticker := time.NewTicker(streamPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			snap := h.feed.Snapshot()
			if snap.UpdatedAt.Equal(last) && snap.Err == lastErr {
				continue
			}
			if err := writeEvent(w, snap); err != nil {
				return
			}
			flusher.Flush()
			last = snap.UpdatedAt
			lastErr = snap.Err
		}
	}
}

func writeEvent(w http.ResponseWriter, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
