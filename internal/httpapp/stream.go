package httpapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cesargomez89/yearspin/internal/jobstore"
)

// Stream replays a job's results as server-sent events and then follows the
// job live. Each processed song arrives as a "song" event; once the job
// reaches a terminal status and every result has been sent, the stream ends
// with a "done" event carrying that status. The connection also ends at the
// stream lifetime limit, and clients are expected to reconnect; the replay
// makes reconnects cheap.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("jobId")
	if jobID == "" {
		respondError(w, http.StatusBadRequest, "jobId is required")
		return
	}
	if !h.jobExists(w, r, jobID) {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	log := h.Logger.WithJob(jobID)
	ctx := r.Context()
	deadline := time.NewTimer(h.streamLifetime)
	defer deadline.Stop()
	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	cursor := 0
	for {
		finished, err := h.pushUpdates(ctx, w, flusher, jobID, &cursor)
		if err != nil {
			log.Warn("stream poll failed", "error", err)
			writeSSE(w, flusher, "error", map[string]string{"message": err.Error()})
			return
		}
		if finished {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			log.Debug("stream lifetime reached, closing")
			return
		case <-ticker.C:
		}
	}
}

// pushUpdates sends results past the cursor and reports whether the stream
// is finished. The status read comes first: a terminal status observed
// before the list read guarantees no result can slip in after the final
// drain.
func (h *Handler) pushUpdates(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, jobID string, cursor *int) (bool, error) {
	status, err := h.Jobs.GetStatus(ctx, jobID)
	if err != nil {
		if errors.Is(err, jobstore.ErrJobNotFound) {
			return false, errors.New("job expired")
		}
		return false, err
	}

	songs, err := h.Jobs.ListResults(ctx, jobID, *cursor)
	if err != nil {
		return false, err
	}
	for _, song := range songs {
		writeSSE(w, flusher, "song", song)
	}
	*cursor += len(songs)

	if !status.IsTerminal() {
		return false, nil
	}
	// done carries the terminal status verbatim, failed or not; the client
	// distinguishes complete from worker_failed by the payload.
	writeSSERaw(w, flusher, "done", string(status))
	return true, nil
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	writeSSERaw(w, flusher, event, string(data))
}

func writeSSERaw(w http.ResponseWriter, flusher http.Flusher, event, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
