package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
)

const (
	wsWriteWait = 10 * time.Second
	// wsStreamLimit bounds how long one progress stream stays open.
	wsStreamLimit = 30 * time.Minute
)

// ProgressSource is the progress surface the handlers depend on.
type ProgressSource interface {
	Get(ctx context.Context, jobID string) (model.ProgressState, error)
	Subscribe(jobID string) (<-chan model.ProgressState, func())
}

// ProgressHandlers serves job progress, by poll and by websocket push.
type ProgressHandlers struct {
	Tracker ProgressSource
	Logger  *slog.Logger
}

// Get handles GET /api/v1/jobs/{id}/progress.
func (h *ProgressHandlers) Get(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("job id is required")})
		return
	}

	state, err := h.Tracker.Get(r.Context(), jobID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, state)
}

var progressUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Progress is read-only and job ids are unguessable UUIDs; cross-origin
	// reads are allowed.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Stream handles GET /api/v1/jobs/{id}/progress/ws. It pushes every progress
// state for the job and closes after the terminal event; a subscriber always
// sees at least one event with done=true.
func (h *ProgressHandlers) Stream(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("job id is required")})
		return
	}

	conn, err := progressUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn("progress websocket upgrade failed", "job_id", jobID, "error", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.Tracker.Subscribe(jobID)
	defer cancel()

	deadline := time.NewTimer(wsStreamLimit)
	defer deadline.Stop()

	for {
		select {
		case state, open := <-updates:
			if !open {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(state); err != nil {
				return
			}
			if state.Done {
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job finished"))
				return
			}
		case <-deadline.C:
			return
		case <-r.Context().Done():
			return
		}
	}
}
