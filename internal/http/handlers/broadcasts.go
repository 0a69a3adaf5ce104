package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type broadcastRequest struct {
	Text string    `json:"text"`
	At   time.Time `json:"at"` // optional; zero means now
}

// BroadcastsCreate schedules a broadcast to all active users. The delivery
// itself runs detached from the request.
func (a *App) BroadcastsCreate(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Text == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "text is required")
		return
	}

	at := req.At
	if at.IsZero() {
		at = time.Now()
	}
	text := req.Text
	a.Scheduler.ScheduleAt(at, func() {
		if _, err := a.Broadcast.Send(context.Background(), text); err != nil {
			a.Logger.Error().Err(err).Msg("handlers: broadcast failed")
		}
	})

	a.json(w, http.StatusAccepted, map[string]any{"scheduled_for": at})
}
