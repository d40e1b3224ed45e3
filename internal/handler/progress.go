package handler

import (
	"encoding/json"
	"net/http"
)

type progressRequest struct {
	LessonID       string `json:"lessonId"`
	WatchedSeconds int    `json:"watchedSeconds"`
	Completed      bool   `json:"completed"`
}

type progressResponse struct {
	LessonID       string `json:"lessonId"`
	WatchedSeconds int    `json:"watchedSeconds"`
	Completed      bool   `json:"completed"`
	// Synced is false when the durable write failed; the local update stands
	// regardless.
	Synced bool `json:"synced"`
}

func (h *Handler) markProgress(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.LessonID == "" {
		writeError(w, http.StatusBadRequest, "lessonId is required")
		return
	}
	if req.WatchedSeconds < 0 {
		writeError(w, http.StatusUnprocessableEntity, "watchedSeconds must not be negative")
		return
	}

	err := h.progress.Mark(r.Context(), ownerID, req.LessonID, req.WatchedSeconds, req.Completed)
	writeJSON(w, http.StatusOK, progressResponse{
		LessonID:       req.LessonID,
		WatchedSeconds: req.WatchedSeconds,
		Completed:      req.Completed,
		Synced:         err == nil,
	})
}
