package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stresssense/stresssense/internal/models"
	"github.com/stresssense/stresssense/internal/services"
)

func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var sc models.Schedule
	if err := decodeJSON(r, &sc); err != nil {
		writeError(w, services.NewInvalidError("invalid json body"))
		return
	}
	created, err := s.schedules.CreateSchedule(orgID(r), &sc)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	list, err := s.schedules.ListSchedules(orgID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type schedulePatch struct {
	Active *bool `json:"active"`
}

func (s *Server) handleSetScheduleActive(w http.ResponseWriter, r *http.Request) {
	var patch schedulePatch
	if err := decodeJSON(r, &patch); err != nil || patch.Active == nil {
		writeError(w, services.NewInvalidError("active field required"))
		return
	}
	if err := s.schedules.SetActive(orgID(r), chi.URLParam(r, "scheduleID"), *patch.Active); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"active": *patch.Active})
}

func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	if err := s.schedules.DeleteSchedule(orgID(r), chi.URLParam(r, "scheduleID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// handleRunSchedules triggers a pass over all due schedules, the same
// evaluation the background runner performs on its tick.
func (s *Server) handleRunSchedules(w http.ResponseWriter, r *http.Request) {
	launched, err := s.schedules.RunDue(time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"launched": launched})
}
