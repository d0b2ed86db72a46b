package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stresssense/stresssense/internal/services"
)

type createChannelRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateChannel(w http.ResponseWriter, r *http.Request) {
	var req createChannelRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, services.NewInvalidError("invalid json body"))
		return
	}
	ch, err := s.feedback.CreateChannel(orgID(r), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ch)
}

func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	list, err := s.feedback.ListChannels(orgID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type postMessageRequest struct {
	Body string `json:"body"`
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, services.NewInvalidError("invalid json body"))
		return
	}
	msg, err := s.feedback.PostMessage(orgID(r), chi.URLParam(r, "channelID"), req.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := s.feedback.ListMessages(orgID(r), chi.URLParam(r, "channelID"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSummarizeChannel(w http.ResponseWriter, r *http.Request) {
	summary, err := s.feedback.Summarize(r.Context(), orgID(r), chi.URLParam(r, "channelID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}
