package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stresssense/stresssense/internal/middleware"
	"github.com/stresssense/stresssense/internal/models"
	"github.com/stresssense/stresssense/internal/services"
)

func orgID(r *http.Request) string {
	oid, _ := middleware.OrgIDFromContext(r.Context())
	return oid
}

func (s *Server) handleCreateSurvey(w http.ResponseWriter, r *http.Request) {
	var in services.CreateSurveyInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, services.NewInvalidError("invalid json body"))
		return
	}
	sv, err := s.surveys.CreateSurvey(orgID(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sv)
}

func (s *Server) handleListSurveys(w http.ResponseWriter, r *http.Request) {
	list, err := s.surveys.ListSurveys(orgID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetSurvey(w http.ResponseWriter, r *http.Request) {
	sv, err := s.surveys.GetSurvey(orgID(r), chi.URLParam(r, "surveyID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sv)
}

func (s *Server) handleCloseSurvey(w http.ResponseWriter, r *http.Request) {
	surveyID := chi.URLParam(r, "surveyID")
	if err := s.surveys.CloseSurvey(orgID(r), surveyID); err != nil {
		writeError(w, err)
		return
	}
	s.analytics.Invalidate(r.Context(), orgID(r), surveyID)
	writeJSON(w, http.StatusOK, map[string]string{"status": string(models.SurveyClosed)})
}

func (s *Server) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	var q models.Question
	if err := decodeJSON(r, &q); err != nil {
		writeError(w, services.NewInvalidError("invalid json body"))
		return
	}
	q.SurveyID = chi.URLParam(r, "surveyID")
	created, err := s.surveys.AddQuestion(orgID(r), &q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	list, err := s.surveys.ListQuestions(orgID(r), chi.URLParam(r, "surveyID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	err := s.surveys.DeleteQuestion(orgID(r), chi.URLParam(r, "surveyID"), chi.URLParam(r, "questionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type inviteRequest struct {
	Emails []string `json:"emails,omitempty"`
	Count  int      `json:"count,omitempty"`
}

type inviteResponse struct {
	Tokens []string `json:"tokens"`
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, services.NewInvalidError("invalid json body"))
		return
	}
	invites, err := s.surveys.Invite(orgID(r), chi.URLParam(r, "surveyID"), req.Emails, req.Count)
	if err != nil {
		writeError(w, err)
		return
	}
	out := inviteResponse{Tokens: make([]string, 0, len(invites))}
	for _, inv := range invites {
		out.Tokens = append(out.Tokens, inv.Token)
	}
	writeJSON(w, http.StatusCreated, out)
}
