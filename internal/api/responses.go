package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stresssense/stresssense/internal/models"
	"github.com/stresssense/stresssense/internal/services"
)

type publicSurveyResponse struct {
	Survey    *models.Survey     `json:"survey"`
	Questions []*models.Question `json:"questions"`
}

func (s *Server) handlePublicSurvey(w http.ResponseWriter, r *http.Request) {
	view, err := s.responses.ResolveInvite(chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, err)
		return
	}
	// Strip tenant internals before the payload leaves the building.
	sv := *view.Survey
	sv.OrgID = ""
	sv.TeamID = ""
	writeJSON(w, http.StatusOK, publicSurveyResponse{Survey: &sv, Questions: view.Questions})
}

type submitRequest struct {
	SurveyID    string                     `json:"survey_id"`
	InviteToken string                     `json:"invite_token"`
	Answers     []services.SubmittedAnswer `json:"answers"`
}

func (s *Server) handleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, services.NewInvalidError("invalid json body"))
		return
	}
	result, err := s.responses.ProcessSubmission(services.SubmissionRequest{
		SurveyID:    req.SurveyID,
		InviteToken: req.InviteToken,
		Answers:     req.Answers,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	// A new response makes any cached summary stale for every org member.
	s.analytics.Invalidate(r.Context(), result.OrgID, result.SurveyID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"response_id":   result.ResponseID,
		"answers_count": result.AnswersCount,
	})
}
