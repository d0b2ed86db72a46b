package services

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stresssense/stresssense/internal/models"
)

// SurveyStore abstracts persistence operations required by SurveyService.
type SurveyStore interface {
	InsertSurvey(s *models.Survey) error
	GetSurvey(id string) (*models.Survey, error)
	ListSurveys(orgID string) ([]*models.Survey, error)
	UpdateSurveyStatus(id string, status models.SurveyStatus) error
	InsertQuestion(q *models.Question) error
	ListQuestions(surveyID string) ([]*models.Question, error)
	DeleteQuestion(id string) error
	AddInvites(invites []*models.Invite) error
	CountInvites(surveyID string) (int, error)
}

type SurveyService struct {
	store SurveyStore
	now   func() time.Time
	idGen func(n int) string
}

func NewSurveyService(store SurveyStore) *SurveyService {
	return &SurveyService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: shortID,
	}
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

// CreateSurveyInput carries the sanitized handler payload.
type CreateSurveyInput struct {
	Title    string `json:"title"`
	TeamID   string `json:"team_id,omitempty"`
	ScaleMin int    `json:"scale_min"`
	ScaleMax int    `json:"scale_max"`
}

func (s *SurveyService) CreateSurvey(orgID string, in CreateSurveyInput) (*models.Survey, error) {
	if orgID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, NewInvalidError("title required")
	}
	if in.ScaleMin == 0 && in.ScaleMax == 0 {
		in.ScaleMin, in.ScaleMax = 1, 5
	}
	if in.ScaleMax <= in.ScaleMin {
		return nil, NewInvalidError("scale_max must be greater than scale_min")
	}
	sv := &models.Survey{
		ID:        s.idGen(8),
		OrgID:     orgID,
		TeamID:    in.TeamID,
		Title:     strings.TrimSpace(in.Title),
		Status:    models.SurveyOpen,
		ScaleMin:  in.ScaleMin,
		ScaleMax:  in.ScaleMax,
		CreatedAt: s.now(),
	}
	if err := s.store.InsertSurvey(sv); err != nil {
		return nil, err
	}
	return sv, nil
}

func (s *SurveyService) GetSurvey(orgID, surveyID string) (*models.Survey, error) {
	sv, err := s.ownedSurvey(orgID, surveyID)
	if err != nil {
		return nil, err
	}
	return sv, nil
}

func (s *SurveyService) ListSurveys(orgID string) ([]*models.Survey, error) {
	if orgID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	return s.store.ListSurveys(orgID)
}

// AddQuestion validates question configuration before it ever reaches the
// scoring pipeline: scale bounds must be well-formed and driver keys must
// be registered.
func (s *SurveyService) AddQuestion(orgID string, q *models.Question) (*models.Question, error) {
	if q == nil {
		return nil, NewInvalidError("question required")
	}
	sv, err := s.ownedSurvey(orgID, q.SurveyID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(q.Prompt) == "" {
		return nil, NewInvalidError("prompt required")
	}
	switch q.Type {
	case models.QuestionScale:
		if q.ScaleMin == 0 && q.ScaleMax == 0 {
			q.ScaleMin, q.ScaleMax = sv.ScaleMin, sv.ScaleMax
		}
		if q.ScaleMax <= q.ScaleMin {
			return nil, NewInvalidError("scale_max must be greater than scale_min")
		}
		switch q.Polarity {
		case "", models.PolarityPositive, models.PolarityNegative:
		default:
			return nil, NewInvalidError("polarity must be positive or negative")
		}
		if q.Driver != "" && !KnownDriver(q.Driver) {
			return nil, NewInvalidError("unknown driver key: " + string(q.Driver))
		}
	case models.QuestionText:
		if q.Driver != "" {
			return nil, NewInvalidError("text questions cannot feed a driver")
		}
	default:
		return nil, NewInvalidError("type must be scale or text")
	}
	if q.ID == "" {
		q.ID = s.idGen(8)
	}
	if err := s.store.InsertQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *SurveyService) ListQuestions(orgID, surveyID string) ([]*models.Question, error) {
	if _, err := s.ownedSurvey(orgID, surveyID); err != nil {
		return nil, err
	}
	return s.store.ListQuestions(surveyID)
}

func (s *SurveyService) DeleteQuestion(orgID, surveyID, questionID string) error {
	if _, err := s.ownedSurvey(orgID, surveyID); err != nil {
		return err
	}
	return s.store.DeleteQuestion(questionID)
}

// Invite issues one single-use token per recipient. Emails are optional;
// a count alone issues anonymous tokens.
func (s *SurveyService) Invite(orgID, surveyID string, emails []string, count int) ([]*models.Invite, error) {
	sv, err := s.ownedSurvey(orgID, surveyID)
	if err != nil {
		return nil, err
	}
	if sv.Status != models.SurveyOpen {
		return nil, NewConflictError("survey is closed")
	}
	if len(emails) == 0 && count <= 0 {
		return nil, NewInvalidError("emails or count required")
	}
	n := len(emails)
	if n == 0 {
		n = count
	}
	invites := make([]*models.Invite, 0, n)
	for i := 0; i < n; i++ {
		inv := &models.Invite{Token: s.idGen(16), SurveyID: surveyID}
		if i < len(emails) {
			inv.Email = strings.TrimSpace(emails[i])
		}
		invites = append(invites, inv)
	}
	if err := s.store.AddInvites(invites); err != nil {
		return nil, err
	}
	return invites, nil
}

func (s *SurveyService) CloseSurvey(orgID, surveyID string) error {
	sv, err := s.ownedSurvey(orgID, surveyID)
	if err != nil {
		return err
	}
	if sv.Status == models.SurveyClosed {
		return NewConflictError("survey already closed")
	}
	return s.store.UpdateSurveyStatus(surveyID, models.SurveyClosed)
}

func (s *SurveyService) ownedSurvey(orgID, surveyID string) (*models.Survey, error) {
	if orgID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	sv, err := s.store.GetSurvey(surveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil || sv.OrgID != orgID {
		return nil, NewForbiddenError("forbidden")
	}
	return sv, nil
}
