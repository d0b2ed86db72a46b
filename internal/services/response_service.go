package services

import (
	"errors"
	"time"

	"github.com/stresssense/stresssense/internal/models"
)

// SubmitStore abstracts persistence operations required by ResponseService.
type SubmitStore interface {
	GetSurvey(id string) (*models.Survey, error)
	GetInvite(token string) (*models.Invite, error)
	MarkInviteUsed(token string, at time.Time) error
	ListQuestions(surveyID string) ([]*models.Question, error)
	AddResponse(r *models.Response) error
}

var (
	// ErrSurveyNotFound is returned when a submission references a missing survey.
	ErrSurveyNotFound = errors.New("survey not found")
	// ErrSurveyClosed indicates the survey no longer accepts responses.
	ErrSurveyClosed = errors.New("survey is closed")
	// ErrInviteInvalid covers unknown tokens and tokens for another survey.
	ErrInviteInvalid = errors.New("invite token is not valid for this survey")
	// ErrInviteUsed indicates the single-use token was already spent.
	ErrInviteUsed = errors.New("invite token already used")
)

// SubmittedAnswer mirrors the inbound payload for each answer.
type SubmittedAnswer struct {
	QuestionID string `json:"question_id"`
	ScaleValue *int   `json:"scale_value,omitempty"`
	TextValue  string `json:"text_value,omitempty"`
}

// SubmissionRequest transports the sanitized handler input into the service layer.
type SubmissionRequest struct {
	SurveyID    string
	InviteToken string
	Answers     []SubmittedAnswer
}

// SubmissionResult collects the data needed to emit the HTTP response.
// SurveyID and OrgID let callers invalidate cached analytics without a
// second lookup.
type SubmissionResult struct {
	ResponseID   string
	SurveyID     string
	OrgID        string
	AnswersCount int
}

// ResponseService hosts the public submission workflow. Responses are
// immutable once stored; there is no edit or delete path.
type ResponseService struct {
	store SubmitStore
	now   func() time.Time
	idGen func(n int) string
}

func NewResponseService(store SubmitStore) *ResponseService {
	return &ResponseService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: shortID,
	}
}

// PublicView resolves an invite token to the open survey and its questions
// so the respondent-facing form can render without authentication.
type PublicView struct {
	Survey    *models.Survey
	Questions []*models.Question
}

func (s *ResponseService) ResolveInvite(token string) (*PublicView, error) {
	if s.store == nil {
		return nil, errors.New("response service store is nil")
	}
	inv, err := s.store.GetInvite(token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrInviteInvalid
	}
	if inv.UsedAt != nil {
		return nil, ErrInviteUsed
	}
	sv, err := s.store.GetSurvey(inv.SurveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, ErrSurveyNotFound
	}
	if sv.Status != models.SurveyOpen {
		return nil, ErrSurveyClosed
	}
	questions, err := s.store.ListQuestions(sv.ID)
	if err != nil {
		return nil, err
	}
	return &PublicView{Survey: sv, Questions: questions}, nil
}

// ProcessSubmission validates the invite token and persists a response.
// Answers to unknown questions are dropped rather than rejected, matching
// the forgiving intake the dashboard side expects.
func (s *ResponseService) ProcessSubmission(req SubmissionRequest) (*SubmissionResult, error) {
	if s.store == nil {
		return nil, errors.New("response service store is nil")
	}
	sv, err := s.store.GetSurvey(req.SurveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, ErrSurveyNotFound
	}
	if sv.Status != models.SurveyOpen {
		return nil, ErrSurveyClosed
	}
	inv, err := s.store.GetInvite(req.InviteToken)
	if err != nil {
		return nil, err
	}
	if inv == nil || inv.SurveyID != sv.ID {
		return nil, ErrInviteInvalid
	}
	if inv.UsedAt != nil {
		return nil, ErrInviteUsed
	}

	questions, err := s.store.ListQuestions(sv.ID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	now := s.now()
	resp := &models.Response{
		ID:          s.idGen(12),
		SurveyID:    sv.ID,
		SubmittedAt: now,
	}
	for _, a := range req.Answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		ans := models.Answer{QuestionID: a.QuestionID}
		switch q.Type {
		case models.QuestionScale:
			if a.ScaleValue == nil {
				continue
			}
			ans.ScaleValue = a.ScaleValue
		case models.QuestionText:
			if a.TextValue == "" {
				continue
			}
			ans.TextValue = a.TextValue
		default:
			continue
		}
		resp.Answers = append(resp.Answers, ans)
	}

	if err := s.store.AddResponse(resp); err != nil {
		return nil, err
	}
	if err := s.store.MarkInviteUsed(inv.Token, now); err != nil {
		return nil, err
	}
	return &SubmissionResult{
		ResponseID:   resp.ID,
		SurveyID:     sv.ID,
		OrgID:        sv.OrgID,
		AnswersCount: len(resp.Answers),
	}, nil
}
