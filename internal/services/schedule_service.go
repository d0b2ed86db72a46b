package services

import (
	"time"

	"github.com/stresssense/stresssense/internal/models"
)

// ScheduleStore abstracts persistence operations required by ScheduleService.
type ScheduleStore interface {
	InsertSchedule(sc *models.Schedule) error
	GetSchedule(id string) (*models.Schedule, error)
	ListSchedules(orgID string) ([]*models.Schedule, error)
	ListActiveSchedules() ([]*models.Schedule, error)
	UpdateSchedule(sc *models.Schedule) error
	DeleteSchedule(id string) error
	SetScheduleLastRun(id string, at time.Time) error

	GetSurvey(id string) (*models.Survey, error)
	InsertSurvey(s *models.Survey) error
	ListQuestions(surveyID string) ([]*models.Question, error)
	InsertQuestion(q *models.Question) error
	CountInvites(surveyID string) (int, error)
	AddInvites(invites []*models.Invite) error
}

type ScheduleService struct {
	store ScheduleStore
	now   func() time.Time
	idGen func(n int) string
}

func NewScheduleService(store ScheduleStore) *ScheduleService {
	return &ScheduleService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: shortID,
	}
}

func (s *ScheduleService) CreateSchedule(orgID string, sc *models.Schedule) (*models.Schedule, error) {
	if orgID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	if sc == nil {
		return nil, NewInvalidError("schedule required")
	}
	switch sc.Frequency {
	case models.FrequencyWeekly:
		if sc.DayOfWeek < time.Sunday || sc.DayOfWeek > time.Saturday {
			return nil, NewInvalidError("day_of_week must be 0-6")
		}
	case models.FrequencyMonthly:
		if sc.DayOfMonth < 1 || sc.DayOfMonth > 31 {
			return nil, NewInvalidError("day_of_month must be 1-31")
		}
	default:
		return nil, NewInvalidError("frequency must be weekly or monthly")
	}
	tmpl, err := s.store.GetSurvey(sc.TemplateSurveyID)
	if err != nil {
		return nil, err
	}
	if tmpl == nil || tmpl.OrgID != orgID {
		return nil, NewInvalidError("template survey not found")
	}
	if sc.ID == "" {
		sc.ID = s.idGen(8)
	}
	sc.OrgID = orgID
	sc.Active = true
	sc.LastRunAt = nil
	if err := s.store.InsertSchedule(sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *ScheduleService) ListSchedules(orgID string) ([]*models.Schedule, error) {
	if orgID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	return s.store.ListSchedules(orgID)
}

func (s *ScheduleService) SetActive(orgID, scheduleID string, active bool) error {
	sc, err := s.ownedSchedule(orgID, scheduleID)
	if err != nil {
		return err
	}
	sc.Active = active
	return s.store.UpdateSchedule(sc)
}

func (s *ScheduleService) DeleteSchedule(orgID, scheduleID string) error {
	if _, err := s.ownedSchedule(orgID, scheduleID); err != nil {
		return err
	}
	return s.store.DeleteSchedule(scheduleID)
}

// LaunchedInstance reports one survey instance created by a tick.
type LaunchedInstance struct {
	ScheduleID string `json:"schedule_id"`
	SurveyID   string `json:"survey_id"`
}

// RunDue evaluates every active schedule against now and spawns survey
// instances for the due ones. The last-run timestamp is persisted in the
// same pass, which is what keeps a daily tick from double-firing; the
// deployment runs a single tick loop.
func (s *ScheduleService) RunDue(now time.Time) ([]LaunchedInstance, error) {
	schedules, err := s.store.ListActiveSchedules()
	if err != nil {
		return nil, err
	}
	var launched []LaunchedInstance
	for _, sc := range schedules {
		if !ShouldRunSchedule(ScheduleCheck{Schedule: *sc, LastSurveyAt: sc.LastRunAt, Now: now}) {
			continue
		}
		instance, err := s.launchInstance(sc, now)
		if err != nil {
			return launched, err
		}
		if err := s.store.SetScheduleLastRun(sc.ID, now); err != nil {
			return launched, err
		}
		launched = append(launched, LaunchedInstance{ScheduleID: sc.ID, SurveyID: instance.ID})
	}
	return launched, nil
}

// launchInstance clones the template survey: same questions, fresh
// anonymous invites matching the template's invite count.
func (s *ScheduleService) launchInstance(sc *models.Schedule, now time.Time) (*models.Survey, error) {
	tmpl, err := s.store.GetSurvey(sc.TemplateSurveyID)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, NewNotFoundError("template survey not found")
	}
	instance := &models.Survey{
		ID:        s.idGen(8),
		OrgID:     tmpl.OrgID,
		TeamID:    tmpl.TeamID,
		Title:     tmpl.Title + " " + now.Format("2006-01-02"),
		Status:    models.SurveyOpen,
		ScaleMin:  tmpl.ScaleMin,
		ScaleMax:  tmpl.ScaleMax,
		CreatedAt: now,
	}
	if err := s.store.InsertSurvey(instance); err != nil {
		return nil, err
	}
	questions, err := s.store.ListQuestions(tmpl.ID)
	if err != nil {
		return nil, err
	}
	for _, q := range questions {
		clone := *q
		clone.ID = s.idGen(8)
		clone.SurveyID = instance.ID
		if err := s.store.InsertQuestion(&clone); err != nil {
			return nil, err
		}
	}
	inviteCount, err := s.store.CountInvites(tmpl.ID)
	if err != nil {
		return nil, err
	}
	if inviteCount > 0 {
		invites := make([]*models.Invite, 0, inviteCount)
		for i := 0; i < inviteCount; i++ {
			invites = append(invites, &models.Invite{Token: s.idGen(16), SurveyID: instance.ID})
		}
		if err := s.store.AddInvites(invites); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

func (s *ScheduleService) ownedSchedule(orgID, scheduleID string) (*models.Schedule, error) {
	if orgID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	sc, err := s.store.GetSchedule(scheduleID)
	if err != nil {
		return nil, err
	}
	if sc == nil || sc.OrgID != orgID {
		return nil, NewForbiddenError("forbidden")
	}
	return sc, nil
}
