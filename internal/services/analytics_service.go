package services

import (
	"context"
	"sort"

	"github.com/stresssense/stresssense/internal/models"
)

// AnalyticsStore abstracts persistence operations required by AnalyticsService.
type AnalyticsStore interface {
	GetSurvey(id string) (*models.Survey, error)
	ListQuestions(surveyID string) ([]*models.Question, error)
	ListResponses(surveyID string) ([]*models.Response, error)
	CountInvites(surveyID string) (int, error)
}

// SummaryCache is an optional snapshot cache for dashboard summaries.
// Implemented by the Redis cache package; a nil cache disables caching.
type SummaryCache interface {
	GetSummary(ctx context.Context, orgID, surveyID string) (*SurveySummary, error)
	SetSummary(ctx context.Context, orgID string, summary *SurveySummary) error
	InvalidateSummary(ctx context.Context, orgID, surveyID string) error
}

type DriverBreakdown struct {
	Key   models.DriverKey `json:"key"`
	Label string           `json:"label"`
	Avg   float64          `json:"avg"`
	Count int              `json:"count"`
}

type ResponsesByDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// SurveySummary is the manager dashboard payload for one survey.
type SurveySummary struct {
	SurveyID           string            `json:"survey_id"`
	Participation      int               `json:"participation"`
	AverageStressIndex float64           `json:"average_stress_index"`
	Overall            OverallStress     `json:"overall"`
	Drivers            []DriverBreakdown `json:"drivers"`
	TotalResponses     int               `json:"total_responses"`
	Timeseries         []ResponsesByDay  `json:"timeseries"`
}

type AnalyticsService struct {
	store AnalyticsStore
	cache SummaryCache
}

func NewAnalyticsService(store AnalyticsStore, cache SummaryCache) *AnalyticsService {
	return &AnalyticsService{store: store, cache: cache}
}

// Summary computes the dashboard summary for a survey, serving a cached
// snapshot when one exists. Driver totals are built per call and thrown
// away; nothing derived is persisted.
func (s *AnalyticsService) Summary(ctx context.Context, orgID, surveyID string) (*SurveySummary, error) {
	sv, err := s.store.GetSurvey(surveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil || sv.OrgID != orgID {
		return nil, NewForbiddenError("forbidden")
	}
	if s.cache != nil {
		if cached, err := s.cache.GetSummary(ctx, orgID, surveyID); err == nil && cached != nil {
			return cached, nil
		}
	}

	questions, err := s.store.ListQuestions(surveyID)
	if err != nil {
		return nil, err
	}
	responses, err := s.store.ListResponses(surveyID)
	if err != nil {
		return nil, err
	}
	inviteCount, err := s.store.CountInvites(surveyID)
	if err != nil {
		return nil, err
	}

	qs := make([]models.Question, 0, len(questions))
	for _, q := range questions {
		qs = append(qs, *q)
	}
	rs := make([]models.Response, 0, len(responses))
	for _, r := range responses {
		rs = append(rs, *r)
	}

	stats, err := ComputeSurveyStats(inviteCount, len(responses), qs, rs, sv.ScaleMin, sv.ScaleMax)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	totals := DriverTotals{}
	countsByDay := map[string]int{}
	for _, resp := range responses {
		countsByDay[resp.SubmittedAt.UTC().Format("2006-01-02")]++
		for _, ans := range resp.Answers {
			q, ok := byID[ans.QuestionID]
			if !ok {
				continue
			}
			score, err := ScoreAnswer(ans, *q)
			if err != nil {
				return nil, err
			}
			if score != nil {
				totals.Add(*score)
			}
		}
	}

	summary := &SurveySummary{
		SurveyID:           surveyID,
		Participation:      stats.Participation,
		AverageStressIndex: stats.AverageStressIndex,
		Overall:            ComputeOverallStressFromDrivers(totals),
		Drivers:            driverBreakdowns(totals),
		TotalResponses:     len(responses),
		Timeseries:         buildTimeseries(countsByDay),
	}
	if s.cache != nil {
		_ = s.cache.SetSummary(ctx, orgID, summary)
	}
	return summary, nil
}

// Stats returns just the participation/index pair, bypassing the cache.
func (s *AnalyticsService) Stats(orgID, surveyID string) (*SurveyStats, error) {
	sv, err := s.store.GetSurvey(surveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil || sv.OrgID != orgID {
		return nil, NewForbiddenError("forbidden")
	}
	questions, err := s.store.ListQuestions(surveyID)
	if err != nil {
		return nil, err
	}
	responses, err := s.store.ListResponses(surveyID)
	if err != nil {
		return nil, err
	}
	inviteCount, err := s.store.CountInvites(surveyID)
	if err != nil {
		return nil, err
	}
	qs := make([]models.Question, 0, len(questions))
	for _, q := range questions {
		qs = append(qs, *q)
	}
	rs := make([]models.Response, 0, len(responses))
	for _, r := range responses {
		rs = append(rs, *r)
	}
	stats, err := ComputeSurveyStats(inviteCount, len(responses), qs, rs, sv.ScaleMin, sv.ScaleMax)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Invalidate drops the cached summary after a new submission.
func (s *AnalyticsService) Invalidate(ctx context.Context, orgID, surveyID string) {
	if s.cache != nil {
		_ = s.cache.InvalidateSummary(ctx, orgID, surveyID)
	}
}

// ExportRows flattens a survey's answers for CSV export after tenant check.
func (s *AnalyticsService) ExportRows(orgID, surveyID string) ([]LongRow, error) {
	sv, err := s.store.GetSurvey(surveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil || sv.OrgID != orgID {
		return nil, NewForbiddenError("forbidden")
	}
	questions, err := s.store.ListQuestions(surveyID)
	if err != nil {
		return nil, err
	}
	responses, err := s.store.ListResponses(surveyID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	rows := make([]LongRow, 0, len(responses))
	for _, resp := range responses {
		for _, ans := range resp.Answers {
			q, ok := byID[ans.QuestionID]
			if !ok {
				continue
			}
			row := LongRow{
				ResponseID:  resp.ID,
				QuestionID:  ans.QuestionID,
				Driver:      string(q.Driver),
				TextValue:   ans.TextValue,
				SubmittedAt: resp.SubmittedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			}
			if ans.ScaleValue != nil {
				row.ScaleValue = ans.ScaleValue
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func driverBreakdowns(totals DriverTotals) []DriverBreakdown {
	out := make([]DriverBreakdown, 0, len(totals))
	for key, dt := range totals {
		if dt.Count == 0 {
			continue
		}
		out = append(out, DriverBreakdown{
			Key:   key,
			Label: DriverLabel(key),
			Avg:   dt.Sum / float64(dt.Count),
			Count: dt.Count,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func buildTimeseries(counts map[string]int) []ResponsesByDay {
	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)
	out := make([]ResponsesByDay, 0, len(days))
	for _, d := range days {
		out = append(out, ResponsesByDay{Date: d, Count: counts[d]})
	}
	return out
}
