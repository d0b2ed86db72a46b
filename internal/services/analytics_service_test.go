package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stresssense/stresssense/internal/models"
)

type stubAnalyticsStore struct {
	survey    *models.Survey
	questions []*models.Question
	responses []*models.Response
	invites   int
}

func (s *stubAnalyticsStore) GetSurvey(id string) (*models.Survey, error) {
	if s.survey != nil && s.survey.ID == id {
		return s.survey, nil
	}
	return nil, nil
}

func (s *stubAnalyticsStore) ListQuestions(surveyID string) ([]*models.Question, error) {
	return s.questions, nil
}

func (s *stubAnalyticsStore) ListResponses(surveyID string) ([]*models.Response, error) {
	return s.responses, nil
}

func (s *stubAnalyticsStore) CountInvites(surveyID string) (int, error) {
	return s.invites, nil
}

type stubSummaryCache struct {
	stored      *SurveySummary
	gets, sets  int
	invalidated int
}

func (c *stubSummaryCache) GetSummary(ctx context.Context, orgID, surveyID string) (*SurveySummary, error) {
	c.gets++
	return c.stored, nil
}

func (c *stubSummaryCache) SetSummary(ctx context.Context, orgID string, summary *SurveySummary) error {
	c.sets++
	c.stored = summary
	return nil
}

func (c *stubSummaryCache) InvalidateSummary(ctx context.Context, orgID, surveyID string) error {
	c.invalidated++
	c.stored = nil
	return nil
}

func analyticsFixture() *stubAnalyticsStore {
	day1 := time.Date(2025, 4, 7, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 4, 8, 9, 0, 0, 0, time.UTC)
	return &stubAnalyticsStore{
		survey: &models.Survey{ID: "S1", OrgID: "org1", Status: models.SurveyOpen, ScaleMin: 1, ScaleMax: 5},
		questions: []*models.Question{
			// 0-10 negative-polarity workload question
			{ID: "q1", SurveyID: "S1", Type: models.QuestionScale, ScaleMin: 0, ScaleMax: 10, Polarity: models.PolarityNegative, Driver: DriverWorkloadDeadlines},
			// 0-10 positive-polarity clarity question
			{ID: "q2", SurveyID: "S1", Type: models.QuestionScale, ScaleMin: 0, ScaleMax: 10, Polarity: models.PolarityPositive, Driver: DriverClarityPriorities},
			{ID: "q3", SurveyID: "S1", Type: models.QuestionText},
		},
		responses: []*models.Response{
			{ID: "r1", SurveyID: "S1", SubmittedAt: day1, Answers: []models.Answer{
				{QuestionID: "q1", ScaleValue: intPtr(10)},
				{QuestionID: "q2", ScaleValue: intPtr(4)},
				{QuestionID: "q3", TextValue: "deadlines pile up"},
			}},
			{ID: "r2", SurveyID: "S1", SubmittedAt: day2, Answers: []models.Answer{
				{QuestionID: "q1", ScaleValue: intPtr(6)},
				{QuestionID: "q2", ScaleValue: intPtr(8)},
			}},
		},
		invites: 4,
	}
}

func TestAnalyticsSummary(t *testing.T) {
	store := analyticsFixture()
	svc := NewAnalyticsService(store, nil)

	sum, err := svc.Summary(context.Background(), "org1", "S1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Participation != 50 {
		t.Fatalf("participation = %d, want 50", sum.Participation)
	}
	if sum.TotalResponses != 2 {
		t.Fatalf("total responses = %d, want 2", sum.TotalResponses)
	}
	// Index is the plain mean of normalized values: (100+40+60+80)/4 = 70.
	if math.Abs(sum.AverageStressIndex-70) > 1e-9 {
		t.Fatalf("index = %v, want 70", sum.AverageStressIndex)
	}
	// Drivers: workload (10+6)/2 = 8; clarity positive-polarity inverts:
	// raw 4 -> 6, raw 8 -> 2, avg 4. Overall (8+4)/2 = 6.
	if sum.Overall.DriverCount != 2 {
		t.Fatalf("driver count = %d, want 2", sum.Overall.DriverCount)
	}
	if math.Abs(sum.Overall.Avg-6) > 1e-9 {
		t.Fatalf("overall avg = %v, want 6", sum.Overall.Avg)
	}
	if len(sum.Drivers) != 2 {
		t.Fatalf("driver breakdowns = %d, want 2", len(sum.Drivers))
	}
	// Breakdowns sorted by key: clarity_priorities then workload_deadlines.
	if sum.Drivers[0].Key != DriverClarityPriorities || math.Abs(sum.Drivers[0].Avg-4) > 1e-9 {
		t.Fatalf("first breakdown = %+v", sum.Drivers[0])
	}
	if sum.Drivers[1].Key != DriverWorkloadDeadlines || math.Abs(sum.Drivers[1].Avg-8) > 1e-9 {
		t.Fatalf("second breakdown = %+v", sum.Drivers[1])
	}
	if len(sum.Timeseries) != 2 || sum.Timeseries[0].Date != "2025-04-07" || sum.Timeseries[0].Count != 1 {
		t.Fatalf("timeseries = %+v", sum.Timeseries)
	}
}

func TestAnalyticsSummaryForbidden(t *testing.T) {
	svc := NewAnalyticsService(analyticsFixture(), nil)
	_, err := svc.Summary(context.Background(), "org2", "S1")
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorForbidden {
		t.Fatalf("cross-org summary: err = %v, want forbidden", err)
	}
}

func TestAnalyticsSummaryUsesCache(t *testing.T) {
	store := analyticsFixture()
	cache := &stubSummaryCache{}
	svc := NewAnalyticsService(store, cache)

	first, err := svc.Summary(context.Background(), "org1", "S1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("cache sets = %d, want 1", cache.sets)
	}

	// Mutate the store; the cached snapshot should be served.
	store.invites = 100
	second, err := svc.Summary(context.Background(), "org1", "S1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if second.Participation != first.Participation {
		t.Fatalf("cache not served: %d vs %d", second.Participation, first.Participation)
	}

	svc.Invalidate(context.Background(), "org1", "S1")
	if cache.invalidated != 1 {
		t.Fatalf("invalidations = %d, want 1", cache.invalidated)
	}
	third, err := svc.Summary(context.Background(), "org1", "S1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if third.Participation != 2 { // round(2/100*100)
		t.Fatalf("recomputed participation = %d, want 2", third.Participation)
	}
}

func TestAnalyticsStats(t *testing.T) {
	svc := NewAnalyticsService(analyticsFixture(), nil)
	stats, err := svc.Stats("org1", "S1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Participation != 50 || math.Abs(stats.AverageStressIndex-70) > 1e-9 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestAnalyticsExportRows(t *testing.T) {
	svc := NewAnalyticsService(analyticsFixture(), nil)
	rows, err := svc.ExportRows("org1", "S1")
	if err != nil {
		t.Fatalf("ExportRows: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(rows))
	}
	if rows[0].ResponseID != "r1" || rows[0].Driver != string(DriverWorkloadDeadlines) {
		t.Fatalf("first row = %+v", rows[0])
	}
}
