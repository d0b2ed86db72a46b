package services

import (
	"math"

	"github.com/stresssense/stresssense/internal/models"
)

// SurveyStats is the headline view for a survey: how many invitees
// responded and the plain mean of all normalized scale answers. The
// index here is deliberately unweighted by driver; the per-driver
// breakdown lives in the analytics summary.
type SurveyStats struct {
	Participation      int     `json:"participation"`
	AverageStressIndex float64 `json:"average_stress_index"`
}

// ComputeSurveyStats computes participation and the 0-100 stress index
// for one survey. scaleMin/scaleMax are the survey-level default bounds;
// a question's own bounds take precedence when valid. With zero invites
// participation is 0, and with zero scale answers the index is 0.
func ComputeSurveyStats(inviteCount, responseCount int, questions []models.Question, responses []models.Response, scaleMin, scaleMax int) (SurveyStats, error) {
	var stats SurveyStats
	if inviteCount > 0 {
		stats.Participation = int(math.Round(float64(responseCount) / float64(inviteCount) * 100))
	}

	byID := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	var sum float64
	var n int
	for _, resp := range responses {
		for _, ans := range resp.Answers {
			q, ok := byID[ans.QuestionID]
			if !ok || q.Type != models.QuestionScale || ans.ScaleValue == nil {
				continue
			}
			lo, hi := q.ScaleMin, q.ScaleMax
			if hi <= lo {
				lo, hi = scaleMin, scaleMax
			}
			norm, err := NormalizeScale(*ans.ScaleValue, lo, hi)
			if err != nil {
				return SurveyStats{}, err
			}
			sum += norm
			n++
		}
	}
	if n > 0 {
		stats.AverageStressIndex = sum / float64(n)
	}
	return stats, nil
}
