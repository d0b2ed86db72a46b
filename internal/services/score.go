package services

import (
	"errors"

	"github.com/stresssense/stresssense/internal/models"
)

// ErrBadScaleBounds flags a question configured with scaleMax <= scaleMin.
// Normalization is undefined there, so the pipeline fails loudly instead
// of letting an Inf/NaN leak into aggregates.
var ErrBadScaleBounds = errors.New("scale max must be greater than scale min")

// NormalizeScale maps a raw scale answer onto the canonical 0-100 range.
// raw is expected to be within [scaleMin, scaleMax]. Out-of-range values
// are clamped so a misbehaving client cannot push an aggregate outside
// the band.
func NormalizeScale(raw, scaleMin, scaleMax int) (float64, error) {
	if scaleMax <= scaleMin {
		return 0, ErrBadScaleBounds
	}
	if raw < scaleMin {
		raw = scaleMin
	}
	if raw > scaleMax {
		raw = scaleMax
	}
	return float64(raw-scaleMin) / float64(scaleMax-scaleMin) * 100, nil
}

// AnswerScore is one answer's stress contribution to a driver, expressed
// in the question's native scale units.
type AnswerScore struct {
	Driver      models.DriverKey
	StressScore float64
}

// ScoreAnswer converts one answer into its per-driver stress contribution.
// Only scale questions tagged with a driver contribute; everything else
// returns (nil, nil). Positive polarity inverts the normalized value, so
// "I feel very supported" rated at the maximum contributes zero stress;
// negative (or unset) polarity passes it through.
func ScoreAnswer(ans models.Answer, q models.Question) (*AnswerScore, error) {
	switch q.Type {
	case models.QuestionText:
		return nil, nil
	case models.QuestionScale:
		// scored below
	default:
		return nil, nil
	}
	if q.Driver == "" || ans.ScaleValue == nil {
		return nil, nil
	}
	norm, err := NormalizeScale(*ans.ScaleValue, q.ScaleMin, q.ScaleMax)
	if err != nil {
		return nil, err
	}
	stress := norm
	if q.Polarity == models.PolarityPositive {
		stress = 100 - norm
	}
	// Back to the question's own units so driver averages stay comparable
	// with the raw scale the team configured.
	native := float64(q.ScaleMin) + stress/100*float64(q.ScaleMax-q.ScaleMin)
	return &AnswerScore{Driver: q.Driver, StressScore: native}, nil
}
