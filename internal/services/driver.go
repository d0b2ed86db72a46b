package services

import (
	"sync"

	"github.com/stresssense/stresssense/internal/models"
)

// Built-in stress drivers. New drivers can be added at runtime through
// RegisterDriver; questions referencing unknown keys are rejected at
// creation time so totals never accumulate under a typo'd key.
const (
	DriverWorkloadDeadlines   models.DriverKey = "workload_deadlines"
	DriverClarityPriorities   models.DriverKey = "clarity_priorities"
	DriverAutonomyControl     models.DriverKey = "autonomy_control"
	DriverSupportAvailability models.DriverKey = "support_availability"
	DriverRecognitionReward   models.DriverKey = "recognition_reward"
	DriverPsychSafety         models.DriverKey = "psychological_safety"
	DriverWorkLifeBalance     models.DriverKey = "work_life_balance"
	DriverGrowthOpportunities models.DriverKey = "growth_opportunities"
)

var (
	driverMu sync.RWMutex
	drivers  = map[models.DriverKey]string{
		DriverWorkloadDeadlines:   "Workload & deadlines",
		DriverClarityPriorities:   "Clarity of priorities",
		DriverAutonomyControl:     "Autonomy & control",
		DriverSupportAvailability: "Support availability",
		DriverRecognitionReward:   "Recognition & reward",
		DriverPsychSafety:         "Psychological safety",
		DriverWorkLifeBalance:     "Work-life balance",
		DriverGrowthOpportunities: "Growth opportunities",
	}
)

// RegisterDriver adds a driver key to the known set. Registering an
// existing key overwrites its label.
func RegisterDriver(key models.DriverKey, label string) {
	driverMu.Lock()
	defer driverMu.Unlock()
	drivers[key] = label
}

// KnownDriver reports whether key is in the registry.
func KnownDriver(key models.DriverKey) bool {
	driverMu.RLock()
	defer driverMu.RUnlock()
	_, ok := drivers[key]
	return ok
}

// DriverLabel returns the display label for key, or the key itself when
// unregistered.
func DriverLabel(key models.DriverKey) string {
	driverMu.RLock()
	defer driverMu.RUnlock()
	if label, ok := drivers[key]; ok {
		return label
	}
	return string(key)
}

// DriverTotal is the running sum/count of stress contributions for one driver.
type DriverTotal struct {
	Sum   float64 `json:"sum"`
	Count int     `json:"count"`
}

// DriverTotals maps driver key to its running total. Built per aggregation
// request and thrown away; never persisted.
type DriverTotals map[models.DriverKey]DriverTotal

// Add folds one scored answer into the totals, allocating the map on
// first use so a zero-value DriverTotals is safe to add to.
func (t *DriverTotals) Add(score AnswerScore) {
	if *t == nil {
		*t = DriverTotals{}
	}
	dt := (*t)[score.Driver]
	dt.Sum += score.StressScore
	dt.Count++
	(*t)[score.Driver] = dt
}

// OverallStress is the aggregate across drivers.
type OverallStress struct {
	Avg         float64 `json:"avg"`
	DriverCount int     `json:"driver_count"`
}

// ComputeOverallStressFromDrivers averages the per-driver averages, so a
// driver with many answers cannot dominate the overall score. Drivers
// with a zero count are excluded entirely; an empty input yields {0, 0}.
func ComputeOverallStressFromDrivers(totals DriverTotals) OverallStress {
	var sum float64
	var n int
	for _, dt := range totals {
		if dt.Count == 0 {
			continue
		}
		sum += dt.Sum / float64(dt.Count)
		n++
	}
	if n == 0 {
		return OverallStress{}
	}
	return OverallStress{Avg: sum / float64(n), DriverCount: n}
}
