package services

import (
	"math"
	"testing"

	"github.com/stresssense/stresssense/internal/models"
)

func TestComputeOverallStressFromDrivers(t *testing.T) {
	totals := DriverTotals{
		DriverWorkloadDeadlines: {Sum: 16, Count: 2},
		DriverClarityPriorities: {Sum: 4, Count: 1},
	}
	got := ComputeOverallStressFromDrivers(totals)
	if got.DriverCount != 2 {
		t.Fatalf("driver count = %d, want 2", got.DriverCount)
	}
	// (16/2 + 4/1) / 2 = 6
	if math.Abs(got.Avg-6.0) > 1e-9 {
		t.Fatalf("avg = %v, want 6.0", got.Avg)
	}
}

func TestComputeOverallStressExcludesZeroCount(t *testing.T) {
	totals := DriverTotals{
		DriverWorkloadDeadlines: {Sum: 10, Count: 2},
		DriverPsychSafety:       {Sum: 0, Count: 0},
	}
	got := ComputeOverallStressFromDrivers(totals)
	if got.DriverCount != 1 {
		t.Fatalf("driver count = %d, want 1", got.DriverCount)
	}
	if got.Avg != 5 {
		t.Fatalf("avg = %v, want 5", got.Avg)
	}
}

func TestComputeOverallStressEmpty(t *testing.T) {
	for name, totals := range map[string]DriverTotals{
		"nil":      nil,
		"empty":    {},
		"all-zero": {DriverWorkloadDeadlines: {}, DriverClarityPriorities: {}},
	} {
		got := ComputeOverallStressFromDrivers(totals)
		if got.Avg != 0 || got.DriverCount != 0 {
			t.Fatalf("%s input: got %+v, want zero value", name, got)
		}
	}
}

func TestComputeOverallStressOrderIndependent(t *testing.T) {
	scores := []AnswerScore{
		{Driver: DriverWorkloadDeadlines, StressScore: 7},
		{Driver: DriverClarityPriorities, StressScore: 2},
		{Driver: DriverWorkloadDeadlines, StressScore: 9},
		{Driver: DriverPsychSafety, StressScore: 4},
	}
	forward := DriverTotals{}
	for _, sc := range scores {
		forward.Add(sc)
	}
	backward := DriverTotals{}
	for i := len(scores) - 1; i >= 0; i-- {
		backward.Add(scores[i])
	}
	a, b := ComputeOverallStressFromDrivers(forward), ComputeOverallStressFromDrivers(backward)
	if math.Abs(a.Avg-b.Avg) > 1e-9 || a.DriverCount != b.DriverCount {
		t.Fatalf("insertion order changed result: %+v vs %+v", a, b)
	}
}

func TestDriverTotalsAdd(t *testing.T) {
	totals := DriverTotals{}
	totals.Add(AnswerScore{Driver: DriverWorkloadDeadlines, StressScore: 8})
	totals.Add(AnswerScore{Driver: DriverWorkloadDeadlines, StressScore: 8})
	dt := totals[DriverWorkloadDeadlines]
	if dt.Sum != 16 || dt.Count != 2 {
		t.Fatalf("total = %+v, want sum 16 count 2", dt)
	}
}

func TestDriverTotalsAddZeroValue(t *testing.T) {
	var totals DriverTotals
	totals.Add(AnswerScore{Driver: DriverClarityPriorities, StressScore: 4})
	dt := totals[DriverClarityPriorities]
	if dt.Sum != 4 || dt.Count != 1 {
		t.Fatalf("total = %+v, want sum 4 count 1", dt)
	}
}

func TestDriverRegistry(t *testing.T) {
	if !KnownDriver(DriverWorkloadDeadlines) {
		t.Fatal("built-in driver not known")
	}
	if KnownDriver("no_such_driver") {
		t.Fatal("unknown driver reported known")
	}
	RegisterDriver("commute_burden", "Commute burden")
	if !KnownDriver("commute_burden") {
		t.Fatal("registered driver not known")
	}
	if got := DriverLabel("commute_burden"); got != "Commute burden" {
		t.Fatalf("label = %q, want Commute burden", got)
	}
	if got := DriverLabel(models.DriverKey("no_such_driver")); got != "no_such_driver" {
		t.Fatalf("fallback label = %q", got)
	}
}
