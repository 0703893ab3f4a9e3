package stub

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tbecker/twinboard/internal/roster"
)

func TestEvaluateScalesWithEfficiency(t *testing.T) {
	weak := Evaluate("clear-invoice", []roster.Worker{{ID: "W008", Role: "Buyer", Efficiency: 40}})
	strong := Evaluate("clear-invoice", []roster.Worker{
		{ID: "W001", Role: "Senior Approver", Efficiency: 92},
		{ID: "W007", Role: "AP Specialist", Efficiency: 90},
	})
	require.Greater(t, strong.CycleReductionPct, weak.CycleReductionPct)
	require.Greater(t, strong.ImpactScore, weak.ImpactScore)
}

func TestEvaluateOpexIsPerWorker(t *testing.T) {
	one := Evaluate("create-po", roster.Defaults()[:1])
	three := Evaluate("create-po", roster.Defaults()[:3])
	require.InDelta(t, one.OpexIncrease*3, three.OpexIncrease, 1e-9)
}

func TestEvaluateClearsBottleneckWithEnoughImpact(t *testing.T) {
	// A heavily staffed approver team pushes Clear Invoice under the
	// bottleneck floor.
	team := []roster.Worker{
		{ID: "W001", Role: "Senior Approver", Efficiency: 92},
		{ID: "W004", Role: "Approver", Efficiency: 88},
		{ID: "W007", Role: "AP Specialist", Efficiency: 90},
		{ID: "W002", Role: "Invoice Analyst", Efficiency: 85},
	}
	res := Evaluate("clear-invoice", team)
	require.False(t, res.IsBottleneck)
	require.LessOrEqual(t, res.CycleReductionPct, 55.0)

	// A single low-impact worker leaves it flagged.
	res = Evaluate("clear-invoice", []roster.Worker{{ID: "W008", Role: "Buyer", Efficiency: 40}})
	require.True(t, res.IsBottleneck)
}

func TestUnknownLocationUsesDefaultDuration(t *testing.T) {
	res := Evaluate("nonexistent", roster.Defaults()[:1])
	require.InDelta(t, 5.0, res.CycleTimeBefore, 1e-9)
	require.False(t, res.IsBottleneck)
}

func TestAnswerPrefersTopicalReplies(t *testing.T) {
	idx := 0
	require.Contains(t, answer("where is the bottleneck?", &idx), "bottleneck")
	require.Contains(t, answer("who should I assign?", &idx), "approver")
	// Generic questions cycle the canned pool.
	first := answer("tell me more", &idx)
	second := answer("tell me more", &idx)
	require.NotEqual(t, first, second)
}
