package simulate

// Result is one digital-twin estimate: before/after process metrics for a
// single location's assignment. Produced by the remote service, consumed
// immutably.
type Result struct {
	CycleTimeBefore   float64 `json:"cycleTimeBefore"`
	CycleTimeAfter    float64 `json:"cycleTimeAfter"`
	CycleReductionPct float64 `json:"cycleReductionPct"`
	ThroughputGainPct float64 `json:"throughputGainPct"`
	OpexIncrease      float64 `json:"opexIncrease"`
	IsBottleneck      bool    `json:"isBottleneck"`
	ImpactScore       float64 `json:"impactScore"`
}

// LocationResult pairs a Result with the location it was computed for.
type LocationResult struct {
	LocationID string
	Label      string
	Result     Result
}

// Aggregate folds N per-location results into the run summary.
//
// Means for the time and score metrics; opex is summed because every
// assigned location contributes independent operating cost; the bottleneck
// flag is an OR, one remaining bottleneck flags the whole run.
func Aggregate(results []Result) Result {
	if len(results) == 0 {
		return Result{}
	}
	var agg Result
	for _, r := range results {
		agg.CycleTimeBefore += r.CycleTimeBefore
		agg.CycleTimeAfter += r.CycleTimeAfter
		agg.CycleReductionPct += r.CycleReductionPct
		agg.ThroughputGainPct += r.ThroughputGainPct
		agg.ImpactScore += r.ImpactScore
		agg.OpexIncrease += r.OpexIncrease
		agg.IsBottleneck = agg.IsBottleneck || r.IsBottleneck
	}
	n := float64(len(results))
	agg.CycleTimeBefore /= n
	agg.CycleTimeAfter /= n
	agg.CycleReductionPct /= n
	agg.ThroughputGainPct /= n
	agg.ImpactScore /= n
	return agg
}
