package semantic

import "math"

// Merge combines two readings taken at different times into one. Each axis
// is resolved independently: the more confident reading wins, and a
// confidence tie goes to the score further from the neutral midpoint. The
// operation is commutative and associative, so a session's readings can be
// folded in any order.
func Merge(a, b Reading) Reading {
	stress, stressConf := strongerAxis(a.StressScore, a.StressConfidence, b.StressScore, b.StressConfidence)
	fatigue, fatigueConf := strongerAxis(a.FatigueScore, a.FatigueConfidence, b.FatigueScore, b.FatigueConfidence)
	return Reading{
		StressScore:       stress,
		FatigueScore:      fatigue,
		StressConfidence:  stressConf,
		FatigueConfidence: fatigueConf,
	}
}

// Fold reduces an arbitrary-length sequence of readings to one, starting
// from the neutral baseline. An empty sequence yields the baseline.
func Fold(readings []Reading) Reading {
	merged := NeutralReading()
	for _, r := range readings {
		merged = Merge(merged, r)
	}
	return merged
}

// strongerAxis keeps the higher-confidence signal; on a tie it keeps the
// one deviating further from 50.
func strongerAxis(scoreA, confA, scoreB, confB float64) (float64, float64) {
	switch {
	case confB > confA:
		return scoreB, confB
	case confA > confB:
		return scoreA, confA
	case math.Abs(scoreB-50) > math.Abs(scoreA-50):
		return scoreB, confB
	default:
		return scoreA, confA
	}
}
