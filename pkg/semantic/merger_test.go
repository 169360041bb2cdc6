package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeHigherConfidenceWins(t *testing.T) {
	a := Reading{StressScore: 85, StressConfidence: 0.8, FatigueScore: 50, FatigueConfidence: 0}
	b := Reading{StressScore: 30, StressConfidence: 0.5, FatigueScore: 70, FatigueConfidence: 0.65}

	merged := Merge(a, b)

	assert.Equal(t, 85.0, merged.StressScore)
	assert.Equal(t, 0.8, merged.StressConfidence)
	assert.Equal(t, 70.0, merged.FatigueScore, "Axes resolve independently")
	assert.Equal(t, 0.65, merged.FatigueConfidence)
}

func TestMergeTieGoesToMoreExtremeScore(t *testing.T) {
	a := Reading{StressScore: 60, StressConfidence: 0.5}
	b := Reading{StressScore: 10, StressConfidence: 0.5}

	merged := Merge(a, b)

	assert.Equal(t, 10.0, merged.StressScore, "Further from the midpoint wins a confidence tie")
}

func TestMergeIsCommutative(t *testing.T) {
	a := Reading{StressScore: 85, StressConfidence: 0.8, FatigueScore: 20, FatigueConfidence: 0.4}
	b := Reading{StressScore: 30, StressConfidence: 0.5, FatigueScore: 70, FatigueConfidence: 0.65}

	assert.Equal(t, Merge(a, b), Merge(b, a))
}

func TestMergeWithNeutralIsIdentity(t *testing.T) {
	r := Reading{StressScore: 85, StressConfidence: 0.8, FatigueScore: 70, FatigueConfidence: 0.65}

	assert.Equal(t, r, Merge(r, NeutralReading()))
	assert.Equal(t, r, Merge(NeutralReading(), r))
}

func TestFold(t *testing.T) {
	assert.Equal(t, NeutralReading(), Fold(nil), "Empty sequence yields the baseline")

	readings := []Reading{
		{StressScore: 70, StressConfidence: 0.6, FatigueScore: 50},
		{StressScore: 85, StressConfidence: 0.8, FatigueScore: 70, FatigueConfidence: 0.65},
		{StressScore: 50, FatigueScore: 15, FatigueConfidence: 0.65},
	}

	merged := Fold(readings)

	assert.Equal(t, 85.0, merged.StressScore)
	assert.Equal(t, 0.8, merged.StressConfidence)
	assert.Equal(t, 15.0, merged.FatigueScore, "Tie resolves to the score further from 50")
	assert.Equal(t, 0.65, merged.FatigueConfidence)
}
