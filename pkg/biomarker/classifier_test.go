package biomarker

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

// calmFeatures is a valid vector that trips no threshold ladder on either axis.
func calmFeatures() AcousticFeatures {
	return AcousticFeatures{
		SpeechRate:       4.0,
		RMSEnergy:        0.15,
		SpectralFlux:     0.05,
		SpectralCentroid: 0.50,
		ZeroCrossingRate: 0.03,
		PauseRatio:       0.20,
		PauseCount:       5,
	}
}

func TestClassifyCalmBaseline(t *testing.T) {
	c := NewClassifier(testLogger(), DefaultThresholds())

	m := c.Classify(calmFeatures())

	assert.Equal(t, 0, m.StressScore, "No stress ladder should fire")
	assert.Equal(t, 0, m.FatigueScore, "No fatigue ladder should fire")
	assert.Equal(t, StressLow, m.StressLevel)
	assert.Equal(t, FatigueRested, m.FatigueLevel)
	assert.InDelta(t, 0.7, m.Confidence, 1e-9, "Baseline confidence should be untouched")
	assert.False(t, m.AnalyzedAt.IsZero(), "Timestamp should be set")
}

func TestClassifyAllStressIndicatorsHigh(t *testing.T) {
	c := NewClassifier(testLogger(), DefaultThresholds())

	f := calmFeatures()
	f.SpeechRate = 6.0
	f.RMSEnergy = 0.35
	f.SpectralFlux = 0.20
	f.ZeroCrossingRate = 0.10

	m := c.Classify(f)

	assert.Equal(t, 100, m.StressScore, "Every high tier firing should max the score")
	assert.Equal(t, StressHigh, m.StressLevel)
}

func TestClassifyAllFatigueIndicatorsHigh(t *testing.T) {
	c := NewClassifier(testLogger(), DefaultThresholds())

	f := calmFeatures()
	f.SpeechRate = 2.5
	f.RMSEnergy = 0.08
	f.PauseRatio = 0.45
	f.SpectralCentroid = 0.25

	m := c.Classify(f)

	assert.Equal(t, 100, m.FatigueScore)
	assert.Equal(t, FatigueExhausted, m.FatigueLevel)
	assert.Equal(t, 0, m.StressScore, "Slow quiet speech should not register stress")
}

func TestClassifyModerateTiersEarnHalfPoints(t *testing.T) {
	c := NewClassifier(testLogger(), DefaultThresholds())

	f := calmFeatures()
	f.SpeechRate = 5.0
	f.RMSEnergy = 0.25
	f.SpectralFlux = 0.10
	f.ZeroCrossingRate = 0.06

	m := c.Classify(f)

	assert.Equal(t, 50, m.StressScore, "All moderate tiers should sum to half the pool")
	assert.Equal(t, StressElevated, m.StressLevel)
}

func TestClassifyScoresAlwaysInRange(t *testing.T) {
	c := NewClassifier(testLogger(), DefaultThresholds())

	vectors := []AcousticFeatures{
		calmFeatures(),
		{SpeechRate: 20, RMSEnergy: 1, SpectralFlux: 1, SpectralCentroid: 1, ZeroCrossingRate: 1, PauseRatio: 1, PauseCount: 50},
		{PauseCount: 2},
	}
	for _, f := range vectors {
		m := c.Classify(f)
		assert.GreaterOrEqual(t, m.StressScore, 0)
		assert.LessOrEqual(t, m.StressScore, 100)
		assert.GreaterOrEqual(t, m.FatigueScore, 0)
		assert.LessOrEqual(t, m.FatigueScore, 100)
		assert.GreaterOrEqual(t, m.Confidence, 0.0)
		assert.LessOrEqual(t, m.Confidence, 1.0)
	}
}

func TestConfidenceAdjustments(t *testing.T) {
	c := NewClassifier(testLogger(), DefaultThresholds())

	tests := []struct {
		name       string
		pauseCount int
		rmsEnergy  float64
		expected   float64
	}{
		{"many pauses", 11, 0.10, 0.85},
		{"good pauses", 6, 0.10, 0.80},
		{"boundary pause count not high", 10, 0.10, 0.80},
		{"boundary pause count not good", 5, 0.10, 0.70},
		{"few pauses", 2, 0.10, 0.60},
		{"quiet capture", 5, 0.04, 0.50},
		{"strong capture", 5, 0.20, 0.80},
		{"few pauses and quiet", 2, 0.04, 0.40},
		{"many pauses and strong", 11, 0.20, 0.95},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := calmFeatures()
			f.PauseCount = tc.pauseCount
			f.RMSEnergy = tc.rmsEnergy
			m := c.Classify(f)
			assert.InDelta(t, tc.expected, m.Confidence, 1e-9)
		})
	}
}

func TestLevelTableBoundaries(t *testing.T) {
	levels := DefaultThresholds().Levels

	stressCases := []struct {
		score    int
		expected StressLevel
	}{
		{0, StressLow},
		{29, StressLow},
		{30, StressModerate},
		{49, StressModerate},
		{50, StressElevated},
		{69, StressElevated},
		{70, StressHigh},
		{100, StressHigh},
	}
	for _, tc := range stressCases {
		assert.Equal(t, tc.expected, levels.StressLevelOf(tc.score), "stress score %d", tc.score)
	}

	fatigueCases := []struct {
		score    int
		expected FatigueLevel
	}{
		{0, FatigueRested},
		{29, FatigueRested},
		{30, FatigueNormal},
		{49, FatigueNormal},
		{50, FatigueTired},
		{69, FatigueTired},
		{70, FatigueExhausted},
		{100, FatigueExhausted},
	}
	for _, tc := range fatigueCases {
		assert.Equal(t, tc.expected, levels.FatigueLevelOf(tc.score), "fatigue score %d", tc.score)
	}
}

func TestLadderScore(t *testing.T) {
	ladder := Ladder{
		Weight: 30,
		Tiers:  []LadderTier{{Cutoff: 5.5, Points: 30}, {Cutoff: 4.5, Points: 15}},
	}

	assert.Equal(t, 0.0, ladder.Score(4.5), "Cutoffs are exclusive")
	assert.Equal(t, 15.0, ladder.Score(4.6))
	assert.Equal(t, 15.0, ladder.Score(5.5))
	assert.Equal(t, 30.0, ladder.Score(5.6))

	inverted := Ladder{
		Weight:   30,
		Inverted: true,
		Tiers:    []LadderTier{{Cutoff: 3.0, Points: 30}, {Cutoff: 3.5, Points: 15}},
	}

	assert.Equal(t, 30.0, inverted.Score(2.9))
	assert.Equal(t, 15.0, inverted.Score(3.0), "Equal to the extreme cutoff falls to the next tier")
	assert.Equal(t, 15.0, inverted.Score(3.4))
	assert.Equal(t, 0.0, inverted.Score(3.5))
}

func TestClassifierIsDeterministic(t *testing.T) {
	c := NewClassifier(testLogger(), DefaultThresholds())

	f := calmFeatures()
	f.SpeechRate = 5.8
	f.SpectralFlux = 0.12

	first := c.Classify(f)
	second := c.Classify(f)

	require.Equal(t, first.StressScore, second.StressScore)
	require.Equal(t, first.FatigueScore, second.FatigueScore)
	require.Equal(t, first.Confidence, second.Confidence)
}
