package scoring

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"voicewell-server/pkg/biomarker"
	"voicewell-server/pkg/semantic"
)

func testBlender() *Blender {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewBlender(logger, biomarker.DefaultThresholds().Blend)
}

func acoustic(stress, fatigue int) biomarker.VoiceMetrics {
	return biomarker.VoiceMetrics{StressScore: stress, FatigueScore: fatigue}
}

func TestBlendNoSignalPassesThroughExactly(t *testing.T) {
	b := testBlender()

	combined := b.Blend(acoustic(37, 63), NoSignal{})

	assert.Equal(t, CombinedScore{FinalStressScore: 37, FinalFatigueScore: 63}, combined)
}

func TestBlendNilSignalPassesThroughExactly(t *testing.T) {
	b := testBlender()

	combined := b.Blend(acoustic(37, 63), nil)

	assert.Equal(t, CombinedScore{FinalStressScore: 37, FinalFatigueScore: 63}, combined)
}

func TestBlendTextReadingZeroConfidencePassesThrough(t *testing.T) {
	b := testBlender()

	reading := semantic.NeutralReading()
	combined := b.Blend(acoustic(37, 63), TextReading{Reading: reading})

	assert.Equal(t, CombinedScore{FinalStressScore: 37, FinalFatigueScore: 63}, combined,
		"A zero-confidence axis must reproduce the acoustic value exactly")
}

func TestBlendTextReadingPullsTowardSemanticScore(t *testing.T) {
	b := testBlender()

	reading := semantic.Reading{
		StressScore:      85,
		StressConfidence: 0.8,
		FatigueScore:     50,
	}
	combined := b.Blend(acoustic(20, 40), TextReading{Reading: reading})

	// 20*0.2 + 85*0.8 = 72
	assert.Equal(t, 72, combined.FinalStressScore)
	assert.Equal(t, 40, combined.FinalFatigueScore, "Zero-confidence fatigue axis stays acoustic")
}

func TestBlendTextReadingRoundsHalfUp(t *testing.T) {
	b := testBlender()

	reading := semantic.Reading{StressScore: 61, StressConfidence: 0.5, FatigueScore: 50}
	combined := b.Blend(acoustic(50, 50), TextReading{Reading: reading})

	// 50*0.5 + 61*0.5 = 55.5
	assert.Equal(t, 56, combined.FinalStressScore)
}

func TestBlendTextReadingFullConfidenceClampsToBounds(t *testing.T) {
	b := testBlender()

	high := semantic.Reading{StressScore: 100, StressConfidence: 1, FatigueScore: 0, FatigueConfidence: 1}
	combined := b.Blend(acoustic(90, 10), TextReading{Reading: high})

	assert.Equal(t, 100, combined.FinalStressScore)
	assert.Equal(t, 0, combined.FinalFatigueScore)
}

func TestBlendObservationStressCue(t *testing.T) {
	b := testBlender()

	set := ObservationSet{
		Observations: []Observation{{Type: ObservationStressCue, Relevance: RelevanceHigh}},
	}
	combined := b.Blend(acoustic(50, 50), set)

	// 50*0.7 + (50+12)*0.3 = 53.6
	assert.Equal(t, 54, combined.FinalStressScore)
	assert.Equal(t, 50, combined.FinalFatigueScore, "A stress cue does not touch the fatigue axis")
}

func TestBlendObservationRelevanceScaling(t *testing.T) {
	b := testBlender()

	set := ObservationSet{
		Observations: []Observation{{Type: ObservationStressCue, Relevance: RelevanceMedium}},
	}
	combined := b.Blend(acoustic(50, 50), set)

	// 50*0.7 + (50+7.2)*0.3 = 52.16
	assert.Equal(t, 52, combined.FinalStressScore)
}

func TestBlendObservationPositiveCueRelievesBothAxes(t *testing.T) {
	b := testBlender()

	set := ObservationSet{
		Observations: []Observation{{Type: ObservationPositiveCue, Relevance: RelevanceHigh}},
	}
	combined := b.Blend(acoustic(50, 50), set)

	// Damped relief: 8*0.7 = 5.6 off both axes, 50*0.7 + 44.4*0.3 = 48.32
	assert.Equal(t, 48, combined.FinalStressScore)
	assert.Equal(t, 48, combined.FinalFatigueScore)
}

func TestBlendObservationEmotionAdjustment(t *testing.T) {
	b := testBlender()

	tests := []struct {
		emotion         string
		confidence      float64
		expectedStress  int
		expectedFatigue int
	}{
		// angry: +12 stress; 50*0.7 + 62*0.3 = 53.6
		{"angry", 1.0, 54, 50},
		// sad: +10 fatigue; 50*0.7 + 60*0.3 = 53
		{"sad", 1.0, 50, 53},
		// happy at half confidence: -4 both; 50*0.7 + 46*0.3 = 48.8
		{"happy", 0.5, 49, 49},
		{"neutral", 1.0, 50, 50},
		{"confused", 1.0, 50, 50},
	}

	for _, tc := range tests {
		t.Run(tc.emotion, func(t *testing.T) {
			set := ObservationSet{OverallEmotion: tc.emotion, EmotionConfidence: tc.confidence}
			combined := b.Blend(acoustic(50, 50), set)
			assert.Equal(t, tc.expectedStress, combined.FinalStressScore)
			assert.Equal(t, tc.expectedFatigue, combined.FinalFatigueScore)
		})
	}
}

func TestBlendObservationAdjustmentsAreClamped(t *testing.T) {
	b := testBlender()

	pileOn := ObservationSet{
		Observations: []Observation{
			{Type: ObservationStressCue, Relevance: RelevanceHigh},
			{Type: ObservationStressCue, Relevance: RelevanceHigh},
			{Type: ObservationStressCue, Relevance: RelevanceHigh},
		},
	}
	combined := b.Blend(acoustic(50, 50), pileOn)

	// Raw +36 clamps to +20: 50*0.7 + 70*0.3 = 56
	assert.Equal(t, 56, combined.FinalStressScore)

	allClear := ObservationSet{
		Observations: []Observation{
			{Type: ObservationPositiveCue, Relevance: RelevanceHigh},
			{Type: ObservationPositiveCue, Relevance: RelevanceHigh},
			{Type: ObservationPositiveCue, Relevance: RelevanceHigh},
		},
	}
	combined = b.Blend(acoustic(50, 50), allClear)

	// Raw -16.8 clamps to -15: 50*0.7 + 35*0.3 = 45.5
	assert.Equal(t, 46, combined.FinalStressScore)
	assert.Equal(t, 46, combined.FinalFatigueScore)
}

func TestBlendObservationFinalScoresStayInRange(t *testing.T) {
	b := testBlender()

	set := ObservationSet{
		Observations:      []Observation{{Type: ObservationStressCue, Relevance: RelevanceHigh}},
		OverallEmotion:    "angry",
		EmotionConfidence: 1.0,
	}

	combined := b.Blend(acoustic(100, 0), set)
	assert.LessOrEqual(t, combined.FinalStressScore, 100)
	assert.GreaterOrEqual(t, combined.FinalFatigueScore, 0)
}

func TestBlendEmptyObservationSetKeepsAcousticScore(t *testing.T) {
	b := testBlender()

	combined := b.Blend(acoustic(42, 58), ObservationSet{})

	assert.Equal(t, CombinedScore{FinalStressScore: 42, FinalFatigueScore: 58}, combined,
		"No observations and no recognized emotion means zero adjustment")
}
