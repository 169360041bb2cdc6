package biomarker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFeaturesAcceptsBaseline(t *testing.T) {
	cfg := DefaultThresholds()
	assert.True(t, ValidateFeatures(cfg, calmFeatures()))
}

func TestValidateFeaturesRejectsOutOfRange(t *testing.T) {
	cfg := DefaultThresholds()

	tests := []struct {
		name   string
		mutate func(f *AcousticFeatures)
	}{
		{"negative rms", func(f *AcousticFeatures) { f.RMSEnergy = -0.1 }},
		{"rms above one", func(f *AcousticFeatures) { f.RMSEnergy = 1.5 }},
		{"speech rate above max", func(f *AcousticFeatures) { f.SpeechRate = 25 }},
		{"negative speech rate", func(f *AcousticFeatures) { f.SpeechRate = -1 }},
		{"flux above one", func(f *AcousticFeatures) { f.SpectralFlux = 1.01 }},
		{"centroid above one", func(f *AcousticFeatures) { f.SpectralCentroid = 2 }},
		{"zcr below zero", func(f *AcousticFeatures) { f.ZeroCrossingRate = -0.01 }},
		{"pause ratio above one", func(f *AcousticFeatures) { f.PauseRatio = 1.2 }},
		{"nan rms", func(f *AcousticFeatures) { f.RMSEnergy = math.NaN() }},
		{"inf speech rate", func(f *AcousticFeatures) { f.SpeechRate = math.Inf(1) }},
		{"negative inf flux", func(f *AcousticFeatures) { f.SpectralFlux = math.Inf(-1) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := calmFeatures()
			tc.mutate(&f)
			assert.False(t, ValidateFeatures(cfg, f), "Vector should be rejected wholesale")
		})
	}
}

func TestValidateFeaturesPauseCountFloor(t *testing.T) {
	cfg := DefaultThresholds()

	f := calmFeatures()
	f.PauseCount = 1
	assert.False(t, ValidateFeatures(cfg, f), "Below the statistical floor")

	f.PauseCount = 2
	assert.True(t, ValidateFeatures(cfg, f), "The floor itself is acceptable")
}

func TestValidateFeaturesAcceptsBoundaryValues(t *testing.T) {
	cfg := DefaultThresholds()

	f := AcousticFeatures{
		SpeechRate:       20,
		RMSEnergy:        1,
		SpectralFlux:     1,
		SpectralCentroid: 1,
		ZeroCrossingRate: 1,
		PauseRatio:       1,
		PauseCount:       2,
	}
	assert.True(t, ValidateFeatures(cfg, f), "Range bounds are inclusive")

	f = AcousticFeatures{PauseCount: 2}
	assert.True(t, ValidateFeatures(cfg, f), "All-zero bounded fields are in range")
}
