package biomarker

import "math"

// AcousticFeatures is one feature vector extracted upstream from a speech
// recording. The engine never mutates it.
type AcousticFeatures struct {
	SpeechRate       float64 `json:"speech_rate"`        // syllables/sec, 0-20
	RMSEnergy        float64 `json:"rms_energy"`         // 0-1
	SpectralFlux     float64 `json:"spectral_flux"`      // 0-1
	SpectralCentroid float64 `json:"spectral_centroid"`  // normalized, 0-1
	ZeroCrossingRate float64 `json:"zero_crossing_rate"` // 0-1
	PauseRatio       float64 `json:"pause_ratio"`        // 0-1

	PauseCount         int     `json:"pause_count"`
	AvgPauseDurationMs float64 `json:"avg_pause_duration_ms"`

	PitchMeanHz   float64 `json:"pitch_mean_hz"`
	PitchStdDevHz float64 `json:"pitch_std_dev_hz"`
	PitchRangeHz  float64 `json:"pitch_range_hz"`

	MFCC []float64 `json:"mfcc,omitempty"`
}

// ValidateFeatures reports whether the feature vector is usable for
// classification. Acceptance is wholesale: any bounded field outside its
// documented range, or a pause count below the statistical floor, rejects
// the entire vector. The verdict is a boolean, never an error; callers are
// expected to short-circuit on false before classifying.
func ValidateFeatures(cfg ThresholdConfig, f AcousticFeatures) bool {
	for _, r := range cfg.Ranges {
		v := r.Value(f)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
		if v < r.Min || v > r.Max {
			return false
		}
	}
	return f.PauseCount >= cfg.MinPauseCount
}
