package biomarker

// StressLevel is the categorical bucket for a stress score.
type StressLevel string

const (
	StressLow      StressLevel = "low"
	StressModerate StressLevel = "moderate"
	StressElevated StressLevel = "elevated"
	StressHigh     StressLevel = "high"
)

// FatigueLevel is the categorical bucket for a fatigue score.
type FatigueLevel string

const (
	FatigueRested    FatigueLevel = "rested"
	FatigueNormal    FatigueLevel = "normal"
	FatigueTired     FatigueLevel = "tired"
	FatigueExhausted FatigueLevel = "exhausted"
)

// LadderTier is one rung of a threshold ladder: crossing Cutoff earns Points.
type LadderTier struct {
	Cutoff float64
	Points float64
}

// Ladder is a weighted two-tier threshold ladder for a single acoustic
// indicator. Tiers are ordered most extreme first; the first tier the value
// crosses wins. Inverted ladders award points when the value falls below the
// cutoff (low speech rate, low energy). A value that crosses no tier earns
// zero, but the ladder's weight still counts toward the denominator so a
// missing signal dilutes the score toward the middle rather than an extreme.
type Ladder struct {
	Name     string
	Weight   float64
	Inverted bool
	Tiers    []LadderTier
}

// Score returns the points the value earns on this ladder.
func (l Ladder) Score(value float64) float64 {
	for _, tier := range l.Tiers {
		if l.Inverted {
			if value < tier.Cutoff {
				return tier.Points
			}
		} else if value > tier.Cutoff {
			return tier.Points
		}
	}
	return 0
}

// Indicator binds a ladder to the feature field it reads.
type Indicator struct {
	Ladder Ladder
	Value  func(f AcousticFeatures) float64
}

// LevelTable holds the shared score-level boundaries. The same table is used
// for both axes.
type LevelTable struct {
	Moderate float64
	Elevated float64
	High     float64
}

// StressLevelOf maps a stress score to its level.
func (t LevelTable) StressLevelOf(score int) StressLevel {
	switch {
	case float64(score) >= t.High:
		return StressHigh
	case float64(score) >= t.Elevated:
		return StressElevated
	case float64(score) >= t.Moderate:
		return StressModerate
	default:
		return StressLow
	}
}

// FatigueLevelOf maps a fatigue score to its level.
func (t LevelTable) FatigueLevelOf(score int) FatigueLevel {
	switch {
	case float64(score) >= t.High:
		return FatigueExhausted
	case float64(score) >= t.Elevated:
		return FatigueTired
	case float64(score) >= t.Moderate:
		return FatigueNormal
	default:
		return FatigueRested
	}
}

// ConfidenceRules drives the classifier confidence estimate. Pause-count
// rungs are exclusive (first match wins), as are the RMS rungs.
type ConfidenceRules struct {
	Base float64

	PauseCountHigh     int // above this: strong statistical footing
	PauseCountHighGain float64
	PauseCountGood     int
	PauseCountGoodGain float64
	PauseCountLow      int // below this: too few pauses to trust timing features
	PauseCountLowLoss  float64

	RMSQuiet      float64 // below this the capture is likely poor
	RMSQuietLoss  float64
	RMSStrong     float64
	RMSStrongGain float64
}

// FeatureRange is a closed bounds check on one feature field.
type FeatureRange struct {
	Name  string
	Min   float64
	Max   float64
	Value func(f AcousticFeatures) float64
}

// BlendWeights holds every constant the hybrid blender reads.
type BlendWeights struct {
	// Fixed-weight blend between the acoustic score and the
	// observation-adjusted score.
	AcousticWeight float64
	SemanticWeight float64

	// Signed point adjustments contributed by LLM observations.
	CueBase            float64
	PositiveCueBase    float64
	PositiveCueDamping float64
	RelevanceHigh      float64
	RelevanceMedium    float64
	RelevanceLow       float64
	AdjustmentMin      float64
	AdjustmentMax      float64

	// Per-emotion fixed adjustments, scaled by the emotion's confidence.
	EmotionAdjustments map[string]EmotionAdjustment
}

// EmotionAdjustment is the stress/fatigue point shift for one overall emotion.
type EmotionAdjustment struct {
	Stress  float64
	Fatigue float64
}

// RiskWeights holds every constant the burnout forecaster reads.
type RiskWeights struct {
	RecentAverageWeight  float64
	SlopeMultiplier      float64
	SlopeContributionCap float64
	VolatilityMultiplier float64
	VolatilityCap        float64
	EscalationBonus      float64
	EscalationMargin     float64

	LevelModerate float64
	LevelHigh     float64
	LevelCritical float64

	TrendSlopeBand float64

	// Factor thresholds.
	FactorStressMin     float64
	FactorFatigueMin    float64
	FactorVolatilityMin float64
	FactorSustainedMin  float64
}

// ThresholdConfig is the single frozen table of thresholds and weights every
// engine component reads. It is constructed once at startup and passed
// explicitly; nothing in the engine reaches for package-level state.
type ThresholdConfig struct {
	Levels            LevelTable
	StressIndicators  []Indicator
	FatigueIndicators []Indicator
	Confidence        ConfidenceRules
	Ranges            []FeatureRange
	MinPauseCount     int
	Blend             BlendWeights
	Risk              RiskWeights
}

// DefaultThresholds returns the tuned production threshold table.
func DefaultThresholds() ThresholdConfig {
	return ThresholdConfig{
		Levels: LevelTable{Moderate: 30, Elevated: 50, High: 70},
		StressIndicators: []Indicator{
			{
				Ladder: Ladder{
					Name:   "speech_rate",
					Weight: 30,
					Tiers:  []LadderTier{{Cutoff: 5.5, Points: 30}, {Cutoff: 4.5, Points: 15}},
				},
				Value: func(f AcousticFeatures) float64 { return f.SpeechRate },
			},
			{
				Ladder: Ladder{
					Name:   "rms_energy",
					Weight: 25,
					Tiers:  []LadderTier{{Cutoff: 0.30, Points: 25}, {Cutoff: 0.20, Points: 12.5}},
				},
				Value: func(f AcousticFeatures) float64 { return f.RMSEnergy },
			},
			{
				Ladder: Ladder{
					Name:   "spectral_flux",
					Weight: 25,
					Tiers:  []LadderTier{{Cutoff: 0.15, Points: 25}, {Cutoff: 0.08, Points: 12.5}},
				},
				Value: func(f AcousticFeatures) float64 { return f.SpectralFlux },
			},
			{
				Ladder: Ladder{
					Name:   "zero_crossing_rate",
					Weight: 20,
					Tiers:  []LadderTier{{Cutoff: 0.08, Points: 20}, {Cutoff: 0.05, Points: 10}},
				},
				Value: func(f AcousticFeatures) float64 { return f.ZeroCrossingRate },
			},
		},
		FatigueIndicators: []Indicator{
			{
				Ladder: Ladder{
					Name:     "speech_rate",
					Weight:   30,
					Inverted: true,
					Tiers:    []LadderTier{{Cutoff: 3.0, Points: 30}, {Cutoff: 3.5, Points: 15}},
				},
				Value: func(f AcousticFeatures) float64 { return f.SpeechRate },
			},
			{
				Ladder: Ladder{
					Name:     "rms_energy",
					Weight:   25,
					Inverted: true,
					Tiers:    []LadderTier{{Cutoff: 0.10, Points: 25}, {Cutoff: 0.12, Points: 12.5}},
				},
				Value: func(f AcousticFeatures) float64 { return f.RMSEnergy },
			},
			{
				Ladder: Ladder{
					Name:   "pause_ratio",
					Weight: 25,
					Tiers:  []LadderTier{{Cutoff: 0.40, Points: 25}, {Cutoff: 0.30, Points: 12.5}},
				},
				Value: func(f AcousticFeatures) float64 { return f.PauseRatio },
			},
			{
				Ladder: Ladder{
					Name:     "spectral_centroid",
					Weight:   20,
					Inverted: true,
					Tiers:    []LadderTier{{Cutoff: 0.30, Points: 20}, {Cutoff: 0.40, Points: 10}},
				},
				Value: func(f AcousticFeatures) float64 { return f.SpectralCentroid },
			},
		},
		Confidence: ConfidenceRules{
			Base:               0.7,
			PauseCountHigh:     10,
			PauseCountHighGain: 0.15,
			PauseCountGood:     5,
			PauseCountGoodGain: 0.10,
			PauseCountLow:      3,
			PauseCountLowLoss:  0.10,
			RMSQuiet:           0.05,
			RMSQuietLoss:       0.20,
			RMSStrong:          0.15,
			RMSStrongGain:      0.10,
		},
		Ranges: []FeatureRange{
			{Name: "speech_rate", Min: 0, Max: 20, Value: func(f AcousticFeatures) float64 { return f.SpeechRate }},
			{Name: "rms_energy", Min: 0, Max: 1, Value: func(f AcousticFeatures) float64 { return f.RMSEnergy }},
			{Name: "spectral_flux", Min: 0, Max: 1, Value: func(f AcousticFeatures) float64 { return f.SpectralFlux }},
			{Name: "spectral_centroid", Min: 0, Max: 1, Value: func(f AcousticFeatures) float64 { return f.SpectralCentroid }},
			{Name: "zero_crossing_rate", Min: 0, Max: 1, Value: func(f AcousticFeatures) float64 { return f.ZeroCrossingRate }},
			{Name: "pause_ratio", Min: 0, Max: 1, Value: func(f AcousticFeatures) float64 { return f.PauseRatio }},
		},
		MinPauseCount: 2,
		Blend: BlendWeights{
			AcousticWeight:     0.7,
			SemanticWeight:     0.3,
			CueBase:            12,
			PositiveCueBase:    8,
			PositiveCueDamping: 0.7,
			RelevanceHigh:      1.0,
			RelevanceMedium:    0.6,
			RelevanceLow:       0.3,
			AdjustmentMin:      -15,
			AdjustmentMax:      20,
			EmotionAdjustments: map[string]EmotionAdjustment{
				"happy":   {Stress: -8, Fatigue: -8},
				"sad":     {Stress: 0, Fatigue: 10},
				"angry":   {Stress: 12, Fatigue: 0},
				"neutral": {Stress: 0, Fatigue: 0},
			},
		},
		Risk: RiskWeights{
			RecentAverageWeight:  0.4,
			SlopeMultiplier:      3,
			SlopeContributionCap: 30,
			VolatilityMultiplier: 0.3,
			VolatilityCap:        20,
			EscalationBonus:      10,
			EscalationMargin:     10,
			LevelModerate:        35,
			LevelHigh:            55,
			LevelCritical:        75,
			TrendSlopeBand:       2,
			FactorStressMin:      60,
			FactorFatigueMin:     60,
			FactorVolatilityMin:  15,
			FactorSustainedMin:   65,
		},
	}
}
