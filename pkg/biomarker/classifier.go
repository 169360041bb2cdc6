package biomarker

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// VoiceMetrics is the acoustic reading for one recording. It is recomputed
// fresh on every classification and never mutated afterwards.
type VoiceMetrics struct {
	StressScore  int          `json:"stress_score"`
	FatigueScore int          `json:"fatigue_score"`
	StressLevel  StressLevel  `json:"stress_level"`
	FatigueLevel FatigueLevel `json:"fatigue_level"`
	Confidence   float64      `json:"confidence"`
	AnalyzedAt   time.Time    `json:"analyzed_at"`
}

// Classifier maps a validated feature vector to stress and fatigue readings
// using the weighted threshold ladders in the shared threshold table.
type Classifier struct {
	logger *logrus.Entry
	cfg    ThresholdConfig
	now    func() time.Time
}

// NewClassifier creates a classifier bound to the given threshold table.
func NewClassifier(logger *logrus.Logger, cfg ThresholdConfig) *Classifier {
	return &Classifier{
		logger: logger.WithField("component", "acoustic_classifier"),
		cfg:    cfg,
		now:    time.Now,
	}
}

// Classify scores one feature vector. Behavior on vectors that fail
// ValidateFeatures is unspecified; callers gate on the validator first.
func (c *Classifier) Classify(f AcousticFeatures) VoiceMetrics {
	stress := scoreIndicators(c.cfg.StressIndicators, f)
	fatigue := scoreIndicators(c.cfg.FatigueIndicators, f)
	confidence := c.confidence(f)

	m := VoiceMetrics{
		StressScore:  stress,
		FatigueScore: fatigue,
		StressLevel:  c.cfg.Levels.StressLevelOf(stress),
		FatigueLevel: c.cfg.Levels.FatigueLevelOf(fatigue),
		Confidence:   confidence,
		AnalyzedAt:   c.now().UTC(),
	}

	c.logger.WithFields(logrus.Fields{
		"stress_score":  m.StressScore,
		"fatigue_score": m.FatigueScore,
		"stress_level":  m.StressLevel,
		"fatigue_level": m.FatigueLevel,
		"confidence":    m.Confidence,
	}).Debug("Classified acoustic features")

	return m
}

// scoreIndicators runs every ladder in the set and normalizes earned points
// against the full weight pool. The pool always includes every ladder's
// weight, so silent indicators pull the score toward zero contribution
// rather than skewing the ratio.
func scoreIndicators(indicators []Indicator, f AcousticFeatures) int {
	var earned, total float64
	for _, ind := range indicators {
		earned += ind.Ladder.Score(ind.Value(f))
		total += ind.Ladder.Weight
	}
	if total == 0 {
		return 0
	}
	return clampScore(math.Round(earned / total * 100))
}

// confidence estimates how much weight this reading should carry, driven by
// pause statistics and capture energy. Rungs within each chain are exclusive.
func (c *Classifier) confidence(f AcousticFeatures) float64 {
	rules := c.cfg.Confidence
	conf := rules.Base

	switch {
	case f.PauseCount > rules.PauseCountHigh:
		conf += rules.PauseCountHighGain
	case f.PauseCount > rules.PauseCountGood:
		conf += rules.PauseCountGoodGain
	case f.PauseCount < rules.PauseCountLow:
		conf -= rules.PauseCountLowLoss
	}

	switch {
	case f.RMSEnergy < rules.RMSQuiet:
		conf -= rules.RMSQuietLoss
	case f.RMSEnergy > rules.RMSStrong:
		conf += rules.RMSStrongGain
	}

	return clampUnit(conf)
}

func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
