package scoring

import (
	"math"

	"github.com/sirupsen/logrus"

	"voicewell-server/pkg/biomarker"
	"voicewell-server/pkg/semantic"
)

// CombinedScore is the fused per-recording score pair.
type CombinedScore struct {
	FinalStressScore  int `json:"final_stress_score"`
	FinalFatigueScore int `json:"final_fatigue_score"`
}

// ObservationType tags one LLM observation.
type ObservationType string

const (
	ObservationStressCue   ObservationType = "stress_cue"
	ObservationFatigueCue  ObservationType = "fatigue_cue"
	ObservationPositiveCue ObservationType = "positive_cue"
)

// Relevance grades how strongly an observation applies.
type Relevance string

const (
	RelevanceHigh   Relevance = "high"
	RelevanceMedium Relevance = "medium"
	RelevanceLow    Relevance = "low"
)

// Observation is one tagged cue from the external semantic analysis.
type Observation struct {
	Type      ObservationType `json:"type"`
	Relevance Relevance       `json:"relevance"`
}

// Signal is the semantic input to a blend. Exactly three variants exist:
// no signal at all, a free-text reading, or a structured observation set.
// These are two genuinely different blending policies, not one policy with
// an optional parameter, so the blender matches exhaustively on the variant.
type Signal interface {
	semanticSignal()
}

// NoSignal blends to the acoustic score unchanged.
type NoSignal struct{}

// TextReading carries a merged free-text semantic reading.
type TextReading struct {
	Reading semantic.Reading
}

// ObservationSet carries the external LLM analysis: tagged observations plus
// an overall emotion with its own confidence.
type ObservationSet struct {
	Observations      []Observation `json:"observations"`
	OverallEmotion    string        `json:"overall_emotion"`
	EmotionConfidence float64       `json:"emotion_confidence"`
}

func (NoSignal) semanticSignal()       {}
func (TextReading) semanticSignal()    {}
func (ObservationSet) semanticSignal() {}

// Blender fuses an acoustic reading with an optional semantic signal.
type Blender struct {
	logger  *logrus.Entry
	weights biomarker.BlendWeights
}

// NewBlender creates a blender bound to the shared blend weight table.
func NewBlender(logger *logrus.Logger, weights biomarker.BlendWeights) *Blender {
	return &Blender{
		logger:  logger.WithField("component", "hybrid_blender"),
		weights: weights,
	}
}

// Blend produces the final score pair for one recording. A nil signal is
// treated as NoSignal: the acoustic score passes through unchanged. That
// fallback is exact, not approximate — no blending arithmetic runs at all.
func (b *Blender) Blend(acoustic biomarker.VoiceMetrics, signal Signal) CombinedScore {
	switch sig := signal.(type) {
	case nil, NoSignal:
		return CombinedScore{
			FinalStressScore:  acoustic.StressScore,
			FinalFatigueScore: acoustic.FatigueScore,
		}
	case TextReading:
		return b.blendTextReading(acoustic, sig.Reading)
	case ObservationSet:
		return b.blendObservations(acoustic, sig)
	default:
		b.logger.WithField("signal_type", signal).Warn("Unknown semantic signal variant, falling back to acoustic score")
		return CombinedScore{
			FinalStressScore:  acoustic.StressScore,
			FinalFatigueScore: acoustic.FatigueScore,
		}
	}
}

// blendTextReading blends each axis proportionally to the semantic
// confidence for that axis. A zero-confidence axis reproduces the acoustic
// value exactly; higher textual confidence pulls the result further toward
// the semantic score.
func (b *Blender) blendTextReading(acoustic biomarker.VoiceMetrics, reading semantic.Reading) CombinedScore {
	return CombinedScore{
		FinalStressScore:  blendAxis(acoustic.StressScore, reading.StressScore, reading.StressConfidence),
		FinalFatigueScore: blendAxis(acoustic.FatigueScore, reading.FatigueScore, reading.FatigueConfidence),
	}
}

func blendAxis(acoustic int, semanticScore, confidence float64) int {
	if confidence == 0 {
		return acoustic
	}
	blended := float64(acoustic)*(1-confidence) + semanticScore*confidence
	return clampScore(math.Round(blended))
}

// blendObservations applies the structured-analysis policy: every
// observation and the overall emotion contribute signed point adjustments,
// the per-axis sums are clamped, and the result is folded in with a fixed
// 70/30 acoustic/semantic weighting.
func (b *Blender) blendObservations(acoustic biomarker.VoiceMetrics, set ObservationSet) CombinedScore {
	stressAdj, fatigueAdj := b.semanticAdjustments(set)

	w := b.weights
	finalStress := float64(acoustic.StressScore)*w.AcousticWeight +
		(float64(acoustic.StressScore)+stressAdj)*w.SemanticWeight
	finalFatigue := float64(acoustic.FatigueScore)*w.AcousticWeight +
		(float64(acoustic.FatigueScore)+fatigueAdj)*w.SemanticWeight

	return CombinedScore{
		FinalStressScore:  clampScore(math.Round(finalStress)),
		FinalFatigueScore: clampScore(math.Round(finalFatigue)),
	}
}

// semanticAdjustments sums the per-axis point adjustments from the
// observation set and clamps them to the allowed band. Positive cues are
// damped relative to negative cues; that asymmetry is deliberate tuning.
func (b *Blender) semanticAdjustments(set ObservationSet) (stressAdj, fatigueAdj float64) {
	w := b.weights

	for _, obs := range set.Observations {
		scale := b.relevanceScale(obs.Relevance)
		switch obs.Type {
		case ObservationStressCue:
			stressAdj += w.CueBase * scale
		case ObservationFatigueCue:
			fatigueAdj += w.CueBase * scale
		case ObservationPositiveCue:
			relief := w.PositiveCueBase * w.PositiveCueDamping * scale
			stressAdj -= relief
			fatigueAdj -= relief
		}
	}

	if adj, ok := w.EmotionAdjustments[set.OverallEmotion]; ok {
		stressAdj += adj.Stress * set.EmotionConfidence
		fatigueAdj += adj.Fatigue * set.EmotionConfidence
	}

	stressAdj = clampRange(stressAdj, w.AdjustmentMin, w.AdjustmentMax)
	fatigueAdj = clampRange(fatigueAdj, w.AdjustmentMin, w.AdjustmentMax)
	return stressAdj, fatigueAdj
}

func (b *Blender) relevanceScale(r Relevance) float64 {
	switch r {
	case RelevanceHigh:
		return b.weights.RelevanceHigh
	case RelevanceMedium:
		return b.weights.RelevanceMedium
	case RelevanceLow:
		return b.weights.RelevanceLow
	default:
		return 0
	}
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

func clampRange(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
