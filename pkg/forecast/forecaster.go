package forecast

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"voicewell-server/pkg/biomarker"
)

// TrendDataPoint is one day's aggregated score pair. Series are ordered
// ascending by date; missing days are simply absent rows, never gap-filled.
type TrendDataPoint struct {
	Date         time.Time `json:"date"`
	StressScore  float64   `json:"stress_score"`
	FatigueScore float64   `json:"fatigue_score"`
}

// RiskLevel is the categorical burnout-risk bucket.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Trend is the direction of the burden series over the window.
type Trend string

const (
	TrendStable    Trend = "stable"
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
)

// BurnoutPrediction is the forecast over a trend window. It is recomputed
// on demand and never persisted as mutable state.
type BurnoutPrediction struct {
	RiskScore     int       `json:"risk_score"`
	RiskLevel     RiskLevel `json:"risk_level"`
	PredictedDays int       `json:"predicted_days"`
	Trend         Trend     `json:"trend"`
	Confidence    float64   `json:"confidence"`
	Factors       []string  `json:"factors"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// Human-readable contributing factors, appended in a fixed order.
const (
	factorInsufficientData = "Insufficient data for prediction"
	factorElevatedStress   = "Elevated stress levels"
	factorHighFatigue      = "High fatigue levels"
	factorDecliningTrend   = "Declining trend over time"
	factorInconsistent     = "Inconsistent wellness patterns"
	factorSustainedHigh    = "Sustained high stress/fatigue"
	factorNormalRange      = "Overall wellness within normal range"
)

// minConfidence is the floor the forecaster ever reports, including the
// insufficient-data sentinel.
const minConfidence = 0.1

// Forecaster projects near-term burnout risk from a rolling daily series
// using linear-trend and volatility analysis. Every call recomputes from
// the full ordered window; there is no incremental state.
type Forecaster struct {
	logger  *logrus.Entry
	weights biomarker.RiskWeights
	now     func() time.Time
}

// NewForecaster creates a forecaster bound to the shared risk weight table.
func NewForecaster(logger *logrus.Logger, weights biomarker.RiskWeights) *Forecaster {
	return &Forecaster{
		logger:  logger.WithField("component", "trend_forecaster"),
		weights: weights,
		now:     time.Now,
	}
}

// Predict assesses burnout risk over the given series. Fewer than two
// points is an expected state in a young account, not an error: the result
// is the low-risk sentinel with floor confidence.
func (f *Forecaster) Predict(series []TrendDataPoint) BurnoutPrediction {
	if len(series) < 2 {
		return BurnoutPrediction{
			RiskScore:     0,
			RiskLevel:     RiskLow,
			PredictedDays: 7,
			Trend:         TrendStable,
			Confidence:    minConfidence,
			Factors:       []string{factorInsufficientData},
			GeneratedAt:   f.now().UTC(),
		}
	}

	burden := make([]float64, len(series))
	for i, p := range series {
		burden[i] = (p.StressScore + p.FatigueScore) / 2
	}

	slope := regressionSlope(burden)
	volatility := stat.PopStdDev(burden, nil)
	overallAverage := stat.Mean(burden, nil)

	recent := burden[len(burden)-recentWindow(len(burden)):]
	recentAverage := stat.Mean(recent, nil)

	riskScore := f.riskScore(recentAverage, overallAverage, slope, volatility)

	prediction := BurnoutPrediction{
		RiskScore:     riskScore,
		RiskLevel:     f.riskLevel(riskScore),
		PredictedDays: f.predictedDays(riskScore, slope),
		Trend:         f.trend(slope),
		Confidence:    f.confidence(len(series), slope, volatility),
		Factors:       f.factors(series, recentAverage, slope, volatility),
		GeneratedAt:   f.now().UTC(),
	}

	f.logger.WithFields(logrus.Fields{
		"points":     len(series),
		"slope":      slope,
		"volatility": volatility,
		"risk_score": prediction.RiskScore,
		"risk_level": prediction.RiskLevel,
		"trend":      prediction.Trend,
	}).Debug("Computed burnout prediction")

	return prediction
}

// regressionSlope is the ordinary least-squares rate of change of burden
// per day index. Positive means worsening.
func regressionSlope(burden []float64) float64 {
	xs := make([]float64, len(burden))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope := stat.LinearRegression(xs, burden, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0
	}
	return slope
}

func recentWindow(n int) int {
	if n < 3 {
		return n
	}
	return 3
}

// riskScore combines recent burden, worsening slope, and volatility.
// Slope contributes one-sided: only a positive (worsening) slope adds risk.
// An improving slope shows up in the trend direction instead — deliberate
// tuning, see the threshold table.
func (f *Forecaster) riskScore(recentAverage, overallAverage, slope, volatility float64) int {
	w := f.weights

	score := recentAverage * w.RecentAverageWeight
	score += math.Min(math.Max(slope, 0)*w.SlopeMultiplier, w.SlopeContributionCap)
	score += math.Min(volatility*w.VolatilityMultiplier, w.VolatilityCap)
	if recentAverage > overallAverage+w.EscalationMargin {
		score += w.EscalationBonus
	}

	return clampScore(math.Round(score))
}

func (f *Forecaster) riskLevel(score int) RiskLevel {
	w := f.weights
	switch {
	case float64(score) >= w.LevelCritical:
		return RiskCritical
	case float64(score) >= w.LevelHigh:
		return RiskHigh
	case float64(score) >= w.LevelModerate:
		return RiskModerate
	default:
		return RiskLow
	}
}

func (f *Forecaster) trend(slope float64) Trend {
	switch {
	case slope > f.weights.TrendSlopeBand:
		return TrendDeclining
	case slope < -f.weights.TrendSlopeBand:
		return TrendImproving
	default:
		return TrendStable
	}
}

// predictedDays narrows the horizon only when the signal is worsening; a
// stable or improving series always reports the full 7-day horizon as a
// "no imminent signal" default.
func (f *Forecaster) predictedDays(riskScore int, slope float64) int {
	if float64(riskScore) >= f.weights.LevelCritical {
		return 3
	}
	switch {
	case slope > 5:
		return 3
	case slope > 2:
		return 5
	default:
		return 7
	}
}

func (f *Forecaster) confidence(n int, slope, volatility float64) float64 {
	confidence := 0.5

	switch {
	case n >= 14:
		confidence += 0.3
	case n >= 7:
		confidence += 0.2
	case n >= 3:
		confidence += 0.1
	default:
		confidence -= 0.2
	}

	if volatility < 10 {
		confidence += 0.15
	} else if volatility > 20 {
		confidence -= 0.1
	}

	if math.Abs(slope) > 3 {
		confidence += 0.05
	}

	return clampRange(confidence, minConfidence, 1)
}

// factors builds the ordered contributing-factor checklist. Each condition
// is appended independently; if none apply the list still carries the
// normal-range entry, so it is never empty.
func (f *Forecaster) factors(series []TrendDataPoint, recentAverage, slope, volatility float64) []string {
	w := f.weights

	window := recentWindow(len(series))
	recentPoints := series[len(series)-window:]
	var recentStress, recentFatigue float64
	for _, p := range recentPoints {
		recentStress += p.StressScore
		recentFatigue += p.FatigueScore
	}
	recentStress /= float64(window)
	recentFatigue /= float64(window)

	var factors []string
	if recentStress > w.FactorStressMin {
		factors = append(factors, factorElevatedStress)
	}
	if recentFatigue > w.FactorFatigueMin {
		factors = append(factors, factorHighFatigue)
	}
	if slope > w.TrendSlopeBand {
		factors = append(factors, factorDecliningTrend)
	}
	if volatility > w.FactorVolatilityMin {
		factors = append(factors, factorInconsistent)
	}
	if recentAverage > w.FactorSustainedMin {
		factors = append(factors, factorSustainedHigh)
	}

	if len(factors) == 0 {
		factors = []string{factorNormalRange}
	}
	return factors
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
