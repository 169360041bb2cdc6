package semantic

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Reading is a stress/fatigue estimate derived from one utterance of
// free-text self-report, independent of any acoustic signal. A score of 50
// with confidence 0 means "no textual evidence" — downstream blending treats
// a zero-confidence axis as absent, so the inferencer must never encode
// silence as a moderate reading.
type Reading struct {
	StressScore       float64 `json:"stress_score"`
	FatigueScore      float64 `json:"fatigue_score"`
	StressConfidence  float64 `json:"stress_confidence"`
	FatigueConfidence float64 `json:"fatigue_confidence"`
}

// NeutralReading is the no-signal baseline.
func NeutralReading() Reading {
	return Reading{StressScore: 50, FatigueScore: 50}
}

// termSignal is the score and confidence an explicit self-report term pushes
// an axis to.
type termSignal struct {
	score      float64
	confidence float64
}

// phraseSignal is a multi-word self-report pattern.
type phraseSignal struct {
	words  []string
	signal termSignal
}

// TextInferencer detects stress- and fatigue-indicative vocabulary in
// free text. Strong explicit self-reports ("stressed", "exhausted") land in
// the high band with high confidence; calming vocabulary lands in the low
// band; text with no relevant vocabulary yields the neutral baseline.
type TextInferencer struct {
	logger *logrus.Entry

	stressTerms  map[string]termSignal
	fatigueTerms map[string]termSignal

	stressPhrases  []phraseSignal
	fatiguePhrases []phraseSignal

	negators map[string]bool
}

// NewTextInferencer creates a text inferencer with the built-in lexicons.
func NewTextInferencer(logger *logrus.Logger) *TextInferencer {
	ti := &TextInferencer{
		logger: logger.WithField("component", "text_inferencer"),
	}
	ti.initializeLexicons()
	return ti
}

// InferFromText analyzes one utterance and returns its semantic reading.
func (ti *TextInferencer) InferFromText(text string) Reading {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return NeutralReading()
	}

	reading := NeutralReading()

	for i := range tokens {
		if ti.isNegated(tokens, i) {
			continue
		}

		if sig, ok := ti.matchPhrase(ti.stressPhrases, tokens, i); ok {
			reading.StressScore, reading.StressConfidence = strongerAxis(
				reading.StressScore, reading.StressConfidence, sig.score, sig.confidence)
		} else if sig, ok := ti.stressTerms[tokens[i]]; ok {
			reading.StressScore, reading.StressConfidence = strongerAxis(
				reading.StressScore, reading.StressConfidence, sig.score, sig.confidence)
		}

		if sig, ok := ti.matchPhrase(ti.fatiguePhrases, tokens, i); ok {
			reading.FatigueScore, reading.FatigueConfidence = strongerAxis(
				reading.FatigueScore, reading.FatigueConfidence, sig.score, sig.confidence)
		} else if sig, ok := ti.fatigueTerms[tokens[i]]; ok {
			reading.FatigueScore, reading.FatigueConfidence = strongerAxis(
				reading.FatigueScore, reading.FatigueConfidence, sig.score, sig.confidence)
		}
	}

	ti.logger.WithFields(logrus.Fields{
		"stress_score":       reading.StressScore,
		"fatigue_score":      reading.FatigueScore,
		"stress_confidence":  reading.StressConfidence,
		"fatigue_confidence": reading.FatigueConfidence,
	}).Debug("Inferred semantic reading from text")

	return reading
}

// matchPhrase reports whether any phrase in the set starts at position i.
func (ti *TextInferencer) matchPhrase(phrases []phraseSignal, tokens []string, i int) (termSignal, bool) {
	for _, p := range phrases {
		if i+len(p.words) > len(tokens) {
			continue
		}
		matched := true
		for j, w := range p.words {
			if tokens[i+j] != w {
				matched = false
				break
			}
		}
		if matched {
			return p.signal, true
		}
	}
	return termSignal{}, false
}

// isNegated reports whether the token at i sits inside a short negation
// window ("not stressed", "no longer tired").
func (ti *TextInferencer) isNegated(tokens []string, i int) bool {
	for back := 1; back <= 2; back++ {
		if i-back < 0 {
			break
		}
		if ti.negators[tokens[i-back]] {
			return true
		}
	}
	return false
}

// tokenize lowercases the text, expands "n't" contractions, and strips
// punctuation so lexicon lookups see bare words.
func tokenize(text string) []string {
	lowered := strings.ToLower(text)
	lowered = strings.ReplaceAll(lowered, "n't", " not")

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

func (ti *TextInferencer) initializeLexicons() {
	// Explicit stress self-reports. Strong terms push the axis into the
	// high band with high confidence; calming terms into the low band.
	ti.stressTerms = map[string]termSignal{
		"stressed":    {score: 85, confidence: 0.80},
		"overwhelmed": {score: 90, confidence: 0.85},
		"panicking":   {score: 90, confidence: 0.85},
		"panicked":    {score: 88, confidence: 0.80},
		"anxious":     {score: 80, confidence: 0.75},
		"frantic":     {score: 85, confidence: 0.75},
		"pressured":   {score: 75, confidence: 0.65},
		"tense":       {score: 70, confidence: 0.60},
		"worried":     {score: 70, confidence: 0.60},
		"nervous":     {score: 65, confidence: 0.55},

		"calm":     {score: 20, confidence: 0.60},
		"relaxed":  {score: 15, confidence: 0.65},
		"peaceful": {score: 15, confidence: 0.60},
	}

	ti.stressPhrases = []phraseSignal{
		{words: []string{"stressed", "out"}, signal: termSignal{score: 88, confidence: 0.85}},
		{words: []string{"freaking", "out"}, signal: termSignal{score: 85, confidence: 0.75}},
		{words: []string{"under", "pressure"}, signal: termSignal{score: 80, confidence: 0.75}},
		{words: []string{"on", "edge"}, signal: termSignal{score: 75, confidence: 0.65}},
		{words: []string{"burned", "out"}, signal: termSignal{score: 80, confidence: 0.70}},
		{words: []string{"burnt", "out"}, signal: termSignal{score: 80, confidence: 0.70}},
		{words: []string{"at", "ease"}, signal: termSignal{score: 20, confidence: 0.60}},
	}

	// Explicit fatigue self-reports.
	ti.fatigueTerms = map[string]termSignal{
		"exhausted": {score: 90, confidence: 0.85},
		"drained":   {score: 85, confidence: 0.80},
		"depleted":  {score: 82, confidence: 0.75},
		"fatigued":  {score: 75, confidence: 0.70},
		"weary":     {score: 75, confidence: 0.65},
		"tired":     {score: 70, confidence: 0.65},
		"sluggish":  {score: 70, confidence: 0.60},
		"sleepy":    {score: 65, confidence: 0.60},

		"rested":    {score: 15, confidence: 0.65},
		"refreshed": {score: 15, confidence: 0.65},
		"energized": {score: 10, confidence: 0.70},
		"energetic": {score: 12, confidence: 0.65},
	}

	ti.fatiguePhrases = []phraseSignal{
		{words: []string{"burned", "out"}, signal: termSignal{score: 88, confidence: 0.80}},
		{words: []string{"burnt", "out"}, signal: termSignal{score: 88, confidence: 0.80}},
		{words: []string{"worn", "out"}, signal: termSignal{score: 80, confidence: 0.70}},
		{words: []string{"wiped", "out"}, signal: termSignal{score: 85, confidence: 0.75}},
		{words: []string{"no", "energy"}, signal: termSignal{score: 85, confidence: 0.75}},
		{words: []string{"running", "on", "empty"}, signal: termSignal{score: 85, confidence: 0.75}},
		{words: []string{"well", "rested"}, signal: termSignal{score: 12, confidence: 0.70}},
		{words: []string{"full", "of", "energy"}, signal: termSignal{score: 10, confidence: 0.70}},
		{words: []string{"slept", "well"}, signal: termSignal{score: 18, confidence: 0.60}},
	}

	ti.negators = map[string]bool{
		"not":    true,
		"never":  true,
		"hardly": true,
		"barely": true,
		"longer": true, // "no longer tired"
	}
}
