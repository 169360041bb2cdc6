package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"voicewell-server/pkg/biomarker"
	"voicewell-server/pkg/database"
	"voicewell-server/pkg/errors"
	"voicewell-server/pkg/forecast"
	"voicewell-server/pkg/messaging"
	"voicewell-server/pkg/metrics"
	"voicewell-server/pkg/scoring"
	"voicewell-server/pkg/semantic"
)

// analyzeRequest is the body of POST /api/v1/analyses
type analyzeRequest struct {
	UserID      string                     `json:"user_id"`
	RecordingID string                     `json:"recording_id,omitempty"`
	Features    biomarker.AcousticFeatures `json:"features"`
	Transcripts []string                   `json:"transcripts,omitempty"`
	Gemini      *scoring.ObservationSet    `json:"gemini,omitempty"`
}

// analyzeResponse is the body of a successful analysis
type analyzeResponse struct {
	ID       string                 `json:"id"`
	Metrics  biomarker.VoiceMetrics `json:"metrics"`
	Combined scoring.CombinedScore  `json:"combined"`
}

// AnalysesHandler accepts one recording's features plus optional semantic
// inputs and runs the full scoring pipeline.
func (s *Server) AnalysesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.AnalysesTotal.WithLabelValues("malformed").Inc()
		errors.WriteError(w, errors.Wrap(errors.ErrInvalidInput, "malformed request body"))
		return
	}
	if req.UserID == "" {
		metrics.AnalysesTotal.WithLabelValues("malformed").Inc()
		errors.WriteError(w, errors.Wrap(errors.ErrInvalidInput, "user_id is required"))
		return
	}

	if !biomarker.ValidateFeatures(s.deps.Thresholds, req.Features) {
		metrics.FeatureRejectsTotal.Inc()
		metrics.AnalysesTotal.WithLabelValues("rejected").Inc()
		errors.WriteError(w, errors.Wrap(errors.ErrInvalidFeatures, "feature vector out of range"))
		return
	}

	voiceMetrics := s.deps.Classifier.Classify(req.Features)
	signal := s.semanticSignal(req)
	combined := s.deps.Blender.Blend(voiceMetrics, signal)
	metrics.BlendTotal.WithLabelValues(signalLabel(signal)).Inc()

	rec := database.AnalysisRecord{
		ID:       uuid.NewString(),
		UserID:   req.UserID,
		Metrics:  voiceMetrics,
		Combined: combined,
	}

	if err := s.deps.Store.SaveAnalysis(r.Context(), rec); err != nil {
		s.logger.WithError(err).Error("Failed to persist analysis")
		metrics.AnalysesTotal.WithLabelValues("error").Inc()
		errors.WriteError(w, err)
		return
	}

	s.publishAnalysis(rec)
	if s.hub != nil {
		s.hub.BroadcastAnalysis(rec)
	}

	metrics.AnalysesTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusCreated, analyzeResponse{
		ID:       rec.ID,
		Metrics:  voiceMetrics,
		Combined: combined,
	})
}

// semanticSignal selects the blend variant for one request. A structured
// LLM analysis takes precedence over raw transcripts; transcripts with no
// detected vocabulary degrade to no signal.
func (s *Server) semanticSignal(req analyzeRequest) scoring.Signal {
	if req.Gemini != nil {
		return *req.Gemini
	}

	if len(req.Transcripts) > 0 {
		readings := make([]semantic.Reading, 0, len(req.Transcripts))
		for _, text := range req.Transcripts {
			readings = append(readings, s.deps.Inferencer.InferFromText(text))
		}
		merged := semantic.Fold(readings)
		if merged.StressConfidence > 0 || merged.FatigueConfidence > 0 {
			return scoring.TextReading{Reading: merged}
		}
	}

	return scoring.NoSignal{}
}

func signalLabel(signal scoring.Signal) string {
	switch signal.(type) {
	case scoring.TextReading:
		return "text"
	case scoring.ObservationSet:
		return "observations"
	default:
		return "none"
	}
}

// publishAnalysis emits the completed analysis to AMQP when messaging is up
func (s *Server) publishAnalysis(rec database.AnalysisRecord) {
	if s.deps.Publisher == nil || !s.deps.Publisher.IsConnected() {
		return
	}

	event := messaging.AnalysisEvent{
		AnalysisID:        rec.ID,
		UserID:            rec.UserID,
		StressScore:       rec.Metrics.StressScore,
		FatigueScore:      rec.Metrics.FatigueScore,
		FinalStressScore:  rec.Combined.FinalStressScore,
		FinalFatigueScore: rec.Combined.FinalFatigueScore,
		StressLevel:       string(rec.Metrics.StressLevel),
		FatigueLevel:      string(rec.Metrics.FatigueLevel),
		Confidence:        rec.Metrics.Confidence,
		Timestamp:         rec.Metrics.AnalyzedAt,
	}

	if err := s.deps.Publisher.PublishAnalysis(event); err != nil {
		metrics.EventPublishErrors.Inc()
		s.logger.WithError(err).WithField("analysis_id", rec.ID).Warn("Failed to publish analysis event")
		return
	}
	metrics.EventsPublished.Inc()
}

// BurnoutHandler returns the burnout forecast over the user's trend window
func (s *Server) BurnoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	userID, days, err := s.trendQuery(r)
	if err != nil {
		errors.WriteError(w, err)
		return
	}

	points, err := s.deps.Store.TrendWindow(r.Context(), userID, days)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load trend window")
		errors.WriteError(w, err)
		return
	}

	prediction := s.deps.Forecaster.Predict(points)
	metrics.ForecastsTotal.WithLabelValues(string(prediction.RiskLevel)).Inc()

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"points":     len(points),
		"risk_level": prediction.RiskLevel,
	}).Debug("Served burnout forecast")

	writeJSON(w, http.StatusOK, prediction)
}

// TrendHandler returns the raw ordered daily trend points
func (s *Server) TrendHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	userID, days, err := s.trendQuery(r)
	if err != nil {
		errors.WriteError(w, err)
		return
	}

	points, err := s.deps.Store.TrendWindow(r.Context(), userID, days)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load trend window")
		errors.WriteError(w, err)
		return
	}
	if points == nil {
		points = []forecast.TrendDataPoint{}
	}

	writeJSON(w, http.StatusOK, points)
}

// trendQuery parses and bounds the shared user/days query parameters
func (s *Server) trendQuery(r *http.Request) (string, int, error) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		return "", 0, errors.Wrap(errors.ErrInvalidInput, "user query parameter is required")
	}

	days := s.deps.DefaultTrendDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return "", 0, errors.Wrap(errors.ErrInvalidInput, "days must be a positive integer")
		}
		days = parsed
	}
	if days > s.deps.MaxTrendDays {
		days = s.deps.MaxTrendDays
	}

	return userID, days, nil
}

func writeMethodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
