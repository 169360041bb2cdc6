package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"voicewell-server/pkg/biomarker"
	"voicewell-server/pkg/errors"
	"voicewell-server/pkg/forecast"
	"voicewell-server/pkg/scoring"
)

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id                  TEXT PRIMARY KEY,
	user_id             TEXT NOT NULL,
	stress_score        INTEGER NOT NULL,
	fatigue_score       INTEGER NOT NULL,
	stress_level        TEXT NOT NULL,
	fatigue_level       TEXT NOT NULL,
	confidence          REAL NOT NULL,
	final_stress_score  INTEGER NOT NULL,
	final_fatigue_score INTEGER NOT NULL,
	analyzed_at         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analyses_user_time ON analyses(user_id, analyzed_at);

CREATE TABLE IF NOT EXISTS trend_points (
	user_id       TEXT NOT NULL,
	day           TEXT NOT NULL,
	stress_score  REAL NOT NULL,
	fatigue_score REAL NOT NULL,
	PRIMARY KEY (user_id, day)
);
`

// AnalysisRecord is one persisted per-recording analysis.
type AnalysisRecord struct {
	ID       string
	UserID   string
	Metrics  biomarker.VoiceMetrics
	Combined scoring.CombinedScore
}

// Store is the SQLite persistence layer for analyses and the daily trend
// series the forecaster consumes.
type Store struct {
	db     *sql.DB
	logger *logrus.Entry
}

// New opens (or creates) the database at path and bootstraps the schema.
func New(logger *logrus.Logger, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to initialize schema")
	}

	return &Store{
		db:     db,
		logger: logger.WithField("component", "database"),
	}, nil
}

// SaveAnalysis persists one analysis and upserts the owning user's trend
// point for that day. The latest analysis of a day wins.
func (s *Store) SaveAnalysis(ctx context.Context, rec AnalysisRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrStorageFailure, err.Error())
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO analyses (
			id, user_id, stress_score, fatigue_score, stress_level,
			fatigue_level, confidence, final_stress_score, final_fatigue_score, analyzed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID,
		rec.Metrics.StressScore, rec.Metrics.FatigueScore,
		string(rec.Metrics.StressLevel), string(rec.Metrics.FatigueLevel),
		rec.Metrics.Confidence,
		rec.Combined.FinalStressScore, rec.Combined.FinalFatigueScore,
		rec.Metrics.AnalyzedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert analysis")
	}

	day := rec.Metrics.AnalyzedAt.UTC().Format("2006-01-02")
	_, err = tx.ExecContext(ctx, `
		INSERT INTO trend_points (user_id, day, stress_score, fatigue_score)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, day) DO UPDATE SET
			stress_score = excluded.stress_score,
			fatigue_score = excluded.fatigue_score`,
		rec.UserID, day,
		float64(rec.Combined.FinalStressScore), float64(rec.Combined.FinalFatigueScore),
	)
	if err != nil {
		return errors.Wrap(err, "failed to upsert trend point")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit analysis")
	}

	s.logger.WithFields(logrus.Fields{
		"analysis_id": rec.ID,
		"user_id":     rec.UserID,
		"day":         day,
	}).Debug("Saved analysis")

	return nil
}

// TrendWindow returns up to days of the user's most recent daily points,
// ordered ascending by day. Missing days are simply absent rows.
func (s *Store) TrendWindow(ctx context.Context, userID string, days int) ([]forecast.TrendDataPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day, stress_score, fatigue_score FROM (
			SELECT day, stress_score, fatigue_score
			FROM trend_points
			WHERE user_id = ?
			ORDER BY day DESC
			LIMIT ?
		) ORDER BY day ASC`,
		userID, days,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query trend window")
	}
	defer rows.Close()

	var points []forecast.TrendDataPoint
	for rows.Next() {
		var day string
		var point forecast.TrendDataPoint
		if err := rows.Scan(&day, &point.StressScore, &point.FatigueScore); err != nil {
			return nil, errors.Wrap(err, "failed to scan trend point")
		}
		point.Date, err = time.Parse("2006-01-02", day)
		if err != nil {
			return nil, errors.Wrap(err, "malformed day in trend point")
		}
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read trend window")
	}

	return points, nil
}

// GetAnalysis loads one analysis by ID.
func (s *Store) GetAnalysis(ctx context.Context, id string) (*AnalysisRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, stress_score, fatigue_score, stress_level,
		       fatigue_level, confidence, final_stress_score, final_fatigue_score, analyzed_at
		FROM analyses WHERE id = ?`, id)

	var rec AnalysisRecord
	var stressLevel, fatigueLevel, analyzedAt string
	err := row.Scan(
		&rec.ID, &rec.UserID,
		&rec.Metrics.StressScore, &rec.Metrics.FatigueScore,
		&stressLevel, &fatigueLevel, &rec.Metrics.Confidence,
		&rec.Combined.FinalStressScore, &rec.Combined.FinalFatigueScore,
		&analyzedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrAnalysisNotFound, id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load analysis")
	}

	rec.Metrics.StressLevel = biomarker.StressLevel(stressLevel)
	rec.Metrics.FatigueLevel = biomarker.FatigueLevel(fatigueLevel)
	rec.Metrics.AnalyzedAt, err = time.Parse(time.RFC3339, analyzedAt)
	if err != nil {
		return nil, errors.Wrap(err, "malformed timestamp in analysis")
	}

	return &rec, nil
}

// Ping verifies database connectivity for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
