package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/radieske/halftime-predictor/pkg/contracts/events"
)

// Schema da tabela de arquivo. entry_id é único: reentregas do Kafka não duplicam linhas.
const Schema = `
	CREATE TABLE IF NOT EXISTS prediction_history (
	  entry_id    BIGINT PRIMARY KEY,
	  event_id    TEXT        NOT NULL,
	  league      TEXT        NOT NULL DEFAULT '',
	  match_date  TEXT        NOT NULL DEFAULT '',
	  teams       TEXT        NOT NULL,
	  half_time   TEXT        NOT NULL DEFAULT '',
	  prediction  TEXT        NOT NULL,
	  recorded_at TIMESTAMPTZ NOT NULL,
	  archived_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// PostgresRepo arquiva previsões gravadas em Postgres
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, Schema)
	return err
}

// InsertEntry grava o evento; devolve false quando o entry_id já existia
func (r *PostgresRepo) InsertEntry(ctx context.Context, e events.PredictionRecorded) (bool, error) {
	const q = `
		INSERT INTO prediction_history
		  (entry_id, event_id, league, match_date, teams, half_time, prediction, recorded_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (entry_id) DO NOTHING
	`
	res, err := r.DB.ExecContext(ctx, q,
		e.EntryID, e.EventID, e.League, e.MatchDate,
		e.Teams, e.HalfTime, e.Prediction, e.RecordedAt,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *PostgresRepo) CountEntries(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM prediction_history`).Scan(&n)
	return n, err
}

// Ping é o check do /healthz: conexão viva e tabela prediction_history consultável
func (r *PostgresRepo) Ping(ctx context.Context) error {
	if _, err := r.CountEntries(ctx); err != nil {
		return fmt.Errorf("prediction_history: %w", err)
	}
	return nil
}
