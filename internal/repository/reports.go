package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shoukanhq/shoukan-server-go/internal/game"
)

// ReportStore persists match-end reports for downstream reward and economy
// systems. It implements the engine's ReportSink port.
type ReportStore struct {
	pool *pgxpool.Pool
}

// NewReportStore creates the report sink.
func NewReportStore(pool *pgxpool.Pool) *ReportStore {
	return &ReportStore{pool: pool}
}

// SaveReport writes one match-end report.
func (s *ReportStore) SaveReport(ctx context.Context, report game.Report) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO match_reports
			(match_id, outcome, winner_id, loser_id, turns, duration_ms, transcript_lines, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (match_id) DO NOTHING`,
		report.MatchID,
		report.Outcome.String(),
		report.WinnerID,
		report.LoserID,
		report.Turns,
		report.Duration.Milliseconds(),
		len(report.Transcript),
		report.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert match report %s: %w", report.MatchID, err)
	}
	return nil
}
