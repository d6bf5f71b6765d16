// Package stats keeps per-view render statistics in SQLite. A Store is a
// render.Observer, so it can be attached to a pipeline with render.WithObserver.
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/CTAG07/Verbena/pkg/render"
)

const schema = `
CREATE TABLE IF NOT EXISTS stats_view (
    view           TEXT PRIMARY KEY,
    total_renders  INTEGER NOT NULL DEFAULT 0,
    total_failures INTEGER NOT NULL DEFAULT 0,
    total_bytes    INTEGER NOT NULL DEFAULT 0,
    total_nanos    INTEGER NOT NULL DEFAULT 0,
    first_seen     INTEGER NOT NULL,
    last_seen      INTEGER NOT NULL
);
`

// ViewStats is the aggregated record of a single view.
type ViewStats struct {
	View          string        `json:"view"`
	TotalRenders  int64         `json:"total_renders"`
	TotalFailures int64         `json:"total_failures"`
	TotalBytes    int64         `json:"total_bytes"`
	AvgDuration   time.Duration `json:"avg_duration"`
	FirstSeen     time.Time     `json:"first_seen"`
	LastSeen      time.Time     `json:"last_seen"`
}

// Summary provides a high-level overview of all collected stats.
type Summary struct {
	TotalRenders  int64 `json:"total_renders"`
	TotalFailures int64 `json:"total_failures"`
	TotalBytes    int64 `json:"total_bytes"`
	UniqueViews   int64 `json:"unique_views"`
}

// Store records render events. All methods are safe for concurrent use.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

var _ render.Observer = (*Store)(nil)

// SetupSchema creates the stats tables if they don't exist.
func SetupSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// ObserveRender implements render.Observer. Failures to record are logged and
// never reach the render path.
func (s *Store) ObserveRender(ctx context.Context, ev render.RenderEvent) {
	if err := s.Record(ctx, ev); err != nil {
		s.logger.Error("Failed to record render stats", "view", ev.View, "error", err)
	}
}

// Record adds one render event to the view's totals.
func (s *Store) Record(ctx context.Context, ev render.RenderEvent) error {
	now := s.now().Unix()
	failures := 0
	if ev.Err != nil {
		failures = 1
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO stats_view (view, total_renders, total_failures, total_bytes, total_nanos, first_seen, last_seen)
        VALUES (?, 1, ?, ?, ?, ?, ?)
        ON CONFLICT(view) DO UPDATE SET
            total_renders  = total_renders + 1,
            total_failures = total_failures + excluded.total_failures,
            total_bytes    = total_bytes + excluded.total_bytes,
            total_nanos    = total_nanos + excluded.total_nanos,
            last_seen      = excluded.last_seen
    `, ev.View, failures, ev.Bytes, ev.Duration.Nanoseconds(), now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert stats_view: %w", err)
	}
	return nil
}

// Summary returns totals over all views.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	err := s.db.QueryRowContext(ctx, `
        SELECT COALESCE(SUM(total_renders), 0), COALESCE(SUM(total_failures), 0),
               COALESCE(SUM(total_bytes), 0), COUNT(*)
        FROM stats_view
    `).Scan(&sum.TotalRenders, &sum.TotalFailures, &sum.TotalBytes, &sum.UniqueViews)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to query stats summary: %w", err)
	}
	return sum, nil
}

// TopViews returns up to limit views ordered by render count.
func (s *Store) TopViews(ctx context.Context, limit int) ([]ViewStats, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT view, total_renders, total_failures, total_bytes, total_nanos, first_seen, last_seen
        FROM stats_view ORDER BY total_renders DESC, view ASC LIMIT ?
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top views: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var results []ViewStats
	for rows.Next() {
		var vs ViewStats
		var nanos, first, last int64
		if err = rows.Scan(&vs.View, &vs.TotalRenders, &vs.TotalFailures, &vs.TotalBytes, &nanos, &first, &last); err != nil {
			return nil, fmt.Errorf("failed to scan top views: %w", err)
		}
		if vs.TotalRenders > 0 {
			vs.AvgDuration = time.Duration(nanos / vs.TotalRenders)
		}
		vs.FirstSeen = time.Unix(first, 0)
		vs.LastSeen = time.Unix(last, 0)
		results = append(results, vs)
	}
	return results, rows.Err()
}
