package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SHEHROZFF/ecom-sub000/internal/domain/progress"
)

const upsertProgressSQL = `INSERT INTO lesson_progress (owner_id, lesson_id, watched_seconds, completed, updated_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (owner_id, lesson_id) DO UPDATE
	SET watched_seconds = EXCLUDED.watched_seconds,
	    completed = lesson_progress.completed OR EXCLUDED.completed,
	    updated_at = EXCLUDED.updated_at`

var _ progress.Persister = (*ProgressRepository)(nil)

// ProgressRepository implements progress.Persister backed by PostgreSQL.
type ProgressRepository struct {
	pool *pgxpool.Pool
}

// NewProgressRepository returns a ProgressRepository that uses the given pool.
func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{pool: pool}
}

// Save upserts the progress entry. A lesson once completed stays completed
// even if a later tick reports completed=false.
func (r *ProgressRepository) Save(ctx context.Context, owner string, e progress.Entry) error {
	_, err := r.pool.Exec(ctx, upsertProgressSQL,
		owner, e.LessonID, e.WatchedSeconds, e.Completed, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving progress for lesson %q: %w", e.LessonID, err)
	}
	return nil
}
