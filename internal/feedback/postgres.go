package feedback

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PostgresSink writes the feedback log through database/sql. It shares the
// remote backend with the project store but deliberately has no read path.
type PostgresSink struct {
	db *sql.DB
}

func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Append(ctx context.Context, rec Record) error {
	const q = `
INSERT INTO feedback_records (id, project_id, domain_user, domain_call, elapsed_seconds, quality, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`
	_, err := s.db.ExecContext(ctx, q, uuid.NewString(), rec.ProjectID,
		rec.User, rec.Call, rec.ElapsedSeconds, string(rec.Quality), rec.Timestamp)
	if err != nil {
		return fmt.Errorf("append feedback: %w", err)
	}
	return nil
}
