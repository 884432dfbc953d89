package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/click-call/click-call-backend/internal/projects/domain"
)

// PostgresStore is the remote row-store backend for projects.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const projectCols = `id, name, slug, domain_user, domain_call, caller_name,
avatar_url, bg, audio_url, initial_message, intro_cta_text, cta_text, cta_url,
created_at, updated_at`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.DomainUser, &p.DomainCall,
		&p.CallerName, &p.AvatarURL, &p.Bg, &p.AudioURL, &p.InitialMessage,
		&p.IntroCTAText, &p.CTAText, &p.CTAURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]domain.Project, error) {
	const q = `
select ` + projectCols + `
from projects
order by created_at desc;
`
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, remoteErr(err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, remoteErr(err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, remoteErr(err)
	}
	return out, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	// A non-UUID id can never exist remotely; treat it as a plain miss
	// instead of tripping a cast error in the backend.
	if !IsValidUUID(id) {
		return nil, nil
	}

	const q = `
select ` + projectCols + `
from projects
where id = $1::uuid;
`
	p, err := scanProject(s.db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, remoteErr(err)
	}
	return p, nil
}

// GetBySegments resolves the public {user}/{call} address. Duplicate pairs
// are possible; the most recently created record wins.
func (s *PostgresStore) GetBySegments(ctx context.Context, user, call string) (*domain.Project, error) {
	const q = `
select ` + projectCols + `
from projects
where domain_user = $1 and domain_call = $2
order by created_at desc
limit 1;
`
	p, err := scanProject(s.db.QueryRow(ctx, q, user, call))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, remoteErr(err)
	}
	return p, nil
}

const insertProjectQ = `
insert into projects (name, slug, domain_user, domain_call, caller_name,
  avatar_url, bg, audio_url, initial_message, intro_cta_text, cta_text, cta_url)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
returning ` + projectCols + `;
`

const upsertProjectQ = `
insert into projects (id, name, slug, domain_user, domain_call, caller_name,
  avatar_url, bg, audio_url, initial_message, intro_cta_text, cta_text, cta_url)
values ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
on conflict (id) do update set
  name = excluded.name,
  slug = excluded.slug,
  domain_user = excluded.domain_user,
  domain_call = excluded.domain_call,
  caller_name = excluded.caller_name,
  avatar_url = excluded.avatar_url,
  bg = excluded.bg,
  audio_url = excluded.audio_url,
  initial_message = excluded.initial_message,
  intro_cta_text = excluded.intro_cta_text,
  cta_text = excluded.cta_text,
  cta_url = excluded.cta_url,
  updated_at = now()
returning ` + projectCols + `;
`

func insertArgs(p domain.Project) []any {
	return []any{p.Name, p.Slug, p.DomainUser, p.DomainCall, p.CallerName,
		p.AvatarURL, p.Bg, p.AudioURL, p.InitialMessage, p.IntroCTAText,
		p.CTAText, p.CTAURL}
}

// Upsert writes a project keyed by its id. A record whose id is not a valid
// UUID is treated as new: the id is stripped and the backend assigns one.
func (s *PostgresStore) Upsert(ctx context.Context, p domain.Project) (*domain.Project, error) {
	var (
		saved *domain.Project
		err   error
	)
	if IsValidUUID(p.ID) {
		saved, err = scanProject(s.db.QueryRow(ctx, upsertProjectQ, append([]any{p.ID}, insertArgs(p)...)...))
	} else {
		saved, err = scanProject(s.db.QueryRow(ctx, insertProjectQ, insertArgs(p)...))
	}
	if err != nil {
		return nil, remoteErr(err)
	}
	return saved, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) (bool, error) {
	if !IsValidUUID(id) {
		return false, nil
	}

	const q = `delete from projects where id = $1::uuid;`
	ct, err := s.db.Exec(ctx, q, id)
	if err != nil {
		return false, remoteErr(err)
	}
	return ct.RowsAffected() > 0, nil
}

// Sync applies the two pre-partitioned batches. Each partition is all or
// nothing: the first failure voids that partition but the other one still
// applies. There is no per-record retry.
func (s *PostgresStore) Sync(ctx context.Context, upserts, inserts []domain.Project) SyncResult {
	var res SyncResult

	if len(upserts) > 0 {
		b := &pgx.Batch{}
		for _, p := range upserts {
			b.Queue(upsertProjectQ, append([]any{p.ID}, insertArgs(p)...)...)
		}
		if err := s.sendBatch(ctx, b); err != nil {
			res.UpsertErr = err
		} else {
			res.Upserted = len(upserts)
		}
	}

	if len(inserts) > 0 {
		b := &pgx.Batch{}
		for _, p := range inserts {
			b.Queue(insertProjectQ, insertArgs(p)...)
		}
		if err := s.sendBatch(ctx, b); err != nil {
			res.InsertErr = err
		} else {
			res.Inserted = len(inserts)
		}
	}

	return res
}

func (s *PostgresStore) sendBatch(ctx context.Context, b *pgx.Batch) error {
	br := s.db.SendBatch(ctx, b)
	defer br.Close()

	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return remoteErr(err)
		}
	}
	return nil
}

// remoteErr maps backend failures onto the HTTP-status-like signal the write
// path surfaces to callers.
func remoteErr(err error) *RemoteError {
	status := 500

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique violation
			status = 409
		case "22P02", "23502", "23514": // bad input
			status = 400
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		status = 503
	}

	return &RemoteError{Status: status, Message: err.Error()}
}
