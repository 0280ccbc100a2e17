package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS forwards (
	id UUID PRIMARY KEY,
	resid TEXT NOT NULL DEFAULT '',
	root TEXT NOT NULL,
	tree JSONB NOT NULL,
	messages INTEGER NOT NULL,
	depth INTEGER NOT NULL,
	search_text TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	matrix_event_id TEXT
);
CREATE INDEX IF NOT EXISTS idx_forwards_unposted ON forwards(created_at) WHERE matrix_event_id IS NULL;
`

type PostgresArchive struct {
	pool *pgxpool.Pool
}

func NewPostgresArchive(ctx context.Context, databaseUrl string) (*PostgresArchive, error) {
	pool, err := pgxpool.New(ctx, databaseUrl)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresArchive{pool: pool}, nil
}

func (a *PostgresArchive) Close() {
	a.pool.Close()
}

func (a *PostgresArchive) Ping(ctx context.Context) error {
	return a.pool.Ping(ctx)
}

func (a *PostgresArchive) SaveForward(ctx context.Context, f *Forward) error {
	tree, err := encodeTree(f)
	if err != nil {
		return err
	}
	_, err = a.pool.Exec(ctx, `
		INSERT INTO forwards (id, resid, root, tree, messages, depth, search_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, f.ID, f.ResID, f.Root, tree, f.Messages, f.Depth, f.SearchText, f.CreatedAt)
	return err
}

const postgresColumns = `id, resid, root, tree, messages, depth, search_text, created_at, matrix_event_id`

func scanPostgresForward(row pgx.Row) (*Forward, error) {
	f := &Forward{}
	var tree []byte
	var eventId *string
	err := row.Scan(
		&f.ID, &f.ResID, &f.Root, &tree, &f.Messages,
		&f.Depth, &f.SearchText, &f.CreatedAt, &eventId,
	)
	if err != nil {
		return nil, err
	}
	if eventId != nil {
		f.MatrixEventID = *eventId
	}
	return f, decodeTree(f, tree)
}

func (a *PostgresArchive) queryForwards(ctx context.Context, query string, args ...any) ([]*Forward, error) {
	rows, err := a.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	forwards := []*Forward{}
	for rows.Next() {
		f, err := scanPostgresForward(rows)
		if err != nil {
			return nil, err
		}
		forwards = append(forwards, f)
	}
	return forwards, rows.Err()
}

func (a *PostgresArchive) GetForward(ctx context.Context, id uuid.UUID) (*Forward, error) {
	row := a.pool.QueryRow(ctx, `SELECT `+postgresColumns+` FROM forwards WHERE id = $1`, id)
	f, err := scanPostgresForward(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

func (a *PostgresArchive) ListUnposted(ctx context.Context, limit int) ([]*Forward, error) {
	return a.queryForwards(ctx, `
		SELECT `+postgresColumns+` FROM forwards
		WHERE matrix_event_id IS NULL
		ORDER BY created_at ASC LIMIT $1
	`, limit)
}

func (a *PostgresArchive) MarkPosted(ctx context.Context, id uuid.UUID, eventId string) error {
	_, err := a.pool.Exec(ctx, `UPDATE forwards SET matrix_event_id = $2 WHERE id = $1`, id, eventId)
	return err
}

func (a *PostgresArchive) SearchForwards(ctx context.Context, query string, limit int) ([]*Forward, error) {
	return a.queryForwards(ctx, `
		SELECT `+postgresColumns+` FROM forwards
		WHERE search_text LIKE $1
		ORDER BY created_at DESC LIMIT $2
	`, likePattern(query), limit)
}
