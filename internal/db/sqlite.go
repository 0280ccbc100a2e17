package db

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS forwards (
	id TEXT PRIMARY KEY,
	resid TEXT NOT NULL DEFAULT '',
	root TEXT NOT NULL,
	tree BLOB NOT NULL,
	messages INTEGER NOT NULL,
	depth INTEGER NOT NULL,
	search_text TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	matrix_event_id TEXT
);
CREATE INDEX IF NOT EXISTS idx_forwards_created_at ON forwards(created_at);
`

type SQLiteArchive struct {
	db *sql.DB
}

func NewSQLiteArchive(ctx context.Context, dbPath string) (*SQLiteArchive, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteArchive{db: db}, nil
}

func (a *SQLiteArchive) Close() {
	a.db.Close()
}

func (a *SQLiteArchive) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *SQLiteArchive) SaveForward(ctx context.Context, f *Forward) error {
	tree, err := encodeTree(f)
	if err != nil {
		return err
	}
	_, err = a.db.ExecContext(ctx, `
		INSERT INTO forwards (id, resid, root, tree, messages, depth, search_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID.String(), f.ResID, f.Root, tree, f.Messages, f.Depth, f.SearchText, f.CreatedAt)
	return err
}

const sqliteColumns = `id, resid, root, tree, messages, depth, search_text, created_at, matrix_event_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteForward(row scanner) (*Forward, error) {
	f := &Forward{}
	var id string
	var tree []byte
	var eventId sql.NullString
	err := row.Scan(
		&id, &f.ResID, &f.Root, &tree, &f.Messages,
		&f.Depth, &f.SearchText, &f.CreatedAt, &eventId,
	)
	if err != nil {
		return nil, err
	}
	if f.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	f.MatrixEventID = eventId.String
	f.CreatedAt = f.CreatedAt.UTC()
	return f, decodeTree(f, tree)
}

func (a *SQLiteArchive) queryForwards(ctx context.Context, query string, args ...any) ([]*Forward, error) {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	forwards := []*Forward{}
	for rows.Next() {
		f, err := scanSQLiteForward(rows)
		if err != nil {
			return nil, err
		}
		forwards = append(forwards, f)
	}
	return forwards, rows.Err()
}

func (a *SQLiteArchive) GetForward(ctx context.Context, id uuid.UUID) (*Forward, error) {
	row := a.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM forwards WHERE id = ?`, id.String())
	f, err := scanSQLiteForward(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

func (a *SQLiteArchive) ListUnposted(ctx context.Context, limit int) ([]*Forward, error) {
	return a.queryForwards(ctx, `
		SELECT `+sqliteColumns+` FROM forwards
		WHERE matrix_event_id IS NULL
		ORDER BY created_at ASC LIMIT ?
	`, limit)
}

func (a *SQLiteArchive) MarkPosted(ctx context.Context, id uuid.UUID, eventId string) error {
	_, err := a.db.ExecContext(ctx, `UPDATE forwards SET matrix_event_id = ? WHERE id = ?`, eventId, id.String())
	return err
}

func (a *SQLiteArchive) SearchForwards(ctx context.Context, query string, limit int) ([]*Forward, error) {
	return a.queryForwards(ctx, `
		SELECT `+sqliteColumns+` FROM forwards
		WHERE search_text LIKE ?
		ORDER BY created_at DESC LIMIT ?
	`, likePattern(query), limit)
}
