package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kindling-io/kindling/internal/models"
)

// SQLite keeps projects in a single sqlite database file.
type SQLite struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, wrap("open", "", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrap("open", "", err)
	}
	// modernc serialises writers per connection; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := migrateSQLite(db); err != nil {
		_ = db.Close()
		return nil, wrap("open", "", err)
	}
	return &SQLite{db: db, path: path}, nil
}

func migrateSQLite(db *sql.DB) error {
	statements := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			code TEXT NOT NULL DEFAULT '',
			owner_id TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS projects_created ON projects (created_at);`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("project store migration failed: %w", err)
		}
	}
	return nil
}

const projectColumns = `id, name, description, code, owner_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var (
		p                models.Project
		created, updated int64
	)
	if err := row.Scan(&p.ProjectID, &p.Name, &p.Description, &p.Code, &p.OwnerID, &created, &updated); err != nil {
		return nil, err
	}
	p.Version = 1
	p.CreatedAt = time.Unix(0, created).UTC()
	p.UpdatedAt = time.Unix(0, updated).UTC()
	return &p, nil
}

func (s *SQLite) List(ctx context.Context) ([]*models.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, wrap("list", "", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, wrap("list", "", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list", "", err)
	}
	return projects, nil
}

func (s *SQLite) Get(ctx context.Context, id string) (*models.Project, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, wrap("get", id, ErrNotFound)
	}
	if err != nil {
		return nil, wrap("get", id, err)
	}
	return p, nil
}

func (s *SQLite) Create(ctx context.Context, opts CreateOptions) (*models.Project, error) {
	if err := validateCreate(opts); err != nil {
		return nil, wrap("create", "", err)
	}
	p := models.NewProject(uuid.New().String(), opts.Name, opts.OwnerID)
	p.Description = opts.Description

	_, err := s.db.ExecContext(ctx, `INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ProjectID, p.Name, p.Description, p.Code, p.OwnerID, p.CreatedAt.UnixNano(), p.UpdatedAt.UnixNano())
	if err != nil {
		return nil, wrap("create", p.ProjectID, err)
	}
	return p, nil
}

func (s *SQLite) Update(ctx context.Context, id string, opts UpdateOptions) (*models.Project, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrap("update", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	p, err := scanProject(tx.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, wrap("update", id, ErrNotFound)
	}
	if err != nil {
		return nil, wrap("update", id, err)
	}

	apply(p, opts, time.Now())
	_, err = tx.ExecContext(ctx, `UPDATE projects SET name = ?, description = ?, code = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Description, p.Code, p.UpdatedAt.UnixNano(), id)
	if err != nil {
		return nil, wrap("update", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, wrap("update", id, err)
	}
	return p, nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return wrap("delete", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return wrap("delete", id, ErrNotFound)
	}
	return nil
}

// Path returns the database file.
func (s *SQLite) Path() string { return s.path }

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
