// Package export writes finished scope trees to SQLite.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/agentic-research/sage/internal/graph"
)

// ScopeKind is stored in properties.kind for scope references.
const ScopeKind = "Scope"

const schema = `
CREATE TABLE IF NOT EXISTS scopes (
	id TEXT PRIMARY KEY,
	parent_id TEXT,
	name TEXT NOT NULL,
	type_tag TEXT NOT NULL,
	sequence INTEGER NOT NULL,
	depth INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scopes_parent ON scopes(parent_id);
CREATE INDEX IF NOT EXISTS idx_scopes_type ON scopes(type_tag);

CREATE TABLE IF NOT EXISTS properties (
	scope_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	value TEXT,
	ref_id TEXT,
	PRIMARY KEY (scope_id, position)
) WITHOUT ROWID;
CREATE INDEX IF NOT EXISTS idx_properties_name ON properties(name);
`

// SQLiteWriter writes scope trees into a database with the scopes and
// properties tables.
type SQLiteWriter struct {
	db     *sql.DB
	logger *slog.Logger
}

// Option customizes a SQLiteWriter.
type Option func(*SQLiteWriter)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *SQLiteWriter) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewSQLiteWriter opens dbPath and creates the schema.
func NewSQLiteWriter(dbPath string, opts ...Option) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Bulk insert tuning. WriteFile builds into a temp file, so a crash
	// mid-export never corrupts the target.
	for _, pragma := range []string{"PRAGMA synchronous = OFF", "PRAGMA journal_mode = MEMORY"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	w := &SQLiteWriter{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Write stores root and all of its descendants in a single transaction.
// Rows already present for the same ids are replaced.
func (w *SQLiteWriter) Write(ctx context.Context, root *graph.Scope) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmtScope, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO scopes (id, parent_id, name, type_tag, sequence, depth)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare scopes: %w", err)
	}
	defer func() { _ = stmtScope.Close() }()

	stmtProp, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO properties (scope_id, position, name, kind, value, ref_id)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare properties: %w", err)
	}
	defer func() { _ = stmtProp.Close() }()

	tw := &treeWriter{ctx: ctx, scope: stmtScope, prop: stmtProp}
	if err := tw.write(root, nil, "", 1); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	w.logger.Info("exported graph", "root", root.ID(), "scopes", tw.scopes, "properties", tw.props)
	return nil
}

// Close closes the database.
func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}

// DB exposes the underlying handle for read-back.
func (w *SQLiteWriter) DB() *sql.DB { return w.db }

type treeWriter struct {
	ctx    context.Context
	scope  *sql.Stmt
	prop   *sql.Stmt
	scopes int
	props  int
}

func (tw *treeWriter) write(s *graph.Scope, parentID *string, name string, depth int) error {
	if err := tw.ctx.Err(); err != nil {
		return err
	}
	if _, err := tw.scope.ExecContext(tw.ctx, s.ID(), parentID, name, s.TypeTag(), s.IsSequence(), depth); err != nil {
		return fmt.Errorf("insert scope %s: %w", s.ID(), err)
	}
	tw.scopes++

	id := s.ID()
	for pos, key := range s.Keys() {
		e, _ := s.Property(key)
		if e.IsScope() {
			ref, _ := e.AsScopeID()
			if _, err := tw.prop.ExecContext(tw.ctx, id, pos, key, ScopeKind, nil, ref); err != nil {
				return fmt.Errorf("insert property %s/%s: %w", id, key, err)
			}
			child, ok := s.Child(ref)
			if !ok {
				return fmt.Errorf("scope %s: %w: %s", id, graph.ErrDanglingReference, ref)
			}
			if err := tw.write(child, &id, key, depth+1); err != nil {
				return err
			}
		} else {
			v, _ := e.AsPrimitive()
			if _, err := tw.prop.ExecContext(tw.ctx, id, pos, key, v.Kind().String(), v.String(), nil); err != nil {
				return fmt.Errorf("insert property %s/%s: %w", id, key, err)
			}
		}
		tw.props++
	}
	return nil
}

// WriteFile exports root to a fresh database at dbPath. The database is
// built in a temp file next to dbPath and renamed over it, so a failed
// export leaves any previous file intact.
func WriteFile(ctx context.Context, dbPath string, root *graph.Scope, opts ...Option) error {
	tmp, err := os.CreateTemp(filepath.Dir(dbPath), ".sage-export-*.db")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}

	w, err := NewSQLiteWriter(tmpName, opts...)
	if err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := w.Write(ctx, root); err != nil {
		_ = w.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := w.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, dbPath); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp to %s: %w", dbPath, err)
	}
	return nil
}
