package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

// Store persists translations in SQLite so repeat runs against the same
// content skip the translation service entirely. Entries are keyed by
// content fingerprint, target language, provider and model; a different
// model legitimately produces a different translation.
type Store struct {
	db *sql.DB
	sq sq.StatementBuilderType
}

const storeSchema = `CREATE TABLE IF NOT EXISTS translations (
	fingerprint TEXT NOT NULL,
	lang        TEXT NOT NULL,
	provider    TEXT NOT NULL,
	model       TEXT NOT NULL,
	translation TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	PRIMARY KEY (fingerprint, lang, provider, model)
)`

// OpenStore opens (creating if needed) the translation store at dbPath.
func OpenStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("make store dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(storeSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create translations table: %w", err)
	}

	return &Store{db: db, sq: sq.StatementBuilder}, nil
}

// Get returns the stored translation for content in lang, if any.
func (s *Store) Get(ctx context.Context, content, lang, provider, model string) (string, bool, error) {
	q := s.sq.Select("translation").
		From("translations").
		Where(sq.Eq{
			"fingerprint": Fingerprint(content),
			"lang":        lang,
			"provider":    provider,
			"model":       model,
		}).
		Limit(1)
	sqlStr, args, _ := q.ToSql()

	var translation string
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&translation); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}
	return translation, true, nil
}

// Put stores a translation, replacing any previous value for the same key.
func (s *Store) Put(ctx context.Context, content, lang, provider, model, translation string) error {
	q := s.sq.Insert("translations").
		Columns("fingerprint", "lang", "provider", "model", "translation", "created_at").
		Values(Fingerprint(content), lang, provider, model, translation, time.Now().UTC().Format(time.RFC3339)).
		Suffix("ON CONFLICT(fingerprint, lang, provider, model) DO UPDATE SET translation=excluded.translation, created_at=excluded.created_at")
	sqlStr, args, _ := q.ToSql()

	_, err := s.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// Purge deletes every stored translation.
func (s *Store) Purge(ctx context.Context) error {
	sqlStr, args, _ := s.sq.Delete("translations").ToSql()
	_, err := s.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
