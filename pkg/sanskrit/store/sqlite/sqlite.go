package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/sanskrit/pkg/sanskrit/internalerr"
	"github.com/cognicore/sanskrit/pkg/sanskrit/rules"
	"github.com/cognicore/sanskrit/pkg/sanskrit/store"
	"github.com/cognicore/sanskrit/pkg/sanskrit/tagger"
)

// timeLayout is fixed-width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}
	// One writer at a time; SQLite would otherwise report SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS analyses (
	id TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	confidence REAL NOT NULL,
	created_at TEXT NOT NULL,
	result_json TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS analyses_created_at ON analyses(created_at);

CREATE TABLE IF NOT EXISTS analysis_tokens (
	analysis_id TEXT NOT NULL,
	token TEXT NOT NULL,
	UNIQUE(analysis_id, token),
	FOREIGN KEY(analysis_id) REFERENCES analyses(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS analysis_tokens_token ON analysis_tokens(token);

CREATE TABLE IF NOT EXISTS tagger_tags (
	position INTEGER PRIMARY KEY,
	tag TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tagger_known_words (
	word TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS tagger_emission (
	word TEXT NOT NULL,
	tag TEXT NOT NULL,
	score REAL NOT NULL,
	PRIMARY KEY(word, tag)
);

CREATE TABLE IF NOT EXISTS tagger_transition (
	prev TEXT NOT NULL,
	tag TEXT NOT NULL,
	score REAL NOT NULL,
	PRIMARY KEY(prev, tag)
);

CREATE TABLE IF NOT EXISTS tagger_features (
	feature TEXT NOT NULL,
	tag TEXT NOT NULL,
	score REAL NOT NULL,
	PRIMARY KEY(feature, tag)
);

CREATE TABLE IF NOT EXISTS splits (
	combined TEXT PRIMARY KEY,
	parts TEXT NOT NULL
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveAnalysis inserts or replaces an analysis and its token index
func (s *sqliteStore) SaveAnalysis(ctx context.Context, a store.Analysis) error {
	if a.ID == "" {
		return internalerr.ErrInvalidInput
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(a.Result)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO analyses (id, text, confidence, created_at, result_json)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	text=excluded.text,
	confidence=excluded.confidence,
	created_at=excluded.created_at,
	result_json=excluded.result_json;
`
	_, err = tx.ExecContext(ctx, stmt,
		a.ID,
		a.Result.Text,
		a.Result.Confidence,
		a.CreatedAt.UTC().Format(timeLayout),
		string(payload),
	)
	if err != nil {
		return err
	}

	if err := replaceAnalysisTokens(ctx, tx, a.ID, store.IndexTokens(a.Result)); err != nil {
		return err
	}

	return tx.Commit()
}

func replaceAnalysisTokens(ctx context.Context, tx *sql.Tx, id string, tokens []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM analysis_tokens WHERE analysis_id=?`, id); err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO analysis_tokens (analysis_id, token) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, tok := range tokens {
		if _, err := stmt.ExecContext(ctx, id, tok); err != nil {
			return err
		}
	}
	return nil
}

// GetAnalysis retrieves an analysis by ID
func (s *sqliteStore) GetAnalysis(ctx context.Context, id string) (store.Analysis, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, created_at, result_json FROM analyses WHERE id = ?`, id)
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Analysis{}, internalerr.ErrNotFound
	}
	return a, err
}

// RecentAnalyses returns the newest analyses first
func (s *sqliteStore) RecentAnalyses(ctx context.Context, limit int) ([]store.Analysis, error) {
	if limit <= 0 {
		limit = store.DefaultLimit
	}
	return s.queryAnalyses(ctx, `
SELECT id, created_at, result_json
FROM analyses
ORDER BY created_at DESC, id DESC
LIMIT ?;
`, limit)
}

// AnalysesByToken returns the newest analyses containing token
func (s *sqliteStore) AnalysesByToken(ctx context.Context, token string, limit int) ([]store.Analysis, error) {
	if limit <= 0 {
		limit = store.DefaultLimit
	}
	return s.queryAnalyses(ctx, `
SELECT a.id, a.created_at, a.result_json
FROM analyses a
JOIN analysis_tokens t ON a.id = t.analysis_id
WHERE t.token = ?
ORDER BY a.created_at DESC, a.id DESC
LIMIT ?;
`, token, limit)
}

func (s *sqliteStore) queryAnalyses(ctx context.Context, query string, args ...interface{}) ([]store.Analysis, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAnalysis(row scanner) (store.Analysis, error) {
	var (
		a       store.Analysis
		created string
		payload string
	)
	if err := row.Scan(&a.ID, &created, &payload); err != nil {
		return store.Analysis{}, err
	}
	if parsed, err := time.Parse(timeLayout, created); err == nil {
		a.CreatedAt = parsed
	}
	if err := json.Unmarshal([]byte(payload), &a.Result); err != nil {
		return store.Analysis{}, fmt.Errorf("decode analysis %s: %w", a.ID, err)
	}
	return a, nil
}

// SaveTables replaces the stored score tables in a single transaction
func (s *sqliteStore) SaveTables(ctx context.Context, t *tagger.Tables) error {
	if t == nil {
		return internalerr.ErrInvalidInput
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"tagger_tags", "tagger_known_words", "tagger_emission", "tagger_transition", "tagger_features"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	for i, tag := range t.Tags {
		if _, err := tx.ExecContext(ctx, `INSERT INTO tagger_tags (position, tag) VALUES (?, ?)`, i, string(tag)); err != nil {
			return err
		}
	}
	for word := range t.KnownWords {
		if _, err := tx.ExecContext(ctx, `INSERT INTO tagger_known_words (word) VALUES (?)`, word); err != nil {
			return err
		}
	}
	if err := insertScores(ctx, tx, `INSERT INTO tagger_emission (word, tag, score) VALUES (?, ?, ?)`, t.Emission); err != nil {
		return err
	}
	transition := make(map[string]map[tagger.Tag]float64, len(t.Transition))
	for prev, scores := range t.Transition {
		transition[string(prev)] = scores
	}
	if err := insertScores(ctx, tx, `INSERT INTO tagger_transition (prev, tag, score) VALUES (?, ?, ?)`, transition); err != nil {
		return err
	}
	features := make(map[string]map[tagger.Tag]float64, len(t.Features))
	for key, scores := range t.Features {
		features[key.String()] = scores
	}
	if err := insertScores(ctx, tx, `INSERT INTO tagger_features (feature, tag, score) VALUES (?, ?, ?)`, features); err != nil {
		return err
	}

	return tx.Commit()
}

func insertScores(ctx context.Context, tx *sql.Tx, query string, scores map[string]map[tagger.Tag]float64) error {
	if len(scores) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for key, byTag := range scores {
		for tag, score := range byTag {
			if _, err := stmt.ExecContext(ctx, key, string(tag), score); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadTables rebuilds the stored score tables
func (s *sqliteStore) LoadTables(ctx context.Context) (*tagger.Tables, error) {
	t := tagger.NewTables()

	tags, err := s.loadStringColumn(ctx, `SELECT tag FROM tagger_tags ORDER BY position`)
	if err != nil {
		return nil, err
	}
	for _, tag := range tags {
		t.Tags = append(t.Tags, tagger.Tag(tag))
	}

	words, err := s.loadStringColumn(ctx, `SELECT word FROM tagger_known_words`)
	if err != nil {
		return nil, err
	}
	for _, w := range words {
		t.AddKnownWord(w)
	}

	found := len(tags) > 0 || len(words) > 0
	err = s.loadScores(ctx, `SELECT word, tag, score FROM tagger_emission`, func(key string, tag tagger.Tag, score float64) error {
		found = true
		t.SetEmission(key, tag, score)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = s.loadScores(ctx, `SELECT prev, tag, score FROM tagger_transition`, func(key string, tag tagger.Tag, score float64) error {
		found = true
		t.SetTransition(tagger.Tag(key), tag, score)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = s.loadScores(ctx, `SELECT feature, tag, score FROM tagger_features`, func(key string, tag tagger.Tag, score float64) error {
		found = true
		fk, err := tagger.ParseFeatureKey(key)
		if err != nil {
			return err
		}
		t.SetFeature(fk, tag, score)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, internalerr.ErrNotFound
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *sqliteStore) loadScores(ctx context.Context, query string, fn func(key string, tag tagger.Tag, score float64) error) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			key, tag string
			score    float64
		)
		if err := rows.Scan(&key, &tag, &score); err != nil {
			return err
		}
		if err := fn(key, tagger.Tag(tag), score); err != nil {
			return err
		}
	}
	return rows.Err()
}

// UpsertSplits adds or replaces split pairs
func (s *sqliteStore) UpsertSplits(ctx context.Context, pairs []rules.SplitPair) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO splits (combined, parts) VALUES (?, ?)
ON CONFLICT(combined) DO UPDATE SET parts=excluded.parts;
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range pairs {
		if p.Combined == "" || len(p.Parts) == 0 {
			continue
		}
		if _, err := stmt.ExecContext(ctx, p.Combined, strings.Join(p.Parts, " + ")); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Splits returns every stored pair ordered by combined form
func (s *sqliteStore) Splits(ctx context.Context) ([]rules.SplitPair, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT combined, parts FROM splits ORDER BY combined`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rules.SplitPair
	for rows.Next() {
		var combined, parts string
		if err := rows.Scan(&combined, &parts); err != nil {
			return nil, err
		}
		out = append(out, rules.SplitPair{Combined: combined, Parts: strings.Split(parts, " + ")})
	}
	return out, rows.Err()
}

func (s *sqliteStore) loadStringColumn(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var val string
		if err := rows.Scan(&val); err != nil {
			return nil, err
		}
		result = append(result, val)
	}
	return result, rows.Err()
}
