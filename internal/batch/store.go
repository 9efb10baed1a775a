package batch

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MimeLyc/movie-sub-pipeline/internal/chunker"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Store persists per-chunk translation state in SQLite. It is the single
// source of truth for resumability: every mutation is committed before the
// call returns.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the batch state database and applies
// pending migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db, path: path}
	if err := store.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version := migrationVersion(entry.Name())
		if version <= 0 {
			continue
		}
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if exists > 0 {
			continue
		}
		content, err := migrationFiles.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// migrationVersion extracts the leading integer from a migration filename (e.g. "001_init.sql" → 1).
func migrationVersion(name string) int {
	for i, c := range name {
		if c < '0' || c > '9' {
			if i == 0 {
				return 0
			}
			n, _ := strconv.Atoi(name[:i])
			return n
		}
	}
	n, _ := strconv.Atoi(name)
	return n
}

// Initialize creates pending entries for chunk ids not already present.
// Existing rows keep their status and result untouched, which is what makes
// a re-run resume instead of restart. A chunk whose recorded cue range
// disagrees with the freshly computed one is an error: chunk boundaries must
// stay fixed for the lifetime of a project.
func (s *Store) Initialize(ctx context.Context, chunks []chunker.Chunk) error {
	now := time.Now().UTC()

	for _, chunk := range chunks {
		var startIndex, endIndex int
		err := s.db.QueryRowContext(
			ctx,
			`SELECT start_index, end_index FROM chunks WHERE chunk_id = ?`,
			chunk.ID,
		).Scan(&startIndex, &endIndex)
		switch {
		case err == sql.ErrNoRows:
			if _, err := s.db.ExecContext(
				ctx,
				`INSERT INTO chunks (chunk_id, start_index, end_index, status, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				chunk.ID,
				chunk.StartIndex,
				chunk.EndIndex,
				StatusPending,
				now,
				now,
			); err != nil {
				return fmt.Errorf("insert chunk %d: %w", chunk.ID, err)
			}
		case err != nil:
			return fmt.Errorf("check chunk %d: %w", chunk.ID, err)
		default:
			if startIndex != chunk.StartIndex || endIndex != chunk.EndIndex {
				return fmt.Errorf(
					"chunk %d cue range changed from %d-%d to %d-%d; chunk configuration must not change mid-project",
					chunk.ID, startIndex, endIndex, chunk.StartIndex, chunk.EndIndex,
				)
			}
		}
	}
	return nil
}

// MarkSent records that the chunk's request was dispatched.
func (s *Store) MarkSent(ctx context.Context, chunkID int) error {
	return s.transition(ctx, chunkID,
		`UPDATE chunks SET status = ?, updated_at = ? WHERE chunk_id = ?`,
		StatusSent, time.Now().UTC(), chunkID)
}

// MarkCompleted records the validated translation result for the chunk.
func (s *Store) MarkCompleted(ctx context.Context, chunkID int, result map[int]string) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result for chunk %d: %w", chunkID, err)
	}
	return s.transition(ctx, chunkID,
		`UPDATE chunks SET status = ?, result_json = ?, error = '', updated_at = ? WHERE chunk_id = ?`,
		StatusCompleted, string(payload), time.Now().UTC(), chunkID)
}

// MarkFailed records a per-chunk failure with its diagnostic reason.
// A previous result, if any, is cleared: a failed retry must not leave a
// stale completed payload behind.
func (s *Store) MarkFailed(ctx context.Context, chunkID int, reason string) error {
	return s.transition(ctx, chunkID,
		`UPDATE chunks SET status = ?, result_json = NULL, error = ?, updated_at = ? WHERE chunk_id = ?`,
		StatusFailed, reason, time.Now().UTC(), chunkID)
}

func (s *Store) transition(ctx context.Context, chunkID int, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update chunk %d: %w", chunkID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update chunk %d: %w", chunkID, err)
	}
	if affected == 0 {
		return fmt.Errorf("chunk %d is not tracked in the batch state", chunkID)
	}
	return nil
}

// Pending returns, in chunk id order, every chunk whose status is not
// completed. Chunks stuck at "sent" count as pending work.
func (s *Store) Pending(ctx context.Context) ([]ChunkState, error) {
	return s.query(ctx,
		`SELECT chunk_id, start_index, end_index, status, result_json, error, updated_at
		 FROM chunks
		 WHERE status != ?
		 ORDER BY chunk_id ASC`,
		StatusCompleted)
}

// All returns every tracked chunk in chunk id order.
func (s *Store) All(ctx context.Context) ([]ChunkState, error) {
	return s.query(ctx,
		`SELECT chunk_id, start_index, end_index, status, result_json, error, updated_at
		 FROM chunks
		 ORDER BY chunk_id ASC`)
}

// Get returns a single chunk's state.
func (s *Store) Get(ctx context.Context, chunkID int) (ChunkState, bool, error) {
	states, err := s.query(ctx,
		`SELECT chunk_id, start_index, end_index, status, result_json, error, updated_at
		 FROM chunks
		 WHERE chunk_id = ?`,
		chunkID)
	if err != nil {
		return ChunkState{}, false, err
	}
	if len(states) == 0 {
		return ChunkState{}, false, nil
	}
	return states[0], true, nil
}

// Summarize counts chunks per status.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	states, err := s.All(ctx)
	if err != nil {
		return Summary{}, err
	}

	ret := Summary{Total: len(states)}
	for _, state := range states {
		switch state.Status {
		case StatusPending:
			ret.Pending++
		case StatusSent:
			ret.Sent++
		case StatusCompleted:
			ret.Completed++
		case StatusFailed:
			ret.Failed++
		}
	}
	return ret, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]ChunkState, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]ChunkState, 0)
	for rows.Next() {
		var item ChunkState
		var status string
		var resultJSON sql.NullString
		if err := rows.Scan(
			&item.ChunkID,
			&item.StartIndex,
			&item.EndIndex,
			&status,
			&resultJSON,
			&item.Error,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		item.Status = Status(status)
		if resultJSON.Valid && resultJSON.String != "" {
			if err := json.Unmarshal([]byte(resultJSON.String), &item.Result); err != nil {
				return nil, fmt.Errorf("decode result for chunk %d: %w", item.ChunkID, err)
			}
		}
		ret = append(ret, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}
