package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kingabzpro/RegRadar/internal/logging"

	_ "modernc.org/sqlite"
)

// LocalStore implements Store on a local SQLite database. It is the
// keyless fallback: relevance ranking is keyword overlap between the
// query and stored content, recency breaking ties.
type LocalStore struct {
	db *sql.DB
}

// NewLocalStore opens (creating if needed) the database at path.
func NewLocalStore(path string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		content TEXT NOT NULL,
		metadata TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_memories_user ON memories(user_id, created_at DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Memory("[Local] Store opened: %s", path)
	return &LocalStore{db: db}, nil
}

// Add persists content for a user.
func (s *LocalStore) Add(ctx context.Context, userID, content string, metadata map[string]string) error {
	var meta sql.NullString
	if len(metadata) > 0 {
		data, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		meta = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memories (user_id, content, metadata) VALUES (?, ?, ?)`,
		userID, content, meta)
	if err != nil {
		logging.MemoryWarn("[Local] Add failed for user=%s: %v", userID, err)
		return fmt.Errorf("failed to insert memory: %w", err)
	}
	return nil
}

// Search returns up to limit records ranked by keyword overlap with
// the query. Rows with no overlapping token score zero and are dropped.
func (s *LocalStore) Search(ctx context.Context, userID, query string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 3
	}

	// Recent window only; scoring happens in memory.
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, created_at FROM memories
		 WHERE user_id = ? ORDER BY created_at DESC LIMIT 200`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query memories: %w", err)
	}
	defer rows.Close()

	queryTokens := tokenize(query)

	type scored struct {
		rec   Record
		score int
	}
	var candidates []scored

	for rows.Next() {
		var id int64
		var content, createdRaw string
		if err := rows.Scan(&id, &content, &createdRaw); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		createdAt := parseSQLiteTime(createdRaw)

		score := overlap(queryTokens, tokenize(content))
		if score == 0 {
			continue
		}
		candidates = append(candidates, scored{
			rec:   Record{ID: strconv.FormatInt(id, 10), Memory: content, CreatedAt: createdAt},
			score: score,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].rec.CreatedAt.After(candidates[j].rec.CreatedAt)
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	records := make([]Record, 0, len(candidates))
	for _, c := range candidates {
		records = append(records, c.rec)
	}

	logging.Memory("[Local] Search: user=%s results=%d", userID, len(records))
	return records, nil
}

// Close closes the database.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

// parseSQLiteTime handles the formats SQLite emits for CURRENT_TIMESTAMP.
func parseSQLiteTime(raw string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, time.RFC3339Nano} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// tokenize lowercases and splits text into word tokens, dropping
// short stopword-like fragments.
func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if len(word) < 3 {
			continue
		}
		tokens[word] = struct{}{}
	}
	return tokens
}

func overlap(a, b map[string]struct{}) int {
	count := 0
	for t := range a {
		if _, ok := b[t]; ok {
			count++
		}
	}
	return count
}
