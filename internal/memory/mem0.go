package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kingabzpro/RegRadar/internal/config"
	"github.com/kingabzpro/RegRadar/internal/logging"
)

// Mem0Store implements Store against the Mem0 managed API.
type Mem0Store struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewMem0Store creates a store from the memory config section.
func NewMem0Store(cfg config.MemoryConfig) *Mem0Store {
	return &Mem0Store{
		apiKey:  cfg.Mem0APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.TimeoutDuration(),
		},
	}
}

// Configured reports whether an API key is present.
func (s *Mem0Store) Configured() bool {
	return s.apiKey != ""
}

type mem0Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mem0AddRequest struct {
	Messages []mem0Message     `json:"messages"`
	UserID   string            `json:"user_id"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type mem0SearchRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
	Limit  int    `json:"limit,omitempty"`
}

type mem0Record struct {
	ID        string `json:"id"`
	Memory    string `json:"memory"`
	CreatedAt string `json:"created_at"`
}

// Add persists content for a user.
func (s *Mem0Store) Add(ctx context.Context, userID, content string, metadata map[string]string) error {
	reqBody := mem0AddRequest{
		Messages: []mem0Message{{Role: "user", Content: content}},
		UserID:   userID,
		Metadata: metadata,
	}

	var ignored json.RawMessage
	if err := s.post(ctx, "/v1/memories/", reqBody, &ignored); err != nil {
		logging.MemoryWarn("[Mem0] Add failed for user=%s: %v", userID, err)
		return err
	}

	logging.Memory("[Mem0] Add: user=%s content_len=%d", userID, len(content))
	return nil
}

// Search returns up to limit relevant records for a user.
func (s *Mem0Store) Search(ctx context.Context, userID, query string, limit int) ([]Record, error) {
	reqBody := mem0SearchRequest{
		Query:  query,
		UserID: userID,
		Limit:  limit,
	}

	// The v1 endpoint returns either a bare array or {"results": [...]}.
	var raw json.RawMessage
	if err := s.post(ctx, "/v1/memories/search/", reqBody, &raw); err != nil {
		logging.MemoryWarn("[Mem0] Search failed for user=%s: %v", userID, err)
		return nil, err
	}

	var items []mem0Record
	if err := json.Unmarshal(raw, &items); err != nil {
		var wrapped struct {
			Results []mem0Record `json:"results"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		items = wrapped.Results
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	records := make([]Record, 0, len(items))
	for _, it := range items {
		rec := Record{ID: it.ID, Memory: it.Memory}
		if ts, err := time.Parse(time.RFC3339, it.CreatedAt); err == nil {
			rec.CreatedAt = ts
		}
		records = append(records, rec)
	}

	logging.Memory("[Mem0] Search: user=%s results=%d", userID, len(records))
	return records, nil
}

// Close is a no-op for the HTTP backend.
func (s *Mem0Store) Close() error {
	return nil
}

func (s *Mem0Store) post(ctx context.Context, path string, reqBody interface{}, out *json.RawMessage) error {
	if s.apiKey == "" {
		return fmt.Errorf("API key not configured")
	}

	// Auto-apply timeout if context has no deadline (centralized timeout handling)
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.httpClient.Timeout)
		defer cancel()
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	*out = json.RawMessage(body)
	return nil
}
