package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/kingabzpro/RegRadar/internal/config"
)

func newMem0TestStore(serverURL string) *Mem0Store {
	return NewMem0Store(config.MemoryConfig{
		Mem0APIKey: "m0-test",
		BaseURL:    serverURL,
		Timeout:    "5s",
	})
}

func TestMem0Add(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/memories/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Token m0-test" {
			t.Errorf("Authorization = %q", got)
		}
		var req mem0AddRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.UserID != "user-a1b2" {
			t.Errorf("user_id = %q", req.UserID)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("messages = %+v", req.Messages)
		}
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer server.Close()

	store := newMem0TestStore(server.URL)
	err := store.Add(context.Background(), "user-a1b2", "Asked about fintech US: KYC", map[string]string{"industry": "fintech"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
}

func TestMem0Search_BareArray(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/memories/search/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `[
			{"id":"1","memory":"Asked about fintech US: KYC","created_at":"2025-01-02T10:00:00Z"},
			{"id":"2","memory":"Asked about healthcare EU: GDPR","created_at":"2025-01-01T10:00:00Z"}
		]`)
	}))
	defer server.Close()

	store := newMem0TestStore(server.URL)
	records, err := store.Search(context.Background(), "user-a1b2", "fintech updates", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records", len(records))
	}
	if records[0].Memory != "Asked about fintech US: KYC" {
		t.Errorf("records[0] = %+v", records[0])
	}
	if records[0].CreatedAt.IsZero() {
		t.Error("created_at not parsed")
	}
}

func TestMem0Search_WrappedResults(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"id":"9","memory":"Asked about banking Global"}]}`)
	}))
	defer server.Close()

	store := newMem0TestStore(server.URL)
	records, err := store.Search(context.Background(), "u", "banking", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 1 || records[0].Memory != "Asked about banking Global" {
		t.Errorf("records = %+v", records)
	}
}

func TestMem0Search_LimitEnforced(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"id":"1","memory":"a"},{"id":"2","memory":"b"},
			{"id":"3","memory":"c"},{"id":"4","memory":"d"}
		]`)
	}))
	defer server.Close()

	store := newMem0TestStore(server.URL)
	records, err := store.Search(context.Background(), "u", "q", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want capped at 3", len(records))
	}
}

func TestMem0_MissingAPIKey(t *testing.T) {
	t.Parallel()

	store := NewMem0Store(config.MemoryConfig{BaseURL: "http://localhost:0", Timeout: "1s"})
	if store.Configured() {
		t.Error("Configured() should be false")
	}
	if err := store.Add(context.Background(), "u", "c", nil); err == nil {
		t.Fatal("expected error without API key")
	}
}

func newLocalTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(filepath.Join(t.TempDir(), "memory.db"))
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLocalStore_AddAndSearch(t *testing.T) {
	t.Parallel()

	store := newLocalTestStore(t)
	ctx := context.Background()

	entries := []string{
		"Asked about fintech regulations in US: KYC, AML",
		"Asked about healthcare regulations in EU: clinical trials",
		"Asked about fintech regulations in EU: MiCA licensing",
	}
	for _, e := range entries {
		if err := store.Add(ctx, "user-1", e, nil); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	records, err := store.Search(ctx, "user-1", "fintech compliance updates", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want the 2 fintech entries", len(records))
	}
	for _, r := range records {
		if r.Memory == entries[1] {
			t.Errorf("healthcare entry should not match fintech query")
		}
	}
}

func TestLocalStore_SearchIsolatedByUser(t *testing.T) {
	t.Parallel()

	store := newLocalTestStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, "user-a", "Asked about banking rules", nil); err != nil {
		t.Fatalf("Add: %v", err)
	}

	records, err := store.Search(ctx, "user-b", "banking rules", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("user-b should see no records, got %d", len(records))
	}
}

func TestLocalStore_NoOverlapNoResults(t *testing.T) {
	t.Parallel()

	store := newLocalTestStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, "u", "Asked about pharmaceutical trials", nil); err != nil {
		t.Fatalf("Add: %v", err)
	}

	records, err := store.Search(ctx, "u", "cryptocurrency exchanges", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no matches, got %+v", records)
	}
}

func TestLocalStore_LimitApplied(t *testing.T) {
	t.Parallel()

	store := newLocalTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Add(ctx, "u", fmt.Sprintf("banking update number %d", i), nil); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	records, err := store.Search(ctx, "u", "banking update", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	tokens := tokenize("Fintech, KYC & AML requirements in US!")
	for _, want := range []string{"fintech", "kyc", "aml", "requirements"} {
		if _, ok := tokens[want]; !ok {
			t.Errorf("missing token %q in %v", want, tokens)
		}
	}
	if _, ok := tokens["in"]; ok {
		t.Error("short tokens should be dropped")
	}
}
