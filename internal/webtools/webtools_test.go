package webtools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kingabzpro/RegRadar/internal/config"
)

func newTavilyTestClient(serverURL string) *TavilyClient {
	return NewTavilyClient(config.WebToolsConfig{
		TavilyAPIKey: "tvly-test",
		BaseURL:      serverURL,
		Timeout:      "10s",
	})
}

func TestTavilyCrawl(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/crawl" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tvly-test" {
			t.Errorf("Authorization = %q", got)
		}

		var req tavilyCrawlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.MaxDepth != 2 || req.Limit != 5 {
			t.Errorf("bounds = depth %d limit %d", req.MaxDepth, req.Limit)
		}

		fmt.Fprint(w, `{"results":[
			{"url":"https://www.sec.gov/a","title":"SEC Charges Acme Corp","raw_content":"Press release A"},
			{"url":"","raw_content":"dropped, no url"},
			{"url":"https://www.sec.gov/b","raw_content":"Press release B"}
		]}`)
	}))
	defer server.Close()

	client := newTavilyTestClient(server.URL)
	pages, err := client.Crawl(context.Background(), "https://www.sec.gov/news/pressreleases", CrawlOptions{
		Instructions: "Recent fintech US regulatory updates",
		MaxDepth:     2,
		Limit:        5,
	})
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2 (empty-url result dropped)", len(pages))
	}
	if pages[0].URL != "https://www.sec.gov/a" || pages[0].Content != "Press release A" {
		t.Errorf("page[0] = %+v", pages[0])
	}
	if pages[0].Title != "SEC Charges Acme Corp" {
		t.Errorf("page[0] title = %q, want SEC Charges Acme Corp", pages[0].Title)
	}
	if pages[1].Title != "" {
		t.Errorf("page[1] title = %q, want empty for a titleless result", pages[1].Title)
	}
}

func TestTavilySearch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req tavilySearchRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.MaxResults != 5 {
			t.Errorf("max_results = %d", req.MaxResults)
		}
		if !req.IncludeRawContent {
			t.Error("search request must ask for raw content")
		}
		fmt.Fprint(w, `{"results":[
			{"title":"New MiCA guidance","url":"https://example.eu/mica","content":"ESMA published..."}
		]}`)
	}))
	defer server.Close()

	client := newTavilyTestClient(server.URL)
	pages, err := client.Search(context.Background(), "fintech EU regulatory updates", SearchOptions{MaxResults: 5})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(pages) != 1 || pages[0].Title != "New MiCA guidance" {
		t.Errorf("pages = %+v", pages)
	}
}

func TestTavily_MissingAPIKey(t *testing.T) {
	t.Parallel()

	client := NewTavilyClient(config.WebToolsConfig{BaseURL: "http://localhost:0", Timeout: "1s"})
	if client.Configured() {
		t.Error("Configured() should be false without a key")
	}
	if _, err := client.Search(context.Background(), "q", SearchOptions{}); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestTavily_ErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail":"invalid api key"}`)
	}))
	defer server.Close()

	client := newTavilyTestClient(server.URL)
	if _, err := client.Crawl(context.Background(), "https://example.com", CrawlOptions{}); err == nil {
		t.Fatal("expected error for 401")
	}
}

const duckHTML = `
<html><body>
<div class="result results_links results_links_deep web-result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.sec.gov%2Fnews%2Fpress&amp;rut=abc">SEC announces new rule</a>
  <a class="result__snippet" href="#">The Securities and Exchange Commission today announced...</a>
</div>
<div class="result results_links results_links_deep web-result">
  <a class="result__a" href="https://www.ftc.gov/news">FTC enforcement update</a>
  <a class="result__snippet" href="#">The FTC filed a complaint against...</a>
</div>
</body></html>`

func TestParseDuckDuckGoResults(t *testing.T) {
	t.Parallel()

	results, err := parseDuckDuckGoResults(duckHTML, 10)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].URL != "https://www.sec.gov/news/press" {
		t.Errorf("redirect URL not decoded: %q", results[0].URL)
	}
	if results[0].Title != "SEC announces new rule" {
		t.Errorf("title = %q", results[0].Title)
	}
	if results[1].URL != "https://www.ftc.gov/news" {
		t.Errorf("url = %q", results[1].URL)
	}
}

func TestParseDuckDuckGoResults_MaxResults(t *testing.T) {
	t.Parallel()

	results, err := parseDuckDuckGoResults(duckHTML, 1)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestFallbackCrawl_SingleFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>FDA Newsroom</title><script>ignored()</script></head>
			<body><h1>Press Announcements</h1><p>FDA approves new device.</p></body></html>`)
	}))
	defer server.Close()

	client := NewFallbackClient(server.Client())
	pages, err := client.Crawl(context.Background(), server.URL, CrawlOptions{MaxDepth: 2, Limit: 5})
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	if pages[0].Title != "FDA Newsroom" {
		t.Errorf("title = %q", pages[0].Title)
	}
	if !strings.Contains(pages[0].Content, "FDA approves new device.") {
		t.Errorf("content missing body text: %q", pages[0].Content)
	}
	if strings.Contains(pages[0].Content, "ignored()") {
		t.Error("script content should be stripped")
	}
}

func TestHTMLToText_CollapsesWhitespace(t *testing.T) {
	t.Parallel()

	_, text, err := htmlToText("<html><body><p>a</p><p></p><p></p><p>b   c</p></body></html>")
	if err != nil {
		t.Fatalf("htmlToText: %v", err)
	}
	if strings.Contains(text, "\n\n\n") {
		t.Errorf("excessive newlines survived: %q", text)
	}
	if strings.Contains(text, "  ") {
		t.Errorf("double spaces survived: %q", text)
	}
}

