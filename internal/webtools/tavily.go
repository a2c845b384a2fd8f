package webtools

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

// TavilyClient implements Crawler and Searcher against the Tavily API.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewTavilyClient creates a client from the webtools config section.
func NewTavilyClient(cfg config.WebToolsConfig) *TavilyClient {
	return &TavilyClient{
		apiKey:  cfg.TavilyAPIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.TimeoutDuration(),
		},
	}
}

// Configured reports whether an API key is present.
func (c *TavilyClient) Configured() bool {
	return c.apiKey != ""
}

type tavilyCrawlRequest struct {
	URL          string `json:"url"`
	Instructions string `json:"instructions,omitempty"`
	MaxDepth     int    `json:"max_depth,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

type tavilyCrawlResponse struct {
	Results []struct {
		URL        string `json:"url"`
		Title      string `json:"title"`
		RawContent string `json:"raw_content"`
	} `json:"results"`
}

type tavilySearchRequest struct {
	Query             string `json:"query"`
	MaxResults        int    `json:"max_results,omitempty"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type tavilySearchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Crawl fetches pages from a seed URL guided by natural-language instructions.
func (c *TavilyClient) Crawl(ctx context.Context, seedURL string, opts CrawlOptions) ([]Page, error) {
	startTime := time.Now()
	logging.WebToolsDebug("[Tavily] Crawl: url=%s depth=%d limit=%d", seedURL, opts.MaxDepth, opts.Limit)

	reqBody := tavilyCrawlRequest{
		URL:          seedURL,
		Instructions: opts.Instructions,
		MaxDepth:     opts.MaxDepth,
		Limit:        opts.Limit,
	}

	var parsed tavilyCrawlResponse
	if err := c.post(ctx, "/crawl", reqBody, &parsed); err != nil {
		logging.WebToolsWarn("[Tavily] Crawl failed for %s: %v", seedURL, err)
		return nil, err
	}

	pages := make([]Page, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.URL == "" {
			continue
		}
		pages = append(pages, Page{
			URL:     r.URL,
			Title:   r.Title,
			Content: r.RawContent,
		})
	}

	logging.WebTools("[Tavily] Crawl completed: %s pages=%d in %v", seedURL, len(pages), time.Since(startTime))
	return pages, nil
}

// Search runs a Tavily web search.
func (c *TavilyClient) Search(ctx context.Context, query string, opts SearchOptions) ([]Page, error) {
	startTime := time.Now()
	logging.WebToolsDebug("[Tavily] Search: query=%q max_results=%d", query, opts.MaxResults)

	reqBody := tavilySearchRequest{
		Query:             query,
		MaxResults:        opts.MaxResults,
		IncludeRawContent: true,
	}

	var parsed tavilySearchResponse
	if err := c.post(ctx, "/search", reqBody, &parsed); err != nil {
		logging.WebToolsWarn("[Tavily] Search failed for %q: %v", query, err)
		return nil, err
	}

	pages := make([]Page, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.URL == "" {
			continue
		}
		pages = append(pages, Page{
			URL:     r.URL,
			Title:   r.Title,
			Content: r.Content,
		})
	}

	logging.WebTools("[Tavily] Search completed: %q results=%d in %v", query, len(pages), time.Since(startTime))
	return pages, nil
}

func (c *TavilyClient) post(ctx context.Context, path string, reqBody, out interface{}) error {
	if c.apiKey == "" {
		return fmt.Errorf("API key not configured")
	}

	// Auto-apply timeout if context has no deadline (centralized timeout handling)
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20)) // 8MB limit
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
