// Package webtools provides the crawl and search clients used by
// retrieval. The primary provider is Tavily; a keyless HTML-scraping
// fallback covers environments without an API key.
package webtools

import "context"

// Page is a single retrieved document, either crawled or searched.
type Page struct {
	URL     string
	Title   string
	Content string
}

// CrawlOptions bounds a site crawl.
type CrawlOptions struct {
	// Instructions is a natural-language description of what to look for.
	Instructions string
	// MaxDepth limits link-following from the seed URL.
	MaxDepth int
	// Limit caps the number of pages returned.
	Limit int
}

// SearchOptions bounds a web search.
type SearchOptions struct {
	// MaxResults caps the number of results returned.
	MaxResults int
}

// Crawler retrieves pages starting from a seed URL.
type Crawler interface {
	Crawl(ctx context.Context, seedURL string, opts CrawlOptions) ([]Page, error)
}

// Searcher runs a web search.
type Searcher interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]Page, error)
}
