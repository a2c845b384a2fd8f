package agent

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/kingabzpro/RegRadar/internal/catalog"
	"github.com/kingabzpro/RegRadar/internal/logging"
	"github.com/kingabzpro/RegRadar/internal/webtools"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// maxCatalogSources caps how many catalog entries one fan-out crawls.
const maxCatalogSources = 3

// webSearchLabel tags results from the general search.
const webSearchLabel = "Web Search"

// RetrievalOptions bounds the retrieval fan-out.
type RetrievalOptions struct {
	MaxDepth     int
	CrawlLimit   int
	SearchLimit  int
	ExcerptLimit int
}

// DefaultRetrievalOptions matches the production bounds.
func DefaultRetrievalOptions() RetrievalOptions {
	return RetrievalOptions{
		MaxDepth:     2,
		CrawlLimit:   5,
		SearchLimit:  5,
		ExcerptLimit: 1500,
	}
}

// retriever owns the fingerprint→aggregate cache and runs the crawl and
// search fan-out on a miss. The cache is read-many/write-once per
// fingerprint for the life of the process; singleflight keeps concurrent
// misses for the same fingerprint down to one network fan-out.
type retriever struct {
	crawler  webtools.Crawler
	searcher webtools.Searcher
	opts     RetrievalOptions

	mu    sync.RWMutex
	cache map[string]*CrawlResults
	group singleflight.Group
}

func newRetriever(crawler webtools.Crawler, searcher webtools.Searcher, opts RetrievalOptions) *retriever {
	if opts.ExcerptLimit <= 0 {
		opts = DefaultRetrievalOptions()
	}
	return &retriever{
		crawler:  crawler,
		searcher: searcher,
		opts:     opts,
		cache:    make(map[string]*CrawlResults),
	}
}

// Fingerprint returns the cache key for a query: a digest of the
// lowercased industry:region:keywords tuple. Equal tuples (ignoring
// case) always collide; changing any one field changes the key.
func Fingerprint(q Query) string {
	key := strings.ToLower(fmt.Sprintf("%s:%s:%s", q.Industry, q.Region, q.Keywords))
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Retrieve returns the cached aggregate for the query's fingerprint, or
// fills the cache with one fan-out. Individual source failures are
// logged and contribute zero results; the only returned error is
// context cancellation, and a cancelled fill is never stored.
func (r *retriever) Retrieve(ctx context.Context, q Query) (*CrawlResults, error) {
	fp := Fingerprint(q)

	r.mu.RLock()
	entry, ok := r.cache[fp]
	r.mu.RUnlock()
	if ok {
		logging.Agent("Retrieve: cache hit fp=%s results=%d", fp[:12], entry.TotalFound)
		return entry, nil
	}

	result, err, _ := r.group.Do(fp, func() (interface{}, error) {
		// A concurrent fill may have landed between the miss and here.
		r.mu.RLock()
		entry, ok := r.cache[fp]
		r.mu.RUnlock()
		if ok {
			return entry, nil
		}

		aggregate, err := r.fanOut(ctx, q)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[fp] = aggregate
		r.mu.Unlock()
		return aggregate, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*CrawlResults), nil
}

// fanOut crawls up to maxCatalogSources catalog entries and runs one
// general search, all concurrently. Per-call failures are isolated; the
// aggregate holds whatever survived, in catalog order then search.
func (r *retriever) fanOut(ctx context.Context, q Query) (*CrawlResults, error) {
	timer := logging.StartTimer(logging.CategoryAgent, "retrieval fan-out")

	sources := catalog.Sources(q.Region)
	if len(sources) > maxCatalogSources {
		sources = sources[:maxCatalogSources]
	}

	instructions := fmt.Sprintf("Recent %s %s regulatory updates: %s, 30 days", q.Industry, q.Region, q.Keywords)
	searchQuery := fmt.Sprintf("%s %s regulatory updates compliance %s 2024 2025", q.Industry, q.Region, q.Keywords)

	// One slot per task keeps merge order deterministic regardless of
	// completion order.
	slots := make([][]SourceResult, len(sources)+1)

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			slots[i] = r.crawlSource(gctx, src, instructions)
			return nil
		})
	}
	g.Go(func() error {
		slots[len(sources)] = r.searchWeb(gctx, searchQuery)
		return nil
	})
	_ = g.Wait()

	// All-or-nothing: a cancelled fill must never look like a cache hit.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var all []SourceResult
	for _, slot := range slots {
		all = append(all, slot...)
	}

	aggregate := &CrawlResults{Results: all, TotalFound: len(all)}
	logging.Agent("Retrieve: fan-out done sources=%d results=%d in %v", len(sources), len(all), timer.Stop())
	return aggregate, nil
}

// crawlSource crawls one catalog source. Failure yields zero results.
func (r *retriever) crawlSource(ctx context.Context, src catalog.Source, instructions string) []SourceResult {
	pages, err := r.crawler.Crawl(ctx, src.URL, webtools.CrawlOptions{
		Instructions: instructions,
		MaxDepth:     r.opts.MaxDepth,
		Limit:        r.opts.CrawlLimit,
	})
	if err != nil {
		logging.AgentWarn("Crawl failed for %s, contributing zero results: %v", src.Name, err)
		return nil
	}

	results := make([]SourceResult, 0, len(pages))
	for _, p := range pages {
		results = append(results, SourceResult{
			Source:  src.Name,
			URL:     p.URL,
			Title:   p.Title,
			Content: truncate(p.Content, r.opts.ExcerptLimit),
		})
	}
	return results
}

// searchWeb runs the general search. Failure yields zero results.
func (r *retriever) searchWeb(ctx context.Context, query string) []SourceResult {
	pages, err := r.searcher.Search(ctx, query, webtools.SearchOptions{
		MaxResults: r.opts.SearchLimit,
	})
	if err != nil {
		logging.AgentWarn("General search failed, contributing zero results: %v", err)
		return nil
	}

	results := make([]SourceResult, 0, len(pages))
	for _, p := range pages {
		results = append(results, SourceResult{
			Source:  webSearchLabel,
			URL:     p.URL,
			Title:   p.Title,
			Content: truncate(p.Content, r.opts.ExcerptLimit),
		})
	}
	return results
}

// CacheSize reports the number of cached fingerprints.
func (r *retriever) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// DedupeByURL drops items whose URL was already seen, preserving
// first-seen order, and relabels missing or placeholder titles with
// the catalog's full source name. The input is not mutated; callers
// pass cached aggregates directly.
func DedupeByURL(results []SourceResult) []SourceResult {
	seen := make(map[string]bool, len(results))
	out := make([]SourceResult, 0, len(results))

	for _, item := range results {
		if seen[item.URL] {
			continue
		}
		seen[item.URL] = true

		if item.Title == "" || item.Title == "No Title..." {
			item.Title = catalog.FullName(item.Source)
		}
		out = append(out, item)
	}
	return out
}

func truncate(s string, limit int) string {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
