package agent

import (
	"context"

	"github.com/kingabzpro/RegRadar/internal/llm"
	"github.com/kingabzpro/RegRadar/internal/logging"
	"github.com/kingabzpro/RegRadar/internal/memory"
	"github.com/kingabzpro/RegRadar/internal/webtools"
)

// memoryLookupLimit bounds how many past records augment a report.
const memoryLookupLimit = 3

// Agent wires the pipeline's service clients together. Construct one
// at process start and share it across turns; it holds no per-turn state.
type Agent struct {
	llm       llm.Client
	memory    memory.Store
	retriever *retriever
}

// NewAgent creates an agent. crawler and searcher feed retrieval;
// store may be nil when no memory backend is available.
func NewAgent(client llm.Client, crawler webtools.Crawler, searcher webtools.Searcher, store memory.Store, opts RetrievalOptions) *Agent {
	return &Agent{
		llm:       client,
		memory:    store,
		retriever: newRetriever(crawler, searcher, opts),
	}
}

// TurnResult is the non-streamed portion of a processed regulatory query.
type TurnResult struct {
	Tool          Tool
	Query         Query
	Aggregate     *CrawlResults
	MemoryRecords []memory.Record
}

// ProcessRegulatoryQuery runs tool detection, parameter extraction,
// retrieval, and memory lookup for one message. The query argument is
// optional: pass a pre-extracted query to skip re-extraction. Retrieval
// and memory failures degrade to empty data; the returned error is
// reserved for context cancellation.
func (a *Agent) ProcessRegulatoryQuery(ctx context.Context, message string, q *Query, userID string) (*TurnResult, error) {
	tool := DetermineIntendedTool(message)

	var query Query
	if q != nil {
		query = *q
	} else {
		query = a.ExtractParameters(ctx, message)
	}

	aggregate, err := a.retriever.Retrieve(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Retrieval never fails the turn; continue with an empty aggregate.
		logging.AgentWarn("Retrieve degraded to empty aggregate: %v", err)
		aggregate = &CrawlResults{}
	}

	records := a.lookupMemory(ctx, userID, message)

	return &TurnResult{
		Tool:          tool,
		Query:         query,
		Aggregate:     aggregate,
		MemoryRecords: records,
	}, nil
}

// lookupMemory returns related past records, or nil on any failure.
func (a *Agent) lookupMemory(ctx context.Context, userID, message string) []memory.Record {
	if a.memory == nil {
		return nil
	}
	records, err := a.memory.Search(ctx, userID, message, memoryLookupLimit)
	if err != nil {
		logging.MemoryWarn("Memory lookup failed for user=%s: %v", userID, err)
		return nil
	}
	return records
}

// persistMemory saves a completed turn, best-effort.
func (a *Agent) persistMemory(ctx context.Context, userID, message, response string) {
	if a.memory == nil {
		return
	}
	err := a.memory.Add(ctx, userID, "Q: "+message+"\nA: "+response, map[string]string{
		"type": "regulatory_query",
	})
	if err != nil {
		logging.MemoryWarn("Memory persist failed for user=%s: %v", userID, err)
	}
}

// DedupeByURL exposes presentation-side deduplication of an aggregate.
func (a *Agent) DedupeByURL(results []SourceResult) []SourceResult {
	return DedupeByURL(results)
}

// CacheSize reports how many fingerprints are cached (display aid).
func (a *Agent) CacheSize() int {
	return a.retriever.CacheSize()
}
