package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kingabzpro/RegRadar/internal/logging"
	"github.com/kingabzpro/RegRadar/internal/memory"
)

// reportSystemPrompt frames every synthesis call.
const reportSystemPrompt = "You are an expert AI assistant specializing in regulatory updates. Provide thorough, insightful, and actionable analysis based on the user's request, focusing on compliance, recent changes, and best practices."

// reportGroupLimit bounds how many aggregate items feed the prompt.
const reportGroupLimit = 8

// fullReportSections is the fixed structure of a full-mode report.
const fullReportSections = `Include:
# 📋 Executive Summary
(2-3 sentences overview)

# 🔍 Key Findings
• Finding 1
• Finding 2
• Finding 3

# ⚠️ Compliance Requirements
- List main requirements with priorities

# ✅ Action Items
- Specific actions with suggested timelines

# 📚 Resources
- Links and references

Use emojis, bullet points, and clear formatting. Keep it professional but readable.`

// Fragment is one incremental piece of a streamed report. Err marks a
// terminal fragment describing a synthesis failure; the stream closes
// after it.
type Fragment struct {
	Text string
	Err  bool
}

// GenerateReport streams a mode-specific report for the query and
// aggregate. An empty aggregate produces guidance on where to look
// instead of a structured report. The returned channel always closes;
// generation-service errors arrive as a single terminal Err fragment
// rather than breaking the stream.
func (a *Agent) GenerateReport(ctx context.Context, q Query, aggregate *CrawlResults, records []memory.Record) <-chan Fragment {
	out := make(chan Fragment, 100)

	prompt := buildReportPrompt(q, aggregate, records)
	logging.Report("GenerateReport: mode=%s results=%d memories=%d prompt_len=%d",
		q.ReportType, aggregateLen(aggregate), len(records), len(prompt))

	contentChan, errorChan := a.llm.CompleteWithStreaming(ctx, reportSystemPrompt, prompt)

	go func() {
		defer close(out)
		timer := logging.StartTimer(logging.CategoryReport, "report synthesis")
		for delta := range contentChan {
			select {
			case out <- Fragment{Text: delta}:
			case <-ctx.Done():
				// Drain so the producer goroutine can exit.
				for range contentChan {
				}
				<-errorChan
				return
			}
		}
		if err := <-errorChan; err != nil {
			logging.ReportError("GenerateReport: synthesis failed: %v", err)
			out <- Fragment{Text: fmt.Sprintf("Error generating report: %v", err), Err: true}
			return
		}
		timer.StopWithInfo()
	}()

	return out
}

// GeneralChat streams a plain conversational reply for non-regulatory
// messages, with the same degradation contract as GenerateReport.
func (a *Agent) GeneralChat(ctx context.Context, message string) <-chan Fragment {
	out := make(chan Fragment, 100)

	contentChan, errorChan := a.llm.CompleteWithStreaming(ctx, "", message)

	go func() {
		defer close(out)
		for delta := range contentChan {
			select {
			case out <- Fragment{Text: delta}:
			case <-ctx.Done():
				for range contentChan {
				}
				<-errorChan
				return
			}
		}
		if err := <-errorChan; err != nil {
			logging.ReportError("GeneralChat: streaming failed: %v", err)
			out <- Fragment{Text: fmt.Sprintf("Error: %v", err), Err: true}
		}
	}()

	return out
}

// buildReportPrompt assembles the synthesis prompt: memory context
// first, then grouped source data, then the mode instructions.
func buildReportPrompt(q Query, aggregate *CrawlResults, records []memory.Record) string {
	if aggregate == nil || len(aggregate.Results) == 0 {
		return fmt.Sprintf(
			"No regulatory updates found for %s in %s with keywords: %s. "+
				"Provide helpful suggestions on where to look or what to search for.",
			q.Industry, q.Region, q.Keywords)
	}

	var sb strings.Builder

	if len(records) > 0 {
		top := records
		if len(top) > memoryLookupLimit {
			top = top[:memoryLookupLimit]
		}
		sb.WriteString("Related past queries from this user:\n")
		for i, rec := range top {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, rec.Memory))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Create a regulatory compliance report for the %s industry in the %s region.\n\n", q.Industry, q.Region))
	sb.WriteString("Analyze these regulatory updates:\n")
	sb.WriteString(groupBySource(aggregate.Results, reportGroupLimit))
	sb.WriteString("\n\n")

	switch q.ReportType {
	case ReportQuick:
		sb.WriteString(fmt.Sprintf("Answer the user's question in 1-2 sentences, directly and factually.\nUser question: %s", q.RawMessage))
	case ReportSummary:
		sb.WriteString("Write a single-paragraph synthesis of the most important regulatory developments above.")
	default:
		sb.WriteString(fullReportSections)
	}

	return sb.String()
}

// groupBySource renders the first limit results grouped by source name,
// preserving first-appearance order of sources.
func groupBySource(results []SourceResult, limit int) string {
	if len(results) > limit {
		results = results[:limit]
	}

	type group struct {
		Source string         `json:"source"`
		Items  []SourceResult `json:"items"`
	}

	var order []string
	bySource := make(map[string][]SourceResult)
	for _, r := range results {
		if _, ok := bySource[r.Source]; !ok {
			order = append(order, r.Source)
		}
		bySource[r.Source] = append(bySource[r.Source], r)
	}

	groups := make([]group, 0, len(order))
	for _, name := range order {
		groups = append(groups, group{Source: name, Items: bySource[name]})
	}

	data, err := json.MarshalIndent(groups, "", "  ")
	if err != nil {
		// Fall back to a flat rendering.
		var sb strings.Builder
		for _, r := range results {
			sb.WriteString(fmt.Sprintf("- [%s] %s (%s)\n", r.Source, r.Title, r.URL))
		}
		return sb.String()
	}
	return string(data)
}

func aggregateLen(aggregate *CrawlResults) int {
	if aggregate == nil {
		return 0
	}
	return len(aggregate.Results)
}
