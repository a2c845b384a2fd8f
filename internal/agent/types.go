// Package agent implements the regulatory query pipeline: intent
// classification, parameter extraction with a deterministic fallback,
// cached multi-source retrieval, memory augmentation, and streaming
// report synthesis, plus the per-turn state machine tying them together.
package agent

import "strings"

// ReportType controls the verbosity of a synthesized report.
type ReportType string

const (
	ReportQuick   ReportType = "quick"
	ReportSummary ReportType = "summary"
	ReportFull    ReportType = "full"
)

// normalizeReportType coerces anything outside the closed set to full.
func normalizeReportType(raw string) ReportType {
	switch ReportType(strings.ToLower(strings.TrimSpace(raw))) {
	case ReportQuick:
		return ReportQuick
	case ReportSummary:
		return ReportSummary
	default:
		return ReportFull
	}
}

// Query is the structured form of a user message.
type Query struct {
	RawMessage string
	Industry   string
	Region     string
	Keywords   string
	ReportType ReportType
}

// SourceResult is one retrieved item tagged with its originating source.
type SourceResult struct {
	Source  string `json:"source"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CrawlResults is the aggregate of one retrieval fan-out.
type CrawlResults struct {
	Results    []SourceResult
	TotalFound int
}

// Tool identifies which retrieval surface a message appears to want.
// Display hint only; retrieval always runs the full fan-out.
type Tool int

const (
	ToolGeneralSearch Tool = iota
	ToolWebCrawler
	ToolMemorySearch
)

// Name returns the user-facing tool label.
func (t Tool) Name() string {
	switch t {
	case ToolWebCrawler:
		return "Regulatory Web Crawler"
	case ToolMemorySearch:
		return "Memory Search"
	default:
		return "Regulatory Search"
	}
}
