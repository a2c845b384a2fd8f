package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kingabzpro/RegRadar/internal/llm"
	"github.com/kingabzpro/RegRadar/internal/logging"
)

const extractPrompt = `Extract the following information from the user query below and return ONLY a valid JSON object with keys: industry, region, keywords, report_type.
- industry: The industry mentioned or implied (e.g., fintech, healthcare, energy, general).
- region: The region or country explicitly mentioned (e.g., US, EU, UK, Asia, Global).
- keywords: The most important regulatory topics or terms, separated by commas. Do NOT include generic words or verbs.
- report_type: "quick" for a short factual answer, "summary" for a brief overview, "full" for a complete report.

User query: %s

Example output:
{"industry": "fintech", "region": "US", "keywords": "SEC regulations", "report_type": "full"}`

// extractSchema is the structured-output contract for parameter extraction.
var extractSchema = &llm.ResponseFormat{
	Type: "json_schema",
	JSONSchema: &llm.JSONSchema{
		Name:   "query_parameters",
		Strict: true,
		Schema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"industry":    map[string]interface{}{"type": "string"},
				"region":      map[string]interface{}{"type": "string"},
				"keywords":    map[string]interface{}{"type": "string"},
				"report_type": map[string]interface{}{"type": "string", "enum": []string{"quick", "summary", "full"}},
			},
			"required":             []string{"industry", "region", "keywords", "report_type"},
			"additionalProperties": false,
		},
	},
}

type extractedParams struct {
	Industry   string `json:"industry"`
	Region     string `json:"region"`
	Keywords   string `json:"keywords"`
	ReportType string `json:"report_type"`
}

// ExtractParameters derives a structured Query from free text. The
// primary path is a structured completion call; any error, non-JSON
// reply, or missing field falls back to rule-based extraction. Always
// returns a complete Query, never an error.
func (a *Agent) ExtractParameters(ctx context.Context, message string) Query {
	reply, err := a.llm.CompleteWithSchema(ctx, "", fmt.Sprintf(extractPrompt, message), extractSchema)
	if err != nil {
		logging.AgentWarn("Parameter extraction call failed, using fallback rules: %v", err)
		return fallbackExtract(message)
	}

	var params extractedParams
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &params); err != nil {
		logging.AgentWarn("Parameter extraction returned non-JSON, using fallback rules: %v", err)
		return fallbackExtract(message)
	}

	if params.Industry == "" || params.Region == "" || params.Keywords == "" {
		logging.AgentDebug("Parameter extraction incomplete (%+v), using fallback rules", params)
		return fallbackExtract(message)
	}

	query := Query{
		RawMessage: message,
		Industry:   params.Industry,
		Region:     params.Region,
		Keywords:   params.Keywords,
		ReportType: normalizeReportType(params.ReportType),
	}
	logging.Agent("Extracted parameters: industry=%s region=%s keywords=%q report=%s",
		query.Industry, query.Region, query.Keywords, query.ReportType)
	return query
}

// stripCodeFence removes a surrounding markdown code fence, which some
// models add around JSON despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
