package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/kingabzpro/RegRadar/internal/logging"
)

const intentPrompt = `Is the following user message a regulatory, compliance, or update-related question (yes/no)?
Message: %s
Respond with only 'yes' or 'no'.`

// IsRegulatoryQuery classifies a message as a regulatory question versus
// general chat. The decision defaults to regulatory: only a reply
// starting with a negative token ("n") selects the general branch, so
// an ambiguous or malformed reply routes to the full pipeline rather
// than plain chat. A classification error degrades to general chat,
// which never fails the turn.
func (a *Agent) IsRegulatoryQuery(ctx context.Context, message string) bool {
	reply, err := a.llm.Complete(ctx, fmt.Sprintf(intentPrompt, message))
	if err != nil {
		logging.AgentWarn("Intent classification failed, treating as general chat: %v", err)
		return false
	}

	intent := strings.ToLower(strings.TrimSpace(reply))
	regulatory := !strings.HasPrefix(intent, "n")
	logging.AgentDebug("Intent: reply=%q regulatory=%v", intent, regulatory)
	return regulatory
}

// DetermineIntendedTool picks the tool label to display for a message.
// Pure keyword dispatch, independent of the actual retrieval logic.
func DetermineIntendedTool(message string) Tool {
	lower := strings.ToLower(message)

	for _, word := range []string{"crawl", "scan", "check", "latest", "update", "recent"} {
		if strings.Contains(lower, word) {
			return ToolWebCrawler
		}
	}
	for _, word := range []string{"remember", "history", "past", "previous"} {
		if strings.Contains(lower, word) {
			return ToolMemorySearch
		}
	}
	return ToolGeneralSearch
}
