package agent

import (
	"regexp"
	"strings"
)

// Rule tables for fallback extraction. Evaluation order is fixed so the
// same message always yields the same Query.

type industryRule struct {
	name     string
	keywords []string
}

var industryRules = []industryRule{
	{"Fintech", []string{"fintech", "bank", "banking", "finance", "financial", "payment", "crypto", "cryptocurrency", "securities", "trading", "insurance", "lending"}},
	{"Healthcare", []string{"healthcare", "health", "pharma", "pharmaceutical", "medical", "clinical", "drug", "hospital", "biotech", "device"}},
	{"Energy", []string{"energy", "oil", "gas", "renewable", "utility", "utilities", "electricity", "power", "carbon"}},
	{"Technology", []string{"technology", "tech", "software", "ai", "artificial intelligence", "data", "cyber", "cybersecurity", "internet", "platform", "cloud"}},
	{"Retail", []string{"retail", "consumer", "ecommerce", "e-commerce", "commerce", "advertising", "marketplace"}},
}

type regionRule struct {
	name    string
	pattern *regexp.Regexp
}

// Acronyms match case-sensitively so that words like "status" or "thus"
// never match US; spelled-out names match case-insensitively.
var regionRules = []regionRule{
	{"EU", regexp.MustCompile(`\bEU\b|(?i)\beurope(an)?\b`)},
	{"UK", regexp.MustCompile(`\bUK\b|(?i)\bunited kingdom\b|(?i)\bbritain\b`)},
	{"Asia", regexp.MustCompile(`(?i)\basia\b|(?i)\bjapan\b|(?i)\bchina\b|(?i)\bindia\b|(?i)\bsingapore\b|(?i)\bhong kong\b`)},
	{"Global", regexp.MustCompile(`(?i)\bglobal\b|(?i)\bworldwide\b|(?i)\binternational\b`)},
	{"US", regexp.MustCompile(`\bUS\b|\bUSA\b|(?i)\bunited states\b|(?i)\bamerica\b`)},
}

// regulatoryVocabulary lists terms copied verbatim into keywords when
// found in the message. Order controls output order.
var regulatoryVocabulary = []string{
	"GDPR", "HIPAA", "CCPA", "MiFID", "MiCA", "PSD2", "Basel III",
	"Dodd-Frank", "AML", "KYC", "ESG", "SEC", "FDA", "FTC",
	"data privacy", "privacy", "licensing", "disclosure", "reporting",
	"enforcement", "sanctions", "antitrust", "audit",
}

// Words excluded from capitalized-phrase keywords: question openers and
// generic regulatory nouns that carry no topic information.
var phraseStopwords = map[string]bool{
	"What": true, "When": true, "Where": true, "Which": true, "Who": true,
	"Why": true, "How": true, "Is": true, "Are": true, "Show": true,
	"Any": true, "The": true, "Scan": true, "Check": true,
	"Regulation": true, "Regulations": true, "Regulatory": true,
	"Compliance": true, "Update": true, "Updates": true,
	"Rule": true, "Rules": true, "Requirements": true,
}

var capitalizedPhrasePattern = regexp.MustCompile(`\b[A-Z][a-z]+(?: [A-Z][a-z]+)+\b`)

var quickPattern = regexp.MustCompile(`(?i)\b(when is|when does|when do|how much|how many|exact|exactly|specific|specifically|brief|briefly|quick|quickly|fine|fines|penalty|penalties|fee|fees|deadline|deadlines)\b`)

var summaryPattern = regexp.MustCompile(`(?i)\b(summary|summarize|summarise|overview|recap)\b`)

// fallbackExtract derives a Query from a message using only the rule
// tables above. It is the recovery path when structured extraction
// fails; it always returns a complete Query.
func fallbackExtract(message string) Query {
	return Query{
		RawMessage: message,
		Industry:   fallbackIndustry(message),
		Region:     fallbackRegion(message),
		Keywords:   fallbackKeywords(message),
		ReportType: fallbackReportType(message),
	}
}

func fallbackIndustry(message string) string {
	lower := strings.ToLower(message)
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})

	// Multi-word keywords match as substrings; single words match as
	// token prefixes so "ai" never matches inside "maintain" but
	// "bank" still matches "banking".
	matches := func(kw string) bool {
		if strings.Contains(kw, " ") {
			return strings.Contains(lower, kw)
		}
		for _, tok := range tokens {
			if strings.HasPrefix(tok, kw) {
				return true
			}
		}
		return false
	}

	for _, rule := range industryRules {
		for _, kw := range rule.keywords {
			if matches(kw) {
				return rule.name
			}
		}
	}
	return "General"
}

func fallbackRegion(message string) string {
	for _, rule := range regionRules {
		if rule.pattern.MatchString(message) {
			return rule.name
		}
	}
	return "US"
}

func fallbackKeywords(message string) string {
	var keywords []string
	seen := make(map[string]bool)

	lower := strings.ToLower(message)
	for _, term := range regulatoryVocabulary {
		termLower := strings.ToLower(term)
		if !strings.Contains(lower, termLower) || seen[termLower] {
			continue
		}
		// Skip terms subsumed by an already-kept longer term
		// ("privacy" after "data privacy").
		subsumed := false
		for kept := range seen {
			if strings.Contains(kept, termLower) {
				subsumed = true
				break
			}
		}
		if subsumed {
			continue
		}
		seen[termLower] = true
		keywords = append(keywords, term)
	}

	for _, phrase := range capitalizedPhrasePattern.FindAllString(message, -1) {
		words := strings.Fields(phrase)
		var kept []string
		for _, w := range words {
			if !phraseStopwords[w] {
				kept = append(kept, w)
			}
		}
		if len(kept) < 2 {
			continue
		}
		cleaned := strings.Join(kept, " ")
		if !seen[strings.ToLower(cleaned)] {
			seen[strings.ToLower(cleaned)] = true
			keywords = append(keywords, cleaned)
		}
	}

	return strings.Join(keywords, ", ")
}

func fallbackReportType(message string) ReportType {
	if summaryPattern.MatchString(message) {
		return ReportSummary
	}
	if quickPattern.MatchString(message) {
		return ReportQuick
	}
	return ReportFull
}
