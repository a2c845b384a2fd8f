// Package catalog holds the static table of authoritative regulatory
// sources eligible for crawling, keyed by region. The table is
// configuration data: small, ordered, and fixed at compile time.
package catalog

// Source is a named regulatory authority with its news/press seed URL.
type Source struct {
	Name string
	URL  string
}

// DefaultRegion is substituted when a requested region has no catalog entry.
const DefaultRegion = "US"

// regulatorySources maps region identifiers to an ordered list of sources.
// Order matters: retrieval crawls the first few entries only.
var regulatorySources = map[string][]Source{
	"US": {
		{Name: "SEC", URL: "https://www.sec.gov/news/pressreleases"},
		{Name: "FDA", URL: "https://www.fda.gov/news-events/fda-newsroom/press-announcements"},
		{Name: "FTC", URL: "https://www.ftc.gov/news-events/news/press-releases"},
		{Name: "Federal Register", URL: "https://www.federalregister.gov/documents/current"},
		{Name: "CFTC", URL: "https://www.cftc.gov/PressRoom/PressReleases"},
		{Name: "FDIC", URL: "https://www.fdic.gov/news/press-releases/"},
		{Name: "FINRA", URL: "https://www.finra.org/media-center/newsreleases"},
		{Name: "Federal Reserve Board", URL: "https://www.federalreserve.gov/newsevents/pressreleases.htm"},
	},
	"EU": {
		{Name: "ESMA", URL: "https://www.esma.europa.eu/press-news/esma-news"},
		{Name: "EBA", URL: "https://www.eba.europa.eu/publications-and-media"},
		{Name: "EIOPA", URL: "https://www.eiopa.europa.eu/media/news_en"},
		{Name: "European Parliament News", URL: "https://www.europarl.europa.eu/news/en/press-room"},
		{Name: "ECB", URL: "https://www.ecb.europa.eu/press/pr/html/index.en.html"},
	},
	"Asia": {
		{Name: "Japan FSA", URL: "https://www.fsa.go.jp/en/news/"},
		{Name: "Reserve Bank of India (RBI)", URL: "https://www.rbi.org.in/Scripts/BS_PressReleaseDisplay.aspx"},
	},
	"Global": {
		{Name: "BIS", URL: "https://www.bis.org/press/index.htm"},
		{Name: "IMF", URL: "https://www.imf.org/en/News"},
		{Name: "World Bank", URL: "https://www.worldbank.org/en/news/all"},
		{Name: "OECD", URL: "https://www.oecd.org/newsroom/"},
	},
}

// sourceFullNames maps short source names to human-readable full names.
// Used to relabel results whose pages carry no usable title.
var sourceFullNames = map[string]string{
	"SEC":                         "U.S. Securities and Exchange Commission",
	"FDA":                         "U.S. Food and Drug Administration",
	"FTC":                         "Federal Trade Commission",
	"Federal Register":            "Federal Register",
	"CFTC":                        "Commodity Futures Trading Commission",
	"FDIC":                        "Federal Deposit Insurance Corporation",
	"FINRA":                       "Financial Industry Regulatory Authority",
	"Federal Reserve Board":       "Federal Reserve Board",
	"ESMA":                        "European Securities and Markets Authority",
	"EBA":                         "European Banking Authority",
	"EIOPA":                       "European Insurance and Occupational Pensions Authority",
	"European Parliament News":    "European Parliament News",
	"ECB":                         "European Central Bank",
	"Japan FSA":                   "Financial Services Agency of Japan",
	"Reserve Bank of India (RBI)": "Reserve Bank of India",
	"BIS":                         "Bank for International Settlements",
	"IMF":                         "International Monetary Fund",
	"World Bank":                  "World Bank",
	"OECD":                        "Organisation for Economic Co-operation and Development",
}

// Sources returns the ordered source list for a region. Unknown regions
// fall back to the DefaultRegion entry. The returned slice is a copy.
func Sources(region string) []Source {
	entries, ok := regulatorySources[region]
	if !ok {
		entries = regulatorySources[DefaultRegion]
	}
	out := make([]Source, len(entries))
	copy(out, entries)
	return out
}

// HasRegion reports whether the catalog has an entry for region.
func HasRegion(region string) bool {
	_, ok := regulatorySources[region]
	return ok
}

// Regions returns all known region identifiers in a stable order.
func Regions() []string {
	return []string{"US", "EU", "Asia", "Global"}
}

// FullName returns the human-readable name for a short source name.
// Unknown sources map to themselves.
func FullName(short string) string {
	if full, ok := sourceFullNames[short]; ok {
		return full
	}
	return short
}
