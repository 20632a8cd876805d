package dto

// NewsArticle is a single news item from any source.
type NewsArticle struct {
	Title     string `json:"title"`
	Publisher string `json:"publisher,omitempty"`
	Link      string `json:"link,omitempty"`
	Published string `json:"published,omitempty"`
	Summary   string `json:"summary,omitempty"`
}

// InsiderTrade is one reported insider transaction.
type InsiderTrade struct {
	Date    string `json:"date"`
	Insider string `json:"insider"`
	Role    string `json:"role,omitempty"`
	Type    string `json:"type"`
	Shares  string `json:"shares,omitempty"`
	Value   string `json:"value,omitempty"`
}

// InsiderData is the single-shape result of an insider-activity source.
type InsiderData struct {
	InsiderTrades []InsiderTrade `json:"insider_trades"`
}

// NewsData is the single-shape result of the supplementary news source.
type NewsData struct {
	NewsArticles []NewsArticle `json:"news_articles"`
}

// SectorPerformanceRow is one row of relative sector performance.
type SectorPerformanceRow struct {
	Name   string `json:"name"`
	Change string `json:"change"`
}

// SectorData is the single-shape result of the sector-context source.
type SectorData struct {
	SectorPerformance []SectorPerformanceRow `json:"sector_performance"`
	SectorNews        []NewsArticle          `json:"sector_news"`
}

// PrimaryData aggregates the market data source's per-symbol payloads.
type PrimaryData struct {
	Fundamentals map[string]string `json:"fundamentals"`
	Analyst      map[string]string `json:"analyst"`
	Technicals   map[string]string `json:"technicals"`
	News         []NewsArticle     `json:"news"`
}

// AggregatedData is every scraped payload for one pipeline run. Its digest
// keys the risk-assessment cache, so any upstream change invalidates risk.
type AggregatedData struct {
	Primary PrimaryData `json:"primary"`
	Insider InsiderData `json:"openinsider"`
	News    NewsData    `json:"news"`
	Sector  SectorData  `json:"sector"`
}

// SentimentInput is the sentiment category's hash input: supplementary news
// plus the provider-native articles.
type SentimentInput struct {
	NewsArticles []NewsArticle `json:"news_articles"`
	ProviderNews []NewsArticle `json:"provider_news"`
}
