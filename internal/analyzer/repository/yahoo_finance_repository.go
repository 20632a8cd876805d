package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-stock-selector/internal/analyzer/config"
	"golang-stock-selector/internal/analyzer/dto"
	"golang-stock-selector/pkg/logger"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// yahooFinanceRepository implements MarketDataRepository and SymbolResolver
// against the Yahoo Finance chart/search APIs. Chart payloads are memoized
// per symbol in a short-lived cache so one pipeline run fetches each symbol
// once; ClearCache drops the memo at the start of a run.
type yahooFinanceRepository struct {
	cfg     *config.Config
	logger  *logger.Logger
	client  *http.Client
	limiter *rate.Limiter
	memo    *cache.Cache
}

// NewYahooFinanceRepository creates a new instance of yahooFinanceRepository.
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) (MarketDataRepository, error) {
	if cfg.YahooFinance.MaxRequestPerMinute <= 0 {
		return nil, fmt.Errorf("yahoo_finance.max_request_per_minute must be positive")
	}
	secondsPerRequest := time.Minute / time.Duration(cfg.YahooFinance.MaxRequestPerMinute)

	return &yahooFinanceRepository{
		cfg:     cfg,
		logger:  log,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		memo:    cache.New(5*time.Minute, 10*time.Minute),
	}, nil
}

type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				Currency           string  `json:"currency"`
				ExchangeName       string  `json:"exchangeName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				LongName           string  `json:"longName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []yahooQuote `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type yahooSearch struct {
	News []struct {
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

type yahooQuoteSummary struct {
	QuoteSummary struct {
		Result []map[string]map[string]interface{} `json:"result"`
	} `json:"quoteSummary"`
}

func (r *yahooFinanceRepository) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", scraperHeaders["User-Agent"])

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("yahoo finance returned %d for %s: %s", resp.StatusCode, rawURL, truncate(string(body), 200))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func (r *yahooFinanceRepository) chart(ctx context.Context, symbol, rng, interval string) (*yahooChart, error) {
	key := fmt.Sprintf("chart:%s:%s:%s", symbol, rng, interval)
	if cached, found := r.memo.Get(key); found {
		return cached.(*yahooChart), nil
	}

	chartURL := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s",
		r.cfg.YahooFinance.BaseURL, url.PathEscape(symbol), rng, interval)
	var chart yahooChart
	if err := r.getJSON(ctx, chartURL, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo finance error for %s: %s", symbol, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart data for %s", symbol)
	}

	r.memo.Set(key, &chart, cache.DefaultExpiration)
	return &chart, nil
}

func (r *yahooFinanceRepository) quoteSummary(ctx context.Context, symbol, modules string) (map[string]map[string]interface{}, error) {
	key := fmt.Sprintf("summary:%s:%s", symbol, modules)
	if cached, found := r.memo.Get(key); found {
		return cached.(map[string]map[string]interface{}), nil
	}

	summaryURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		r.cfg.YahooFinance.BaseURL, url.PathEscape(symbol), url.QueryEscape(modules))
	var summary yahooQuoteSummary
	if err := r.getJSON(ctx, summaryURL, &summary); err != nil {
		return nil, err
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no quote summary for %s", symbol)
	}

	result := summary.QuoteSummary.Result[0]
	r.memo.Set(key, result, cache.DefaultExpiration)
	return result, nil
}

// ClearCache drops the per-run memo for one symbol, or everything when
// symbol is empty.
func (r *yahooFinanceRepository) ClearCache(symbol string) {
	if symbol == "" {
		r.memo.Flush()
		return
	}
	// Memo keys are "<kind>:<symbol>[:...]".
	for key := range r.memo.Items() {
		parts := strings.SplitN(key, ":", 3)
		if len(parts) >= 2 && parts[1] == symbol {
			r.memo.Delete(key)
		}
	}
}

// ResolveSymbol probes the raw symbol and, for UK listings, the .L suffix,
// returning the first symbol the chart API recognizes along with its market.
func (r *yahooFinanceRepository) ResolveSymbol(ctx context.Context, raw, preferredMarket string) (string, string, error) {
	raw = strings.ToUpper(raw)

	candidates := []string{raw}
	if !strings.Contains(raw, ".") {
		if preferredMarket == "UK" {
			candidates = []string{raw + ".L", raw}
		} else {
			candidates = append(candidates, raw+".L")
		}
	}

	for _, candidate := range candidates {
		chart, err := r.chart(ctx, candidate, "5d", "1d")
		if err != nil {
			r.logger.Debug("Symbol probe failed", logger.StringField("symbol", candidate), logger.ErrorField(err))
			continue
		}
		meta := chart.Chart.Result[0].Meta
		market := "US"
		if strings.HasSuffix(meta.Symbol, ".L") || meta.Currency == "GBp" || meta.Currency == "GBP" {
			market = "UK"
		}
		return meta.Symbol, market, nil
	}

	return "", "", fmt.Errorf("%w: %s", ErrSymbolNotFound, raw)
}

func (r *yahooFinanceRepository) GetFundamentals(ctx context.Context, symbol string) (map[string]string, error) {
	summary, err := r.quoteSummary(ctx, symbol, "summaryDetail,defaultKeyStatistics,financialData")
	if err != nil {
		return nil, err
	}

	out := map[string]string{}
	pick := func(module, field, label string) {
		if m, ok := summary[module]; ok {
			if v, ok := m[field]; ok {
				out[label] = formatSummaryValue(v)
			}
		}
	}
	pick("summaryDetail", "trailingPE", "P/E")
	pick("summaryDetail", "forwardPE", "Forward P/E")
	pick("summaryDetail", "dividendYield", "Dividend Yield")
	pick("summaryDetail", "marketCap", "Market Cap")
	pick("defaultKeyStatistics", "trailingEps", "EPS (ttm)")
	pick("defaultKeyStatistics", "pegRatio", "PEG")
	pick("defaultKeyStatistics", "priceToBook", "P/B")
	pick("financialData", "totalRevenue", "Revenue")
	pick("financialData", "revenueGrowth", "Revenue Growth")
	pick("financialData", "earningsGrowth", "Earnings Growth")
	pick("financialData", "profitMargins", "Profit Margin")
	pick("financialData", "debtToEquity", "Debt/Equity")
	pick("financialData", "freeCashflow", "Free Cash Flow")
	pick("financialData", "returnOnEquity", "ROE")
	return out, nil
}

func (r *yahooFinanceRepository) GetTechnicals(ctx context.Context, symbol string) (map[string]string, error) {
	chart, err := r.chart(ctx, symbol, "1y", "1d")
	if err != nil {
		return nil, err
	}

	result := chart.Chart.Result[0]
	closes := closePrices(result.Indicators.Quote, result.Timestamp)
	if len(closes) == 0 {
		return nil, fmt.Errorf("no price history for %s", symbol)
	}

	price := result.Meta.RegularMarketPrice
	if price == 0 {
		price = closes[len(closes)-1].price
	}

	out := map[string]string{
		"Price": fmt.Sprintf("%.2f", price),
	}
	if sma := simpleMovingAverage(closes, 50); sma > 0 {
		out["SMA50"] = fmt.Sprintf("%.2f", sma)
		out["Price vs SMA50"] = fmt.Sprintf("%+.2f%%", (price-sma)/sma*100)
	}
	if sma := simpleMovingAverage(closes, 200); sma > 0 {
		out["SMA200"] = fmt.Sprintf("%.2f", sma)
		out["Price vs SMA200"] = fmt.Sprintf("%+.2f%%", (price-sma)/sma*100)
	}
	if high, low, ok := rangeHighLow(closes); ok {
		out["52W High"] = fmt.Sprintf("%.2f", high)
		out["52W Low"] = fmt.Sprintf("%.2f", low)
	}
	if perf, ok := performance(closes, 21); ok {
		out["Perf Month"] = perf
	}
	if perf, ok := performance(closes, 63); ok {
		out["Perf Quarter"] = perf
	}
	if rsi, ok := relativeStrengthIndex(closes, 14); ok {
		out["RSI (14)"] = fmt.Sprintf("%.1f", rsi)
	}
	return out, nil
}

func (r *yahooFinanceRepository) GetAnalystData(ctx context.Context, symbol string) (map[string]string, error) {
	summary, err := r.quoteSummary(ctx, symbol, "financialData,recommendationTrend")
	if err != nil {
		return nil, err
	}

	out := map[string]string{}
	if m, ok := summary["financialData"]; ok {
		if v, ok := m["targetMeanPrice"]; ok {
			out["Target Price"] = formatSummaryValue(v)
		}
		if v, ok := m["recommendationMean"]; ok {
			out["Recommendation Score"] = formatSummaryValue(v)
		}
		if v, ok := m["recommendationKey"]; ok {
			out["Recommendation"] = formatSummaryValue(v)
		}
		if v, ok := m["numberOfAnalystOpinions"]; ok {
			out["Analyst Count"] = formatSummaryValue(v)
		}
	}
	return out, nil
}

func (r *yahooFinanceRepository) GetNews(ctx context.Context, symbol string) ([]dto.NewsArticle, error) {
	key := "news:" + symbol
	if cached, found := r.memo.Get(key); found {
		return cached.([]dto.NewsArticle), nil
	}

	searchURL := fmt.Sprintf("%s/v1/finance/search?q=%s&newsCount=10&quotesCount=0",
		r.cfg.YahooFinance.BaseURL, url.QueryEscape(symbol))
	var search yahooSearch
	if err := r.getJSON(ctx, searchURL, &search); err != nil {
		return nil, err
	}

	articles := make([]dto.NewsArticle, 0, len(search.News))
	for _, item := range search.News {
		articles = append(articles, dto.NewsArticle{
			Title:     item.Title,
			Publisher: item.Publisher,
			Link:      item.Link,
			Published: time.Unix(item.ProviderPublishTime, 0).UTC().Format("2006-01-02"),
		})
	}

	r.memo.Set(key, articles, cache.DefaultExpiration)
	return articles, nil
}

func (r *yahooFinanceRepository) GetQuote(ctx context.Context, symbol string) (*float64, error) {
	chart, err := r.chart(ctx, symbol, "5d", "1d")
	if err != nil {
		return nil, err
	}
	price := chart.Chart.Result[0].Meta.RegularMarketPrice
	if price == 0 {
		return nil, nil
	}
	return &price, nil
}

// GetHistoricalPrice returns the first daily close on or after date
// (YYYY-MM-DD), or nil when no trading data covers it.
func (r *yahooFinanceRepository) GetHistoricalPrice(ctx context.Context, symbol, date string) (*float64, error) {
	target, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	// Fetch a window past the target to absorb weekends and holidays.
	period1 := target.Unix()
	period2 := target.AddDate(0, 0, 7).Unix()
	chartURL := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		r.cfg.YahooFinance.BaseURL, url.PathEscape(symbol), period1, period2)

	var chart yahooChart
	if err := r.getJSON(ctx, chartURL, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil || len(chart.Chart.Result) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	closes := closePrices(result.Indicators.Quote, result.Timestamp)
	if len(closes) == 0 {
		return nil, nil
	}
	price := closes[0].price
	return &price, nil
}

type pricePoint struct {
	ts    int64
	price float64
}

type yahooQuote struct {
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
}

func closePrices(quotes []yahooQuote, timestamps []int64) []pricePoint {
	if len(quotes) == 0 {
		return nil
	}
	var points []pricePoint
	for i, close := range quotes[0].Close {
		if close == nil || i >= len(timestamps) {
			continue
		}
		points = append(points, pricePoint{ts: timestamps[i], price: *close})
	}
	return points
}

func simpleMovingAverage(points []pricePoint, window int) float64 {
	if len(points) < window {
		return 0
	}
	var sum float64
	for _, p := range points[len(points)-window:] {
		sum += p.price
	}
	return sum / float64(window)
}

func rangeHighLow(points []pricePoint) (high, low float64, ok bool) {
	if len(points) == 0 {
		return 0, 0, false
	}
	high, low = points[0].price, points[0].price
	for _, p := range points[1:] {
		if p.price > high {
			high = p.price
		}
		if p.price < low {
			low = p.price
		}
	}
	return high, low, true
}

func performance(points []pricePoint, tradingDays int) (string, bool) {
	if len(points) <= tradingDays {
		return "", false
	}
	then := points[len(points)-1-tradingDays].price
	now := points[len(points)-1].price
	if then == 0 {
		return "", false
	}
	return fmt.Sprintf("%+.2f%%", (now-then)/then*100), true
}

func relativeStrengthIndex(points []pricePoint, period int) (float64, bool) {
	if len(points) <= period {
		return 0, false
	}
	var gains, losses float64
	recent := points[len(points)-period-1:]
	for i := 1; i < len(recent); i++ {
		delta := recent[i].price - recent[i-1].price
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}
	if losses == 0 {
		return 100, true
	}
	rs := gains / losses
	return 100 - 100/(1+rs), true
}

func formatSummaryValue(v interface{}) string {
	switch value := v.(type) {
	case map[string]interface{}:
		if fmtStr, ok := value["fmt"].(string); ok {
			return fmtStr
		}
		if raw, ok := value["raw"].(float64); ok {
			return fmt.Sprintf("%g", raw)
		}
		return ""
	case string:
		return value
	case float64:
		return fmt.Sprintf("%g", value)
	default:
		return fmt.Sprintf("%v", value)
	}
}
