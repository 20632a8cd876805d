package telegram

import (
	"fmt"
	"strings"
	"time"
)

// FormatRecommendation renders a recommendation notification as Telegram
// Markdown.
func FormatRecommendation(symbol, name, recommendation string, overallScore float64, price *float64) string {
	var icon string
	switch strings.ToLower(recommendation) {
	case "buy":
		icon = "🟢"
	case "sell":
		icon = "🔴"
	default:
		icon = "🟡"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s *%s* (%s)\n", icon, symbol, name))
	b.WriteString(fmt.Sprintf("📊 *Recommendation:* %s\n", strings.ToUpper(recommendation)))
	b.WriteString(fmt.Sprintf("⚖️ *Overall Score:* %.2f\n", overallScore))
	if price != nil {
		b.WriteString(fmt.Sprintf("💵 *Price:* %.2f\n", *price))
	}
	b.WriteString(fmt.Sprintf("🕐 %s", time.Now().UTC().Format("2006-01-02 15:04 UTC")))
	return b.String()
}
