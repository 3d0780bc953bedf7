package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"TrendRadar/internal/model"
	"TrendRadar/internal/ranking"
)

var signalIcon = map[model.Signal]string{
	model.SignalBuy:  "🟢",
	model.SignalSell: "🔴",
	model.SignalHold: "⚪",
}

// FormatRanking formats the top results of a scan into a Telegram message.
func FormatRanking(runID string, at time.Time, r *ranking.Ranking, top int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>TrendRadar scan</b> | %s\n", at.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("run %s | ranked %d, skipped %d\n\n", shortID(runID), len(r.Results), len(r.Skipped)))

	results := r.Top(top)
	if len(results) == 0 {
		b.WriteString("No instruments ranked.\n")
	}
	for i, res := range results {
		b.WriteString(fmt.Sprintf("%2d. %s <b>%s</b> %s score %+.2f | close %s | RSI %s\n",
			i+1, signalIcon[res.Signal], html.EscapeString(res.Market), res.Signal,
			res.Score, formatPrice(res.Close), res.RSI))
	}

	if len(r.Skipped) > 0 {
		b.WriteString("\n⚠️ <b>Skipped:</b>\n")
		for _, s := range r.Skipped {
			b.WriteString(fmt.Sprintf("  %s: %s\n", html.EscapeString(s.Market), html.EscapeString(s.Reason)))
		}
	}
	return b.String()
}

// FormatBuySignals lists the instruments whose latest signal is BUY.
func FormatBuySignals(r *ranking.Ranking) string {
	var b strings.Builder
	b.WriteString("🟢 <b>BUY signals</b>\n\n")

	buys := r.BuySignals()
	if len(buys) == 0 {
		b.WriteString("None this scan.\n")
		return b.String()
	}
	for _, res := range buys {
		b.WriteString(fmt.Sprintf("<b>%s</b> close %s | RSI %s | score %+.2f\n",
			html.EscapeString(res.Market), formatPrice(res.Close), res.RSI, res.Score))
	}
	return b.String()
}

func formatPrice(p float64) string {
	switch {
	case p >= 1000:
		return fmt.Sprintf("%.0f", p)
	case p >= 1:
		return fmt.Sprintf("%.2f", p)
	default:
		return fmt.Sprintf("%.6f", p)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
