package commands

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/schlafen318/dual-momentum-sub001/internal/contracts"
	"github.com/schlafen318/dual-momentum-sub001/internal/runconfig"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// formatMoney renders an amount with thousands separators.
func formatMoney(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}

	whole := int64(v)
	frac := int64((v-float64(whole))*100 + 0.5)
	if frac == 100 { // rounding carried into the next unit
		whole++
		frac = 0
	}

	s := fmt.Sprintf("%s.%02d", groupThousands(whole), frac)
	if neg {
		return "-" + s
	}
	return s
}

func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	var result []rune
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, c)
	}
	return string(result)
}

// formatPct renders a fraction as a signed percentage.
func formatPct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v*100)
}

// sharpeBadge grades the ratio for the report.
func sharpeBadge(s float64) string {
	switch {
	case s > 3.0:
		return " 🌟 (Excellent)"
	case s > 2.0:
		return " ✅ (Good)"
	case s > 1.0:
		return " ⚠️  (Fair)"
	default:
		return " ❌ (Poor)"
	}
}

// printWarnings lists non-fatal config warnings.
func printWarnings(warnings []runconfig.Warning) {
	for _, w := range warnings {
		fmt.Printf("⚠️  [%s] %s\n", w.Code, w.Message)
	}
	if len(warnings) > 0 {
		fmt.Println()
	}
}

// printTrades renders the most recent fills as a table.
func printTrades(w io.Writer, trades []contracts.Trade, limit int) {
	if len(trades) == 0 {
		fmt.Fprintln(w, "(no trades)")
		return
	}

	start := 0
	if limit > 0 && len(trades) > limit {
		start = len(trades) - limit
		fmt.Fprintf(w, "... %d earlier trades omitted\n", start)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Date", "Symbol", "Side", "Qty", "Price", "Notional", "PnL")
	for _, tr := range trades[start:] {
		pnl := ""
		if tr.Side == contracts.OrderSideSell {
			pnl = formatMoney(tr.PnL)
		}
		table.Append(
			tr.Date.Format("2006-01-02"),
			tr.Symbol,
			string(tr.Side),
			fmt.Sprintf("%.4f", tr.Quantity),
			fmt.Sprintf("%.2f", tr.Price),
			formatMoney(tr.Notional),
			pnl,
		)
	}
	table.Render()
}
