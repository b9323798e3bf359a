package notifier

import (
	"fmt"
	"strings"

	"FundEye/internal/model"
)

// FormatValuationSummary renders the tracked set as a Telegram HTML
// message, one line per fund.
func FormatValuationSummary(funds []model.Fund) string {
	var b strings.Builder
	b.WriteString("📈 <b>基金估值更新</b>\n\n")

	for _, f := range funds {
		icon := "➖"
		if f.EstimatedChange > 0 {
			icon = "🔺"
		} else if f.EstimatedChange < 0 {
			icon = "🔻"
		}
		kind := "估算"
		if f.IsRealValue {
			kind = "净值"
		}
		fmt.Fprintf(&b, "%s <b>%s</b> (%s)\n    %s %.4f | %+.2f%%\n",
			icon, f.Name, f.Code, kind, f.EstimatedValue, f.EstimatedChange)
	}

	if len(funds) > 0 {
		fmt.Fprintf(&b, "\n更新时间: %s", funds[0].UpdateTime)
	}
	return b.String()
}
