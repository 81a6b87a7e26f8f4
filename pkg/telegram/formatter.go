package telegram

import (
	"fmt"
	"strings"
)

// DigestItem is one newly ingested funding round for the run digest.
type DigestItem struct {
	Company string
	Amount  string
	Round   string
	Date    string
}

// FormatFundingDigest renders a Markdown digest of the funding rounds a run
// discovered. Returns an empty string when there is nothing to report.
func FormatFundingDigest(runName string, items []DigestItem) string {
	if len(items) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("*%s*\n", runName))
	b.WriteString(fmt.Sprintf("%d new funding round(s):\n\n", len(items)))
	for _, item := range items {
		amount := item.Amount
		if amount == "" {
			amount = "undisclosed"
		}
		round := item.Round
		if round == "" {
			round = "unspecified round"
		}
		b.WriteString(fmt.Sprintf("• *%s* — %s (%s", escapeMarkdown(item.Company), escapeMarkdown(amount), escapeMarkdown(round)))
		if item.Date != "" {
			b.WriteString(", " + escapeMarkdown(item.Date))
		}
		b.WriteString(")\n")
	}
	return b.String()
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"`", "\\`",
		"[", "\\[",
	)
	return replacer.Replace(s)
}
