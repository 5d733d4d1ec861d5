package notify

import (
	"fmt"
	"strings"

	"github.com/vivirisk/quotewatch/internal/domain"
)

var categoryEmoji = map[domain.AlertCategory]string{
	domain.CatWide:       "\U0001F4CF",
	domain.CatStale:      "⏱",
	domain.CatCheap:      "\U0001F7E2",
	domain.CatRich:       "\U0001F534",
	domain.CatIVDisloc:   "\U0001F4CA",
	domain.CatPerpArb:    "⚡",
	domain.CatFundingArb: "\U0001F4B0",
}

func emoji(c domain.AlertCategory) string {
	if e, ok := categoryEmoji[c]; ok {
		return e
	}
	return "⚠"
}

func sevDot(s domain.Severity) string {
	if s == domain.SevCritical {
		return "\U0001F534"
	}
	return "\U0001F7E1"
}

func headline(d Digest) string {
	plural := "s"
	if len(d.Alerts) == 1 {
		plural = ""
	}
	return fmt.Sprintf("\U0001F6A8 quotewatch [%s] — %d alert%s",
		strings.ToUpper(d.Env), len(d.Alerts), plural)
}
