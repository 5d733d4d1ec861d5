package venues

import (
	"regexp"
	"strconv"
	"time"

	"github.com/vivirisk/quotewatch/internal/domain"
)

// Option settlement on every covered venue is 08:00 UTC on the expiry date.
const settlementHourUTC = 8

// ParsedOption is the venue-independent decomposition of an option symbol.
type ParsedOption struct {
	Asset      string
	Strike     float64
	Expiry     time.Time
	Label      string // canonical expiry label, e.g. "27MAR26"
	Type       domain.OptionType
}

var months = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

var monthLabels = [13]string{"", "JAN", "FEB", "MAR", "APR", "MAY", "JUN",
	"JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

// ExpiryLabel renders the canonical expiry label for a settlement date. The
// day carries no leading zero, matching the label most venues embed in their
// symbols, so the same contract gets the same label everywhere.
func ExpiryLabel(t time.Time) string {
	return strconv.Itoa(t.Day()) + monthLabels[t.Month()] + t.Format("06")
}

func settlement(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, settlementHourUTC, 0, 0, 0, time.UTC)
}

var (
	// BTC-20260327-70000C
	powerTradeRe = regexp.MustCompile(`^(\w+)-(\d{8})-(\d+)(C|P)$`)
	// BTC-27MAR26-70000-C, also 5SEP25 without a leading zero
	dayMonthRe = regexp.MustCompile(`^(\w+)-(\d{1,2})([A-Z]{3})(\d{2})-(\d+)-(C|P)$`)
	// BTC-USD-260327-70000-C
	okxRe = regexp.MustCompile(`^(\w+)-USD-(\d{6})-(\d+)-(C|P)$`)
	// BTCUSD-27MAR26-70000-C
	coinCallRe = regexp.MustCompile(`^(\w+)USD-(\d{1,2})([A-Z]{3})(\d{2})-(\d+)-(C|P)$`)
)

// ParsePowerTrade parses a PowerTrade option symbol.
func ParsePowerTrade(symbol string) (ParsedOption, bool) {
	m := powerTradeRe.FindStringSubmatch(symbol)
	if m == nil {
		return ParsedOption{}, false
	}
	date, err := time.Parse("20060102", m[2])
	if err != nil {
		return ParsedOption{}, false
	}
	return buildParsed(m[1], date, m[3], m[4])
}

// ParseDeribit parses a Deribit option symbol. Bybit uses the identical
// scheme, so its client reuses this parser.
func ParseDeribit(symbol string) (ParsedOption, bool) {
	return parseDayMonth(dayMonthRe, symbol)
}

// ParseOKX parses an OKX option symbol.
func ParseOKX(symbol string) (ParsedOption, bool) {
	m := okxRe.FindStringSubmatch(symbol)
	if m == nil {
		return ParsedOption{}, false
	}
	date, err := time.Parse("060102", m[2])
	if err != nil {
		return ParsedOption{}, false
	}
	return buildParsed(m[1], date, m[3], m[4])
}

// ParseCoinCall parses a CoinCall option symbol.
func ParseCoinCall(symbol string) (ParsedOption, bool) {
	return parseDayMonth(coinCallRe, symbol)
}

func parseDayMonth(re *regexp.Regexp, symbol string) (ParsedOption, bool) {
	m := re.FindStringSubmatch(symbol)
	if m == nil {
		return ParsedOption{}, false
	}
	day, _ := strconv.Atoi(m[2])
	month, ok := months[m[3]]
	if !ok {
		return ParsedOption{}, false
	}
	year, _ := strconv.Atoi(m[4])
	date := time.Date(2000+year, month, day, 0, 0, 0, 0, time.UTC)
	// Reject roll-over artifacts like 31FEB26.
	if date.Day() != day || date.Month() != month {
		return ParsedOption{}, false
	}
	return buildParsed(m[1], date, m[5], m[6])
}

func buildParsed(asset string, date time.Time, strike, typ string) (ParsedOption, bool) {
	k, err := strconv.ParseFloat(strike, 64)
	if err != nil || k <= 0 {
		return ParsedOption{}, false
	}
	exp := settlement(date.Year(), date.Month(), date.Day())
	return ParsedOption{
		Asset:  asset,
		Strike: k,
		Expiry: exp,
		Label:  ExpiryLabel(exp),
		Type:   domain.OptionType(typ),
	}, true
}
