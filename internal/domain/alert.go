package domain

// AlertCategory enumerates the kinds of conditions the engine surfaces.
type AlertCategory string

const (
	// CatStale covers pulled quotes and imminent expiries with open interest.
	CatStale AlertCategory = "PT_STALE"
	// CatWide covers spreads that blew out or drifted versus baseline.
	CatWide AlertCategory = "PT_WIDE"
	// CatIVDisloc covers implied-volatility gaps against a reference venue.
	CatIVDisloc AlertCategory = "MKT_IV"
	// CatCheap / CatRich cover price-level dislocations of the primary venue
	// below / above the reference market.
	CatCheap AlertCategory = "PT_CHEAP"
	CatRich  AlertCategory = "PT_RICH"
	// CatPerpArb covers perpetual basis divergence across venues.
	CatPerpArb AlertCategory = "PERP_ARB"
	// CatFundingArb covers funding-rate divergence across venues.
	CatFundingArb AlertCategory = "FUND_ARB"
)

// Severity tiers an alert. Only two tiers exist; anything below warning is
// not an alert.
type Severity string

const (
	SevCritical Severity = "critical"
	SevWarning  Severity = "warning"
)

// Alert is one surfaced finding. Alerts are values: the reducer builds new
// lists and never edits an alert after creation.
type Alert struct {
	ID         string        `json:"id"`
	Category   AlertCategory `json:"category"`
	Severity   Severity      `json:"severity"`
	Asset      string        `json:"asset"`
	Title      string        `json:"title"` // instrument or pair reference
	Message    string        `json:"message"`
	Confidence float64       `json:"confidence"` // 0-100 materiality score

	// Net is the estimated net edge in currency units for arbitrage
	// categories; Profitable marks edges that survive fees and slippage.
	Net        float64 `json:"net,omitempty"`
	Profitable bool    `json:"profitable,omitempty"`
}

// RunStats is the aggregate record emitted alongside the alert list.
type RunStats struct {
	// HealthPct is the share of baseline-quoted instruments whose current
	// spread is within tolerance of their bucket's baseline p95.
	HealthPct float64 `json:"health_pct"`
	// CoveragePct is the share of listed instruments currently QUOTED.
	CoveragePct float64 `json:"coverage_pct"`

	Quoted   int `json:"quoted"`
	Wide     int `json:"wide"`
	OneSided int `json:"one_sided"`
	Empty    int `json:"empty"`
	Total    int `json:"total"`

	Critical   int `json:"critical"`
	Warning    int `json:"warning"`
	Actionable int `json:"actionable"`
	// Suppressed counts signals dropped by materiality or confidence filters.
	Suppressed int `json:"suppressed"`
}

// Report is the full output of one run.
type Report struct {
	Alerts []Alert  `json:"alerts"`
	Stats  RunStats `json:"stats"`
}
