// Package vol prices European options under Black-Scholes and inverts the
// pricing function numerically to recover implied volatility. The solver
// exists for cross-venue vol comparison, not for quoting: when it cannot
// converge it reports no answer and the caller simply skips the comparison.
package vol

import (
	"math"

	"github.com/vivirisk/quotewatch/internal/domain"
)

const (
	seedVol     = 0.5
	maxIter     = 60
	minVega     = 1e-10
	priceEps    = 1e-8
	volFloor    = 0.001
	volCeil     = 10.0
	minTenor    = 1e-6 // years; below this the option trades at intrinsic
	sqrtTwoPi   = 2.5066282746310002
	acceptFloor = 0.005 // results at the clamp boundary are non-answers
	acceptCeil  = 9.9
)

// normCDF is the standard normal CDF via the Abramowitz-Stegun erf
// approximation (7.1.26). Max absolute error ~1.5e-7, which is far below
// the vol-point granularity anything downstream cares about.
func normCDF(x float64) float64 {
	const (
		a1 = 0.254829592
		a2 = -0.284496736
		a3 = 1.421413741
		a4 = -1.453152027
		a5 = 1.061405429
		p  = 0.3275911
	)
	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	ax := math.Abs(x) / math.Sqrt2
	t := 1 / (1 + p*ax)
	y := 1 - (((((a5*t+a4)*t+a3)*t+a2)*t+a1)*t)*math.Exp(-ax*ax)
	return 0.5 * (1 + sign*y)
}

// Price returns the Black-Scholes price of a European option. Below the
// minimum tenor or volatility it degenerates to intrinsic value.
func Price(spot, strike, tte, rate, sigma float64, typ domain.OptionType) float64 {
	if tte <= minTenor || sigma <= 1e-6 {
		if typ == domain.Call {
			return math.Max(0, spot-strike)
		}
		return math.Max(0, strike-spot)
	}
	sq := math.Sqrt(tte)
	d1 := (math.Log(spot/strike) + (rate+sigma*sigma/2)*tte) / (sigma * sq)
	d2 := d1 - sigma*sq
	if typ == domain.Call {
		return spot*normCDF(d1) - strike*math.Exp(-rate*tte)*normCDF(d2)
	}
	return strike*math.Exp(-rate*tte)*normCDF(-d2) - spot*normCDF(-d1)
}

// Implied recovers the volatility that reproduces price under Black-Scholes,
// via Newton-Raphson seeded at 0.5. The second return value is false when no
// trustworthy answer exists: degenerate inputs, vanishing vega, divergent
// iteration, or a result pinned to the clamp boundary.
func Implied(price, spot, strike, tte, rate float64, typ domain.OptionType) (float64, bool) {
	if tte <= minTenor || price <= 0 || spot <= 0 {
		return 0, false
	}

	v := seedVol
	prevStep := math.Inf(1)
	for i := 0; i < maxIter; i++ {
		model := Price(spot, strike, tte, rate, v, typ)
		d1 := (math.Log(spot/strike) + (rate+v*v/2)*tte) / (v * math.Sqrt(tte))
		vega := spot * math.Sqrt(tte) * math.Exp(-d1*d1/2) / sqrtTwoPi
		if vega < minVega {
			break
		}
		step := (model - price) / vega
		// A step that more than doubles versus the previous one after the
		// iteration count settles means the iteration is oscillating, not
		// converging; bail rather than return whatever it lands on.
		if math.Abs(step) > math.Abs(prevStep)*2 && i > 5 {
			break
		}
		prevStep = step
		v -= step
		if v <= volFloor {
			v = volFloor
		}
		if v > volCeil {
			v = volCeil
		}
		if math.Abs(step) < priceEps {
			break
		}
	}

	if v > acceptFloor && v < acceptCeil {
		return v, true
	}
	return 0, false
}
