// Package stats derives summary statistics from the persisted balance
// history. It uses the cinar/indicator library for the moving average,
// the same channel-based API the rest of the ecosystem uses for price
// series.
package stats

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/vadiminshakov/walletboard/internal/domain"
)

// smaWindow is the default moving-average window; shorter histories use
// their full length instead.
const smaWindow = 20

// Stats summarizes the balance history.
type Stats struct {
	Count       int     `json:"count"`
	Latest      float64 `json:"latest"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Sma         float64 `json:"sma"`
	MaxDrawdown float64 `json:"max_drawdown"`
}

// Compute derives statistics from the snapshots in stored (chronological)
// order. An empty history yields zero-valued stats.
func Compute(snapshots []domain.BalanceSnapshot) Stats {
	if len(snapshots) == 0 {
		return Stats{}
	}

	balances := make([]float64, 0, len(snapshots))
	for _, s := range snapshots {
		balances = append(balances, s.Balance)
	}

	result := Stats{
		Count:  len(balances),
		Latest: balances[len(balances)-1],
		Min:    balances[0],
		Max:    balances[0],
	}

	peak := balances[0]
	for _, b := range balances {
		if b < result.Min {
			result.Min = b
		}
		if b > result.Max {
			result.Max = b
		}
		if b > peak {
			peak = b
		}
		if peak > 0 {
			if drawdown := (peak - b) / peak; drawdown > result.MaxDrawdown {
				result.MaxDrawdown = drawdown
			}
		}
	}

	result.Sma = lastSma(balances)

	return result
}

func lastSma(balances []float64) float64 {
	period := smaWindow
	if len(balances) < period {
		period = len(balances)
	}

	sma := trend.NewSmaWithPeriod[float64](period)
	values := helper.ChanToSlice(sma.Compute(helper.SliceToChan(balances)))
	if len(values) == 0 {
		return 0
	}

	return values[len(values)-1]
}
