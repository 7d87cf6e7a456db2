package performance

import "github.com/schlafen318/dual-momentum-sub001/internal/contracts"

// drawdowns walks the equity curve once and returns the maximum
// drawdown plus the mean depth of all peak-to-trough excursions.
// An excursion still open at the end of the curve counts with the
// depth it reached.
func drawdowns(equity []contracts.EquityPoint) (maxDD, avgDD float64) {
	if len(equity) == 0 {
		return 0, 0
	}

	peak := equity[0].Equity
	inDrawdown := false
	trough := 0.0

	var depths []float64
	for _, point := range equity {
		if point.Equity >= peak {
			if inDrawdown {
				depths = append(depths, trough)
				inDrawdown = false
			}
			peak = point.Equity
			continue
		}

		dd := 0.0
		if peak > 0 {
			dd = (peak - point.Equity) / peak
		}
		if !inDrawdown || dd > trough {
			trough = dd
			inDrawdown = true
		}
		if dd > maxDD {
			maxDD = dd
		}
	}
	if inDrawdown {
		depths = append(depths, trough)
	}

	if len(depths) > 0 {
		sum := 0.0
		for _, d := range depths {
			sum += d
		}
		avgDD = sum / float64(len(depths))
	}
	return maxDD, avgDD
}
