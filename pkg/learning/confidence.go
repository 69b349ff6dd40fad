package learning

import (
	"fmt"
	"math"
)

// DefaultZScore is the one-sided critical value for 90% confidence
const DefaultZScore = 1.65

// Interval is a confidence interval. Bounds are not clamped to [0,1].
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Contains reports whether p lies within the interval
func (i Interval) Contains(p float64) bool {
	return i.Lower <= p && p <= i.Upper
}

// Width returns Upper - Lower
func (i Interval) Width() float64 {
	return i.Upper - i.Lower
}

func (i Interval) String() string {
	return fmt.Sprintf("[%.4f, %.4f]", i.Lower, i.Upper)
}

// Confidence holds the interval estimates around both message probabilities
type Confidence struct {
	PooledStdDev float64  `json:"pooled_stddev"`
	Spam         Interval `json:"spam"`
	Ham          Interval `json:"ham"`
}

// Estimate computes the pooled standard deviation of the two proportions under
// the normal approximation and a ±z interval around each.
func Estimate(pSpam, pHam float64, nSpam, nHam int, z float64) (Confidence, error) {
	if nSpam <= 0 {
		return Confidence{}, fmt.Errorf("confidence estimate: %w", ErrNoSpamDocuments)
	}
	if nHam <= 0 {
		return Confidence{}, fmt.Errorf("confidence estimate: %w", ErrNoHamDocuments)
	}

	variance := pSpam*(1-pSpam)/float64(nSpam) + pHam*(1-pHam)/float64(nHam)
	dev := math.Sqrt(math.Max(variance, 0))
	margin := z * dev

	return Confidence{
		PooledStdDev: dev,
		Spam:         Interval{Lower: pSpam - margin, Upper: pSpam + margin},
		Ham:          Interval{Lower: pHam - margin, Upper: pHam + margin},
	}, nil
}
