package services

import (
	"github.com/epicast-dev/epicast-go/internal/utils"
)

// TrueCaseEstimator corrects reported confirmed-case counts for
// under-ascertainment. Reported numbers radically underestimate true cases;
// the extent depends on the region's testing strategy.
type TrueCaseEstimator struct {
	ascertainmentRate float64
}

// NewTrueCaseEstimator creates an estimator from the configured ascertainment
// rate, the proportion of true cases actually diagnosed.
//
// Parameters:
//   - ascertainmentRate: Must lie in (0, 1].
//
// Returns:
//   - *TrueCaseEstimator: The initialized estimator.
//   - error: InvalidParameterError if the rate is outside (0, 1].
func NewTrueCaseEstimator(ascertainmentRate float64) (*TrueCaseEstimator, error) {
	if ascertainmentRate <= 0 || ascertainmentRate > 1 {
		return nil, utils.NewInvalidParameterErrorf("ascertainment rate must be in (0, 1], got %v", ascertainmentRate)
	}
	return &TrueCaseEstimator{ascertainmentRate: ascertainmentRate}, nil
}

// Predict converts an observed confirmed-case count into the estimated true
// number of cases. Deterministic and safe for concurrent use; the estimator
// holds no mutable state.
func (e *TrueCaseEstimator) Predict(confirmedCases float64) float64 {
	return confirmedCases / e.ascertainmentRate
}
