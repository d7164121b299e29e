package services

import (
	"github.com/epicast-dev/epicast-go/internal/models"
	"github.com/epicast-dev/epicast-go/internal/utils"
)

// SIRModel is a discrete-time compartmental epidemic model. Each day the
// population moves between Susceptible, Infected and Removed compartments
// under a forward-Euler discretization of the classic SIR equations.
type SIRModel struct {
	transmissionRate float64
	contactRate      float64
	removalRate      float64
}

// NewSIRModel creates a model from its three rate parameters.
//
// Parameters:
//   - transmissionRate: Probability a single contact transmits, in [0, 1].
//   - contactRate: Average daily contacts per infected person, >= 0.
//   - removalRate: Daily probability of leaving the infected compartment, in [0, 1].
//
// Returns:
//   - *SIRModel: The initialized model.
//   - error: InvalidParameterError if any rate is outside its domain.
func NewSIRModel(transmissionRate, contactRate, removalRate float64) (*SIRModel, error) {
	if transmissionRate < 0 || transmissionRate > 1 {
		return nil, utils.NewInvalidParameterErrorf("transmission rate must be in [0, 1], got %v", transmissionRate)
	}
	if contactRate < 0 {
		return nil, utils.NewInvalidParameterErrorf("contact rate cannot be negative, got %v", contactRate)
	}
	if removalRate < 0 || removalRate > 1 {
		return nil, utils.NewInvalidParameterErrorf("removal rate must be in [0, 1], got %v", removalRate)
	}
	return &SIRModel{
		transmissionRate: transmissionRate,
		contactRate:      contactRate,
		removalRate:      removalRate,
	}, nil
}

// Simulate runs the model forward and returns one state per day from day 0 to
// horizonDays inclusive. The run always covers the full horizon so downstream
// series stay defined after the epidemic burns out; there is no early exit.
//
// Compartments are clamped to [0, N] after every step. The clamp is a
// correctness requirement, not cosmetics: it also pins the terminal behavior
// once the epidemic has ended (I -> 0, R -> final size) against
// floating-point drift.
func (m *SIRModel) Simulate(initialInfected, totalPopulation float64, horizonDays int) ([]models.SimulationState, error) {
	if totalPopulation <= 0 {
		return nil, utils.NewInvalidParameterErrorf("total population must be positive, got %v", totalPopulation)
	}
	if initialInfected < 0 {
		return nil, utils.NewInvalidParameterErrorf("initial infected cannot be negative, got %v", initialInfected)
	}
	if horizonDays < 0 {
		return nil, utils.NewInvalidParameterErrorf("horizon days cannot be negative, got %d", horizonDays)
	}

	n := totalPopulation
	infected := clamp(initialInfected, n)
	susceptible := clamp(n-infected, n)
	removed := 0.0

	states := make([]models.SimulationState, 0, horizonDays+1)
	states = append(states, models.SimulationState{
		Day:         0,
		Susceptible: susceptible,
		Infected:    infected,
		Removed:     removed,
	})

	for day := 1; day <= horizonDays; day++ {
		newInfections := m.transmissionRate * m.contactRate * susceptible * infected / n
		// The Euler step can overshoot the susceptible pool at extreme
		// contact rates; no more people can be infected than remain
		// susceptible, and capping here keeps S+I+R conserved exactly.
		if newInfections > susceptible {
			newInfections = susceptible
		}
		newRemovals := m.removalRate * infected

		susceptible = clamp(susceptible-newInfections, n)
		infected = clamp(infected+newInfections-newRemovals, n)
		removed = clamp(removed+newRemovals, n)

		states = append(states, models.SimulationState{
			Day:         day,
			Susceptible: susceptible,
			Infected:    infected,
			Removed:     removed,
		})
	}

	return states, nil
}

// clamp bounds a compartment count to [0, n].
func clamp(v, n float64) float64 {
	if v < 0 {
		return 0
	}
	if v > n {
		return n
	}
	return v
}
