package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epicast-dev/epicast-go/internal/utils"
)

func newTestSIRModel(t *testing.T, contactRate float64) *SIRModel {
	t.Helper()
	m, err := NewSIRModel(0.018, contactRate, 0.1)
	require.NoError(t, err)
	return m
}

func TestNewSIRModelRejectsBadRates(t *testing.T) {
	tests := []struct {
		name                                       string
		transmissionRate, contactRate, removalRate float64
	}{
		{"negative transmission", -0.01, 20, 0.1},
		{"transmission above one", 1.5, 20, 0.1},
		{"negative contact rate", 0.018, -1, 0.1},
		{"negative removal", 0.018, 20, -0.1},
		{"removal above one", 0.018, 20, 1.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSIRModel(tt.transmissionRate, tt.contactRate, tt.removalRate)
			require.Error(t, err)
			assert.True(t, utils.IsInvalidParameter(err))
		})
	}
}

func TestSimulateRejectsInvalidInputs(t *testing.T) {
	m := newTestSIRModel(t, 20)

	_, err := m.Simulate(1000, 0, 90)
	require.Error(t, err, "zero population divides by zero in the contact term")
	assert.True(t, utils.IsInvalidParameter(err))

	_, err = m.Simulate(1000, -5, 90)
	assert.Error(t, err)

	_, err = m.Simulate(-1, 1000000, 90)
	assert.Error(t, err)

	_, err = m.Simulate(1000, 1000000, -1)
	assert.Error(t, err)
}

func TestSimulateDayCount(t *testing.T) {
	m := newTestSIRModel(t, 20)

	states, err := m.Simulate(1000, 1000000, 90)
	require.NoError(t, err)
	require.Len(t, states, 91, "one state per day from 0 to horizon inclusive")
	assert.Equal(t, 0, states[0].Day)
	assert.Equal(t, 90, states[90].Day)

	// A zero horizon still yields the initial state.
	states, err = m.Simulate(1000, 1000000, 0)
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, 1000.0, states[0].Infected)
	assert.Equal(t, 999000.0, states[0].Susceptible)
	assert.Equal(t, 0.0, states[0].Removed)
}

func TestSimulateConservesPopulation(t *testing.T) {
	const population = 1000000.0

	contactRates := []float64{0, 5, 20, 100}
	for _, cr := range contactRates {
		m := newTestSIRModel(t, cr)
		states, err := m.Simulate(1000, population, 365)
		require.NoError(t, err)

		for _, st := range states {
			total := st.Susceptible + st.Infected + st.Removed
			assert.InDelta(t, population, total, 1e-6*population,
				"day %d at contact rate %v", st.Day, cr)
		}
	}
}

func TestSimulateNonNegativeCompartments(t *testing.T) {
	// Maximal transmission pressure would drive S negative without clamping.
	m, err := NewSIRModel(1, 100, 1)
	require.NoError(t, err)

	states, err := m.Simulate(999999, 1000000, 180)
	require.NoError(t, err)

	for _, st := range states {
		assert.GreaterOrEqual(t, st.Susceptible, 0.0, "day %d", st.Day)
		assert.GreaterOrEqual(t, st.Infected, 0.0, "day %d", st.Day)
		assert.GreaterOrEqual(t, st.Removed, 0.0, "day %d", st.Day)
	}
}

func TestSimulateRemovedMonotonic(t *testing.T) {
	m := newTestSIRModel(t, 20)

	states, err := m.Simulate(1000, 1000000, 365)
	require.NoError(t, err)

	for i := 1; i < len(states); i++ {
		assert.GreaterOrEqual(t, states[i].Removed, states[i-1].Removed,
			"removed must be non-decreasing, day %d", states[i].Day)
	}
}

func TestSimulateZeroInfectionFixedPoint(t *testing.T) {
	m := newTestSIRModel(t, 20)

	states, err := m.Simulate(0, 1000000, 180)
	require.NoError(t, err)

	for _, st := range states {
		assert.Equal(t, 0.0, st.Infected, "day %d", st.Day)
		assert.Equal(t, 1000000.0, st.Susceptible, "day %d", st.Day)
		assert.Equal(t, 0.0, st.Removed, "day %d", st.Day)
	}
}

func TestSimulateZeroContactRateDecays(t *testing.T) {
	m := newTestSIRModel(t, 0)

	states, err := m.Simulate(1000, 1000000, 90)
	require.NoError(t, err)

	for i := 1; i < len(states); i++ {
		assert.Less(t, states[i].Infected, states[i-1].Infected,
			"with no contacts the infected count is driven down by removal only")
	}
	// Susceptible pool untouched without new infections.
	assert.Equal(t, 999000.0, states[90].Susceptible)
}

func TestSimulateEpidemicPeaksOnce(t *testing.T) {
	// Scenario 1 parameters: the trajectory rises to a single interior peak
	// and falls within the 90-day window.
	m := newTestSIRModel(t, 20)

	states, err := m.Simulate(1000, 1000000, 90)
	require.NoError(t, err)

	peakDay := 0
	peakVal := 0.0
	for _, st := range states {
		if st.Infected > peakVal {
			peakVal = st.Infected
			peakDay = st.Day
		}
	}
	assert.Greater(t, peakDay, 0, "peak must be interior")
	assert.Less(t, peakDay, 90, "peak must be interior")

	// Strictly rising before the peak, strictly falling after it.
	for i := 1; i <= peakDay; i++ {
		assert.Greater(t, states[i].Infected, states[i-1].Infected, "day %d", i)
	}
	for i := peakDay + 1; i < len(states); i++ {
		assert.Less(t, states[i].Infected, states[i-1].Infected, "day %d", i)
	}
}

func TestSimulateInitialInfectedAbovePopulationIsClamped(t *testing.T) {
	m := newTestSIRModel(t, 20)

	states, err := m.Simulate(2000, 1000, 10)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, states[0].Infected)
	assert.Equal(t, 0.0, states[0].Susceptible)
}
