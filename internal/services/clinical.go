package services

import (
	"github.com/epicast-dev/epicast-go/internal/utils"
)

// MortalityModel maps an infection count to the expected death toll. It is a
// pure proportional model with no internal state.
type MortalityModel struct {
	mortalityRate float64
}

// NewMortalityModel creates a mortality model.
//
// Parameters:
//   - mortalityRate: Case fatality fraction, in [0, 1].
//
// Returns:
//   - *MortalityModel: The initialized model.
//   - error: InvalidParameterError if the rate is outside [0, 1].
func NewMortalityModel(mortalityRate float64) (*MortalityModel, error) {
	if mortalityRate < 0 || mortalityRate > 1 {
		return nil, utils.NewInvalidParameterErrorf("mortality rate must be in [0, 1], got %v", mortalityRate)
	}
	return &MortalityModel{mortalityRate: mortalityRate}, nil
}

// Predict returns the expected deaths among the given infection count.
func (m *MortalityModel) Predict(infected float64) float64 {
	return infected * m.mortalityRate
}

// Rate returns the configured mortality fraction.
func (m *MortalityModel) Rate() float64 {
	return m.mortalityRate
}

// HospitalizationModel maps an infection count to hospital-bed and ventilator
// demand. Ventilation is modeled as a sub-fraction of the hospitalized
// population, not of all infections, so ventilator demand never exceeds bed
// demand.
type HospitalizationModel struct {
	hospitalizationRate float64
	ventilationRate     float64
}

// NewHospitalizationModel creates a hospitalization model.
//
// Parameters:
//   - hospitalizationRate: Fraction of infections needing a bed, in [0, 1].
//   - ventilationRate: Fraction of hospitalizations needing ICU care, in [0, 1].
//
// Returns:
//   - *HospitalizationModel: The initialized model.
//   - error: InvalidParameterError if either rate is outside [0, 1].
func NewHospitalizationModel(hospitalizationRate, ventilationRate float64) (*HospitalizationModel, error) {
	if hospitalizationRate < 0 || hospitalizationRate > 1 {
		return nil, utils.NewInvalidParameterErrorf("hospitalization rate must be in [0, 1], got %v", hospitalizationRate)
	}
	if ventilationRate < 0 || ventilationRate > 1 {
		return nil, utils.NewInvalidParameterErrorf("ventilation rate must be in [0, 1], got %v", ventilationRate)
	}
	return &HospitalizationModel{
		hospitalizationRate: hospitalizationRate,
		ventilationRate:     ventilationRate,
	}, nil
}

// PredictHospitalized returns the expected number of currently infected
// people needing a hospital bed.
func (m *HospitalizationModel) PredictHospitalized(infected float64) float64 {
	return infected * m.hospitalizationRate
}

// PredictVentilated returns the expected number needing a ventilator.
func (m *HospitalizationModel) PredictVentilated(infected float64) float64 {
	return infected * m.hospitalizationRate * m.ventilationRate
}
