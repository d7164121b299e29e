package models

import (
	"github.com/epicast-dev/epicast-go/internal/utils"
)

// RateParameter is a named epidemiological rate with its plausible bounds.
// Values are fractions in [0, 1] (the removal rate is a reciprocal-day
// probability and also lies in [0, 1]). Instances are built once at startup
// and never mutated.
type RateParameter struct {
	Min     float64 `json:"min" mapstructure:"min"`
	Default float64 `json:"default" mapstructure:"default"`
	Max     float64 `json:"max" mapstructure:"max"`
}

// Validate checks that the parameter bounds are ordered and within [0, 1].
func (p RateParameter) Validate(name string) error {
	if p.Min < 0 || p.Max > 1 {
		return utils.NewInvalidParameterErrorf("%s bounds must lie in [0, 1], got [%v, %v]", name, p.Min, p.Max)
	}
	if p.Min > p.Default || p.Default > p.Max {
		return utils.NewInvalidParameterErrorf("%s bounds must satisfy min <= default <= max, got %v <= %v <= %v", name, p.Min, p.Default, p.Max)
	}
	return nil
}

// DiseaseRates bundles the process-wide rate parameters consumed by the
// projection engine. The contact rate is the only one a caller may override
// per request; everything else stays at its configured default.
type DiseaseRates struct {
	Transmission    RateParameter `json:"transmission" mapstructure:"transmission"`
	DailyContacts   RateParameter `json:"daily_contacts" mapstructure:"daily_contacts"`
	Removal         RateParameter `json:"removal" mapstructure:"removal"`
	Ascertainment   RateParameter `json:"ascertainment" mapstructure:"ascertainment"`
	Mortality       RateParameter `json:"mortality" mapstructure:"mortality"`
	Hospitalization RateParameter `json:"hospitalization" mapstructure:"hospitalization"`
	Ventilation     RateParameter `json:"ventilation" mapstructure:"ventilation"`
}

// DefaultDiseaseRates returns the peer-reviewed estimates the service ships
// with. Sources are the MIDAS network parameter estimates for the 2019 novel
// coronavirus.
func DefaultDiseaseRates() DiseaseRates {
	return DiseaseRates{
		// Probability that a contact between a carrier and a susceptible
		// person leads to infection.
		Transmission: RateParameter{Min: 0.01, Default: 0.018, Max: 0.022},
		// People an infected person comes into contact with daily. The
		// default bounds match the control surface's slider range, so a
		// caller-supplied value inside the slider never fails validation.
		DailyContacts: RateParameter{Min: 0, Default: 20, Max: 100},
		// Daily probability of leaving the infected compartment. Recovery
		// period is around 10 days.
		Removal: RateParameter{Min: 1.0 / 14.0, Default: 1.0 / 10.0, Max: 1.0 / 7.0},
		// Proportion of true cases actually diagnosed.
		Ascertainment: RateParameter{Min: 0.05, Default: 0.1, Max: 0.25},
		Mortality:     RateParameter{Min: 0.005, Default: 0.01, Max: 0.05},
		// Cases requiring hospitalization.
		Hospitalization: RateParameter{Min: 0.1, Default: 0.15, Max: 0.2},
		// Hospitalized cases requiring ICU care.
		Ventilation: RateParameter{Min: 0.01, Default: 0.015, Max: 0.02},
	}
}

// Validate checks every rate parameter in the bundle. The daily-contact
// parameter is a count, not a fraction, so only its ordering is checked.
func (r DiseaseRates) Validate() error {
	if r.DailyContacts.Min > r.DailyContacts.Default || r.DailyContacts.Default > r.DailyContacts.Max {
		return utils.NewInvalidParameterErrorf("daily contact bounds must satisfy min <= default <= max, got %v <= %v <= %v",
			r.DailyContacts.Min, r.DailyContacts.Default, r.DailyContacts.Max)
	}
	if r.DailyContacts.Min < 0 {
		return utils.NewInvalidParameterErrorf("daily contact rate cannot be negative, got %v", r.DailyContacts.Min)
	}
	checks := []struct {
		name string
		p    RateParameter
	}{
		{"transmission rate", r.Transmission},
		{"removal rate", r.Removal},
		{"ascertainment rate", r.Ascertainment},
		{"mortality rate", r.Mortality},
		{"hospitalization rate", r.Hospitalization},
		{"ventilation rate", r.Ventilation},
	}
	for _, c := range checks {
		if err := c.p.Validate(c.name); err != nil {
			return err
		}
	}
	return nil
}
