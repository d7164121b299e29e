package models

import (
	"time"

	"github.com/epicast-dev/epicast-go/internal/utils"
)

// Status identifies one forecast series in the projection output. Statuses
// are a closed enum so a typo cannot silently create a new series.
type Status string

const (
	StatusConfirmed           Status = "Confirmed"
	StatusTrueInfected        Status = "True Infected"
	StatusInfected            Status = "Infected"
	StatusRecovered           Status = "Recovered"
	StatusDead                Status = "Dead"
	StatusNeedHospitalization Status = "Need Hospitalization"
	StatusNeedVentilation     Status = "Need Ventilation"
)

// AllStatuses lists every series a projection run emits, in output order.
func AllStatuses() []Status {
	return []Status{
		StatusConfirmed,
		StatusTrueInfected,
		StatusInfected,
		StatusRecovered,
		StatusDead,
		StatusNeedHospitalization,
		StatusNeedVentilation,
	}
}

// Valid reports whether s is one of the known series.
func (s Status) Valid() bool {
	switch s {
	case StatusConfirmed, StatusTrueInfected, StatusInfected, StatusRecovered,
		StatusDead, StatusNeedHospitalization, StatusNeedVentilation:
		return true
	}
	return false
}

// SimulationState is the compartment triple for one simulated day.
// Susceptible + Infected + Removed equals the total population for every day.
type SimulationState struct {
	Day         int     `json:"day"`
	Susceptible float64 `json:"susceptible"`
	Infected    float64 `json:"infected"`
	Removed     float64 `json:"removed"`
}

// ProjectionRow is one (day, status) cell of the long-form forecast table.
type ProjectionRow struct {
	Day      int     `json:"day"`
	Status   Status  `json:"status"`
	Forecast float64 `json:"forecast"`
}

// ProjectionRequest carries the four caller-controlled inputs of a run. The
// contact rate is the single per-request override; all other rates come from
// process-wide defaults.
type ProjectionRequest struct {
	ConfirmedCases int64   `json:"confirmed_cases" form:"confirmed_cases"`
	Population     int64   `json:"population" form:"population"`
	HorizonDays    int     `json:"horizon_days" form:"horizon_days"`
	ContactRate    float64 `json:"contact_rate" form:"contact_rate"`
}

// Validate rejects inputs the engine would refuse anyway, so callers get a
// uniform error before any simulation work starts.
func (r ProjectionRequest) Validate() error {
	if r.ConfirmedCases < 0 {
		return utils.NewInvalidParameterErrorf("confirmed cases cannot be negative, got %d", r.ConfirmedCases)
	}
	if r.Population <= 0 {
		return utils.NewInvalidParameterErrorf("population must be positive, got %d", r.Population)
	}
	if r.HorizonDays < 0 {
		return utils.NewInvalidParameterErrorf("horizon days cannot be negative, got %d", r.HorizonDays)
	}
	if r.ContactRate < 0 {
		return utils.NewInvalidParameterErrorf("contact rate cannot be negative, got %v", r.ContactRate)
	}
	return nil
}

// ProjectionResult is the full output of one run. Rows are grouped by status
// and ordered by increasing day within each status; the same (day, status)
// pair never repeats.
type ProjectionResult struct {
	RunID        string          `json:"run_id"`
	GeneratedAt  time.Time       `json:"generated_at"`
	HorizonDays  int             `json:"horizon_days"`
	TrueInitial  float64         `json:"true_initial_infected"`
	PeakInfected float64         `json:"peak_infected"`
	PeakDay      int             `json:"peak_day"`
	Rows         []ProjectionRow `json:"rows"`
}

// RegionProjectionResponse pairs a projection with the region snapshot it was
// seeded from, for the capacity-comparison view.
type RegionProjectionResponse struct {
	Region      RegionState      `json:"region"`
	Projection  ProjectionResult `json:"projection"`
	LastFetched *time.Time       `json:"last_fetched,omitempty"`
}
