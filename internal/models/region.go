package models

import "time"

// RegionState is the per-region snapshot the collector maintains. It is
// read-only to the projection engine; hospital beds are surfaced alongside
// forecasts for comparison but never consumed by the simulation itself.
type RegionState struct {
	Name           string    `json:"name" db:"name"`
	Population     int64     `json:"population" db:"population"`
	ConfirmedCases int64     `json:"confirmed_cases" db:"confirmed_cases"`
	RecoveredCases int64     `json:"recovered_cases" db:"recovered_cases"`
	Deaths         int64     `json:"deaths" db:"deaths"`
	HospitalBeds   int64     `json:"hospital_beds" db:"hospital_beds"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// RegionListResponse wraps the region listing for API responses.
type RegionListResponse struct {
	Regions     []RegionState `json:"regions"`
	Total       int           `json:"total"`
	LastFetched *time.Time    `json:"last_fetched,omitempty"`
}

// RegionDetailResponse is a single region's stats plus a formatted summary
// line and the dataset's last-fetched timestamp.
type RegionDetailResponse struct {
	Region      RegionState `json:"region"`
	Summary     string      `json:"summary"`
	LastFetched *time.Time  `json:"last_fetched,omitempty"`
}
