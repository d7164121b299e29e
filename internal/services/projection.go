package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/epicast-dev/epicast-go/internal/models"
)

// ProjectionService orchestrates the projection pipeline: it seeds the
// true-case estimate, runs the compartmental simulation and derives the
// clinical-burden series into one long-form table. All collaborators are
// immutable after construction, so one service instance can serve concurrent
// requests without locking.
type ProjectionService struct {
	rates           models.DiseaseRates
	estimator       *TrueCaseEstimator
	mortality       *MortalityModel
	hospitalization *HospitalizationModel
	logger          *logrus.Logger
}

// NewProjectionService builds the pipeline from the process-wide rate
// parameters. Parameter validation is delegated entirely to the sub-models;
// any InvalidParameterError they raise propagates unchanged.
//
// Parameters:
//   - rates: The configured disease rate parameters.
//   - logger: Application logger.
//
// Returns:
//   - *ProjectionService: The initialized service.
//   - error: InvalidParameterError if any configured rate is out of domain.
func NewProjectionService(rates models.DiseaseRates, logger *logrus.Logger) (*ProjectionService, error) {
	estimator, err := NewTrueCaseEstimator(rates.Ascertainment.Default)
	if err != nil {
		return nil, err
	}
	mortality, err := NewMortalityModel(rates.Mortality.Default)
	if err != nil {
		return nil, err
	}
	hospitalization, err := NewHospitalizationModel(rates.Hospitalization.Default, rates.Ventilation.Default)
	if err != nil {
		return nil, err
	}
	// Construct a model with the default contact rate purely to surface
	// configuration errors at startup; per-request models override it.
	if _, err := NewSIRModel(rates.Transmission.Default, rates.DailyContacts.Default, rates.Removal.Default); err != nil {
		return nil, err
	}

	return &ProjectionService{
		rates:           rates,
		estimator:       estimator,
		mortality:       mortality,
		hospitalization: hospitalization,
		logger:          logger,
	}, nil
}

// Rates returns the process-wide rate parameters the service was built with.
func (s *ProjectionService) Rates() models.DiseaseRates {
	return s.rates
}

// Project runs one full projection. The request's contact rate overrides the
// configured default for this run only; everything else stays process-wide.
// A run either fully succeeds or fails before producing any rows.
func (s *ProjectionService) Project(ctx context.Context, req models.ProjectionRequest) (*models.ProjectionResult, error) {
	_, span := otel.Tracer("epicast/projection").Start(ctx, "ProjectionService.Project")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	sir, err := NewSIRModel(s.rates.Transmission.Default, req.ContactRate, s.rates.Removal.Default)
	if err != nil {
		return nil, err
	}

	trueInitialInfected := s.estimator.Predict(float64(req.ConfirmedCases))

	states, err := sir.Simulate(trueInitialInfected, float64(req.Population), req.HorizonDays)
	if err != nil {
		return nil, err
	}

	rows := make([]models.ProjectionRow, 0, len(states)*6+1)

	// Constant comparison series: the raw reported count at day 0 only.
	rows = append(rows, models.ProjectionRow{
		Day:      0,
		Status:   models.StatusConfirmed,
		Forecast: float64(req.ConfirmedCases),
	})

	// Cumulative infections to date.
	for _, st := range states {
		rows = append(rows, models.ProjectionRow{
			Day:      st.Day,
			Status:   models.StatusTrueInfected,
			Forecast: st.Infected + st.Removed,
		})
	}
	// Instantaneous infections.
	for _, st := range states {
		rows = append(rows, models.ProjectionRow{
			Day:      st.Day,
			Status:   models.StatusInfected,
			Forecast: st.Infected,
		})
	}
	// The removed compartment net of fatalities.
	for _, st := range states {
		rows = append(rows, models.ProjectionRow{
			Day:      st.Day,
			Status:   models.StatusRecovered,
			Forecast: st.Removed * (1 - s.mortality.Rate()),
		})
	}
	// Deaths are cumulative, so they follow cumulative infections.
	for _, st := range states {
		rows = append(rows, models.ProjectionRow{
			Day:      st.Day,
			Status:   models.StatusDead,
			Forecast: s.mortality.Predict(st.Infected + st.Removed),
		})
	}
	// Bed and ventilator demand are occupancy figures, so they follow the
	// instantaneous infected count.
	for _, st := range states {
		rows = append(rows, models.ProjectionRow{
			Day:      st.Day,
			Status:   models.StatusNeedHospitalization,
			Forecast: s.hospitalization.PredictHospitalized(st.Infected),
		})
	}
	for _, st := range states {
		rows = append(rows, models.ProjectionRow{
			Day:      st.Day,
			Status:   models.StatusNeedVentilation,
			Forecast: s.hospitalization.PredictVentilated(st.Infected),
		})
	}

	peakInfected, peakDay := peak(states)

	result := &models.ProjectionResult{
		RunID:        uuid.New().String(),
		GeneratedAt:  time.Now().UTC(),
		HorizonDays:  req.HorizonDays,
		TrueInitial:  trueInitialInfected,
		PeakInfected: peakInfected,
		PeakDay:      peakDay,
		Rows:         rows,
	}

	span.SetAttributes(
		attribute.Int("projection.horizon_days", req.HorizonDays),
		attribute.Float64("projection.contact_rate", req.ContactRate),
		attribute.Int("projection.rows", len(rows)),
	)
	s.logger.WithFields(logrus.Fields{
		"run_id":        result.RunID,
		"horizon_days":  req.HorizonDays,
		"contact_rate":  req.ContactRate,
		"true_initial":  trueInitialInfected,
		"peak_infected": peakInfected,
		"peak_day":      peakDay,
	}).Debug("Projection complete")

	return result, nil
}

// peak finds the highest instantaneous infected count and the day it occurs.
func peak(states []models.SimulationState) (float64, int) {
	best, bestDay := 0.0, 0
	for _, st := range states {
		if st.Infected > best {
			best = st.Infected
			bestDay = st.Day
		}
	}
	return best, bestDay
}
