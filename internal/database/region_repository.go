package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/epicast-dev/epicast-go/internal/models"
)

// ErrRegionNotFound is returned when a region is not in the dataset.
var ErrRegionNotFound = errors.New("region not found")

// DatabasePool defines the interface for database pool operations.
// This interface allows for both real pool and mock pool implementations.
type DatabasePool interface {
	// QueryRow executes a query that is expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	// Exec executes a query without returning any rows.
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	// Query executes a query that returns rows.
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// RegionRepository handles database operations for per-region outbreak
// statistics. The projection engine treats this data as read-only input; only
// the collector writes it.
type RegionRepository struct {
	pool DatabasePool
}

// NewRegionRepository creates a new region repository.
func NewRegionRepository(pool DatabasePool) *RegionRepository {
	return &RegionRepository{
		pool: pool,
	}
}

// UpsertRegion inserts or refreshes one region snapshot.
//
// Parameters:
//
//	ctx: Context.
//	region: The snapshot to store; UpdatedAt is set by the database.
//
// Returns:
//
//	*models.RegionState: The stored snapshot.
//	error: Error if operation fails.
func (r *RegionRepository) UpsertRegion(ctx context.Context, region models.RegionState) (*models.RegionState, error) {
	query := `
		INSERT INTO regions (name, population, confirmed_cases, recovered_cases, deaths, hospital_beds, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
		ON CONFLICT (name)
		DO UPDATE SET
			population = EXCLUDED.population,
			confirmed_cases = EXCLUDED.confirmed_cases,
			recovered_cases = EXCLUDED.recovered_cases,
			deaths = EXCLUDED.deaths,
			hospital_beds = EXCLUDED.hospital_beds,
			updated_at = CURRENT_TIMESTAMP
		RETURNING name, population, confirmed_cases, recovered_cases, deaths, hospital_beds, updated_at
	`

	var stored models.RegionState
	err := r.pool.QueryRow(ctx, query,
		region.Name,
		region.Population,
		region.ConfirmedCases,
		region.RecoveredCases,
		region.Deaths,
		region.HospitalBeds,
	).Scan(
		&stored.Name,
		&stored.Population,
		&stored.ConfirmedCases,
		&stored.RecoveredCases,
		&stored.Deaths,
		&stored.HospitalBeds,
		&stored.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert region %s: %w", region.Name, err)
	}

	return &stored, nil
}

// GetRegion fetches one region snapshot by name.
func (r *RegionRepository) GetRegion(ctx context.Context, name string) (*models.RegionState, error) {
	query := `
		SELECT name, population, confirmed_cases, recovered_cases, deaths, hospital_beds, updated_at
		FROM regions
		WHERE name = $1
	`

	var region models.RegionState
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&region.Name,
		&region.Population,
		&region.ConfirmedCases,
		&region.RecoveredCases,
		&region.Deaths,
		&region.HospitalBeds,
		&region.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRegionNotFound
		}
		return nil, fmt.Errorf("failed to get region %s: %w", name, err)
	}

	return &region, nil
}

// ListRegions returns every region snapshot ordered by name.
func (r *RegionRepository) ListRegions(ctx context.Context) ([]models.RegionState, error) {
	query := `
		SELECT name, population, confirmed_cases, recovered_cases, deaths, hospital_beds, updated_at
		FROM regions
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	defer rows.Close()

	var regions []models.RegionState
	for rows.Next() {
		var region models.RegionState
		if err := rows.Scan(
			&region.Name,
			&region.Population,
			&region.ConfirmedCases,
			&region.RecoveredCases,
			&region.Deaths,
			&region.HospitalBeds,
			&region.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan region row: %w", err)
		}
		regions = append(regions, region)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating region rows: %w", err)
	}

	return regions, nil
}
