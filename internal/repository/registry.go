package repository

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/krishna2206/pharmanio-backend/internal/models"
)

// RegistryRepository reads the canonical city and pharmacy registry.
// The ingestion pipeline never writes here; the import and geocoding
// tools own these tables.
type RegistryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRegistryRepository creates a registry repository.
func NewRegistryRepository(db *sql.DB, logger *zap.Logger) *RegistryRepository {
	return &RegistryRepository{
		db:     db,
		logger: logger,
	}
}

// ListByCity returns all pharmacies of the named city in id order.
// The city comparison is case-insensitive.
func (r *RegistryRepository) ListByCity(city string) ([]models.Pharmacy, error) {
	query := `
		SELECT p.id, p.name, p.address, p.phone, p.latitude, p.longitude, p.city_id
		FROM pharmacies p
		INNER JOIN cities c ON p.city_id = c.id
		WHERE LOWER(c.name) = LOWER($1)
		ORDER BY p.id
	`

	rows, err := r.db.Query(query, city)
	if err != nil {
		return nil, fmt.Errorf("failed to query pharmacies for city: %w", err)
	}
	defer rows.Close()

	return scanPharmacies(rows)
}

// CityExists reports whether the named city is present in the registry.
func (r *RegistryRepository) CityExists(city string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM cities WHERE LOWER(name) = LOWER($1))`

	var exists bool
	if err := r.db.QueryRow(query, city).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check city existence: %w", err)
	}

	return exists, nil
}

// GetByIDs returns the pharmacies with the given ids, in id order.
// Unknown ids are silently absent from the result.
func (r *RegistryRepository) GetByIDs(ids []int64) ([]models.Pharmacy, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT p.id, p.name, p.address, p.phone, p.latitude, p.longitude, p.city_id
		FROM pharmacies p
		WHERE p.id = ANY($1)
		ORDER BY p.id
	`

	rows, err := r.db.Query(query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query pharmacies by ids: %w", err)
	}
	defer rows.Close()

	return scanPharmacies(rows)
}

func scanPharmacies(rows *sql.Rows) ([]models.Pharmacy, error) {
	var pharmacies []models.Pharmacy
	for rows.Next() {
		var p models.Pharmacy
		var address, phone sql.NullString
		var latitude, longitude sql.NullFloat64

		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&address,
			&phone,
			&latitude,
			&longitude,
			&p.CityID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pharmacy: %w", err)
		}

		if address.Valid {
			p.Address = &address.String
		}
		if phone.Valid {
			p.Phone = &phone.String
		}
		if latitude.Valid {
			p.Latitude = &latitude.Float64
		}
		if longitude.Valid {
			p.Longitude = &longitude.Float64
		}

		pharmacies = append(pharmacies, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pharmacies: %w", err)
	}

	return pharmacies, nil
}
