package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"rentacar/internal/models"
)

var carColumns = []string{
	"id", "brand", "model", "year", "city", "price_per_day", "deposit",
	"category", "transmission", "fuel_type", "seats", "image_url",
	"agency_name", "agency_id", "rating", "reviews_count",
	"location_lat", "location_lng", "is_verified_partner", "is_active", "created_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCar(row rowScanner) (*models.Car, error) {
	var (
		car      models.Car
		lat, lng sql.NullFloat64
	)
	err := row.Scan(
		&car.ID, &car.Brand, &car.Model, &car.Year, &car.City, &car.PricePerDay, &car.Deposit,
		&car.Category, &car.Transmission, &car.FuelType, &car.Seats, &car.ImageURL,
		&car.AgencyName, &car.AgencyID, &car.Rating, &car.ReviewsCount,
		&lat, &lng, &car.IsVerifiedPartner, &car.IsActive, &car.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lat.Valid {
		car.LocationLat = &lat.Float64
	}
	if lng.Valid {
		car.LocationLng = &lng.Float64
	}
	return &car, nil
}

// ListCars returns active cars, newest first.
func (db *DB) ListCars(ctx context.Context) ([]models.Car, error) {
	query, args, err := builder.Select(carColumns...).
		From("cars").
		Where(sq.Eq{"is_active": 1}).
		OrderBy("created_at DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list cars query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}
	defer rows.Close()

	cars := make([]models.Car, 0)
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("scan car: %w", err)
		}
		cars = append(cars, *car)
	}
	return cars, rows.Err()
}

// GetCar returns an active car by id.
func (db *DB) GetCar(ctx context.Context, id string) (*models.Car, error) {
	query, args, err := builder.Select(carColumns...).
		From("cars").
		Where(sq.Eq{"id": id, "is_active": 1}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get car query: %w", err)
	}

	car, err := scanCar(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("car %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get car %s: %w", id, err)
	}
	return car, nil
}

// SyncFleet applies the configured fleet to the database. Cars are upserted
// in list order so the first listed car is the newest; existing cars keep
// their created_at. Cars missing from the list are marked inactive.
func (db *DB) SyncFleet(ctx context.Context, cars []models.Car) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin fleet sync: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	seen := make(map[string]struct{}, len(cars))

	for i, car := range cars {
		createdAt := now.Add(-time.Duration(i) * time.Second)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cars (
				id, brand, model, year, city, price_per_day, deposit, category, transmission, fuel_type,
				seats, image_url, agency_name, agency_id, rating, reviews_count, location_lat, location_lng,
				is_verified_partner, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				brand = excluded.brand,
				model = excluded.model,
				year = excluded.year,
				city = excluded.city,
				price_per_day = excluded.price_per_day,
				deposit = excluded.deposit,
				category = excluded.category,
				transmission = excluded.transmission,
				fuel_type = excluded.fuel_type,
				seats = excluded.seats,
				image_url = excluded.image_url,
				agency_name = excluded.agency_name,
				agency_id = excluded.agency_id,
				rating = excluded.rating,
				reviews_count = excluded.reviews_count,
				location_lat = excluded.location_lat,
				location_lng = excluded.location_lng,
				is_verified_partner = excluded.is_verified_partner,
				is_active = excluded.is_active,
				updated_at = excluded.updated_at`,
			car.ID, car.Brand, car.Model, car.Year, car.City, car.PricePerDay, car.Deposit,
			car.Category, car.Transmission, car.FuelType, car.Seats, car.ImageURL,
			car.AgencyName, car.AgencyID, car.Rating, car.ReviewsCount, car.LocationLat, car.LocationLng,
			boolToInt(car.IsVerifiedPartner), boolToInt(car.IsActive), createdAt, now,
		)
		if err != nil {
			return fmt.Errorf("sync car %s: %w", car.ID, err)
		}
		seen[car.ID] = struct{}{}
	}

	rows, err := tx.QueryContext(ctx, `SELECT id FROM cars WHERE is_active = 1`)
	if err != nil {
		return err
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		if _, ok := seen[id]; !ok {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if len(stale) > 0 {
		query, args, err := builder.Update("cars").
			Set("is_active", 0).
			Set("updated_at", now).
			Where(sq.Eq{"id": stale}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build deactivate query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("deactivate cars: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit fleet sync: %w", err)
	}
	db.logger.Info().Int("cars", len(cars)).Int("deactivated", len(stale)).Msg("Fleet synced from config")
	return nil
}
