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

var reservationColumns = []string{
	"r.id", "r.car_id", "r.user_id", "r.start_date", "r.end_date", "r.start_time", "r.end_time",
	"r.days", "r.total_price", "r.deposit", "r.first_name", "r.last_name", "r.phone", "r.email",
	"r.country", "r.delivery_type", "r.payment_type", "r.status", "r.created_at", "r.updated_at",
}

func scanReservation(row rowScanner, extra ...any) (*models.Reservation, error) {
	var r models.Reservation
	dest := []any{
		&r.ID, &r.CarID, &r.UserID, &r.StartDate, &r.EndDate, &r.StartTime, &r.EndTime,
		&r.Days, &r.TotalPrice, &r.Deposit, &r.FirstName, &r.LastName, &r.Phone, &r.Email,
		&r.Country, &r.DeliveryType, &r.PaymentType, &r.Status, &r.CreatedAt, &r.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReservation inserts r. CreatedAt and UpdatedAt are set when zero.
func (db *DB) CreateReservation(ctx context.Context, r *models.Reservation) error {
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}

	query, args, err := builder.Insert("reservations").
		Columns(
			"id", "car_id", "user_id", "start_date", "end_date", "start_time", "end_time",
			"days", "total_price", "deposit", "first_name", "last_name", "phone", "email",
			"country", "delivery_type", "payment_type", "status", "created_at", "updated_at",
		).
		Values(
			r.ID, r.CarID, r.UserID, r.StartDate, r.EndDate, r.StartTime, r.EndTime,
			r.Days, r.TotalPrice, r.Deposit, r.FirstName, r.LastName, r.Phone, r.Email,
			r.Country, r.DeliveryType, r.PaymentType, r.Status, r.CreatedAt, r.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert reservation query: %w", err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// GetReservation returns a reservation by id.
func (db *DB) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	query, args, err := builder.Select(reservationColumns...).
		From("reservations r").
		Where(sq.Eq{"r.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get reservation query: %w", err)
	}

	r, err := scanReservation(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation %s: %w", id, err)
	}
	return r, nil
}

// ListReservationsByUser returns the user's reservations newest first,
// each with its car summary when the car still exists.
func (db *DB) ListReservationsByUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	columns := append(append([]string{}, reservationColumns...),
		"COALESCE(c.brand, '')", "COALESCE(c.model, '')", "COALESCE(c.city, '')",
		"COALESCE(c.image_url, '')", "COALESCE(c.agency_name, '')", "c.id IS NOT NULL",
	)
	query, args, err := builder.Select(columns...).
		From("reservations r").
		LeftJoin("cars c ON c.id = r.car_id").
		Where(sq.Eq{"r.user_id": userID}).
		OrderBy("r.created_at DESC", "r.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list reservations query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	result := make([]models.Reservation, 0)
	for rows.Next() {
		var (
			car    models.Car
			hasCar bool
		)
		r, err := scanReservation(rows, &car.Brand, &car.Model, &car.City, &car.ImageURL, &car.AgencyName, &hasCar)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		if hasCar {
			car.ID = r.CarID
			r.Car = &car
		}
		result = append(result, *r)
	}
	return result, rows.Err()
}

// ListReservationsByMonth returns reservations starting in the given month, oldest start first.
func (db *DB) ListReservationsByMonth(ctx context.Context, month time.Time) ([]models.Reservation, error) {
	query, args, err := builder.Select(reservationColumns...).
		From("reservations r").
		Where(sq.Like{"r.start_date": month.Format("2006-01") + "-%"}).
		OrderBy("r.start_date", "r.start_time", "r.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build month reservations query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list month reservations: %w", err)
	}
	defer rows.Close()

	result := make([]models.Reservation, 0)
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		result = append(result, *r)
	}
	return result, rows.Err()
}

// ListReservationsStartingOn returns reservations picked up on day
// (YYYY-MM-DD) whose status is one of statuses, with the car summary.
func (db *DB) ListReservationsStartingOn(ctx context.Context, day string, statuses ...string) ([]models.Reservation, error) {
	columns := append(append([]string{}, reservationColumns...),
		"COALESCE(c.brand, '')", "COALESCE(c.model, '')", "COALESCE(c.city, '')", "c.id IS NOT NULL",
	)
	q := builder.Select(columns...).
		From("reservations r").
		LeftJoin("cars c ON c.id = r.car_id").
		Where(sq.Eq{"r.start_date": day})
	if len(statuses) > 0 {
		q = q.Where(sq.Eq{"r.status": statuses})
	}
	query, args, err := q.OrderBy("r.start_time", "r.id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build pickup reservations query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pickup reservations: %w", err)
	}
	defer rows.Close()

	result := make([]models.Reservation, 0)
	for rows.Next() {
		var (
			car    models.Car
			hasCar bool
		)
		r, err := scanReservation(rows, &car.Brand, &car.Model, &car.City, &hasCar)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		if hasCar {
			car.ID = r.CarID
			r.Car = &car
		}
		result = append(result, *r)
	}
	return result, rows.Err()
}

// UpdateReservationStatus sets the status of a reservation.
func (db *DB) UpdateReservationStatus(ctx context.Context, id, status string) error {
	query, args, err := builder.Update("reservations").
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update status query: %w", err)
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update reservation %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update reservation %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	return nil
}

// CreatePartnerApplication stores a partner application.
func (db *DB) CreatePartnerApplication(ctx context.Context, p *models.PartnerApplication) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	query, args, err := builder.Insert("partner_applications").
		Columns("id", "agency_name", "city", "contact_name", "phone", "email", "status", "created_at").
		Values(p.ID, p.AgencyName, p.City, p.ContactName, p.Phone, p.Email, p.Status, p.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert partner query: %w", err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert partner application: %w", err)
	}
	return nil
}
