package store

import (
	"database/sql"

	"chershare/internal/models"
)

// The bookings queries SELECT * so opaque extra columns pass through. They
// cannot live in the startup-prepared statement set: sqlite expands the star
// at prepare time, so a column added to bookings after startup would be
// silently dropped from a prepared statement's results. They run through the
// connection directly, still parameter-bound.
const (
	bookingsByAccountQuery = `SELECT * FROM bookings WHERE booker_account_id = ?`

	// Inclusive overlap test: a booking counts when any instant of
	// [start, end] intersects [from, until], touching endpoints included.
	bookingsForResourceQuery = `SELECT * FROM bookings WHERE resource_name = ? AND start <= ? AND "end" >= ?`
)

// BookingsForAccount returns every booking made by one account.
func (s *Store) BookingsForAccount(accountID string) ([]models.Booking, error) {
	rows, err := s.db.Query(bookingsByAccountQuery, accountID)
	if err != nil {
		return nil, queryError("account bookings query failed", err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

// BookingsForResource returns the bookings of a resource overlapping the
// window [from, until]. Both bounds are inclusive: a booking touching an
// endpoint counts as overlapping. from and until must already be validated
// as well-formed timestamps by the caller.
func (s *Store) BookingsForResource(name, from, until string) ([]models.Booking, error) {
	rows, err := s.db.Query(bookingsForResourceQuery, name, until, from)
	if err != nil {
		return nil, queryError("resource bookings query failed", err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

// scanBookings shapes SELECT * rows into maps keyed by column name so opaque
// extra columns pass through unchanged.
func scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, queryError("failed to read booking columns", err)
	}

	bookings := []models.Booking{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, scanError("failed to scan booking row", err)
		}

		booking := make(models.Booking, len(columns))
		for i, column := range columns {
			if raw, ok := values[i].([]byte); ok {
				booking[column] = string(raw)
			} else {
				booking[column] = values[i]
			}
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("booking row iteration failed", err)
	}
	return bookings, nil
}
