package repositories

import (
	"context"
	"database/sql"
	"time"

	intconfig "farebox/internal/config"
	"farebox/internal/domain"
	"farebox/internal/domain/models"
)

type TripRepository struct {
	DB *sql.DB
}

func (r TripRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const tripColumns = `id, bus_id, route_id, direction, is_active, started_by, started_at, ended_at`

func scanTrip(scan func(dest ...any) error) (models.Trip, error) {
	var t models.Trip
	var dir string
	var endedAt sql.NullTime
	err := scan(&t.ID, &t.BusID, &t.RouteID, &dir, &t.IsActive, &t.StartedBy, &t.StartedAt, &endedAt)
	if err != nil {
		return models.Trip{}, err
	}
	t.Direction = models.Direction(dir)
	if endedAt.Valid {
		t.EndedAt = &endedAt.Time
	}
	return t, nil
}

func (r TripRepository) GetByID(id int64) (models.Trip, error) {
	row := r.db().QueryRow(`SELECT `+tripColumns+` FROM trips WHERE id=?`, id)
	t, err := scanTrip(row.Scan)
	if err == sql.ErrNoRows {
		return models.Trip{}, domain.NotFoundError{Resource: "trip"}
	}
	return t, err
}

// GetActiveByBusID returns the bus's running trip, if any.
func (r TripRepository) GetActiveByBusID(busID int64) (models.Trip, error) {
	row := r.db().QueryRow(`SELECT `+tripColumns+` FROM trips WHERE bus_id=? AND is_active=1`, busID)
	t, err := scanTrip(row.Scan)
	if err == sql.ErrNoRows {
		return models.Trip{}, domain.NotFoundError{Resource: "active trip"}
	}
	return t, err
}

// GetActiveByBusCode resolves a scanned QR code straight to the running trip.
func (r TripRepository) GetActiveByBusCode(code string) (models.Trip, error) {
	row := r.db().QueryRow(`
		SELECT t.id, t.bus_id, t.route_id, t.direction, t.is_active, t.started_by, t.started_at, t.ended_at
		FROM trips t
		JOIN buses b ON b.id = t.bus_id
		WHERE b.code=? AND t.is_active=1
	`, code)
	t, err := scanTrip(row.Scan)
	if err == sql.ErrNoRows {
		return models.Trip{}, domain.NotFoundError{Resource: "active trip"}
	}
	return t, err
}

// StartGuarded inserts an active trip only if the bus has none. The check
// and insert share one serializable transaction so duplicate operator
// clicks cannot race each other into two active trips.
func (r TripRepository) StartGuarded(t models.Trip) (models.Trip, error) {
	db := r.db()
	tx, err := db.BeginTx(context.Background(), &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return models.Trip{}, err
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRow(`SELECT id FROM trips WHERE bus_id=? AND is_active=1 FOR UPDATE`, t.BusID).Scan(&existing)
	if err == nil {
		return models.Trip{}, domain.ConflictError{Resource: "trip", Msg: "an active trip already exists for this bus"}
	}
	if err != sql.ErrNoRows {
		return models.Trip{}, err
	}

	now := time.Now().UTC()
	res, err := tx.Exec(`
		INSERT INTO trips (bus_id, route_id, direction, is_active, started_by, started_at)
		VALUES (?,?,?,1,?,?)
	`, t.BusID, t.RouteID, string(t.Direction), t.StartedBy, now)
	if err != nil {
		return models.Trip{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Trip{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Trip{}, err
	}

	t.ID = id
	t.IsActive = true
	t.StartedAt = now
	return t, nil
}

// End deactivates the bus's running trip. Trips are kept forever as the
// anchor for historical tickets.
func (r TripRepository) End(busID int64) (models.Trip, error) {
	db := r.db()
	tx, err := db.BeginTx(context.Background(), &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return models.Trip{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+tripColumns+` FROM trips WHERE bus_id=? AND is_active=1 FOR UPDATE`, busID)
	t, err := scanTrip(row.Scan)
	if err == sql.ErrNoRows {
		return models.Trip{}, domain.NotFoundError{Resource: "active trip"}
	}
	if err != nil {
		return models.Trip{}, err
	}

	now := time.Now().UTC()
	if _, err := tx.Exec(`UPDATE trips SET is_active=0, ended_at=? WHERE id=?`, now, t.ID); err != nil {
		return models.Trip{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Trip{}, err
	}

	t.IsActive = false
	t.EndedAt = &now
	return t, nil
}
