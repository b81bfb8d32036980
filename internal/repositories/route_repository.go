package repositories

import (
	"database/sql"
	"time"

	intconfig "farebox/internal/config"
	"farebox/internal/domain"
	"farebox/internal/domain/models"
)

type RouteRepository struct {
	DB *sql.DB
}

func (r RouteRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// GetByID loads a route together with both halt sequences. Deleted routes
// behave as if they do not exist.
func (r RouteRepository) GetByID(id int64) (models.Route, error) {
	db := r.db()

	var rt models.Route
	var status string
	err := db.QueryRow(`
		SELECT id, route_number, name, bus_type, status, created_at, updated_at
		FROM routes
		WHERE id=? AND status<>'DELETED'
	`, id).Scan(&rt.ID, &rt.RouteNumber, &rt.Name, &rt.BusType, &status, &rt.CreatedAt, &rt.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.Route{}, domain.NotFoundError{Resource: "route"}
	}
	if err != nil {
		return models.Route{}, err
	}
	rt.Status = models.RouteStatus(status)

	halts, err := r.loadHalts(db, id)
	if err != nil {
		return models.Route{}, err
	}
	rt.Halts = halts
	return rt, nil
}

func (r RouteRepository) loadHalts(db *sql.DB, routeID int64) (map[models.Direction]models.HaltSequence, error) {
	rows, err := db.Query(`
		SELECT direction, idx, name, latitude, longitude, fare
		FROM route_halts
		WHERE route_id=?
		ORDER BY direction ASC, idx ASC
	`, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[models.Direction]models.HaltSequence{}
	for rows.Next() {
		var dir string
		var h models.Halt
		if err := rows.Scan(&dir, &h.Index, &h.Name, &h.Latitude, &h.Longitude, &h.Fare); err != nil {
			return nil, err
		}
		d := models.Direction(dir)
		out[d] = append(out[d], h)
	}
	return out, rows.Err()
}

// List returns non-deleted routes, optionally filtered by status.
func (r RouteRepository) List(status models.RouteStatus) ([]models.Route, error) {
	db := r.db()

	query := `SELECT id, route_number, name, bus_type, status, created_at, updated_at
		FROM routes WHERE status<>'DELETED'`
	args := []any{}
	if status != "" {
		query += ` AND status=?`
		args = append(args, string(status))
	}
	query += ` ORDER BY route_number ASC, id ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Route{}
	for rows.Next() {
		var rt models.Route
		var st string
		if err := rows.Scan(&rt.ID, &rt.RouteNumber, &rt.Name, &rt.BusType, &st, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, err
		}
		rt.Status = models.RouteStatus(st)
		out = append(out, rt)
	}
	return out, rows.Err()
}

// Create inserts a DRAFT route with its halt tables in one transaction.
// Route edits create a new route version; halts are never patched in place.
func (r RouteRepository) Create(rt models.Route) (models.Route, error) {
	for _, d := range []models.Direction{models.DirectionA, models.DirectionB} {
		hs, ok := rt.Halts[d]
		if !ok {
			return models.Route{}, domain.ValidationError{Field: "halts", Msg: "both directions must be configured"}
		}
		if err := hs.Validate(); err != nil {
			return models.Route{}, err
		}
	}

	db := r.db()
	tx, err := db.Begin()
	if err != nil {
		return models.Route{}, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.Exec(`
		INSERT INTO routes (route_number, name, bus_type, status, created_at, updated_at)
		VALUES (?,?,?,?,?,?)
	`, rt.RouteNumber, rt.Name, rt.BusType, string(models.RouteDraft), now, now)
	if err != nil {
		return models.Route{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Route{}, err
	}

	for d, hs := range rt.Halts {
		for _, h := range hs {
			if _, err := tx.Exec(`
				INSERT INTO route_halts (route_id, direction, idx, name, latitude, longitude, fare)
				VALUES (?,?,?,?,?,?,?)
			`, id, string(d), h.Index, h.Name, h.Latitude, h.Longitude, h.Fare); err != nil {
				return models.Route{}, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Route{}, err
	}

	rt.ID = id
	rt.Status = models.RouteDraft
	rt.CreatedAt = now
	rt.UpdatedAt = now
	return rt, nil
}

// UpdateStatus moves a route through its lifecycle, rejecting transitions
// the lifecycle does not allow.
func (r RouteRepository) UpdateStatus(id int64, to models.RouteStatus) (models.Route, error) {
	rt, err := r.GetByID(id)
	if err != nil {
		return models.Route{}, err
	}
	if !models.ValidStatusChange(rt.Status, to) {
		return models.Route{}, domain.ConflictError{
			Resource: "route",
			Msg:      "cannot move route from " + string(rt.Status) + " to " + string(to),
		}
	}

	now := time.Now().UTC()
	if _, err := r.db().Exec(`UPDATE routes SET status=?, updated_at=? WHERE id=?`, string(to), now, id); err != nil {
		return models.Route{}, err
	}
	rt.Status = to
	rt.UpdatedAt = now
	return rt, nil
}
