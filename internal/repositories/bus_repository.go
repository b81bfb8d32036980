package repositories

import (
	"database/sql"
	"strings"
	"time"

	intconfig "farebox/internal/config"
	"farebox/internal/domain"
	"farebox/internal/domain/models"
)

type BusRepository struct {
	DB *sql.DB
}

func (r BusRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const busColumns = `id, code, registration, route_id, status, created_at`

func scanBus(row *sql.Row) (models.Bus, error) {
	var b models.Bus
	err := row.Scan(&b.ID, &b.Code, &b.Registration, &b.RouteID, &b.Status, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Bus{}, domain.NotFoundError{Resource: "bus"}
	}
	return b, err
}

func (r BusRepository) GetByID(id int64) (models.Bus, error) {
	return scanBus(r.db().QueryRow(`SELECT `+busColumns+` FROM buses WHERE id=?`, id))
}

// GetByCode resolves the QR sticker token into a bus.
func (r BusRepository) GetByCode(code string) (models.Bus, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return models.Bus{}, domain.ValidationError{Field: "bus_code", Msg: "bus code is required"}
	}
	return scanBus(r.db().QueryRow(`SELECT `+busColumns+` FROM buses WHERE code=?`, code))
}

func (r BusRepository) List() ([]models.Bus, error) {
	rows, err := r.db().Query(`SELECT ` + busColumns + ` FROM buses ORDER BY code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Bus{}
	for rows.Next() {
		var b models.Bus
		if err := rows.Scan(&b.ID, &b.Code, &b.Registration, &b.RouteID, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r BusRepository) Create(b models.Bus) (models.Bus, error) {
	if strings.TrimSpace(b.Code) == "" {
		return models.Bus{}, domain.ValidationError{Field: "code", Msg: "bus code is required"}
	}
	if b.RouteID <= 0 {
		return models.Bus{}, domain.ValidationError{Field: "route_id", Msg: "route is required"}
	}

	now := time.Now().UTC()
	res, err := r.db().Exec(`
		INSERT INTO buses (code, registration, route_id, status, created_at)
		VALUES (?,?,?,?,?)
	`, strings.TrimSpace(b.Code), b.Registration, b.RouteID, b.Status, now)
	if err != nil {
		return models.Bus{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Bus{}, err
	}
	b.ID = id
	b.CreatedAt = now
	return b, nil
}
