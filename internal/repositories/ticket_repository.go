package repositories

import (
	"context"
	"database/sql"
	"strings"

	intconfig "farebox/internal/config"
	"farebox/internal/domain"
	"farebox/internal/domain/models"

	"time"
)

type TicketRepository struct {
	DB *sql.DB
}

func (r TicketRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const ticketColumns = `id, commuter_id, trip_id,
	boarding_idx, boarding_name, boarding_lat, boarding_lng, boarding_fare,
	dest_idx, dest_name, dest_lat, dest_lng, dest_fare,
	adult_count, child_count, base_fare, total_fare,
	status, scan_code, expires_at, issued_at, cancelled_at, created_at, updated_at`

func scanTicket(scan func(dest ...any) error) (models.Ticket, error) {
	var t models.Ticket
	var status string
	var destIdx sql.NullInt64
	var destName sql.NullString
	var destLat, destLng sql.NullFloat64
	var destFare sql.NullInt64
	var issuedAt, cancelledAt sql.NullTime

	err := scan(
		&t.ID, &t.CommuterID, &t.TripID,
		&t.Boarding.Index, &t.Boarding.Name, &t.Boarding.Latitude, &t.Boarding.Longitude, &t.Boarding.Fare,
		&destIdx, &destName, &destLat, &destLng, &destFare,
		&t.AdultCount, &t.ChildCount, &t.BaseFare, &t.TotalFare,
		&status, &t.ScanCode, &t.ExpiresAt, &issuedAt, &cancelledAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return models.Ticket{}, err
	}

	t.Status = models.TicketStatus(status)
	if destIdx.Valid {
		t.Destination = &models.Halt{
			Index:     int(destIdx.Int64),
			Name:      destName.String,
			Latitude:  destLat.Float64,
			Longitude: destLng.Float64,
			Fare:      destFare.Int64,
		}
	}
	if issuedAt.Valid {
		t.IssuedAt = &issuedAt.Time
	}
	if cancelledAt.Valid {
		t.CancelledAt = &cancelledAt.Time
	}
	return t, nil
}

// CreateGuarded inserts a new PENDING ticket for the commuter, first lazily
// expiring stale ones and rejecting when an unexpired PENDING ticket remains.
// Expire, check and insert share one serializable transaction; the locking
// SELECT makes concurrent scans for the same commuter serialize so at most
// one wins.
func (r TicketRepository) CreateGuarded(t models.Ticket, now time.Time) (models.Ticket, int64, error) {
	db := r.db()
	tx, err := db.BeginTx(context.Background(), &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return models.Ticket{}, 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE tickets SET status='EXPIRED', updated_at=?
		WHERE commuter_id=? AND status='PENDING' AND expires_at<=?
	`, now, t.CommuterID, now)
	if err != nil {
		return models.Ticket{}, 0, err
	}
	expired, _ := res.RowsAffected()

	var activeID int64
	err = tx.QueryRow(`
		SELECT id FROM tickets
		WHERE commuter_id=? AND status='PENDING' AND expires_at>?
		FOR UPDATE
	`, t.CommuterID, now).Scan(&activeID)
	if err == nil {
		return models.Ticket{}, expired, domain.ConflictError{
			Resource: "ticket",
			Msg:      "an active ticket exists; cancel or complete it first",
		}
	}
	if err != sql.ErrNoRows {
		return models.Ticket{}, expired, err
	}

	ins, err := tx.Exec(`
		INSERT INTO tickets
			(commuter_id, trip_id,
			 boarding_idx, boarding_name, boarding_lat, boarding_lng, boarding_fare,
			 adult_count, child_count, base_fare, total_fare,
			 status, scan_code, expires_at, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,0,0,'PENDING',?,?,?,?)
	`, t.CommuterID, t.TripID,
		t.Boarding.Index, t.Boarding.Name, t.Boarding.Latitude, t.Boarding.Longitude, t.Boarding.Fare,
		t.AdultCount, t.ChildCount,
		t.ScanCode, t.ExpiresAt, now, now)
	if err != nil {
		return models.Ticket{}, expired, err
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return models.Ticket{}, expired, err
	}
	if err := tx.Commit(); err != nil {
		return models.Ticket{}, expired, err
	}

	t.ID = id
	t.Status = models.TicketPending
	t.CreatedAt = now
	t.UpdatedAt = now
	return t, expired, nil
}

func (r TicketRepository) GetByID(id int64) (models.Ticket, error) {
	row := r.db().QueryRow(`SELECT `+ticketColumns+` FROM tickets WHERE id=?`, id)
	t, err := scanTicket(row.Scan)
	if err == sql.ErrNoRows {
		return models.Ticket{}, domain.NotFoundError{Resource: "ticket"}
	}
	return t, err
}

// GetByScanCode is the operator verification lookup. Read-only by design.
func (r TicketRepository) GetByScanCode(code string) (models.Ticket, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return models.Ticket{}, domain.ValidationError{Field: "scan_code", Msg: "scan code is required"}
	}
	row := r.db().QueryRow(`SELECT `+ticketColumns+` FROM tickets WHERE scan_code=?`, code)
	t, err := scanTicket(row.Scan)
	if err == sql.ErrNoRows {
		return models.Ticket{}, domain.NotFoundError{Resource: "ticket"}
	}
	return t, err
}

// FindActiveForCommuter returns the commuter's PENDING-and-unexpired ticket,
// most recent first. The single-active-ticket invariant means there is at
// most one.
func (r TicketRepository) FindActiveForCommuter(commuterID int64, now time.Time) (models.Ticket, error) {
	row := r.db().QueryRow(`
		SELECT `+ticketColumns+` FROM tickets
		WHERE commuter_id=? AND status='PENDING' AND expires_at>?
		ORDER BY id DESC LIMIT 1
	`, commuterID, now)
	t, err := scanTicket(row.Scan)
	if err == sql.ErrNoRows {
		return models.Ticket{}, domain.NotFoundError{Resource: "active ticket"}
	}
	return t, err
}

// ListPast returns the commuter's settled tickets newest first, paginated by
// an id cursor (beforeID=0 starts from the newest).
func (r TicketRepository) ListPast(commuterID, beforeID int64, limit int) ([]models.Ticket, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE commuter_id=? AND status<>'PENDING'`
	args := []any{commuterID}
	if beforeID > 0 {
		query += ` AND id<?`
		args = append(args, beforeID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateDestination stores the destination snapshot and clears any
// previously computed fare, which no longer matches.
func (r TicketRepository) UpdateDestination(id int64, dest models.Halt, now time.Time) error {
	res, err := r.db().Exec(`
		UPDATE tickets
		SET dest_idx=?, dest_name=?, dest_lat=?, dest_lng=?, dest_fare=?,
		    base_fare=0, total_fare=0, updated_at=?
		WHERE id=? AND status='PENDING'
	`, dest.Index, dest.Name, dest.Latitude, dest.Longitude, dest.Fare, now, id)
	if err != nil {
		return err
	}
	return requirePendingRow(res)
}

func (r TicketRepository) UpdateCounts(id int64, adults, children int, now time.Time) error {
	res, err := r.db().Exec(`
		UPDATE tickets SET adult_count=?, child_count=?, base_fare=0, total_fare=0, updated_at=?
		WHERE id=? AND status='PENDING'
	`, adults, children, now, id)
	if err != nil {
		return err
	}
	return requirePendingRow(res)
}

func (r TicketRepository) UpdateFare(id, baseFare, totalFare int64, now time.Time) error {
	res, err := r.db().Exec(`
		UPDATE tickets SET base_fare=?, total_fare=?, updated_at=?
		WHERE id=? AND status='PENDING'
	`, baseFare, totalFare, now, id)
	if err != nil {
		return err
	}
	return requirePendingRow(res)
}

func (r TicketRepository) MarkConfirmed(id int64, issuedAt time.Time) error {
	res, err := r.db().Exec(`
		UPDATE tickets SET status='CONFIRMED', issued_at=?, updated_at=?
		WHERE id=? AND status='PENDING'
	`, issuedAt, issuedAt, id)
	if err != nil {
		return err
	}
	return requirePendingRow(res)
}

func (r TicketRepository) MarkCancelled(id int64, at time.Time) error {
	res, err := r.db().Exec(`
		UPDATE tickets SET status='CANCELLED', cancelled_at=?, updated_at=?
		WHERE id=? AND status='PENDING'
	`, at, at, id)
	if err != nil {
		return err
	}
	return requirePendingRow(res)
}

// MarkExpired flips a stale PENDING ticket to EXPIRED, touching nothing
// else. Safe to call repeatedly; a terminal ticket is left alone.
func (r TicketRepository) MarkExpired(id int64, now time.Time) error {
	_, err := r.db().Exec(`
		UPDATE tickets SET status='EXPIRED', updated_at=?
		WHERE id=? AND status='PENDING'
	`, now, id)
	return err
}

// requirePendingRow turns a zero-row guarded update into a conflict: the
// ticket moved to a terminal state between our read and this write.
func requirePendingRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ConflictError{Resource: "ticket", Msg: "ticket is no longer pending"}
	}
	return nil
}
