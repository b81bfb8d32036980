package services

import (
	"testing"
	"time"

	"farebox/internal/domain"
	"farebox/internal/domain/models"
	"farebox/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

func busRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "code", "registration", "route_id", "status", "created_at"}).
		AddRow(int64(3), "BUS-3", "WP NA-1234", int64(1), "IN_SERVICE", testNow.Add(-72*time.Hour))
}

func TestStartActivatesTripOnActiveRoute(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM buses WHERE id=").
		WithArgs(int64(3)).
		WillReturnRows(busRow())
	expectHaltsLookup(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM trips WHERE bus_id=(.+) FOR UPDATE").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO trips").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	svc := TripService{
		Buses:  repositories.BusRepository{DB: db},
		Routes: repositories.RouteRepository{DB: db},
		Trips:  repositories.TripRepository{DB: db},
	}
	trip, err := svc.Start(10, 3, models.DirectionA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.ID != 7 || !trip.IsActive || trip.Direction != models.DirectionA {
		t.Fatalf("unexpected trip: %+v", trip)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStartRejectsInactiveRoute(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM buses WHERE id=").
		WillReturnRows(busRow())
	mock.ExpectQuery("SELECT (.+) FROM routes WHERE id=").
		WillReturnRows(sqlmock.NewRows(routeCols).
			AddRow(int64(1), "138", "City - Suburb", "standard", "DRAFT", testNow, testNow))
	mock.ExpectQuery("SELECT (.+) FROM route_halts").
		WillReturnRows(routeHaltRows())

	svc := TripService{
		Buses:  repositories.BusRepository{DB: db},
		Routes: repositories.RouteRepository{DB: db},
		Trips:  repositories.TripRepository{DB: db},
	}
	_, err = svc.Start(10, 3, models.DirectionA)
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Nothing may have touched the trips table.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStartRejectsSecondActiveTripForBus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM buses WHERE id=").
		WillReturnRows(busRow())
	expectHaltsLookup(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM trips WHERE bus_id=(.+) FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(6)))
	mock.ExpectRollback()

	svc := TripService{
		Buses:  repositories.BusRepository{DB: db},
		Routes: repositories.RouteRepository{DB: db},
		Trips:  repositories.TripRepository{DB: db},
	}
	_, err = svc.Start(10, 3, models.DirectionA)
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestStartRequiresOperator(t *testing.T) {
	svc := TripService{}
	if _, err := svc.Start(0, 3, models.DirectionA); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEndStampsEndTime(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM trips WHERE bus_id=(.+) FOR UPDATE").
		WithArgs(int64(3)).
		WillReturnRows(activeTripRow())
	mock.ExpectExec("UPDATE trips SET is_active=0").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := TripService{Trips: repositories.TripRepository{DB: db}}
	trip, err := svc.End(10, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.IsActive || trip.EndedAt == nil {
		t.Fatalf("trip not closed: %+v", trip)
	}
}

func TestEndWithoutRunningTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM trips WHERE bus_id=(.+) FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(tripCols))
	mock.ExpectRollback()

	svc := TripService{Trips: repositories.TripRepository{DB: db}}
	if _, err := svc.End(10, 3); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
