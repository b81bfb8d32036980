package repositories

import (
	"testing"

	"farebox/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestWalletDebitWithdrawsWhenCovered(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT balance FROM wallets").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(int64(500)))
	mock.ExpectExec("UPDATE wallets SET balance=balance-").
		WithArgs(int64(300), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := WalletRepository{DB: db}
	if err := repo.Debit(42, 300); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWalletDebitRejectsInsufficientBalance(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT balance FROM wallets").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(int64(100)))
	mock.ExpectRollback()

	repo := WalletRepository{DB: db}
	err = repo.Debit(42, 300)
	if !domain.IsPayment(err) {
		t.Fatalf("expected payment error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWalletDebitUnknownWallet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT balance FROM wallets").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}))
	mock.ExpectRollback()

	repo := WalletRepository{DB: db}
	if err := repo.Debit(42, 300); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWalletDebitRejectsNonPositiveAmount(t *testing.T) {
	repo := WalletRepository{}
	for _, amount := range []int64{0, -50} {
		if err := repo.Debit(42, amount); !domain.IsValidation(err) {
			t.Fatalf("amount %d: expected validation error, got %v", amount, err)
		}
	}
}

func TestWalletCreditUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO wallets").
		WithArgs(int64(42), int64(1000)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := WalletRepository{DB: db}
	if err := repo.Credit(42, 1000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
