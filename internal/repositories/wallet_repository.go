package repositories

import (
	"context"
	"database/sql"

	intconfig "farebox/internal/config"
	"farebox/internal/domain"
)

// WalletRepository is the payment collaborator boundary. The engine only
// ever debits; top-ups arrive through the surrounding application.
type WalletRepository struct {
	DB *sql.DB
}

func (r WalletRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r WalletRepository) Balance(commuterID int64) (int64, error) {
	var balance int64
	err := r.db().QueryRow(`SELECT balance FROM wallets WHERE commuter_id=?`, commuterID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, domain.NotFoundError{Resource: "wallet"}
	}
	return balance, err
}

// Debit withdraws amount minor units, or rejects with a PaymentError when
// the balance does not cover it. Balance check and withdrawal lock the row
// so concurrent debits cannot overdraw.
func (r WalletRepository) Debit(commuterID, amount int64) error {
	if amount <= 0 {
		return domain.ValidationError{Field: "amount", Msg: "debit amount must be positive"}
	}

	db := r.db()
	tx, err := db.BeginTx(context.Background(), &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var balance int64
	err = tx.QueryRow(`SELECT balance FROM wallets WHERE commuter_id=? FOR UPDATE`, commuterID).Scan(&balance)
	if err == sql.ErrNoRows {
		return domain.NotFoundError{Resource: "wallet"}
	}
	if err != nil {
		return err
	}
	if balance < amount {
		return domain.PaymentError{Msg: "insufficient wallet balance"}
	}

	if _, err := tx.Exec(`UPDATE wallets SET balance=balance-? WHERE commuter_id=?`, amount, commuterID); err != nil {
		return err
	}
	return tx.Commit()
}

// Credit tops up (or opens) a wallet. Exposed for the payment-gateway
// collaborator; the engine itself never calls it.
func (r WalletRepository) Credit(commuterID, amount int64) error {
	if amount <= 0 {
		return domain.ValidationError{Field: "amount", Msg: "credit amount must be positive"}
	}
	_, err := r.db().Exec(`
		INSERT INTO wallets (commuter_id, balance) VALUES (?,?)
		ON DUPLICATE KEY UPDATE balance=balance+VALUES(balance)
	`, commuterID, amount)
	return err
}
