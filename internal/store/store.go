// Package store persists the off-chain payment audit trail. The ledger
// settlement is always the source of truth; rows here exist for support and
// reporting.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"EduPaySettlement/internal/address"
	"EduPaySettlement/internal/models"
)

// PgxPool is the slice of a Postgres pool the store uses. Implemented by
// *pgxpool.Pool and by pgxmock.PgxPoolIface in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Store struct {
	Pool PgxPool
}

func New(pool PgxPool) *Store {
	return &Store{Pool: pool}
}

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	return pgxpool.NewWithConfig(ctx, cfg)
}

// InsertPayment writes one audit row. Replays of the same transaction hash
// are silently ignored; cascades are not coordinated across callers and the
// same settlement may be reported twice.
func (s *Store) InsertPayment(ctx context.Context, rec *models.PaymentRecord) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO payments (
			user_id, wallet_address, transaction_hash, plan_id,
			amount, apt_amount, currency, payment_method, status, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (transaction_hash) DO NOTHING
	`,
		rec.UserID,
		rec.WalletAddress.String(),
		rec.TransactionHash,
		rec.PlanID,
		rec.Amount.String(),
		rec.AptAmount.String(),
		rec.Currency,
		rec.PaymentMethod,
		string(rec.Status),
		rec.Timestamp,
	)
	return err
}

// ListPaymentsByUser returns a user's audit rows, most recent first.
func (s *Store) ListPaymentsByUser(ctx context.Context, userID string) ([]*models.PaymentRecord, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT user_id, wallet_address, transaction_hash, plan_id,
			amount, apt_amount, currency, payment_method, status, created_at
		FROM payments
		WHERE user_id=$1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.PaymentRecord
	for rows.Next() {
		var rec models.PaymentRecord
		var walletAddr, amount, aptAmount, status string
		var createdAt time.Time
		if err := rows.Scan(
			&rec.UserID,
			&walletAddr,
			&rec.TransactionHash,
			&rec.PlanID,
			&amount,
			&aptAmount,
			&rec.Currency,
			&rec.PaymentMethod,
			&status,
			&createdAt,
		); err != nil {
			return nil, err
		}
		rec.WalletAddress = address.Address(walletAddr)
		rec.Status = models.PaymentStatus(status)
		rec.Timestamp = createdAt
		if rec.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		if rec.AptAmount, err = decimal.NewFromString(aptAmount); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
