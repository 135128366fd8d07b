package store

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"EduPaySettlement/internal/address"
	"EduPaySettlement/internal/models"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return New(mock), mock
}

func testRecord() *models.PaymentRecord {
	return &models.PaymentRecord{
		UserID:          "user-1",
		WalletAddress:   address.Normalize("0xaa"),
		TransactionHash: "0x01",
		PlanID:          "pro-monthly",
		Amount:          decimal.RequireFromString("999"),
		AptAmount:       decimal.RequireFromString("0.0999"),
		Currency:        "INR",
		PaymentMethod:   "wallet",
		Status:          models.PaymentCompleted,
		Timestamp:       time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func insertArgs(rec *models.PaymentRecord) []any {
	return []any{
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
	}
}

func TestInsertPayment(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	defer mock.Close()

	rec := testRecord()
	mock.ExpectExec(`INSERT INTO payments`).
		WithArgs(insertArgs(rec)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, st.InsertPayment(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertPayment_DuplicateHashIsSilent(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	defer mock.Close()

	// conflict on transaction_hash: zero rows written, no error raised
	rec := testRecord()
	mock.ExpectExec(`INSERT INTO payments`).
		WithArgs(insertArgs(rec)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	require.NoError(t, st.InsertPayment(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListPaymentsByUser_RoundTrip(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	defer mock.Close()

	want := testRecord()
	rows := pgxmock.NewRows([]string{
		"user_id", "wallet_address", "transaction_hash", "plan_id",
		"amount", "apt_amount", "currency", "payment_method", "status", "created_at",
	}).AddRow(
		want.UserID,
		want.WalletAddress.String(),
		want.TransactionHash,
		want.PlanID,
		want.Amount.String(),
		want.AptAmount.String(),
		want.Currency,
		want.PaymentMethod,
		string(want.Status),
		want.Timestamp,
	)
	mock.ExpectQuery(`SELECT (.+) FROM payments`).
		WithArgs("user-1").
		WillReturnRows(rows)

	records, err := st.ListPaymentsByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	require.Equal(t, want.UserID, got.UserID)
	require.Equal(t, want.WalletAddress, got.WalletAddress)
	require.Equal(t, want.TransactionHash, got.TransactionHash)
	require.Equal(t, want.PlanID, got.PlanID)
	require.True(t, want.Amount.Equal(got.Amount))
	require.True(t, want.AptAmount.Equal(got.AptAmount))
	require.Equal(t, want.Currency, got.Currency)
	require.Equal(t, want.PaymentMethod, got.PaymentMethod)
	require.Equal(t, want.Status, got.Status)
	require.Equal(t, want.Timestamp, got.Timestamp)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListPaymentsByUser_Empty(t *testing.T) {
	t.Parallel()

	st, mock := newMockStore(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT (.+) FROM payments`).
		WithArgs("nobody").
		WillReturnRows(pgxmock.NewRows([]string{
			"user_id", "wallet_address", "transaction_hash", "plan_id",
			"amount", "apt_amount", "currency", "payment_method", "status", "created_at",
		}))

	records, err := st.ListPaymentsByUser(context.Background(), "nobody")
	require.NoError(t, err)
	require.Empty(t, records)
	require.NoError(t, mock.ExpectationsWereMet())
}
