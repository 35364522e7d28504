package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ledgercontrol/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

type stubProcessor struct {
	result *CaptureResult
	err    error
	calls  int
}

func (s *stubProcessor) CaptureDeposit(ctx context.Context, accountID uint, amount float64, currency string) (*CaptureResult, error) {
	s.calls++
	return s.result, s.err
}

func (s *stubProcessor) CaptureWithdrawal(ctx context.Context, accountID uint, amount float64, currency string) (*CaptureResult, error) {
	s.calls++
	return s.result, s.err
}

func accountRows(id uint, accountType string, available float64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "account_type", "currency", "balance", "available_balance"}).
		AddRow(id, accountType, "USD", available, available)
}

func TestPaymentOpKey(t *testing.T) {
	assert.Equal(t, "pp-ref-123", paymentOpKey("ref-123"))
}

func TestRecordWithdrawalReleasesHoldWhenCaptureErrors(t *testing.T) {
	db, mock := newMockDB(t)

	// account lookup
	mock.ExpectQuery(`SELECT \* FROM "ledger_accounts"`).
		WillReturnRows(accountRows(1, models.AccountTypeUserWallet, 100))

	// the hold is applied before the provider is ever called
	mock.ExpectQuery(`SELECT \* FROM "ledger_accounts"`).
		WillReturnRows(accountRows(2, models.AccountTypeReserve, 0))
	mock.ExpectQuery(`SELECT \* FROM "ledger_entries" WHERE idempotency_key = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "ledger_accounts"`).
		WillReturnRows(accountRows(1, models.AccountTypeUserWallet, 100))
	mock.ExpectQuery(`SELECT \* FROM "ledger_accounts"`).
		WillReturnRows(accountRows(2, models.AccountTypeReserve, 0))
	mock.ExpectExec(`UPDATE "ledger_accounts"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "ledger_accounts"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "ledger_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(55))
	mock.ExpectCommit()

	// the capture error puts the held funds back
	mock.ExpectQuery(`SELECT \* FROM "ledger_accounts"`).
		WillReturnRows(accountRows(2, models.AccountTypeReserve, 50))
	mock.ExpectQuery(`SELECT \* FROM "ledger_entries" WHERE idempotency_key = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "ledger_accounts"`).
		WillReturnRows(accountRows(1, models.AccountTypeUserWallet, 50))
	mock.ExpectQuery(`SELECT \* FROM "ledger_accounts"`).
		WillReturnRows(accountRows(2, models.AccountTypeReserve, 50))
	mock.ExpectExec(`UPDATE "ledger_accounts"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "ledger_accounts"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "ledger_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(56))
	mock.ExpectCommit()

	processor := &stubProcessor{err: errors.New("provider unreachable")}
	_, err := RecordWithdrawal(context.Background(), db, processor, 1, 50, "USD")
	assert.EqualError(t, err, "provider unreachable")
	assert.Equal(t, 1, processor.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileAppliesConfirmedDeposit(t *testing.T) {
	db, mock := newMockDB(t)

	recordRows := sqlmock.NewRows([]string{"id", "account_id", "kind", "amount", "provider_ref", "status"}).
		AddRow(1, 10, models.PaymentKindDeposit, 25.0, "ref-1", models.PaymentStatusProcessing)
	mock.ExpectQuery(`SELECT \* FROM "payment_records"`).
		WillReturnRows(recordRows)

	mock.ExpectQuery(`SELECT \* FROM "ledger_accounts"`).
		WillReturnRows(accountRows(2, models.AccountTypeReserve, 0))
	mock.ExpectQuery(`SELECT \* FROM "ledger_entries" WHERE idempotency_key = \$1`).
		WithArgs("pp-ref-1-deposit", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "ledger_accounts"`).
		WillReturnRows(accountRows(2, models.AccountTypeReserve, 0))
	mock.ExpectQuery(`SELECT \* FROM "ledger_accounts"`).
		WillReturnRows(accountRows(10, models.AccountTypeUserWallet, 0))
	mock.ExpectExec(`UPDATE "ledger_accounts"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "ledger_accounts"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "ledger_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(77))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "payment_records"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	record, err := Reconcile(db, WebhookEvent{ProviderRef: "ref-1", Status: CaptureStatusSucceeded})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSucceeded, record.Status)
	assert.Equal(t, uint(77), record.EntryID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileUnknownRef(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "payment_records"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := Reconcile(db, WebhookEvent{ProviderRef: "does-not-exist", Status: CaptureStatusSucceeded})
	assert.ErrorIs(t, err, ErrPaymentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileIgnoresTerminalRecords(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "account_id", "kind", "amount", "provider_ref", "status"}).
		AddRow(1, 10, models.PaymentKindDeposit, 25.0, "ref-1", models.PaymentStatusSucceeded)
	mock.ExpectQuery(`SELECT \* FROM "payment_records"`).
		WillReturnRows(rows)

	// A replayed webhook against a succeeded record must not touch the ledger
	record, err := Reconcile(db, WebhookEvent{ProviderRef: "ref-1", Status: CaptureStatusSucceeded})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSucceeded, record.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileRejectsUnknownStatus(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "account_id", "kind", "amount", "provider_ref", "status"}).
		AddRow(1, 10, models.PaymentKindDeposit, 25.0, "ref-1", models.PaymentStatusProcessing)
	mock.ExpectQuery(`SELECT \* FROM "payment_records"`).
		WillReturnRows(rows)

	_, err := Reconcile(db, WebhookEvent{ProviderRef: "ref-1", Status: "exploded"})
	assert.Error(t, err)
}
