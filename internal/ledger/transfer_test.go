package ledger

import (
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

func TestCreateTransferRejectsSelfTransfer(t *testing.T) {
	_, err := CreateTransfer(nil, TransferParams{
		DebitAccountID:  7,
		CreditAccountID: 7,
		Amount:          10,
		EntryType:       models.EntryTypeTransfer,
	})
	assert.ErrorIs(t, err, ErrInvalidAccount)
}

func TestCreateTransferRejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []float64{0, -1, -0.01} {
		_, err := CreateTransfer(nil, TransferParams{
			DebitAccountID:  1,
			CreditAccountID: 2,
			Amount:          amount,
			EntryType:       models.EntryTypeTransfer,
		})
		assert.ErrorIs(t, err, ErrInvalidAccount)
	}
}

func TestCreateTransferReturnsExistingEntryForKnownKey(t *testing.T) {
	db, mock := newMockDB(t)

	key := "op-42-deposit"
	rows := sqlmock.NewRows([]string{"id", "debit_account_id", "credit_account_id", "amount", "entry_type", "status", "idempotency_key"}).
		AddRow(99, 1, 2, 50.0, models.EntryTypeDeposit, models.EntryStatusCompleted, key)
	mock.ExpectQuery(`SELECT \* FROM "ledger_entries" WHERE idempotency_key = \$1`).
		WithArgs(key, 1).
		WillReturnRows(rows)

	entry, err := CreateTransfer(db, TransferParams{
		DebitAccountID:  1,
		CreditAccountID: 2,
		Amount:          50,
		EntryType:       models.EntryTypeDeposit,
		IdempotencyKey:  key,
	})
	require.NoError(t, err)
	assert.Equal(t, uint(99), entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTransferInsufficientBalance(t *testing.T) {
	db, mock := newMockDB(t)

	accountRows := func(id uint, accountType string, available float64) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "account_type", "currency", "balance", "available_balance"}).
			AddRow(id, accountType, "USD", available, available)
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "ledger_accounts"`).
		WillReturnRows(accountRows(1, models.AccountTypeUserWallet, 10))
	mock.ExpectQuery(`SELECT \* FROM "ledger_accounts"`).
		WillReturnRows(accountRows(2, models.AccountTypeSellerEarnings, 0))
	mock.ExpectRollback()

	_, err := CreateTransfer(db, TransferParams{
		DebitAccountID:  1,
		CreditAccountID: 2,
		Amount:          50,
		EntryType:       models.EntryTypeTransfer,
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTransferMissingAccount(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "ledger_accounts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := CreateTransfer(db, TransferParams{
		DebitAccountID:  1,
		CreditAccountID: 2,
		Amount:          50,
		EntryType:       models.EntryTypeTransfer,
	})
	assert.ErrorIs(t, err, ErrInvalidAccount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTransferReserveMayOverdraft(t *testing.T) {
	db, mock := newMockDB(t)

	accountRows := func(id uint, accountType string, available float64) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "account_type", "currency", "balance", "available_balance"}).
			AddRow(id, accountType, "USD", available, available)
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "ledger_accounts"`).
		WillReturnRows(accountRows(1, models.AccountTypeReserve, 0))
	mock.ExpectQuery(`SELECT \* FROM "ledger_accounts"`).
		WillReturnRows(accountRows(2, models.AccountTypeUserWallet, 0))
	mock.ExpectExec(`UPDATE "ledger_accounts"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "ledger_accounts"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "ledger_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	entry, err := CreateTransfer(db, TransferParams{
		DebitAccountID:  1,
		CreditAccountID: 2,
		Amount:          100,
		EntryType:       models.EntryTypeDeposit,
	})
	require.NoError(t, err)
	assert.Equal(t, -100.0, entry.DebitBalanceAfter)
	assert.Equal(t, 100.0, entry.CreditBalanceAfter)
	assert.NoError(t, mock.ExpectationsWereMet())
}
