package settlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ledgercontrol/internal/anchor"
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

type stubAnchor struct {
	submitResult *anchor.SubmitResult
	submitErr    error
	verifyResult *anchor.VerifyResult
}

func (s *stubAnchor) Submit(ctx context.Context, batchID uint, merkleRoot string, entryCount int) (*anchor.SubmitResult, error) {
	return s.submitResult, s.submitErr
}

func (s *stubAnchor) Verify(ctx context.Context, batchID uint, txRef string) (*anchor.VerifyResult, error) {
	return s.verifyResult, nil
}

func TestRunNoopWhenNothingToSettle(t *testing.T) {
	db, mock := newMockDB(t)
	engine := NewEngine(db, &stubAnchor{})

	mock.ExpectQuery(`SELECT pg_try_advisory_lock`).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))
	mock.ExpectQuery(`SELECT \* FROM "ledger_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`SELECT pg_advisory_unlock`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	batch, err := engine.Run(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Nil(t, batch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunSkipsWhenLockHeld(t *testing.T) {
	db, mock := newMockDB(t)
	engine := NewEngine(db, &stubAnchor{})

	mock.ExpectQuery(`SELECT pg_try_advisory_lock`).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(false))

	batch, err := engine.Run(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Nil(t, batch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunReleasesLockWhenSelectionFails(t *testing.T) {
	db, mock := newMockDB(t)
	engine := NewEngine(db, &stubAnchor{})

	// Lock, failing selection and unlock all travel over the one pinned
	// connection, so the lock never outlives the run
	mock.ExpectQuery(`SELECT pg_try_advisory_lock`).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))
	mock.ExpectQuery(`SELECT \* FROM "ledger_entries"`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectExec(`SELECT pg_advisory_unlock`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	batch, err := engine.Run(context.Background(), time.Time{}, time.Time{})
	assert.Error(t, err)
	assert.Nil(t, batch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyComparesRoots(t *testing.T) {
	db, mock := newMockDB(t)

	batchRows := sqlmock.NewRows([]string{"id", "batch_number", "merkle_root", "anchor_tx_signature", "status"}).
		AddRow(5, 5, "rootA", "sig-123", "COMPLETED")
	mock.ExpectQuery(`SELECT \* FROM "settlement_batches"`).
		WillReturnRows(batchRows)

	engine := NewEngine(db, &stubAnchor{
		verifyResult: &anchor.VerifyResult{Found: true, MerkleRoot: "rootA"},
	})

	result, err := engine.Verify(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, "rootA", result.StoredRoot)
	assert.Equal(t, "rootA", result.AnchorRoot)
}

func TestVerifyDetectsMismatch(t *testing.T) {
	db, mock := newMockDB(t)

	batchRows := sqlmock.NewRows([]string{"id", "batch_number", "merkle_root", "anchor_tx_signature", "status"}).
		AddRow(5, 5, "rootA", "sig-123", "COMPLETED")
	mock.ExpectQuery(`SELECT \* FROM "settlement_batches"`).
		WillReturnRows(batchRows)

	engine := NewEngine(db, &stubAnchor{
		verifyResult: &anchor.VerifyResult{Found: true, MerkleRoot: "rootB"},
	})

	result, err := engine.Verify(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.True(t, result.Found)
}

func TestVerifyUnanchoredBatch(t *testing.T) {
	db, mock := newMockDB(t)

	batchRows := sqlmock.NewRows([]string{"id", "batch_number", "merkle_root", "anchor_tx_signature", "status"}).
		AddRow(5, 5, "rootA", "", "FAILED")
	mock.ExpectQuery(`SELECT \* FROM "settlement_batches"`).
		WillReturnRows(batchRows)

	engine := NewEngine(db, &stubAnchor{})

	result, err := engine.Verify(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.False(t, result.Found)
	assert.Equal(t, "rootA", result.StoredRoot)
}
