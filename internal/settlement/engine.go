package settlement

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"ledgercontrol/internal/anchor"
	"ledgercontrol/internal/ledger"
	"ledgercontrol/internal/models"
)

// advisoryLockKey serializes settlement runs across processes so two jobs
// never race over the same unsettled entry set
const advisoryLockKey int64 = 0x6C65646765720001

// Engine seals completed ledger entries into anchored settlement batches
type Engine struct {
	db     *gorm.DB
	anchor anchor.Client
}

// NewEngine creates a settlement engine
func NewEngine(db *gorm.DB, client anchor.Client) *Engine {
	return &Engine{db: db, anchor: client}
}

// Run executes one settlement pass: select all COMPLETED, unbatched entries,
// seal them under a merkle root, anchor the root and stamp the entries.
// Anchor failures are absorbed into the batch (status FAILED); the entries
// stay unsettled and the next run retries them. Returns nil when there was
// nothing to settle or another run holds the lock.
func (e *Engine) Run(ctx context.Context, periodStart, periodEnd time.Time) (*models.SettlementBatch, error) {
	var batch *models.SettlementBatch

	// The advisory lock is session-level, so the whole selection-to-stamp
	// window is pinned to a single connection. Taking and releasing it
	// through the pool would let the unlock land on a different session,
	// or let two runs share the lock holder's connection and both proceed.
	err := e.db.Connection(func(conn *gorm.DB) error {
		var locked bool
		if err := conn.Raw("SELECT pg_try_advisory_lock(?)", advisoryLockKey).Scan(&locked).Error; err != nil {
			return err
		}
		if !locked {
			log.Warn("Settlement run skipped: another run holds the lock")
			return nil
		}
		defer conn.Exec("SELECT pg_advisory_unlock(?)", advisoryLockKey)

		var err error
		batch, err = e.run(ctx, conn, periodStart, periodEnd)
		return err
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (e *Engine) run(ctx context.Context, db *gorm.DB, periodStart, periodEnd time.Time) (*models.SettlementBatch, error) {
	// The recorded period is bookkeeping; selection is always "all
	// outstanding completed entries", not a time-window query.
	if periodEnd.IsZero() {
		periodEnd = time.Now().UTC()
	}
	if periodStart.IsZero() {
		periodStart = periodEnd.Add(-24 * time.Hour)
	}

	var entries []models.LedgerEntry
	if err := db.Where("status = ? AND settlement_batch_id IS NULL", models.EntryStatusCompleted).
		Order("id asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		log.Info("Settlement run: no completed entries to settle")
		return nil, nil
	}

	var totalVolume float64
	entryIDs := make([]uint, 0, len(entries))
	for i := range entries {
		totalVolume += entries[i].Amount
		entryIDs = append(entryIDs, entries[i].ID)
	}

	var batchCount int64
	if err := db.Model(&models.SettlementBatch{}).Count(&batchCount).Error; err != nil {
		return nil, err
	}

	batch := models.SettlementBatch{
		BatchNumber:  uint(batchCount) + 1,
		PeriodStart:  periodStart,
		PeriodEnd:    periodEnd,
		TotalEntries: len(entries),
		TotalVolume:  totalVolume,
		Status:       models.BatchStatusPending,
		MerkleRoot:   RootForEntries(entries),
	}
	if err := db.Create(&batch).Error; err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"batch_id":     batch.ID,
		"batch_number": batch.BatchNumber,
		"entries":      batch.TotalEntries,
		"volume":       batch.TotalVolume,
		"merkle_root":  batch.MerkleRoot,
	}).Info("Settlement batch created, submitting to anchor")

	result, err := e.anchor.Submit(ctx, batch.ID, batch.MerkleRoot, batch.TotalEntries)
	if err != nil {
		e.markFailed(db, &batch, err)
		ledger.PublishBatchEvent(&batch)
		return &batch, nil
	}

	now := time.Now().UTC()
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.LedgerEntry{}).
			Where("id IN ? AND settlement_batch_id IS NULL", entryIDs).
			Updates(map[string]interface{}{
				"settlement_batch_id": batch.ID,
				"status":              models.EntryStatusSettled,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.SettlementBatch{}).Where("id = ?", batch.ID).
			Updates(map[string]interface{}{
				"status":              models.BatchStatusCompleted,
				"anchor_tx_signature": result.TxSignature,
				"anchor_sequence":     result.Sequence,
				"anchor_fee":          result.FeePaid,
				"anchor_status":       models.AnchorStatusSubmitted,
				"settled_at":          now,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	batch.Status = models.BatchStatusCompleted
	batch.AnchorTxSignature = result.TxSignature
	batch.AnchorSequence = result.Sequence
	batch.AnchorFee = result.FeePaid
	batch.AnchorStatus = models.AnchorStatusSubmitted
	batch.SettledAt = &now

	log.WithFields(log.Fields{
		"batch_id":  batch.ID,
		"signature": result.TxSignature,
		"entries":   len(entryIDs),
	}).Info("Settlement batch completed")

	ledger.PublishBatchEvent(&batch)
	return &batch, nil
}

// markFailed records the anchor failure on the batch and the operator audit
// trail. Entries stay untouched so the next run retries them; the failed
// batch number is never reused.
func (e *Engine) markFailed(db *gorm.DB, batch *models.SettlementBatch, cause error) {
	log.Errorf("Anchor submission failed for batch %d: %v", batch.ID, cause)

	err := db.Model(&models.SettlementBatch{}).Where("id = ?", batch.ID).
		Updates(map[string]interface{}{
			"status":   models.BatchStatusFailed,
			"metadata": models.JSONMap{"error": cause.Error()},
		}).Error
	if err != nil {
		log.Errorf("Failed to mark batch %d as FAILED: %v", batch.ID, err)
	}
	batch.Status = models.BatchStatusFailed
	batch.Metadata = models.JSONMap{"error": cause.Error()}

	sysLog := models.SystemLog{
		BatchID: batch.ID,
		Level:   "ERROR",
		Message: "Anchor submission failed",
		Module:  "settlement",
		Meta:    models.JSONMap{"batch_number": batch.BatchNumber, "error": cause.Error()},
	}
	if err := db.Create(&sysLog).Error; err != nil {
		log.Errorf("Failed to create system log for batch %d: %v", batch.ID, err)
	}
}

// VerificationResult reports a batch root re-check against the anchor
type VerificationResult struct {
	BatchID    uint   `json:"batch_id"`
	Verified   bool   `json:"verified"`
	StoredRoot string `json:"stored_root"`
	AnchorRoot string `json:"anchor_root,omitempty"`
	Found      bool   `json:"found"`
}

// Verify re-fetches the externally anchored root for a batch and compares
// it byte for byte against the stored merkle root
func (e *Engine) Verify(ctx context.Context, batchID uint) (*VerificationResult, error) {
	var batch models.SettlementBatch
	if err := e.db.First(&batch, batchID).Error; err != nil {
		return nil, err
	}

	result := &VerificationResult{
		BatchID:    batch.ID,
		StoredRoot: batch.MerkleRoot,
	}
	if batch.AnchorTxSignature == "" {
		return result, nil
	}

	verify, err := e.anchor.Verify(ctx, batch.ID, batch.AnchorTxSignature)
	if err != nil {
		return nil, err
	}

	result.Found = verify.Found
	result.AnchorRoot = verify.MerkleRoot
	result.Verified = verify.Found && verify.MerkleRoot == batch.MerkleRoot
	return result, nil
}
