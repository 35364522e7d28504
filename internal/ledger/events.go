package ledger

import (
	"time"

	log "github.com/sirupsen/logrus"

	"ledgercontrol/internal/models"
	"ledgercontrol/pkg/config"
)

// Queues consumed by downstream marketplace services
const (
	EntryEventQueue = "ledger_entries"
	BatchEventQueue = "settlement_batches"
)

// EntryEvent is published whenever a transfer is applied
type EntryEvent struct {
	EntryID         uint      `json:"entry_id"`
	EntryType       string    `json:"entry_type"`
	DebitAccountID  uint      `json:"debit_account_id"`
	CreditAccountID uint      `json:"credit_account_id"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	CreatedAt       time.Time `json:"created_at"`
}

// BatchEvent is published when a settlement batch completes or fails
type BatchEvent struct {
	BatchID     uint    `json:"batch_id"`
	BatchNumber uint    `json:"batch_number"`
	Status      string  `json:"status"`
	MerkleRoot  string  `json:"merkle_root"`
	TotalVolume float64 `json:"total_volume"`
	Entries     int     `json:"entries"`
}

// PublishEntryEvent emits the entry to the ledger_entries queue. Publishing
// is best-effort: money movement never fails because the broker is down.
func PublishEntryEvent(entry *models.LedgerEntry) {
	if config.RabbitMQ == nil {
		return
	}
	publish(EntryEventQueue, EntryEvent{
		EntryID:         entry.ID,
		EntryType:       entry.EntryType,
		DebitAccountID:  entry.DebitAccountID,
		CreditAccountID: entry.CreditAccountID,
		Amount:          entry.Amount,
		Currency:        entry.Currency,
		CreatedAt:       entry.CreatedAt,
	})
}

// PublishBatchEvent emits the batch outcome to the settlement_batches queue
func PublishBatchEvent(batch *models.SettlementBatch) {
	if config.RabbitMQ == nil {
		return
	}
	publish(BatchEventQueue, BatchEvent{
		BatchID:     batch.ID,
		BatchNumber: batch.BatchNumber,
		Status:      batch.Status,
		MerkleRoot:  batch.MerkleRoot,
		TotalVolume: batch.TotalVolume,
		Entries:     batch.TotalEntries,
	})
}

func publish(queue string, message interface{}) {
	publisher, err := config.NewPublisher()
	if err != nil {
		log.Warnf("Failed to create publisher for queue %s: %v", queue, err)
		return
	}
	defer publisher.Close()

	if err := publisher.Publish(queue, message); err != nil {
		log.Warnf("Failed to publish to queue %s: %v", queue, err)
	}
}
