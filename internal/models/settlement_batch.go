package models

import (
	"time"
)

// Batch statuses
const (
	BatchStatusPending   = "PENDING"
	BatchStatusCompleted = "COMPLETED"
	BatchStatusFailed    = "FAILED"
)

// Anchor confirmation states maintained by the websocket watcher
const (
	AnchorStatusSubmitted = "submitted"
	AnchorStatusFinalized = "finalized"
)

// SettlementBatch is a sealed settlement period. Entries are stamped with
// the batch id only after the merkle root was accepted by the anchor; a
// FAILED batch leaves its entries unsettled and its number is never reused.
type SettlementBatch struct {
	ID                uint       `gorm:"primarykey" json:"id"`
	BatchNumber       uint       `gorm:"not null;uniqueIndex" json:"batch_number"`
	PeriodStart       time.Time  `json:"period_start"`
	PeriodEnd         time.Time  `json:"period_end"`
	TotalEntries      int        `gorm:"not null;default:0" json:"total_entries"`
	TotalVolume       float64    `gorm:"not null;default:0" json:"total_volume"`
	Status            string     `gorm:"size:16;not null;default:'PENDING';index" json:"status"`
	MerkleRoot        string     `gorm:"size:64" json:"merkle_root"`
	AnchorTxSignature string     `gorm:"size:100;default:''" json:"anchor_tx_signature"`
	AnchorSequence    uint64     `gorm:"default:0" json:"anchor_sequence"`
	AnchorFee         float64    `gorm:"default:0" json:"anchor_fee"`
	AnchorStatus      string     `gorm:"size:16;default:''" json:"anchor_status"`
	Metadata          JSONMap    `gorm:"type:jsonb" json:"metadata"`
	SettledAt         *time.Time `json:"settled_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (SettlementBatch) TableName() string {
	return "settlement_batches"
}
