package anchor

import (
	"context"
)

// SubmitResult is the reference returned by the anchor network for a batch root
type SubmitResult struct {
	TxSignature string  `json:"tx_signature"`
	Sequence    uint64  `json:"sequence"`
	FeePaid     float64 `json:"fee_paid"`
}

// VerifyResult is the outcome of re-fetching an anchored root
type VerifyResult struct {
	Found      bool   `json:"found"`
	MerkleRoot string `json:"merkle_root,omitempty"`
}

// Client anchors settlement batch merkle roots to an external append-only
// network. Submit must be treated as idempotent per batch by callers: the
// settlement engine never resubmits a batch that already holds a signature.
type Client interface {
	Submit(ctx context.Context, batchID uint, merkleRoot string, entryCount int) (*SubmitResult, error)
	Verify(ctx context.Context, batchID uint, txRef string) (*VerifyResult, error)
}
