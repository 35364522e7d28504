package anchor

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
)

const (
	memoPrefix = "ledger-batch"

	lamportsPerSol = 1_000_000_000

	submitTimeout = 30 * time.Second
)

// SolanaClient anchors merkle roots as memo transactions signed by the
// platform's anchor wallet. The memo payload is
// "ledger-batch:<batch_id>:<merkle_root>:<entry_count>".
type SolanaClient struct {
	rpc    *rpc.Client
	signer solana.PrivateKey
}

// NewSolanaClient builds a client from the environment. The signer comes
// from ANCHOR_PRIVATE_KEY (base58), or from the encrypted keystore when
// ANCHOR_SIGNER_ADDRESS and ANCHOR_KEYSTORE_PASSWORD are set instead.
func NewSolanaClient() (*SolanaClient, error) {
	endpoint := os.Getenv("ANCHOR_RPC_ENDPOINT")
	if endpoint == "" {
		return nil, fmt.Errorf("ANCHOR_RPC_ENDPOINT is not set")
	}

	var signer solana.PrivateKey
	if raw := os.Getenv("ANCHOR_PRIVATE_KEY"); raw != "" {
		key, err := solana.PrivateKeyFromBase58(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid ANCHOR_PRIVATE_KEY: %w", err)
		}
		signer = key
	} else {
		address := os.Getenv("ANCHOR_SIGNER_ADDRESS")
		password := os.Getenv("ANCHOR_KEYSTORE_PASSWORD")
		if address == "" || password == "" {
			return nil, fmt.Errorf("no anchor signer configured")
		}
		account, err := NewSignerStore().LoadSigner(address, password)
		if err != nil {
			return nil, fmt.Errorf("failed to load anchor signer from keystore: %w", err)
		}
		signer = solana.PrivateKey(account.PrivateKey)
	}

	return &SolanaClient{
		rpc:    rpc.New(endpoint),
		signer: signer,
	}, nil
}

// Submit sends the batch root as a memo transaction and returns the
// signature, the slot it was built against and the fee paid.
func (c *SolanaClient) Submit(ctx context.Context, batchID uint, merkleRoot string, entryCount int) (*SubmitResult, error) {
	ctx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()

	memoText := fmt.Sprintf("%s:%d:%s:%d", memoPrefix, batchID, merkleRoot, entryCount)

	bh, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get blockhash: %w", err)
	}

	ix := solana.NewInstruction(
		solana.MemoProgramID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(c.signer.PublicKey(), false, true),
		},
		[]byte(memoText),
	)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		bh.Value.Blockhash,
		solana.TransactionPayer(c.signer.PublicKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(c.signer.PublicKey()) {
			return &c.signer
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	// Fee lookup is best-effort; a missing fee never blocks anchoring
	var feePaid float64
	if msgData, err := tx.Message.MarshalBinary(); err == nil {
		feeResp, err := c.rpc.GetFeeForMessage(ctx, base64.StdEncoding.EncodeToString(msgData), rpc.CommitmentFinalized)
		if err == nil && feeResp.Value != nil {
			feePaid = float64(*feeResp.Value) / lamportsPerSol
		}
	}

	sig, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to send anchor transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"batch_id":  batchID,
		"signature": sig.String(),
		"slot":      bh.Context.Slot,
	}).Info("Anchored settlement batch root")

	return &SubmitResult{
		TxSignature: sig.String(),
		Sequence:    bh.Context.Slot,
		FeePaid:     feePaid,
	}, nil
}

// Verify re-reads the anchored transaction and extracts the root recorded
// for the batch from its memo payload.
func (c *SolanaClient) Verify(ctx context.Context, batchID uint, txRef string) (*VerifyResult, error) {
	if txRef == "" {
		return &VerifyResult{Found: false}, nil
	}

	sig, err := solana.SignatureFromBase58(txRef)
	if err != nil {
		return nil, fmt.Errorf("invalid anchor transaction reference: %w", err)
	}

	resp, err := c.rpc.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding: solana.EncodingBase64,
	})
	if err != nil {
		if err == rpc.ErrNotFound {
			return &VerifyResult{Found: false}, nil
		}
		return nil, fmt.Errorf("failed to fetch anchor transaction: %w", err)
	}
	if resp == nil || resp.Transaction == nil {
		return &VerifyResult{Found: false}, nil
	}

	tx, err := resp.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("failed to decode anchor transaction: %w", err)
	}

	for _, ix := range tx.Message.Instructions {
		programID, err := tx.Message.Program(ix.ProgramIDIndex)
		if err != nil || !programID.Equals(solana.MemoProgramID) {
			continue
		}
		id, root, ok := parseMemo(string(ix.Data))
		if ok && id == batchID {
			return &VerifyResult{Found: true, MerkleRoot: root}, nil
		}
	}

	return &VerifyResult{Found: false}, nil
}

// parseMemo splits "ledger-batch:<id>:<root>:<count>" into its parts
func parseMemo(memo string) (batchID uint, merkleRoot string, ok bool) {
	parts := strings.Split(memo, ":")
	if len(parts) != 4 || parts[0] != memoPrefix {
		return 0, "", false
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, "", false
	}
	return uint(id), parts[2], true
}
