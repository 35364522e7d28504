package settlement

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"ledgercontrol/internal/models"
)

// leafTimeLayout renders entry timestamps the way the anchored format
// expects them: millisecond-precision UTC ISO 8601.
const leafTimeLayout = "2006-01-02T15:04:05.000Z"

// hashHex returns the lowercase hex sha256 of the input string
func hashHex(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// formatAmount renders an amount with minimal decimals ("10", "10.5"),
// matching the canonical leaf encoding
func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// EntryLeaf hashes one entry into its merkle leaf:
// sha256(id ":" amount ":" created_at_iso8601)
func EntryLeaf(entry *models.LedgerEntry) string {
	data := fmt.Sprintf("%d:%s:%s", entry.ID, formatAmount(entry.Amount), entry.CreatedAt.UTC().Format(leafTimeLayout))
	return hashHex(data)
}

// EmptyRoot is the sentinel root for a batch with no entries
func EmptyRoot() string {
	return hashHex("empty")
}

// ComputeRoot folds leaf hashes into a single merkle root. Adjacent hashes
// are paired left to right and their hex concatenation re-hashed; an odd
// hash at the end of a level is paired with itself.
func ComputeRoot(leaves []string) string {
	if len(leaves) == 0 {
		return EmptyRoot()
	}

	level := leaves
	for len(level) > 1 {
		next := make([]string, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			left := level[i]
			right := left
			if i+1 < len(level) {
				right = level[i+1]
			}
			next = append(next, hashHex(left+right))
		}
		level = next
	}
	return level[0]
}

// RootForEntries computes the merkle root over a batch's entries
func RootForEntries(entries []models.LedgerEntry) string {
	leaves := make([]string, 0, len(entries))
	for i := range entries {
		leaves = append(leaves, EntryLeaf(&entries[i]))
	}
	return ComputeRoot(leaves)
}
