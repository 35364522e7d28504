package settlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ledgercontrol/internal/models"
)

func entryAt(id uint, amount float64, ts string) models.LedgerEntry {
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		panic(err)
	}
	return models.LedgerEntry{ID: id, Amount: amount, CreatedAt: parsed}
}

func TestEmptyRoot(t *testing.T) {
	assert.Equal(t, "2e1cfa82b035c26cbbbdae632cea070514eb8b773f616aaeaf668e2f0be8f10d", EmptyRoot())
	assert.Equal(t, EmptyRoot(), ComputeRoot(nil))
}

func TestEntryLeaf(t *testing.T) {
	entry := entryAt(1, 100, "2025-01-15T10:30:00Z")
	assert.Equal(t, "ab1cc98018531abc36f6855467e8f5b4e77d58c955a7c80a87799bf480efcb6c", EntryLeaf(&entry))

	// Amounts render with minimal decimals, timestamps with millisecond precision
	entry = entryAt(2, 40.5, "2025-01-15T11:00:00Z")
	assert.Equal(t, "21d13be6254f9e1e61f58af00dd02a462400d08a189a086b2e9e00799c97ef0f", EntryLeaf(&entry))

	entry = entryAt(3, 0.01, "2025-01-15T12:45:30.25Z")
	assert.Equal(t, "20893223a53aa89bfbdbab974351c8891549e01a3340c0883214b44cae40651d", EntryLeaf(&entry))
}

func TestComputeRootSingleLeaf(t *testing.T) {
	root := ComputeRoot([]string{"abc"})
	assert.Equal(t, "abc", root)
}

func TestRootForEntriesTwoLeaves(t *testing.T) {
	entries := []models.LedgerEntry{
		entryAt(1, 100, "2025-01-15T10:30:00Z"),
		entryAt(2, 40.5, "2025-01-15T11:00:00Z"),
	}
	assert.Equal(t, "db23cd0bbb8763b5323e81f57059cae2a63f53b6f925da5cabe36c8182aa8431", RootForEntries(entries))
}

func TestRootForEntriesOddLeafPairsWithItself(t *testing.T) {
	entries := []models.LedgerEntry{
		entryAt(1, 100, "2025-01-15T10:30:00Z"),
		entryAt(2, 40.5, "2025-01-15T11:00:00Z"),
		entryAt(3, 0.01, "2025-01-15T12:45:30.25Z"),
	}
	assert.Equal(t, "bbf6890a1cce6a7fb887a65b910ed76a15d80f2cb10732983fe1743996f23c55", RootForEntries(entries))
}

func TestRootIsDeterministic(t *testing.T) {
	entries := []models.LedgerEntry{
		entryAt(10, 12.34, "2025-06-01T00:00:00Z"),
		entryAt(11, 56.78, "2025-06-01T00:00:01Z"),
		entryAt(12, 90.12, "2025-06-01T00:00:02Z"),
		entryAt(13, 3.45, "2025-06-01T00:00:03Z"),
	}
	assert.Equal(t, RootForEntries(entries), RootForEntries(entries))
}

func TestRootChangesWithAnyEntry(t *testing.T) {
	base := []models.LedgerEntry{
		entryAt(1, 100, "2025-01-15T10:30:00Z"),
		entryAt(2, 40.5, "2025-01-15T11:00:00Z"),
	}
	tampered := []models.LedgerEntry{
		entryAt(1, 100.01, "2025-01-15T10:30:00Z"),
		entryAt(2, 40.5, "2025-01-15T11:00:00Z"),
	}
	assert.NotEqual(t, RootForEntries(base), RootForEntries(tampered))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "100", formatAmount(100))
	assert.Equal(t, "40.5", formatAmount(40.5))
	assert.Equal(t, "0.01", formatAmount(0.01))
}
