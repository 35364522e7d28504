package ledger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLegKey(t *testing.T) {
	assert.Equal(t, "op-123-purchase", LegKey("op-123", "purchase"))
	assert.Equal(t, "op-123-fee", LegKey("op-123", "fee"))
}

func TestNewOperationKeyIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key := NewOperationKey()
		assert.NotEmpty(t, key)
		assert.False(t, seen[key])
		seen[key] = true
	}
}

func TestAutoInvestAmount(t *testing.T) {
	assert.Equal(t, 10.0, AutoInvestAmount(100, 10))
	assert.Equal(t, 0.0, AutoInvestAmount(100, 0))
	assert.Equal(t, 0.0, AutoInvestAmount(100, -5))

	// The diverted slice is floored to a whole unit; the residue stays
	// with the seller
	assert.Equal(t, 9.0, AutoInvestAmount(99.99, 10))
	assert.Equal(t, 4.0, AutoInvestAmount(33.33, 15))
	assert.LessOrEqual(t, AutoInvestAmount(33.33, 15), 33.33*15/100)
}

func TestGenerateAccountNumberFormat(t *testing.T) {
	number := GenerateAccountNumber("user_wallet")
	parts := strings.Split(number, "-")
	assert.Len(t, parts, 3)
	assert.Equal(t, "UWA", parts[0])
	assert.Len(t, parts[2], 4)

	// Unknown types fall back to the generic prefix
	assert.True(t, strings.HasPrefix(GenerateAccountNumber("bogus"), "ACC-"))
}

func TestGenerateAccountNumberPrefixes(t *testing.T) {
	cases := map[string]string{
		"user_wallet":     "UWA",
		"seller_earnings": "SEL",
		"platform_fee":    "FEE",
		"reserve":         "RSV",
		"escrow":          "ESC",
		"producer_pool":   "POL",
		"settlement":      "SET",
	}
	for accountType, prefix := range cases {
		assert.True(t, strings.HasPrefix(GenerateAccountNumber(accountType), prefix+"-"))
	}
}
