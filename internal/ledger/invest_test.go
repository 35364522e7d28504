package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDividendFor(t *testing.T) {
	// Equal thirds of $100 floor to 33.33 each
	assert.Equal(t, 33.33, DividendFor(100, 300, 100))

	// Full ownership gets the full amount
	assert.Equal(t, 100.0, DividendFor(500, 500, 100))

	// Zero raised pays nothing
	assert.Equal(t, 0.0, DividendFor(100, 0, 100))
}

func TestDividendForNeverOverpays(t *testing.T) {
	// Three equal investors: the floored payouts leave a remainder in the pool
	total := 100.0
	var distributed float64
	for i := 0; i < 3; i++ {
		distributed += DividendFor(100, 300, total)
	}
	assert.Equal(t, 99.99, distributed)
	assert.LessOrEqual(t, distributed, total)
}

func TestDividendForProRata(t *testing.T) {
	// 60/40 split of $250
	assert.Equal(t, 150.0, DividendFor(600, 1000, 250))
	assert.Equal(t, 100.0, DividendFor(400, 1000, 250))

	// Tiny stake rounds down to the cent
	assert.Equal(t, 0.02, DividendFor(1, 1000, 25))
}
