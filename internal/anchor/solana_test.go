package anchor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMemo(t *testing.T) {
	id, root, ok := parseMemo("ledger-batch:7:abc123:42")
	assert.True(t, ok)
	assert.Equal(t, uint(7), id)
	assert.Equal(t, "abc123", root)
}

func TestParseMemoRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"ledger-batch:7:abc123",
		"ledger-batch:7:abc123:42:extra",
		"other-prefix:7:abc123:42",
		"ledger-batch:notanumber:abc123:42",
	}
	for _, memo := range cases {
		_, _, ok := parseMemo(memo)
		assert.False(t, ok, "memo %q should not parse", memo)
	}
}
