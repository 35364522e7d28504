package integration

import (
	"os"
	"testing"
)

// BaseURL points the suite at a running API instance. Tests are skipped
// entirely when LEDGER_API_BASE_URL is not set.
var BaseURL = os.Getenv("LEDGER_API_BASE_URL")

func TestMain(m *testing.M) {
	if BaseURL == "" {
		os.Exit(0)
	}
	os.Exit(m.Run())
}
