package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Account struct {
	ID            uint   `json:"id"`
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
}

type Balance struct {
	AccountID        uint    `json:"account_id"`
	Balance          float64 `json:"balance"`
	AvailableBalance float64 `json:"available_balance"`
}

type Entry struct {
	ID              uint    `json:"id"`
	DebitAccountID  uint    `json:"debit_account_id"`
	CreditAccountID uint    `json:"credit_account_id"`
	Amount          float64 `json:"amount"`
	EntryType       string  `json:"entry_type"`
	Status          string  `json:"status"`
}

func postJSON(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(BaseURL+path, "application/json", bytes.NewBuffer(payload))
	require.NoError(t, err)
	return resp
}

func getBalance(t *testing.T, accountID uint) Balance {
	t.Helper()
	resp, err := http.Get(fmt.Sprintf("%s/api/accounts/%d/balance", BaseURL, accountID))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var balance Balance
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&balance))
	return balance
}

func TestLedgerFlow(t *testing.T) {
	var accountA, accountB Account

	// Test Case 1: Create two user wallets
	t.Run("Create Accounts", func(t *testing.T) {
		for _, target := range []*Account{&accountA, &accountB} {
			resp := postJSON(t, "/api/accounts", map[string]interface{}{
				"account_type": "user_wallet",
			})
			defer resp.Body.Close()

			assert.Equal(t, http.StatusCreated, resp.StatusCode)
			require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
			assert.NotEmpty(t, target.AccountNumber)
		}
	})

	// Test Case 2: Deposit $100 into account A
	t.Run("Deposit", func(t *testing.T) {
		resp := postJSON(t, "/api/operations/deposit", map[string]interface{}{
			"account_id": accountA.ID,
			"amount":     100,
		})
		defer resp.Body.Close()

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var entry Entry
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&entry))
		assert.Equal(t, "DEPOSIT", entry.EntryType)
		assert.Equal(t, 100.0, entry.Amount)

		balance := getBalance(t, accountA.ID)
		assert.Equal(t, 100.0, balance.Balance)
	})

	// Test Case 3: Transfer $40 from A to B
	t.Run("Transfer", func(t *testing.T) {
		resp := postJSON(t, "/api/transfers", map[string]interface{}{
			"debit_account_id":  accountA.ID,
			"credit_account_id": accountB.ID,
			"amount":            40,
		})
		defer resp.Body.Close()

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		assert.Equal(t, 60.0, getBalance(t, accountA.ID).Balance)
		assert.Equal(t, 40.0, getBalance(t, accountB.ID).Balance)
	})

	// Test Case 4: Retried transfer with the same key does not double-spend
	t.Run("Idempotent Transfer", func(t *testing.T) {
		body := map[string]interface{}{
			"debit_account_id":  accountA.ID,
			"credit_account_id": accountB.ID,
			"amount":            10,
			"idempotency_key":   fmt.Sprintf("it-%d-%d", accountA.ID, accountB.ID),
		}

		var firstID uint
		for i := 0; i < 2; i++ {
			resp := postJSON(t, "/api/transfers", body)
			assert.Equal(t, http.StatusCreated, resp.StatusCode)

			var entry Entry
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&entry))
			resp.Body.Close()

			if i == 0 {
				firstID = entry.ID
			} else {
				assert.Equal(t, firstID, entry.ID)
			}
		}

		assert.Equal(t, 50.0, getBalance(t, accountA.ID).Balance)
		assert.Equal(t, 50.0, getBalance(t, accountB.ID).Balance)
	})

	// Test Case 5: Overdraft is rejected
	t.Run("Insufficient Balance", func(t *testing.T) {
		resp := postJSON(t, "/api/transfers", map[string]interface{}{
			"debit_account_id":  accountA.ID,
			"credit_account_id": accountB.ID,
			"amount":            1000000,
		})
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		assert.Equal(t, 50.0, getBalance(t, accountA.ID).Balance)
	})

	// Test Case 6: Transaction history reflects the flow
	t.Run("History", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/api/accounts/%d/history", BaseURL, accountB.ID))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var response struct {
			Data []struct {
				Direction    string  `json:"direction"`
				SignedAmount float64 `json:"signed_amount"`
			} `json:"data"`
			Count int `json:"count"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
		assert.GreaterOrEqual(t, response.Count, 2)
		assert.Equal(t, "CREDIT", response.Data[0].Direction)
	})
}
