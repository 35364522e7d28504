package ledger

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ledgercontrol/internal/models"
)

// Composite operations are expressed purely as repeated CreateTransfer calls,
// each leg keyed by the shared operation key plus a role suffix. A partially
// completed operation can therefore be retried leg by leg: already-applied
// legs resolve to their existing entries and only the missing legs run.

// LegKey derives the idempotency key for one leg of a composite operation
func LegKey(opKey, role string) string {
	return opKey + "-" + role
}

// NewOperationKey returns a fresh operation key for callers that do not
// supply their own
func NewOperationKey() string {
	return uuid.NewString()
}

// Deposit moves funds from the system reserve into the target account
func Deposit(db *gorm.DB, accountID uint, amount float64, opKey string) (*models.LedgerEntry, error) {
	if opKey == "" {
		opKey = NewOperationKey()
	}
	reserve, err := GetOrCreateSystemAccount(db, models.AccountTypeReserve)
	if err != nil {
		return nil, err
	}
	return CreateTransfer(db, TransferParams{
		DebitAccountID:  reserve.ID,
		CreditAccountID: accountID,
		Amount:          amount,
		EntryType:       models.EntryTypeDeposit,
		IdempotencyKey:  LegKey(opKey, "deposit"),
	})
}

// Withdraw moves funds from the target account back into the system reserve
func Withdraw(db *gorm.DB, accountID uint, amount float64, opKey string) (*models.LedgerEntry, error) {
	if opKey == "" {
		opKey = NewOperationKey()
	}
	reserve, err := GetOrCreateSystemAccount(db, models.AccountTypeReserve)
	if err != nil {
		return nil, err
	}
	return CreateTransfer(db, TransferParams{
		DebitAccountID:  accountID,
		CreditAccountID: reserve.ID,
		Amount:          amount,
		EntryType:       models.EntryTypeWithdrawal,
		IdempotencyKey:  LegKey(opKey, "withdrawal"),
	})
}

// OrderSettlementParams describes a marketplace order settlement
type OrderSettlementParams struct {
	OrderID           uint
	CustomerAccountID uint
	SellerAccountID   uint
	Total             float64
	PlatformFee       float64
	// AutoInvestPoolID carves part of the seller share into an investment
	// pool when non-zero
	AutoInvestPoolID uint
	OperationKey     string
}

// OrderSettlementResult holds the entries created for each settlement leg
type OrderSettlementResult struct {
	PurchaseEntry   *models.LedgerEntry `json:"purchase_entry"`
	CommissionEntry *models.LedgerEntry `json:"commission_entry"`
	SellerEntry     *models.LedgerEntry `json:"seller_entry"`
	InvestmentEntry *models.LedgerEntry `json:"investment_entry,omitempty"`
	SellerAmount    float64             `json:"seller_amount"`
	InvestAmount    float64             `json:"invest_amount"`
}

// AutoInvestAmount computes the slice of the seller share diverted into a
// pool: floor(sellerAmount * pct / 100), so the diverted slice is a whole
// currency unit and the rounding residue stays with the seller
func AutoInvestAmount(sellerAmount, pct float64) float64 {
	if pct <= 0 {
		return 0
	}
	return math.Floor(sellerAmount * pct / 100)
}

// SettleOrder runs the order settlement flow: customer pays into escrow,
// escrow pays the platform fee and the seller, and optionally diverts a
// slice of the seller share into the seller's investment pool.
func SettleOrder(db *gorm.DB, p OrderSettlementParams) (*OrderSettlementResult, error) {
	if p.PlatformFee < 0 || p.PlatformFee > p.Total {
		return nil, fmt.Errorf("%w: platform fee %.2f outside order total %.2f", ErrInvalidAccount, p.PlatformFee, p.Total)
	}
	opKey := p.OperationKey
	if opKey == "" {
		opKey = NewOperationKey()
	}

	escrow, err := GetOrCreateSystemAccount(db, models.AccountTypeEscrow)
	if err != nil {
		return nil, err
	}
	feeAccount, err := GetOrCreateSystemAccount(db, models.AccountTypePlatformFee)
	if err != nil {
		return nil, err
	}

	sellerAmount := p.Total - p.PlatformFee

	var investAmount float64
	var pool *models.InvestmentPool
	if p.AutoInvestPoolID != 0 {
		pool, err = GetPool(db, p.AutoInvestPoolID)
		if err != nil {
			return nil, err
		}
		investAmount = AutoInvestAmount(sellerAmount, pool.AutoInvestPct)
	}

	result := &OrderSettlementResult{
		SellerAmount: sellerAmount - investAmount,
		InvestAmount: investAmount,
	}

	result.PurchaseEntry, err = CreateTransfer(db, TransferParams{
		DebitAccountID:  p.CustomerAccountID,
		CreditAccountID: escrow.ID,
		Amount:          p.Total,
		EntryType:       models.EntryTypePurchase,
		IdempotencyKey:  LegKey(opKey, "purchase"),
		ReferenceType:   "order",
		ReferenceID:     p.OrderID,
	})
	if err != nil {
		return nil, err
	}

	if p.PlatformFee > 0 {
		result.CommissionEntry, err = CreateTransfer(db, TransferParams{
			DebitAccountID:  escrow.ID,
			CreditAccountID: feeAccount.ID,
			Amount:          p.PlatformFee,
			EntryType:       models.EntryTypeCommission,
			IdempotencyKey:  LegKey(opKey, "fee"),
			ReferenceType:   "order",
			ReferenceID:     p.OrderID,
		})
		if err != nil {
			return nil, err
		}
	}

	if result.SellerAmount > 0 {
		result.SellerEntry, err = CreateTransfer(db, TransferParams{
			DebitAccountID:  escrow.ID,
			CreditAccountID: p.SellerAccountID,
			Amount:          result.SellerAmount,
			EntryType:       models.EntryTypeTransfer,
			IdempotencyKey:  LegKey(opKey, "seller"),
			ReferenceType:   "order",
			ReferenceID:     p.OrderID,
		})
		if err != nil {
			return nil, err
		}
	}

	if investAmount > 0 && pool != nil {
		result.InvestmentEntry, err = CreateTransfer(db, TransferParams{
			DebitAccountID:  escrow.ID,
			CreditAccountID: pool.AccountID,
			Amount:          investAmount,
			EntryType:       models.EntryTypeInvestment,
			IdempotencyKey:  LegKey(opKey, "invest"),
			ReferenceType:   "order",
			ReferenceID:     p.OrderID,
		})
		if err != nil {
			return nil, err
		}
		if err := recordAutoInvestment(db, pool, p.SellerAccountID, investAmount, p.OrderID, result.InvestmentEntry); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// RefundOrderParams describes the reversal of a settled order
type RefundOrderParams struct {
	OrderID           uint
	CustomerAccountID uint
	SellerAccountID   uint
	Total             float64
	PlatformFee       float64
	OperationKey      string
}

// RefundOrder reverses an order settlement: the seller and fee legs flow
// back through escrow and escrow repays the customer.
func RefundOrder(db *gorm.DB, p RefundOrderParams) ([]*models.LedgerEntry, error) {
	opKey := p.OperationKey
	if opKey == "" {
		opKey = NewOperationKey()
	}

	escrow, err := GetOrCreateSystemAccount(db, models.AccountTypeEscrow)
	if err != nil {
		return nil, err
	}
	feeAccount, err := GetOrCreateSystemAccount(db, models.AccountTypePlatformFee)
	if err != nil {
		return nil, err
	}

	sellerAmount := p.Total - p.PlatformFee
	var entries []*models.LedgerEntry

	if sellerAmount > 0 {
		entry, err := CreateTransfer(db, TransferParams{
			DebitAccountID:  p.SellerAccountID,
			CreditAccountID: escrow.ID,
			Amount:          sellerAmount,
			EntryType:       models.EntryTypeRefund,
			IdempotencyKey:  LegKey(opKey, "refund-seller"),
			ReferenceType:   "order",
			ReferenceID:     p.OrderID,
		})
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if p.PlatformFee > 0 {
		entry, err := CreateTransfer(db, TransferParams{
			DebitAccountID:  feeAccount.ID,
			CreditAccountID: escrow.ID,
			Amount:          p.PlatformFee,
			EntryType:       models.EntryTypeRefund,
			IdempotencyKey:  LegKey(opKey, "refund-fee"),
			ReferenceType:   "order",
			ReferenceID:     p.OrderID,
		})
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	entry, err := CreateTransfer(db, TransferParams{
		DebitAccountID:  escrow.ID,
		CreditAccountID: p.CustomerAccountID,
		Amount:          p.Total,
		EntryType:       models.EntryTypeRefund,
		IdempotencyKey:  LegKey(opKey, "refund-customer"),
		ReferenceType:   "order",
		ReferenceID:     p.OrderID,
	})
	if err != nil {
		return nil, err
	}
	entries = append(entries, entry)

	return entries, nil
}
