package ledger

import (
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"ledgercontrol/internal/models"
)

// CreatePool creates an investment pool backed by a fresh producer_pool
// ledger account
func CreatePool(db *gorm.DB, name, currency string, autoInvestPct float64) (*models.InvestmentPool, error) {
	account, err := CreateAccount(db, models.AccountTypeProducerPool, currency, "", 0)
	if err != nil {
		return nil, err
	}

	pool := models.InvestmentPool{
		Name:          name,
		AccountID:     account.ID,
		Currency:      account.Currency,
		AutoInvestPct: autoInvestPct,
		Status:        models.PoolStatusOpen,
	}
	if err := db.Create(&pool).Error; err != nil {
		return nil, fmt.Errorf("failed to create investment pool: %w", err)
	}
	return &pool, nil
}

// GetPool looks up an investment pool by id
func GetPool(db *gorm.DB, poolID uint) (*models.InvestmentPool, error) {
	var pool models.InvestmentPool
	if err := db.First(&pool, poolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}
	return &pool, nil
}

// Invest moves funds from the investor's account into the pool account and
// records the investment. Retries with the same operation key resolve to the
// already-applied transfer and do not double-count the pool totals.
func Invest(db *gorm.DB, poolID, investorAccountID uint, amount float64, sourceType string, sourceID uint, opKey string) (*models.Investment, error) {
	pool, err := GetPool(db, poolID)
	if err != nil {
		return nil, err
	}
	if opKey == "" {
		opKey = NewOperationKey()
	}

	entry, err := CreateTransfer(db, TransferParams{
		DebitAccountID:  investorAccountID,
		CreditAccountID: pool.AccountID,
		Amount:          amount,
		EntryType:       models.EntryTypeInvestment,
		IdempotencyKey:  LegKey(opKey, "invest"),
		ReferenceType:   "investment_pool",
		ReferenceID:     pool.ID,
	})
	if err != nil {
		return nil, err
	}

	return recordInvestment(db, pool, investorAccountID, amount, sourceType, sourceID, entry)
}

func recordAutoInvestment(db *gorm.DB, pool *models.InvestmentPool, investorAccountID uint, amount float64, orderID uint, entry *models.LedgerEntry) error {
	_, err := recordInvestment(db, pool, investorAccountID, amount, "order", orderID, entry)
	return err
}

// recordInvestment persists the Investment row for an applied transfer and
// bumps the pool counters, once per entry
func recordInvestment(db *gorm.DB, pool *models.InvestmentPool, investorAccountID uint, amount float64, sourceType string, sourceID uint, entry *models.LedgerEntry) (*models.Investment, error) {
	var investment models.Investment
	err := db.Where("entry_id = ?", entry.ID).First(&investment).Error
	if err == nil {
		return &investment, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		investment = models.Investment{
			PoolID:            pool.ID,
			InvestorAccountID: investorAccountID,
			Amount:            amount,
			Status:            models.InvestmentStatusConfirmed,
			SourceType:        sourceType,
			SourceID:          sourceID,
			EntryID:           entry.ID,
		}
		if err := tx.Create(&investment).Error; err != nil {
			return err
		}
		return tx.Model(&models.InvestmentPool{}).Where("id = ?", pool.ID).
			Updates(map[string]interface{}{
				"total_raised":    gorm.Expr("total_raised + ?", amount),
				"total_investors": gorm.Expr("total_investors + 1"),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &investment, nil
}

// DividendFor computes one investor's dividend from a distribution total,
// floored to the cent so the sum over all investors never exceeds the total
func DividendFor(investmentAmount, totalRaised, totalAmount float64) float64 {
	if totalRaised <= 0 {
		return 0
	}
	share := investmentAmount / totalRaised
	return math.Floor(totalAmount*share*100) / 100
}

// DividendDistribution summarizes one DistributeDividends run
type DividendDistribution struct {
	PoolID           uint    `json:"pool_id"`
	TotalAmount      float64 `json:"total_amount"`
	TotalDistributed float64 `json:"total_distributed"`
	Recipients       int     `json:"recipients"`
	Skipped          int     `json:"skipped"`
}

// DistributeDividends pays every CONFIRMED investment its pro-rata share of
// totalAmount out of the pool account. Rounding down per recipient can leave
// a small remainder in the pool; it stays there and is not redistributed.
func DistributeDividends(db *gorm.DB, poolID uint, totalAmount float64, opKey string) (*DividendDistribution, error) {
	if totalAmount <= 0 {
		return nil, fmt.Errorf("%w: distribution amount must be positive", ErrInvalidAccount)
	}
	pool, err := GetPool(db, poolID)
	if err != nil {
		return nil, err
	}
	if opKey == "" {
		opKey = NewOperationKey()
	}

	var investments []models.Investment
	if err := db.Where("pool_id = ? AND status = ?", pool.ID, models.InvestmentStatusConfirmed).
		Order("id asc").Find(&investments).Error; err != nil {
		return nil, err
	}

	dist := &DividendDistribution{PoolID: pool.ID, TotalAmount: totalAmount}

	for i := range investments {
		investment := &investments[i]
		dividend := DividendFor(investment.Amount, pool.TotalRaised, totalAmount)
		if dividend <= 0 {
			dist.Skipped++
			continue
		}

		_, err := CreateTransfer(db, TransferParams{
			DebitAccountID:  pool.AccountID,
			CreditAccountID: investment.InvestorAccountID,
			Amount:          dividend,
			EntryType:       models.EntryTypeDividend,
			IdempotencyKey:  fmt.Sprintf("%s-dividend-%d", opKey, investment.ID),
			ReferenceType:   "investment_pool",
			ReferenceID:     pool.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("dividend for investment %d: %w", investment.ID, err)
		}

		if err := db.Model(&models.Investment{}).Where("id = ?", investment.ID).
			Updates(map[string]interface{}{
				"actual_return":      gorm.Expr("actual_return + ?", dividend),
				"return_distributed": true,
			}).Error; err != nil {
			return nil, err
		}

		dist.TotalDistributed += dividend
		dist.Recipients++
	}

	if dist.TotalDistributed > 0 {
		if err := db.Model(&models.InvestmentPool{}).Where("id = ?", pool.ID).
			Update("distributed_return", gorm.Expr("distributed_return + ?", dist.TotalDistributed)).Error; err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"pool_id":     pool.ID,
		"total":       totalAmount,
		"distributed": dist.TotalDistributed,
		"recipients":  dist.Recipients,
	}).Info("Dividend distribution completed")

	return dist, nil
}
