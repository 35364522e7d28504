package payments

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"ledgercontrol/internal/ledger"
	"ledgercontrol/internal/models"
)

// ErrPaymentNotFound is returned when no payment record matches a provider reference
var ErrPaymentNotFound = errors.New("payment record not found")

// WebhookQueue carries provider webhook events to the reconciliation worker
const WebhookQueue = "payment_webhooks"

// Ledger idempotency keys for payment flows are derived from the provider
// reference, so a replayed capture or webhook never moves money twice.
func paymentOpKey(providerRef string) string {
	return "pp-" + providerRef
}

// RecordDeposit captures a deposit with the provider and records it. The
// ledger credit is applied only once the provider confirms, either
// synchronously here or later through the webhook.
func RecordDeposit(ctx context.Context, db *gorm.DB, processor Processor, accountID uint, amount float64, currency string) (*models.PaymentRecord, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: deposit amount must be positive", ledger.ErrInvalidAccount)
	}
	account, err := ledger.GetAccount(db, accountID)
	if err != nil {
		return nil, err
	}
	if currency == "" {
		currency = account.Currency
	}

	capture, err := processor.CaptureDeposit(ctx, accountID, amount, currency)
	if err != nil {
		return nil, err
	}

	record := models.PaymentRecord{
		AccountID:   accountID,
		Kind:        models.PaymentKindDeposit,
		Amount:      amount,
		Currency:    currency,
		ProviderRef: capture.ProviderRef,
		Status:      models.PaymentStatusProcessing,
	}
	if err := db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment record: %w", err)
	}

	if capture.Status == CaptureStatusSucceeded {
		if err := applyDeposit(db, &record); err != nil {
			return nil, err
		}
	} else if capture.Status == CaptureStatusFailed {
		if err := markPayment(db, &record, models.PaymentStatusFailed, 0); err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"account_id":   accountID,
		"amount":       amount,
		"provider_ref": record.ProviderRef,
		"status":       record.Status,
	}).Info("Deposit capture recorded")

	return &record, nil
}

// RecordWithdrawal debits the account up front, then captures the payout
// with the provider. Holding the funds first means a payout is only ever
// initiated for money the account actually had; when the capture itself
// errors the hold is released, and a payout that fails later is refunded by
// the webhook reversal.
func RecordWithdrawal(ctx context.Context, db *gorm.DB, processor Processor, accountID uint, amount float64, currency string) (*models.PaymentRecord, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive", ledger.ErrInvalidAccount)
	}
	account, err := ledger.GetAccount(db, accountID)
	if err != nil {
		return nil, err
	}
	if currency == "" {
		currency = account.Currency
	}

	// The provider reference does not exist yet, so the hold gets its own
	// operation key; post-capture legs stay keyed by the provider reference.
	opKey := ledger.NewOperationKey()
	entry, err := ledger.Withdraw(db, accountID, amount, opKey)
	if err != nil {
		return nil, err
	}
	ledger.PublishEntryEvent(entry)

	capture, err := processor.CaptureWithdrawal(ctx, accountID, amount, currency)
	if err != nil {
		if rerr := releaseHold(db, accountID, amount, opKey); rerr != nil {
			log.Errorf("Failed to release withdrawal hold for account %d: %v", accountID, rerr)
			return nil, rerr
		}
		return nil, err
	}

	record := models.PaymentRecord{
		AccountID:   accountID,
		Kind:        models.PaymentKindWithdrawal,
		Amount:      amount,
		Currency:    currency,
		ProviderRef: capture.ProviderRef,
		Status:      models.PaymentStatusProcessing,
		EntryID:     entry.ID,
	}
	if err := db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment record: %w", err)
	}

	switch capture.Status {
	case CaptureStatusSucceeded:
		if err := markPayment(db, &record, models.PaymentStatusSucceeded, entry.ID); err != nil {
			return nil, err
		}
	case CaptureStatusFailed:
		if err := reverseWithdrawal(db, &record); err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"account_id":   accountID,
		"amount":       amount,
		"provider_ref": record.ProviderRef,
		"status":       record.Status,
	}).Info("Withdrawal capture recorded")

	return &record, nil
}

// WebhookEvent is the provider's asynchronous status notification
type WebhookEvent struct {
	ProviderRef string `json:"provider_ref" binding:"required"`
	Status      string `json:"status" binding:"required"`
}

// Reconcile applies a provider webhook to its payment record. Replayed
// webhooks are no-ops: terminal records are left untouched and the ledger
// legs are idempotent on the provider reference.
func Reconcile(db *gorm.DB, event WebhookEvent) (*models.PaymentRecord, error) {
	var record models.PaymentRecord
	if err := db.Where("provider_ref = ?", event.ProviderRef).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if record.Status != models.PaymentStatusProcessing {
		log.Infof("Webhook for %s ignored: record already %s", record.ProviderRef, record.Status)
		return &record, nil
	}

	switch event.Status {
	case CaptureStatusSucceeded:
		if record.Kind == models.PaymentKindDeposit {
			if err := applyDeposit(db, &record); err != nil {
				return nil, err
			}
		} else {
			if err := markPayment(db, &record, models.PaymentStatusSucceeded, record.EntryID); err != nil {
				return nil, err
			}
		}
	case CaptureStatusFailed:
		if record.Kind == models.PaymentKindWithdrawal {
			if err := reverseWithdrawal(db, &record); err != nil {
				return nil, err
			}
		} else {
			if err := markPayment(db, &record, models.PaymentStatusFailed, 0); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unknown webhook status %q", event.Status)
	}

	log.WithFields(log.Fields{
		"provider_ref": record.ProviderRef,
		"kind":         record.Kind,
		"status":       record.Status,
	}).Info("Payment webhook reconciled")

	return &record, nil
}

// applyDeposit credits the account for a confirmed deposit
func applyDeposit(db *gorm.DB, record *models.PaymentRecord) error {
	entry, err := ledger.Deposit(db, record.AccountID, record.Amount, paymentOpKey(record.ProviderRef))
	if err != nil {
		return err
	}
	if err := markPayment(db, record, models.PaymentStatusSucceeded, entry.ID); err != nil {
		return err
	}
	ledger.PublishEntryEvent(entry)
	return nil
}

// releaseHold refunds a withdrawal hold whose provider capture never happened
func releaseHold(db *gorm.DB, accountID uint, amount float64, opKey string) error {
	reserve, err := ledger.GetOrCreateSystemAccount(db, models.AccountTypeReserve)
	if err != nil {
		return err
	}
	entry, err := ledger.CreateTransfer(db, ledger.TransferParams{
		DebitAccountID:  reserve.ID,
		CreditAccountID: accountID,
		Amount:          amount,
		EntryType:       models.EntryTypeRefund,
		IdempotencyKey:  ledger.LegKey(opKey, "reversal"),
	})
	if err != nil {
		return err
	}
	ledger.PublishEntryEvent(entry)
	return nil
}

// reverseWithdrawal puts the held funds back after a failed payout
func reverseWithdrawal(db *gorm.DB, record *models.PaymentRecord) error {
	reserve, err := ledger.GetOrCreateSystemAccount(db, models.AccountTypeReserve)
	if err != nil {
		return err
	}
	entry, err := ledger.CreateTransfer(db, ledger.TransferParams{
		DebitAccountID:  reserve.ID,
		CreditAccountID: record.AccountID,
		Amount:          record.Amount,
		EntryType:       models.EntryTypeRefund,
		IdempotencyKey:  paymentOpKey(record.ProviderRef) + "-reversal",
	})
	if err != nil {
		return err
	}
	if err := markPayment(db, record, models.PaymentStatusReversed, record.EntryID); err != nil {
		return err
	}
	ledger.PublishEntryEvent(entry)
	return nil
}

func markPayment(db *gorm.DB, record *models.PaymentRecord, status string, entryID uint) error {
	updates := map[string]interface{}{"status": status}
	if entryID != 0 {
		updates["entry_id"] = entryID
	}
	if err := db.Model(&models.PaymentRecord{}).Where("id = ?", record.ID).Updates(updates).Error; err != nil {
		return err
	}
	record.Status = status
	if entryID != 0 {
		record.EntryID = entryID
	}
	return nil
}
