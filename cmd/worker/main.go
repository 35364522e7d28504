package main

import (
	"encoding/json"
	"log"

	logrus "github.com/sirupsen/logrus"

	"ledgercontrol/internal/payments"
	"ledgercontrol/pkg/config"
)

// The worker drains the payment webhook queue and reconciles each event
// against its payment record. Failed reconciliations are nacked and
// redelivered, so transient database errors retry automatically.
func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	config.InitDB()

	// Initialize RabbitMQ
	config.InitRabbitMQ()
	defer config.RabbitMQ.Close()

	msgConsumer, err := config.NewConsumer(payments.WebhookQueue)
	if err != nil {
		logrus.Fatal("Failed to create consumer: ", err)
	}
	defer msgConsumer.Close()

	logrus.Info("Payment reconciliation worker started, waiting for messages...")

	err = msgConsumer.Consume(func(msg []byte) error {
		var event payments.WebhookEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			logrus.Errorf("Failed to unmarshal webhook event: %v", err)
			// Malformed payloads can never succeed; drop instead of requeue
			return nil
		}

		record, err := payments.Reconcile(config.DB, event)
		if err != nil {
			if err == payments.ErrPaymentNotFound {
				logrus.Warnf("Webhook for unknown provider ref %s dropped", event.ProviderRef)
				return nil
			}
			logrus.Errorf("Failed to reconcile webhook %s: %v", event.ProviderRef, err)
			return err
		}

		logrus.WithFields(logrus.Fields{
			"provider_ref": record.ProviderRef,
			"kind":         record.Kind,
			"status":       record.Status,
		}).Info("Webhook reconciled")
		return nil
	})

	if err != nil {
		log.Fatal("Failed to start consumer: ", err)
	}
}
