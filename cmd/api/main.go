package main

import (
	"log"
	"os"

	logrus "github.com/sirupsen/logrus"

	"ledgercontrol/internal/anchor"
	"ledgercontrol/internal/handlers"
	"ledgercontrol/internal/payments"
	"ledgercontrol/internal/routes"
	"ledgercontrol/internal/settlement"
	"ledgercontrol/pkg/config"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	config.InitDB()

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		config.ExecuteMigrations()
	}

	// Initialize RabbitMQ (optional, will log warning if not configured)
	if os.Getenv("RABBITMQ_HOST") != "" {
		config.InitRabbitMQ()
		defer func() {
			if config.RabbitMQ != nil {
				config.RabbitMQ.Close()
			}
		}()
		log.Println("RabbitMQ initialized successfully")
	} else {
		log.Println("RabbitMQ not configured, skipping initialization")
	}

	// Settlement endpoints need an anchor client; without one they return 503
	if os.Getenv("ANCHOR_RPC_ENDPOINT") != "" {
		anchorClient, err := anchor.NewSolanaClient()
		if err != nil {
			logrus.Fatal("Failed to create anchor client: ", err)
		}
		handlers.InitSettlement(settlement.NewEngine(config.DB, anchorClient))
		log.Println("Settlement engine initialized")
	} else {
		log.Println("Anchor not configured, settlement endpoints disabled")
	}

	// Payment endpoints need the bank-transfer provider
	if os.Getenv("PAYMENT_PROVIDER_URL") != "" {
		processor, err := payments.NewHTTPProcessor()
		if err != nil {
			logrus.Fatal("Failed to create payment processor: ", err)
		}
		handlers.InitPayments(processor)
		log.Println("Payment processor initialized")
	} else {
		log.Println("Payment provider not configured, payment endpoints disabled")
	}

	// Set up router
	r := routes.SetupRouter()

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
