package main

import (
	"flag"

	"ledgercontrol/pkg/config"
)

func main() {
	down := flag.Bool("down", false, "roll back the last migration instead of migrating up")
	flag.Parse()

	config.InitDB()

	if *down {
		config.RollbackMigration()
		return
	}
	config.ExecuteMigrations()
}
