package main

import (
	"log"

	"ai-meetnotes/internal/config"
	"ai-meetnotes/internal/model"
	"ai-meetnotes/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDB(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	if cfg.Database.Driver != database.DriverSQLite {
		log.Println("Step 1: Setting up extensions...")
		for _, sql := range []string{
			`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
			`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		} {
			if err := db.Exec(sql).Error; err != nil {
				log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
			}
		}
	}

	models := model.All()
	log.Printf("Step 2: Running AutoMigrate for %d tables...", len(models))
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Migration completed successfully!")
}
