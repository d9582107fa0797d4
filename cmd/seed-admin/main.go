// cmd/seed-admin/main.go creates the first admin account from ADMIN_EMAIL and ADMIN_PASSWORD.
package main

import (
	"context"
	"log"

	"hostel-complaint-api/config"
	"hostel-complaint-api/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	config.InitDB(cfg)
	if err := config.AutoMigrate(config.DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	created, err := services.NewAccountService(config.DB).
		SeedAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName)
	if err != nil {
		log.Fatal("Failed to seed admin:", err)
	}
	if !created {
		log.Println("An admin account already exists, nothing to do")
		return
	}
	log.Printf("Admin account %s created", cfg.AdminEmail)
}
