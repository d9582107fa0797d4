// cmd/reset-admin-password/main.go sets a new password for an existing account.
//
//	go run ./cmd/reset-admin-password -email admin@example.com -password 'N3w!pass'
//
// Both flags fall back to ADMIN_EMAIL and ADMIN_PASSWORD.
package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"hostel-complaint-api/config"
	"hostel-complaint-api/services"
	"hostel-complaint-api/utils"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	email := flag.String("email", cfg.AdminEmail, "account email")
	password := flag.String("password", cfg.AdminPassword, "new password")
	force := flag.Bool("force", false, "skip the password strength check")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("email and password are required (flags or ADMIN_EMAIL/ADMIN_PASSWORD)")
	}
	if ok, msg := utils.ValidatePassword(*password); !ok && !*force {
		log.Fatalf("Password rejected: %s (use -force to override)", msg)
	}

	config.InitDB(cfg)

	err := services.NewAccountService(config.DB).ResetPassword(context.Background(), *email, *password)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		log.Fatalf("No account with email %s", *email)
	case err != nil:
		log.Fatal("Failed to reset password:", err)
	}
	log.Printf("Password updated for %s", *email)
}
