// scripts/generate_password.go

// Prints a bcrypt hash for seeding accounts by hand, using the configured cost.
//
//	go run scripts/generate_password.go <password>
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

func main() {
	if len(os.Args) < 2 {
		logrus.Fatal("Usage: go run scripts/generate_password.go <password>")
	}
	password := os.Args[1]

	cfg := &config.Config{}
	cfg.Security.BcryptCost = 12
	if loaded, err := config.Load(); err == nil {
		cfg = loaded
	}

	passwords := auth.NewPasswordManager(cfg)
	hash, err := passwords.HashPassword(password)
	if err != nil {
		logrus.Fatalf("Error generating hash: %v", err)
	}
	if err := passwords.VerifyPassword(password, hash); err != nil {
		logrus.Fatalf("Hash verification failed: %v", err)
	}

	fmt.Println(hash)
	fmt.Fprintln(os.Stderr, "✅ Hash verified successfully!")
}
