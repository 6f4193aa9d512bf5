// Command devtoken signs a session token for local development, standing in
// for the external identity provider.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	token_adapter "github.com/goncalofm90/foodi3/internal/adapters/jwt"
	"github.com/goncalofm90/foodi3/internal/core/domain"

	"github.com/joho/godotenv"
)

func main() {
	userID := flag.String("user", "", "user id to sign the token for (required)")
	email := flag.String("email", "", "email claim")
	name := flag.String("name", "", "display name claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	if *userID == "" {
		flag.Usage()
		os.Exit(2)
	}

	tokens, err := token_adapter.NewTokenService(os.Getenv("JWT_SIGNING_KEY"))
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	token, err := tokens.GenerateToken(context.Background(), domain.User{ID: *userID, Email: *email, Name: *name}, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
