package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fedutinova/mediastore/internal/auth"
	appconfig "github.com/fedutinova/mediastore/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./scripts/dev_token <roles> [user_id]")
		fmt.Println("Example: go run ./scripts/dev_token user,moderator")
		os.Exit(1)
	}

	roles := strings.Split(os.Args[1], ",")

	userID := uuid.New().String()
	if len(os.Args) > 2 {
		id, err := uuid.Parse(os.Args[2])
		if err != nil {
			log.Fatalf("Invalid user id: %v", err)
		}
		userID = id.String()
	}

	cfg := appconfig.Load()
	token, err := auth.NewToken(cfg.JWTSecret, cfg.JWTIssuer, userID, roles, 24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Printf("user_id: %s\n", userID)
	fmt.Printf("token:   %s\n", token)
}
