// Command minttoken prints a dashboard session token for a user id, signed
// with SECRET_KEY, for exercising the authenticated endpoints locally.
package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	config "github.com/maheshrc27/postsync/configs"
	"github.com/maheshrc27/postsync/pkg/utils"
)

func main() {
	userID := flag.Int64("user", 0, "user id to mint the token for")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}
	cfg := config.LoadConfig()

	if *userID <= 0 {
		log.Fatal("-user is required")
	}
	if cfg.SecretKey == "" {
		log.Fatal("SECRET_KEY is not set")
	}

	token, err := utils.GenerateToken(cfg.SecretKey, strconv.FormatInt(*userID, 10), *ttl)
	if err != nil {
		log.Fatalf("Failed to mint token: %v", err)
	}

	fmt.Printf("%s=%s\n", cfg.CookieName, token)
}
