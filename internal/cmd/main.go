package main

import (
	"context"
	"flag"
	"legal-roundtable/internal/middlewares"
	"legal-roundtable/internal/models"
	"log/slog"
	"os"
	"time"
)

// prints a bcrypt hash for a configured author account or a signed token for manual api calls
func main() {
	password := flag.String("hash", "", "password to hash for the Auth.Users configuration")
	userId := flag.String("user", "", "user id the token is issued for")
	email := flag.String("email", "", "e-mail address the token is issued for")
	key := flag.String("key", os.Getenv("SIGNING_KEY"), "signing key, defaults to $SIGNING_KEY")
	lifetime := flag.Duration("lifetime", 12*time.Hour, "token lifetime")
	flag.Parse()

	if len(*password) > 0 {
		hash, err := models.Hash(*password)
		if err != nil {
			slog.Error(err.Error())
			os.Exit(1)
		}
		slog.Info(string(hash))
		return
	}

	if len(*userId) == 0 || len(*email) == 0 || len(*key) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	token, expiresAt, err := middlewares.GenerateToken(context.Background(), []byte(*key), *userId, *email, *lifetime)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	slog.Info(token, "expiresAt", expiresAt.Format(time.RFC3339))
}
