// Command apikey-gen mints an API key for a customer, stores its HMAC-SHA256
// hash, and prints the plaintext key once. The key is never recoverable from
// the database.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/google/uuid"

	"github.com/SHEHROZFF/ecom-sub000/internal/storage/postgres"
)

const insertKeySQL = `INSERT INTO api_keys (id, key_hash, name, scopes)
	VALUES ($1, $2, $3, $4)`

func main() {
	var (
		databaseURL string
		name        string
		pepper      string
	)
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&name, "name", "", "display name for the key holder")
	flag.StringVar(&pepper, "pepper", "", "HMAC pepper, must match the server's ECOM_API_KEY_PEPPER")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" || name == "" {
		slog.Error("usage: apikey-gen -name <holder> [-database-url <url>] [-pepper <pepper>]")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, name, pepper); err != nil {
		slog.Error("apikey-gen failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, databaseURL, name, pepper string) error {
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return err
	}
	key := "ek_" + hex.EncodeToString(raw)

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(key))
	hash := hex.EncodeToString(mac.Sum(nil))

	id := uuid.New().String()
	if _, err := pool.Exec(ctx, insertKeySQL, id, hash, name, []string{"storefront"}); err != nil {
		return err
	}

	fmt.Printf("id:  %s\nkey: %s\n", id, key)
	return nil
}
