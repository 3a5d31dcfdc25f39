// Command seed replaces every campground in the configured store with
// generated sample data.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand/v2"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/fishcamp/internal/config"
	"github.com/iliyamo/fishcamp/internal/repository"
	"github.com/iliyamo/fishcamp/internal/seed"
)

func main() {
	n := flag.Int("n", 50, "number of campgrounds to insert")
	flag.Parse()
	if *n < 0 {
		log.Fatalf("seed: -n must not be negative, got %d", *n)
	}

	_ = godotenv.Load() // .env is optional

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := repository.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer store.Close(context.Background())

	now := uint64(time.Now().UnixNano())
	inserted, err := seed.Run(ctx, store, *n, rand.New(rand.NewPCG(now, now>>1)))
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Printf("inserted %d campgrounds (driver=%s)", inserted, cfg.DBDriver)
}
