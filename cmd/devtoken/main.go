// Command devtoken prints an ADMIN bearer token for the development seed
// route, signed with JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/fishcamp/internal/config"
	"github.com/iliyamo/fishcamp/internal/utils"
)

func main() {
	subject := flag.String("sub", "dev", "token subject")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load() // .env is optional

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	tok, err := utils.NewAccessToken(cfg.JWTSecret, *subject, utils.RoleAdmin, *ttl)
	if err != nil {
		log.Fatalf("sign: %v", err)
	}
	fmt.Println(tok.Token)
	log.Printf("expires %s", tok.Exp.Format(time.RFC3339))
}
