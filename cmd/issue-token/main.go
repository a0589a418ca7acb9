// Команда issue-token выпускает токен устройства для HTTP API,
// подписанный секретом из конфига.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/magabrotheeeer/installment-tracker/internal/config"
	"github.com/magabrotheeeer/installment-tracker/internal/lib/jwt"
)

func main() {
	device := flag.String("device", "", "device identifier")
	scope := flag.String("scope", jwt.ScopeWrite, "token scope: read or write")
	flag.Parse()

	if *device == "" {
		log.Fatal("-device is required")
	}
	if *scope != jwt.ScopeRead && *scope != jwt.ScopeWrite {
		log.Fatalf("unknown scope %q", *scope)
	}

	cfg := config.MustLoad()
	if cfg.JWTSecretKey == "" {
		log.Fatal("jwttoken.jwt_secret_key is empty")
	}

	token, err := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL).GenerateToken(*device, *scope)
	if err != nil {
		log.Fatalf("cannot issue token: %s", err)
	}
	fmt.Println(token)
}
