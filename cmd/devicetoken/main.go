// Command devicetoken mints a bearer token for a device using the server's
// JWT_SECRET and JWT_ISSUER.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jengzang/ecogo-motion/internal/config"
	"github.com/jengzang/ecogo-motion/internal/middleware"
)

func main() {
	device := flag.String("device", "", "device ID carried in the token")
	ttl := flag.Duration("ttl", 30*24*time.Hour, "token lifetime")
	flag.Parse()

	if *device == "" {
		log.Fatal("-device is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	token, err := middleware.NewAuthenticator(cfg.Server.JWTSecret, cfg.Server.JWTIssuer).IssueToken(*device, *ttl)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}
