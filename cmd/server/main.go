package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/property-auth/internal/auth"
	"github.com/iliyamo/property-auth/internal/config"
	"github.com/iliyamo/property-auth/internal/database"
	"github.com/iliyamo/property-auth/internal/handler"
	"github.com/iliyamo/property-auth/internal/repository"
	"github.com/iliyamo/property-auth/internal/router"
	"github.com/iliyamo/property-auth/internal/service"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load() // fatal here if JWT_SECRET or DB coordinates are missing

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client just means revocation checks always
	// hit MySQL.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, blacklist fast path disabled")
	}

	users := repository.NewUserRepo(db)
	blacklist := repository.NewBlacklistRepo(db, rdb)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTLSec, blacklist)
	svc := service.NewAuth(users, tokens, cfg.BcryptCost, service.NewAMQPEvents())

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(svc), tokens, users)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
