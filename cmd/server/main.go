package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/openbracket/madpool/internal/bracket"
	"github.com/openbracket/madpool/internal/config"
	"github.com/openbracket/madpool/internal/db"
	"github.com/openbracket/madpool/internal/service"
	"github.com/openbracket/madpool/internal/store"
	"github.com/openbracket/madpool/internal/token"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfgPath := os.Getenv("MADPOOL_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid config:", err)
	}

	database := db.InitDB(cfg.Database.DSN)
	defer database.Close()

	if err := db.RunMigrations(database, cfg.Database.MigrationsPath); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	regionOrder, err := bracket.ParseRegionOrder(cfg.Game.RegionOrder)
	if err != nil {
		log.Fatal("Invalid region order:", err)
	}
	treasury, err := uuid.Parse(cfg.Betting.Treasury)
	if err != nil {
		log.Fatal("Invalid treasury account:", err)
	}
	weights := bracket.WeightsFrom(cfg.Settlement.Weights)

	tournaments := store.NewTournamentStore(database)
	pools := store.NewPoolStore(database)
	cursors := store.NewSettlementStore(database)
	ledger := token.NewLedger(database)

	games := service.NewGameService(database, tournaments, pools, regionOrder)
	poolSvc := service.NewPoolService(database, pools, tournaments, ledger, cfg.Betting.EntryFee, treasury, weights)
	settlement := service.NewSettlementService(database, pools, tournaments, cursors, ledger, service.WinnerTakeAll{}, weights, cfg.Betting.EntryFee, treasury, cfg.Settlement.BatchSize)

	sessionManager := scs.New()
	sessionManager.Lifetime = 24 * time.Hour
	sessionManager.Store = sqlite3store.New(database.DB)

	router := newRouter(sessionManager, cfg.Server.OperatorKey, games, poolSvc, settlement)

	log.Println("Server starting on", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, router); err != nil {
		log.Fatal(err)
	}
}
