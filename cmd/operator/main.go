package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/openbracket/madpool/internal/bracket"
	"github.com/openbracket/madpool/internal/config"
	"github.com/openbracket/madpool/internal/db"
	"github.com/openbracket/madpool/internal/feed"
	"github.com/openbracket/madpool/internal/operator"
	"github.com/openbracket/madpool/internal/service"
	"github.com/openbracket/madpool/internal/store"
	"github.com/openbracket/madpool/internal/token"

	"github.com/google/uuid"
)

const usage = `usage: operator <command>

commands:
  create-game   create the configured year's tournament
  reset-game    recreate the tournament (fails once bets exist)
  sync          run one feed sync pass
  settle        iterate scoring and prize allocation until finished
  burn          iterate token retirement until finished
  dismiss       iterate prize dismissal until finished
`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
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
	settlement := service.NewSettlementService(database, pools, tournaments, cursors, ledger, service.WinnerTakeAll{}, weights, cfg.Betting.EntryFee, treasury, cfg.Settlement.BatchSize)

	feedClient := feed.NewClient(cfg.Feed.URL, cfg.Feed.Timeout)
	syncer := operator.NewSyncer(feedClient, games, cfg.Betting.CloseThreshold, time.Now, slog.Default())

	ctx := context.Background()
	year := cfg.Game.Year

	switch os.Args[1] {
	case "create-game":
		err = games.CreateGame(ctx, year)
	case "reset-game":
		err = games.ResetGame(ctx, year)
	case "sync":
		err = syncer.SyncAll(ctx, year)
	case "settle":
		err = loop(ctx, year, "settle", settlement.IterateYearTokens)
	case "burn":
		err = loop(ctx, year, "burn", settlement.IterateBurnYearTokens)
	case "dismiss":
		err = loop(ctx, year, "dismiss", settlement.IterateDismissYear)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

// loop invokes one iteration batch at a time until the engine signals
// that the cursor reached the end.
func loop(ctx context.Context, year int, name string, step func(context.Context, int) (service.IterationResult, error)) error {
	for n := 0; ; n++ {
		result, err := step(ctx, year)
		if err != nil {
			return err
		}
		if result == service.IterationFinished {
			slog.Info("iteration finished", "op", name, "year", year, "batches", n+1)
			return nil
		}
		slog.Info("iteration continues", "op", name, "year", year, "batch", n+1)
	}
}
