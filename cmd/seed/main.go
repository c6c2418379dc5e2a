package main

import (
	"flag"
	"os"
	"time"

	"github.com/oggyb/muzz-matcher/internal/config"
	"github.com/oggyb/muzz-matcher/internal/db"
	"github.com/oggyb/muzz-matcher/internal/logger"
	"github.com/oggyb/muzz-matcher/internal/scoring"
)

func main() {
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed for the generated dataset")
	minimal := flag.Bool("minimal", false, "seed the three-user fixture instead")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	scorer, err := scoring.NewScorer(cfg.Matching.Weights)
	if err != nil {
		log.Error("invalid scorer weights", "err", err)
		os.Exit(1)
	}

	if *minimal {
		err = db.SeedMinimalTestData(database, scorer)
	} else {
		err = db.SeedTestData(database, scorer, *seed, log)
	}
	if err != nil {
		log.Error("failed to seed", "err", err)
		os.Exit(1)
	}

	log.Info("seeding completed", "seed", *seed, "minimal", *minimal)
}
