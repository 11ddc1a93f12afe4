package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/jogardn/storefront/internal/client"
	"github.com/jogardn/storefront/internal/config"
	"github.com/jogardn/storefront/internal/seed"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	logger := cfg.NewLogger()

	var (
		baseURL      = flag.String("url", "http://localhost:"+cfg.HTTPPort, "storefront base URL")
		catalogPath  = flag.String("catalog", "catalog.json", "path to the catalog JSON file")
		concurrency  = flag.Int("concurrency", 4, "parallel requests")
		dryRun       = flag.Bool("dry-run", false, "report what would be created without writing")
		skipExisting = flag.Bool("skip-existing", true, "skip products whose name already exists")
	)
	flag.Parse()

	f, err := os.Open(*catalogPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open catalog")
	}
	defer f.Close()

	catalog, err := seed.ReadCatalog(f)
	if err != nil {
		logger.WithError(err).Fatal("Failed to read catalog")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	c := client.New(*baseURL, logger)
	if err := c.Health(ctx); err != nil {
		logger.WithError(err).Fatal("Storefront is not healthy")
	}

	seeder := seed.NewSeeder(c, logger, seed.Config{
		Concurrency:  *concurrency,
		DryRun:       *dryRun,
		SkipExisting: *skipExisting,
	})
	result, err := seeder.Seed(ctx, catalog)
	if err != nil {
		logger.WithError(err).Fatal("Seeding failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(result)

	if result.Failed > 0 {
		os.Exit(1)
	}
}
