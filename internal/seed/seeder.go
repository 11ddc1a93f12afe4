// Package seed loads a catalog of customers and products into a running
// storefront through its HTTP API.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jogardn/storefront/internal/client"
	"github.com/sirupsen/logrus"
)

type Catalog struct {
	Customers []client.NewCustomer `json:"customers"`
	Products  []client.NewProduct  `json:"products"`
}

func ReadCatalog(r io.Reader) (*Catalog, error) {
	var catalog Catalog
	if err := json.NewDecoder(r).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return &catalog, nil
}

type Config struct {
	Concurrency int
	DryRun      bool
	// SkipExisting leaves products whose name is already in the store alone
	// and creates only the first of several catalog entries sharing a name.
	SkipExisting bool
}

type Result struct {
	Total          int           `json:"total"`
	Created        int           `json:"created"`
	Skipped        int           `json:"skipped"`
	Failed         int           `json:"failed"`
	Errors         []Error       `json:"errors"`
	ProcessingTime time.Duration `json:"processing_time"`
	DryRun         bool          `json:"dry_run"`
}

type Error struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

type Seeder struct {
	client *client.Client
	logger *logrus.Logger
	config Config
}

func NewSeeder(c *client.Client, logger *logrus.Logger, config Config) *Seeder {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	return &Seeder{client: c, logger: logger, config: config}
}

type job struct {
	kind string
	name string
	run  func(ctx context.Context) error
}

func (s *Seeder) Seed(ctx context.Context, catalog *Catalog) (*Result, error) {
	start := time.Now()
	result := &Result{Errors: []Error{}, DryRun: s.config.DryRun}

	existing := map[string]bool{}
	if s.config.SkipExisting {
		products, err := s.client.ListProducts(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list existing products: %w", err)
		}
		for _, p := range products {
			existing[p.Name] = true
		}
	}

	var jobs []job
	for _, c := range catalog.Customers {
		c := c
		jobs = append(jobs, job{kind: "customer", name: c.Name, run: func(ctx context.Context) error {
			_, err := s.client.CreateCustomer(ctx, c)
			return err
		}})
	}
	for _, p := range catalog.Products {
		p := p
		if existing[p.Name] {
			result.Skipped++
			continue
		}
		if s.config.SkipExisting {
			existing[p.Name] = true
		}
		jobs = append(jobs, job{kind: "product", name: p.Name, run: func(ctx context.Context) error {
			_, err := s.client.CreateProduct(ctx, p)
			return err
		}})
	}
	result.Total = len(jobs) + result.Skipped

	if s.config.DryRun {
		s.logger.WithField("count", len(jobs)).Info("DRY RUN: would create catalog entries")
		result.Created = len(jobs)
		result.ProcessingTime = time.Since(start)
		return result, nil
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		semaphore = make(chan struct{}, s.config.Concurrency)
	)
	for _, j := range jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			err := j.run(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, Error{Kind: j.kind, Name: j.name, Error: err.Error()})
				s.logger.WithError(err).WithFields(logrus.Fields{
					"kind": j.kind,
					"name": j.name,
				}).Warn("Failed to seed entry")
				return
			}
			result.Created++
		}(j)
	}
	wg.Wait()

	result.ProcessingTime = time.Since(start)
	s.logger.WithFields(logrus.Fields{
		"created":  result.Created,
		"skipped":  result.Skipped,
		"failed":   result.Failed,
		"duration": result.ProcessingTime,
	}).Info("Seeding completed")

	return result, nil
}
