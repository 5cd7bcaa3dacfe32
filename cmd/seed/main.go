// Command seed populates the catalog store with a demo seller, two buyers and
// a generated set of travel packages. Re-runs are safe: ids are derived from
// stable names and every insert upserts.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/utafrali/TravelGo/internal/config"
	"github.com/utafrali/TravelGo/migrations"
	pkgconfig "github.com/utafrali/TravelGo/pkg/config"
	"github.com/utafrali/TravelGo/pkg/database"
	"github.com/utafrali/TravelGo/pkg/logger"
)

type seedConfig struct {
	Packages int   `env:"SEED_PACKAGES" envDefault:"60"`
	Seed     int64 `env:"SEED_RANDOM" envDefault:"42"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	if err := pkgconfig.LoadDotEnv(".env"); err != nil {
		return err
	}
	// Only the store settings matter here, so the API's secret checks are
	// skipped.
	var cfg config.Config
	if err := pkgconfig.Load(&cfg); err != nil {
		return err
	}
	var sc seedConfig
	if err := env.Parse(&sc); err != nil {
		return fmt.Errorf("parse seed config: %w", err)
	}

	log := logger.New("travelgo-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	profiles := demoProfiles()
	if err := seedProfiles(ctx, pool, profiles); err != nil {
		return err
	}
	log.Info("profiles seeded", slog.Int("count", len(profiles)))

	rng := rand.New(rand.NewSource(sc.Seed))
	packages := generatePackages(rng, profiles[0].ID, sc.Packages, time.Now().UTC())
	if err := seedPackages(ctx, pool, packages); err != nil {
		return err
	}
	log.Info("packages seeded", slog.Int("count", len(packages)))
	return nil
}

func seedProfiles(ctx context.Context, pool *pgxpool.Pool, profiles []seedProfile) error {
	batch := &pgx.Batch{}
	for _, p := range profiles {
		batch.Queue(`
			INSERT INTO profiles (id, email, name, user_name, role, company_name)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, role = EXCLUDED.role,
				company_name = EXCLUDED.company_name, updated_at = NOW()`,
			p.ID, p.Email, p.Name, p.UserName, p.Role, p.CompanyName,
		)
	}
	if err := pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seed profiles: %w", err)
	}
	return nil
}

const batchSize = 200

func seedPackages(ctx context.Context, pool *pgxpool.Pool, packages []seedPackage) error {
	for start := 0; start < len(packages); start += batchSize {
		end := min(start+batchSize, len(packages))

		batch := &pgx.Batch{}
		for _, p := range packages[start:end] {
			itinerary, err := json.Marshal(p.Itinerary)
			if err != nil {
				return fmt.Errorf("marshal itinerary for %s: %w", p.Title, err)
			}
			batch.Queue(`
				INSERT INTO packages (id, seller_id, title, description, destination, price, discount,
					duration, category, images, itinerary, inclusion, exclusion, cancellation_policy,
					start_dates, is_approved)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
				ON CONFLICT (id) DO UPDATE SET
					price = EXCLUDED.price, discount = EXCLUDED.discount,
					start_dates = EXCLUDED.start_dates, is_approved = EXCLUDED.is_approved,
					updated_at = NOW()`,
				p.ID, p.SellerID, p.Title, p.Description, p.Destination, p.Price, p.Discount,
				p.Duration, p.Category, p.Images, itinerary, p.Inclusion, p.Exclusion,
				p.CancellationPolicy, p.StartDates, p.Approved,
			)
			batch.Queue(`
				INSERT INTO package_features (package_id, accommodation, meals, transfers, trip_captain,
					first_aid, luggage_support, entry_tickets, camping, trek_lead)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				ON CONFLICT (package_id) DO NOTHING`,
				p.ID, p.Features[0], p.Features[1], p.Features[2], p.Features[3],
				p.Features[4], p.Features[5], p.Features[6], p.Features[7], p.Features[8],
			)
		}
		if err := pool.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("seed packages %d-%d: %w", start, end, err)
		}
	}
	return nil
}
