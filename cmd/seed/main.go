// Command seed fills the catalog with a small set of demo products, each with
// a generated placeholder image. Products that already exist are skipped, so
// it is safe to run repeatedly.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlexandruMarc/Easy-Shops/internal/cache"
	"github.com/AlexandruMarc/Easy-Shops/internal/config"
	"github.com/AlexandruMarc/Easy-Shops/internal/domain"
	"github.com/AlexandruMarc/Easy-Shops/internal/event"
	"github.com/AlexandruMarc/Easy-Shops/internal/repository/postgres"
	"github.com/AlexandruMarc/Easy-Shops/internal/service"
	"github.com/AlexandruMarc/Easy-Shops/migrations"
	"github.com/AlexandruMarc/Easy-Shops/pkg/database"
	apperrors "github.com/AlexandruMarc/Easy-Shops/pkg/errors"
	"github.com/AlexandruMarc/Easy-Shops/pkg/logger"
)

const placeholderSize = 256

type seeder struct {
	products *service.ProductService
	images   *service.ImageService
	logger   *slog.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New(config.ServiceName+"-seed", cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Seeding never publishes events and never touches the product cache.
	producer := event.NewProducer(nil, log)
	links := service.NewLinks(cfg.PublicBaseURL, cfg.APIPrefixClean())
	s := &seeder{
		products: service.NewProductService(postgres.NewProductRepository(pool), cache.NoopProductCache{}, producer, log),
		images:   service.NewImageService(postgres.NewImageRepository(pool), cache.NoopProductCache{}, producer, links, cfg.MaxUploadFiles, log),
		logger:   log,
	}

	created, skipped := 0, 0
	for _, def := range catalog {
		ok, err := s.seed(ctx, def)
		if err != nil {
			return err
		}
		if ok {
			created++
		} else {
			skipped++
		}
	}

	log.Info("seed complete", slog.Int("created", created), slog.Int("skipped", skipped))
	return nil
}

// seed creates one product and its placeholder image. It reports false when
// the product already exists.
func (s *seeder) seed(ctx context.Context, def productDef) (bool, error) {
	req, err := def.request()
	if err != nil {
		return false, err
	}

	product, err := s.products.Add(ctx, req)
	if errors.Is(err, apperrors.ErrAlreadyExists) {
		s.logger.Info("product exists, skipping", slog.String("name", def.name), slog.String("brand", def.brand))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("add product %q: %w", def.name, err)
	}

	upload, err := def.placeholder(placeholderSize)
	if err != nil {
		return false, err
	}
	images, err := s.images.Upload(ctx, product.ID, []domain.Upload{upload})
	if err != nil {
		return false, fmt.Errorf("upload image for %q: %w", def.name, err)
	}

	s.logger.Info("product seeded",
		slog.Int64("product_id", product.ID),
		slog.String("name", def.name),
		slog.Int("images", len(images)),
	)
	return true, nil
}
