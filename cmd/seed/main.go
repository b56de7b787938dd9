package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-storefront/config"
	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/infrastructure/docstore"
	"github.com/oksasatya/go-storefront/internal/infrastructure/mongodb"
	"github.com/oksasatya/go-storefront/internal/infrastructure/persistence"
	pginfra "github.com/oksasatya/go-storefront/internal/infrastructure/postgres"
	"github.com/oksasatya/go-storefront/pkg/helpers"
)

const adminID = "00000000-0000-0000-0000-00000000a001"

var (
	categories = []string{"Electronics", "Home", "Books", "Clothing"}
	brands     = []string{"Acme", "Globex", "Initech"}
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	var store docstore.Store
	switch cfg.StoreDriver {
	case "postgres":
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		store = pginfra.NewDocumentStore(pool)
	case "mongo":
		ms, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Fatalf("failed to connect to mongo: %v", err)
		}
		defer func() { _ = ms.Close(context.Background()) }()
		store = ms
	default:
		log.Fatalf("seeding needs a persistent STORE_DRIVER, got %q", cfg.StoreDriver)
	}

	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	if cfg.StoreDriver == "postgres" {
		if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}

	now := time.Now().UTC()
	admin, err := seedAdmin(ctx, store, getenv("SEED_ADMIN_EMAIL", "admin@example.com"), getenv("SEED_ADMIN_PASSWORD", "password123"), now)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin id=%s email=%s\n", admin.ID, admin.Email)

	if err := seedCatalog(ctx, store, now); err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}
	fmt.Printf("seeded %d categories and %d brands\n", len(categories), len(brands))
}

// seedAdmin upserts the admin credential and profile. The email is stored
// the way sign-in looks it up: trimmed and lowercased.
func seedAdmin(ctx context.Context, store docstore.Store, email, password string, now time.Time) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	if err := persistence.NewCredentialRepository(store).Put(ctx, &entity.Credential{ID: adminID, Email: email, PasswordHash: hash}); err != nil {
		return nil, fmt.Errorf("credential: %w", err)
	}
	admin := &entity.User{
		ID:        adminID,
		Email:     email,
		Username:  "admin",
		FirstName: "Store",
		LastName:  "Admin",
		Role:      entity.RoleAdmin,
		Status:    entity.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := persistence.NewUserRepository(store).Put(ctx, admin); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	return admin, nil
}

func seedCatalog(ctx context.Context, store docstore.Store, now time.Time) error {
	cats := persistence.NewCategoryRepository(store)
	for _, name := range categories {
		c := &entity.Category{ID: "cat-" + strings.ToLower(name), Name: name, CreatedAt: now}
		if err := cats.Add(ctx, c); err != nil {
			return fmt.Errorf("category %s: %w", name, err)
		}
	}
	bs := persistence.NewBrandRepository(store)
	for _, name := range brands {
		b := &entity.Brand{ID: "brand-" + strings.ToLower(name), Name: name, CreatedAt: now}
		if err := bs.Add(ctx, b); err != nil {
			return fmt.Errorf("brand %s: %w", name, err)
		}
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
