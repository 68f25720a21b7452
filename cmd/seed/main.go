// seed populates a fresh database with demo data for Rich Land Auto Supply:
// staff accounts, categories, suppliers and a starter catalog whose opening
// stock is booked through the ledger, so balances and audit entries line up
// from day one.
//
// Usage: go run ./cmd/seed
// Idempotent: existing usernames, supplier names and SKUs are skipped.
package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/richland-auto/inventory-api/internal/application/catalog"
	"github.com/richland-auto/inventory-api/internal/application/dto"
	"github.com/richland-auto/inventory-api/internal/application/ledger"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
	"github.com/richland-auto/inventory-api/internal/infrastructure/postgres"
	"github.com/richland-auto/inventory-api/pkg/config"
	"github.com/richland-auto/inventory-api/pkg/logger"
)

const demoPassword = "password123"

var users = []struct {
	username, name, role string
}{
	{"owner", "Ricardo Landicho", entity.RoleOwner},
	{"admin", "Amalia Santos", entity.RoleAdmin},
	{"stockman", "Bong Reyes", entity.RoleStockManager},
	{"sales", "Carla Dizon", entity.RoleSalesman},
}

var categories = []string{
	"Engine Parts",
	"Tires & Wheels",
	"Braking System",
	"Fluids & Chemicals",
	"Accessories",
	"Batteries",
}

var suppliers = []dto.CreateSupplierRequest{
	{Name: "Global Auto Parts", ContactPerson: "John Smith", Email: "john@globalauto.com", Phone: "0917-123-4567"},
	{Name: "Manila Rubber Corp", ContactPerson: "Maria Cruz", Email: "maria@manilarubber.com", Phone: "0918-555-2200"},
	{Name: "Lubricants Express", ContactPerson: "David Lee", Email: "david@lubexpress.com", Phone: "0920-777-8899"},
}

var products = []struct {
	sku, name, category string
	price               string
	quantity, reorder   int64
}{
	{"BAT-001", "Motolite Gold Battery", "Batteries", "4500.00", 20, 5},
	{"OIL-SH-5W40", "Shell Helix Ultra 5W-40 4L", "Fluids & Chemicals", "2850.00", 36, 12},
	{"BRK-PAD-F", "Brembo Brake Pads Front", "Braking System", "3200.00", 14, 6},
	{"TIRE-MICH-18", "Michelin Pilot Sport 4 225/45R18", "Tires & Wheels", "9800.00", 16, 8},
	{"SPK-NGK-01", "NGK Iridium IX Spark Plug", "Engine Parts", "450.00", 60, 24},
	{"ACC-MAT-UNI", "Universal Car Mat Set", "Accessories", "1200.00", 25, 10},
	{"FLT-OIL-B01", "Bosch Oil Filter", "Engine Parts", "380.00", 48, 20},
	{"FLD-BRK-DOT4", "Prestone Brake Fluid DOT 4 1L", "Fluids & Chemicals", "520.00", 30, 12},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	txRepo := postgres.NewTransactionRepository(pool)
	orderRepo := postgres.NewPurchaseOrderRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	ledgerUC := ledger.NewUseCase(txRunner, txRepo, productRepo, nil, log)
	productUC := catalog.NewProductUseCase(txRunner, productRepo, categoryRepo, orderRepo, ledgerUC)
	categoryUC := catalog.NewCategoryUseCase(txRunner, categoryRepo, productRepo)
	supplierUC := catalog.NewSupplierUseCase(txRunner, supplierRepo)

	// Staff accounts. Written directly: registration is owner-gated and on
	// an empty database no owner exists yet.
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash demo password")
	}
	var owner *entity.User
	for _, u := range users {
		existing, err := userRepo.GetByUsername(ctx, u.username)
		if err != nil {
			log.Fatal().Err(err).Str("username", u.username).Msg("look up user")
		}
		if existing == nil {
			now := time.Now()
			existing = &entity.User{
				ID:           uuid.New().String(),
				Username:     u.username,
				PasswordHash: string(hash),
				Name:         u.name,
				Role:         u.role,
				Status:       entity.UserStatusActive,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := userRepo.Create(ctx, existing); err != nil {
				log.Fatal().Err(err).Str("username", u.username).Msg("create user")
			}
			log.Info().Str("username", u.username).Str("role", u.role).Msg("user created")
		} else {
			log.Info().Str("username", u.username).Msg("user exists, skipped")
		}
		if u.role == entity.RoleOwner {
			owner = existing
		}
	}
	actor := entity.Actor{ID: owner.ID, Username: owner.Username, Role: owner.Role}

	// Categories. The rest of the seed goes through the use cases so audit
	// entries and ledger rows come out like real operations.
	categoryIDs := make(map[string]string, len(categories))
	for _, name := range categories {
		existing, err := categoryRepo.GetByName(ctx, name)
		if err != nil {
			log.Fatal().Err(err).Str("category", name).Msg("look up category")
		}
		if existing == nil {
			existing, err = categoryUC.Create(ctx, actor, name)
			if err != nil {
				log.Fatal().Err(err).Str("category", name).Msg("create category")
			}
			log.Info().Str("category", name).Msg("category created")
		}
		categoryIDs[name] = existing.ID
	}

	for _, in := range suppliers {
		existing, err := supplierRepo.GetByName(ctx, in.Name)
		if err != nil {
			log.Fatal().Err(err).Str("supplier", in.Name).Msg("look up supplier")
		}
		if existing != nil {
			continue
		}
		if _, err := supplierUC.Create(ctx, actor, in); err != nil {
			log.Fatal().Err(err).Str("supplier", in.Name).Msg("create supplier")
		}
		log.Info().Str("supplier", in.Name).Msg("supplier created")
	}

	created := 0
	for _, p := range products {
		existing, err := productRepo.GetBySKU(ctx, p.sku)
		if err != nil {
			log.Fatal().Err(err).Str("sku", p.sku).Msg("look up product")
		}
		if existing != nil {
			continue
		}
		_, err = productUC.Create(ctx, actor, dto.CreateProductRequest{
			SKU:             p.sku,
			Name:            p.name,
			CategoryID:      categoryIDs[p.category],
			Price:           decimal.RequireFromString(p.price),
			ReorderLevel:    p.reorder,
			InitialQuantity: p.quantity,
		})
		if err != nil {
			log.Fatal().Err(err).Str("sku", p.sku).Msg("create product")
		}
		created++
		log.Info().Str("sku", p.sku).Int64("quantity", p.quantity).Msg("product created with opening stock")
	}

	log.Info().
		Int("products", created).
		Str("password", demoPassword).
		Msg("seed finished; log in with any demo account")
}
