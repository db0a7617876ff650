// Package main seeds the database with demo products, lots and sellers.
//
//	seed            load demo data into an empty database
//	seed -backfill  give legacy untracked lots remaining = quantity
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"backoffice/internal/app"
	"backoffice/internal/config"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
	"backoffice/internal/domain/sellers"
	"backoffice/internal/infrastructure/storage/postgres"
	"backoffice/pkg/logger"
)

type productSeed struct {
	name, brand    string
	purchase, sale string
	minQty         types.Quantity
	lots           []lotSeed
}

type lotSeed struct {
	qty        types.Quantity
	expiryDays int // 0 means no expiry
	code       string
}

var demoProducts = []productSeed{
	{"Shampoo 400ml", "Lumina", "3.20", "5.90", 10, []lotSeed{{24, 20, "L-2401"}, {36, 180, "L-2405"}}},
	{"Conditioner 400ml", "Lumina", "3.60", "6.40", 10, []lotSeed{{18, 240, "L-2410"}}},
	{"Hand Cream 75ml", "Verde", "1.80", "3.50", 15, []lotSeed{{40, 90, "V-118"}, {12, -5, "V-101"}}},
	{"Sunscreen SPF50", "Verde", "6.10", "11.00", 5, []lotSeed{{8, 365, "V-130"}}},
	{"Toothbrush Soft", "Oralis", "0.70", "1.50", 30, []lotSeed{{120, 0, ""}}},
	{"Dental Floss", "Oralis", "0.90", "1.90", 20, []lotSeed{{22, 0, ""}}},
}

var demoSellers = []struct {
	name, phone, email string
	commission         string
	byBrand            map[string]string
}{
	{"Ana Ruiz", "+34 600 111 222", "ana@example.com", "10", map[string]string{"Lumina": "12.5"}},
	{"Marc Vidal", "+34 600 333 444", "", "8", nil},
}

func main() {
	backfill := flag.Bool("backfill", false, "backfill untracked lot quantities and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)
	defer logger.Sync()

	ctx := context.Background()

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.ApplicationName = "backoffice-seed"
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := postgres.ApplySchema(ctx, pool); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}
	svc := app.NewServices(postgres.NewTxManager(pool), app.InventoryConfig(cfg), nil)

	if *backfill {
		n, err := svc.Inventory.BackfillUntracked(ctx)
		if err != nil {
			log.Fatalw("backfill failed", "error", err)
		}
		log.Infow("backfill done", "lots", n)
		return
	}

	existing, err := svc.Inventory.ListProducts(ctx, inventory.ProductFilter{Limit: 1})
	if err != nil {
		log.Fatalw("failed to inspect products", "error", err)
	}
	if len(existing) > 0 {
		log.Info("database already has products, nothing to seed")
		return
	}

	if err := seedProducts(ctx, svc.Inventory, log); err != nil {
		log.Fatalw("failed to seed products", "error", err)
	}
	if err := seedSellers(ctx, svc.Sellers, log); err != nil {
		log.Fatalw("failed to seed sellers", "error", err)
	}
	log.Info("seed completed")
}

func seedProducts(ctx context.Context, inv *inventory.Service, log *logger.Logger) error {
	today := time.Now().UTC()
	for _, ps := range demoProducts {
		p := inventory.NewProduct(ps.name, ps.brand, types.MustMoney(ps.purchase), types.MustMoney(ps.sale), ps.minQty)
		if err := inv.CreateProduct(ctx, p); err != nil {
			return fmt.Errorf("product %s: %w", ps.name, err)
		}
		for _, ls := range ps.lots {
			expiry := types.NoExpiry()
			if ls.expiryDays != 0 {
				expiry = types.ExpiresOn(today.AddDate(0, 0, ls.expiryDays))
			}
			if _, err := inv.Receive(ctx, p.ID, inventory.ReceiveInput{Quantity: ls.qty, Expiry: expiry, Code: ls.code}); err != nil {
				return fmt.Errorf("lot %s of %s: %w", ls.code, ps.name, err)
			}
		}
		log.Infow("seeded product", "name", p.Name, "lots", len(ps.lots))
	}
	return nil
}

func seedSellers(ctx context.Context, sel *sellers.Service, log *logger.Logger) error {
	for _, ss := range demoSellers {
		s := sellers.NewSeller(ss.name, ss.phone, ss.email, types.MustMoney(ss.commission))
		if err := sel.Create(ctx, s); err != nil {
			return fmt.Errorf("seller %s: %w", ss.name, err)
		}
		for brand, pct := range ss.byBrand {
			if _, err := sel.SetBrandCommission(ctx, s.ID, brand, types.MustMoney(pct)); err != nil {
				return fmt.Errorf("commission %s/%s: %w", ss.name, brand, err)
			}
		}
		log.Infow("seeded seller", "name", s.Name)
	}
	return nil
}
