package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crm/internal/seed"
	"github.com/vladislavdragonenkov/crm/internal/service/crm"
	"github.com/vladislavdragonenkov/crm/internal/storage/postgres"
)

const openTimeout = 30 * time.Second

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)

	defaults := seed.DefaultConfig()
	var (
		dsn       string
		customers int
		products  int
		orders    int
		fakerSeed uint64
	)
	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: CRM_POSTGRES_DSN)")
	flag.IntVar(&customers, "customers", defaults.Customers, "number of customers to create")
	flag.IntVar(&products, "products", defaults.Products, "number of products to create")
	flag.IntVar(&orders, "orders", defaults.Orders, "number of orders to create")
	flag.Uint64Var(&fakerSeed, "seed", 0, "faker seed (0 = random)")
	flag.Parse()

	if strings.TrimSpace(dsn) == "" {
		dsn = strings.TrimSpace(os.Getenv("CRM_POSTGRES_DSN"))
	}
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "CRM_POSTGRES_DSN (or -dsn) is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		log.WithError(err).Fatal("open postgres store")
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		log.WithError(err).Fatal("ensure schema")
	}

	svc := crm.NewService(
		postgres.NewCustomerRepository(store),
		postgres.NewProductRepository(store),
		postgres.NewOrderRepository(store),
		nil,
		log.WithField("component", "seed-service"),
	)

	seeder := seed.New(svc, seed.WithFaker(gofakeit.New(fakerSeed)))
	result, err := seeder.Run(seed.Config{Customers: customers, Products: products, Orders: orders})
	if err != nil {
		log.WithError(err).Fatal("seeding failed")
	}

	log.WithFields(log.Fields{
		"customers": result.Customers,
		"products":  result.Products,
		"orders":    result.Orders,
	}).Info("seeding finished")
}
