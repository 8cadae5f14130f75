// cmd/seeduser/main.go creates the demo account and a starter catalogue in
// the configured record store. Safe to run twice: the account is reused and
// products are matched by name.
// Usage: go run ./cmd/seeduser
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"pharmapos/internal/client"
	"pharmapos/internal/config"
	"pharmapos/internal/dto"
	"pharmapos/internal/infra"
	"pharmapos/internal/repository"
	"pharmapos/internal/schema"
	"pharmapos/internal/service"
	"pharmapos/internal/store"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	demoEmail    = "demo@pharmacy.local"
	demoPassword = "demo1234"
)

var catalogue = []dto.CreateProductRequest{
	{Name: "Paracetamol 500mg", Category: "Analgesics", Price: decimal.NewFromInt(10), Cost: decimal.NewFromInt(6), StockQuantity: 100, MinimumStock: 20, GenerateBarcode: true},
	{Name: "Amoxicillin 250mg", Category: "Antibiotics", Price: decimal.NewFromInt(45), Cost: decimal.NewFromInt(30), StockQuantity: 40, MinimumStock: 10, GenerateBarcode: true},
	{Name: "Metformin 500mg", Category: "Diabetes", Price: decimal.NewFromInt(25), Cost: decimal.NewFromInt(15), StockQuantity: 60, MinimumStock: 15, GenerateBarcode: true},
	{Name: "Zinc Sulfate Syrup", Category: "Supplements", Price: decimal.RequireFromString("120.50"), Cost: decimal.NewFromInt(80), StockQuantity: 4, MinimumStock: 5, GenerateBarcode: true},
	{Name: "ORS Sachet", Category: "Rehydration", Price: decimal.NewFromInt(15), Cost: decimal.NewFromInt(8), StockQuantity: 8, MinimumStock: 10, GenerateBarcode: true},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	backend, err := infra.NewBackend(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect record store")
	}
	ctx := context.Background()
	eng := store.NewEngine(backend, schema.Default())
	if err := eng.Open(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to open record store")
	}
	defer eng.Close()

	db := client.New(eng)
	auth := service.NewAuthService(repository.NewAccountRepository(db), cfg.JWTSecret, cfg.SessionHours)
	products := service.NewProductService(repository.NewProductRepository(db), nil)

	userID, err := demoUser(ctx, auth)
	if err != nil {
		log.Fatal().Err(err).Msg("demo account")
	}

	created := 0
	for _, req := range catalogue {
		resp, err := products.Create(ctx, userID, req)
		if err != nil {
			log.Fatal().Err(err).Str("product", req.Name).Msg("seeding product")
		}
		if !resp.Existing {
			created++
		}
	}
	fmt.Printf("Account '%s' ready with password '%s'; %d products added\n", demoEmail, demoPassword, created)
}

func demoUser(ctx context.Context, auth service.AuthService) (string, error) {
	session, err := auth.SignUp(ctx, dto.SignUpRequest{Email: demoEmail, Password: demoPassword, FirstName: "Demo"})
	if errors.Is(err, service.ErrEmailTaken) {
		session, err = auth.SignIn(ctx, dto.SignInRequest{Email: demoEmail, Password: demoPassword})
	}
	if err != nil {
		return "", err
	}
	return session.User.ID, nil
}
