package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/fatih/color"

	"dndinfo/internal/app"
	"dndinfo/internal/config"
	"dndinfo/internal/database"
	"dndinfo/internal/domain/auth"
	"dndinfo/internal/domain/catalog"
	"dndinfo/internal/labels"
	"dndinfo/internal/pkg/jwt"
	"dndinfo/internal/pkg/logger"
	"dndinfo/internal/seed"
)

const (
	defaultAdminEmail    = "admin@dndinfo.local"
	defaultAdminPassword = "admin12345"
	demoEmail            = "player@dndinfo.local"
	demoPassword         = "player12345"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	perKind := flag.Int("per-kind", 10, "homebrew items per kind")
	approveEvery := flag.Int("approve-every", 3, "approve every n-th item, 0 for none")
	fakeSeed := flag.Int64("seed", 0, "gofakeit seed, 0 for random")
	flag.Parse()

	lg := logger.Nop()
	ctx := context.Background()

	table, err := labels.Load(cfg.LabelsFile)
	if err != nil {
		log.Fatalf("labels: %v", err)
	}
	db, err := database.Connect(cfg.DatabaseURL, database.Silent())
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	if err := database.Migrate(db, app.Models()...); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := auth.NewService(auth.NewUserRepository(db), jwt.New(cfg.JWTSecret, cfg.JWTTTL))

	email, password := cfg.AdminEmail, cfg.AdminPassword
	if email == "" || password == "" {
		email, password = defaultAdminEmail, defaultAdminPassword
	}
	admin, err := users.EnsureAdmin(ctx, email, "admin", password)
	if err != nil {
		log.Fatalf("admin: %v", err)
	}
	color.Green("Admin ready: %s / %s", email, password)

	player, err := users.Register(ctx, auth.RegisterRequest{Email: demoEmail, Username: "player", Password: demoPassword})
	switch {
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		if player, err = auth.NewUserRepository(db).GetByEmail(ctx, demoEmail); err != nil {
			log.Fatalf("demo user: %v", err)
		}
		color.Yellow("Demo user already exists: %s", demoEmail)
	case err != nil:
		log.Fatalf("demo user: %v", err)
	default:
		color.Green("Demo user created: %s / %s", demoEmail, demoPassword)
	}

	cat := catalog.NewService(catalog.NewRepository(db), table, lg, catalog.Options{})
	res, err := seed.Homebrew(ctx, cat, seed.NewFactory(table, *fakeSeed),
		auth.Actor{UserID: player.ID, Role: player.Role},
		auth.Actor{UserID: admin.ID, Role: admin.Role},
		seed.Options{PerKind: *perKind, ApproveEvery: *approveEvery},
	)
	if err != nil {
		log.Fatalf("homebrew: %v", err)
	}

	for _, kind := range catalog.Kinds {
		color.New(color.FgHiCyan).Printf("%-10s", kind)
		color.HiBlack(" submitted %d, approved %d", res.Submitted[kind], res.Approved[kind])
	}
	color.New(color.Bold).Println("Seed completed.")
}
