package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"storefront/config"
	"storefront/internal/infra/auth"
	logs "storefront/internal/infra/log"
	"storefront/internal/infra/persistence/postgres"
	"storefront/internal/usecase"
	"storefront/internal/usecase/impl"

	"github.com/pkg/errors"
	pgLib "github.com/slighter12/go-lib/database/postgres"
)

// createadmin seeds the administrator account. Flags override the admin
// section of the config; running it again is a no-op.
func main() {
	email := flag.String("email", "", "Admin email (defaults to admin.email from config)")
	name := flag.String("name", "", "Admin display name (defaults to admin.name from config)")
	password := flag.String("password", "", "Admin password (defaults to admin.password from config)")
	flag.Parse()

	if err := run(*email, *name, *password); err != nil {
		fmt.Fprintf(os.Stderr, "createadmin: %+v\n", err)
		os.Exit(1)
	}
}

func run(email, name, password string) error {
	cfg, err := config.New()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	input := &usecase.AdminInput{Name: "Admin"}
	if cfg.Admin != nil {
		input.Email = cfg.Admin.Email
		input.Name = cfg.Admin.Name
		input.Password = cfg.Admin.Password
	}
	if email != "" {
		input.Email = email
	}
	if name != "" {
		input.Name = name
	}
	if password != "" {
		input.Password = password
	}
	if input.Email == "" || input.Password == "" {
		return errors.New("admin email and password are required")
	}

	logger, err := logs.New(logs.Params{Config: cfg})
	if err != nil {
		return errors.Wrap(err, "failed to create logger")
	}

	db, err := pgLib.New(cfg.Postgres)
	if err != nil {
		return errors.Wrap(err, "failed to connect to PostgreSQL")
	}
	// Duplicate emails surface as gorm.ErrDuplicatedKey.
	db.Config.TranslateError = true
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB")
	}
	defer sqlDB.Close()

	tokenService, err := auth.NewJWTService(cfg)
	if err != nil {
		return err
	}

	authService := impl.NewAuthService(impl.AuthServiceParams{
		UserRepo:     postgres.NewUserRepository(db),
		Hasher:       auth.NewBcryptHasher(cfg),
		TokenService: tokenService,
		Logger:       logger,
	})

	user, created, err := authService.EnsureAdmin(context.Background(), input)
	if err != nil {
		return err
	}

	if created {
		logger.Info("Admin created", slog.String("user_id", user.ID.String()), slog.String("email", user.Email))
	} else {
		logger.Info("Admin already exists", slog.String("user_id", user.ID.String()), slog.String("email", user.Email))
	}

	return nil
}
