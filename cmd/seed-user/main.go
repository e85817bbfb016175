// Command seed-user creates a staff account in Postgres, or resets its password when the
// username already exists.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/SscSPs/phone_store_caisse/internal/apperrors"
	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
	"github.com/SscSPs/phone_store_caisse/internal/core/services"
	"github.com/SscSPs/phone_store_caisse/internal/dto"
	"github.com/SscSPs/phone_store_caisse/internal/platform/database"
	"github.com/SscSPs/phone_store_caisse/internal/repositories/database/pgsql"
	"github.com/SscSPs/phone_store_caisse/internal/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(context.Background(), logger); err != nil {
		logger.Error("seed-user failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	_ = godotenv.Load()

	flags := pflag.NewFlagSet("seed-user", pflag.ContinueOnError)
	flags.String("username", "", "login name (env SEED_USERNAME)")
	flags.String("password", "", "password, at least 8 characters (env SEED_PASSWORD)")
	flags.String("name", "", "display name (env SEED_NAME)")
	flags.String("role", string(domain.RoleCashier), "ADMIN or CASHIER (env SEED_ROLE)")
	flags.String("database-url", "", "PostgreSQL URL (env PGSQL_URL)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	v := viper.New()
	v.SetEnvPrefix("SEED")
	v.AutomaticEnv()
	for _, key := range []string{"username", "password", "name", "role"} {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			return err
		}
	}
	if err := v.BindPFlag("database_url", flags.Lookup("database-url")); err != nil {
		return err
	}
	if err := v.BindEnv("database_url", "PGSQL_URL"); err != nil {
		return err
	}

	req := dto.CreateUserRequest{
		Username: strings.TrimSpace(v.GetString("username")),
		Name:     v.GetString("name"),
		Password: v.GetString("password"),
		Role:     domain.UserRole(strings.ToUpper(v.GetString("role"))),
	}
	if req.Username == "" || req.Password == "" {
		return fmt.Errorf("username and password are required")
	}
	if len(req.Password) < utils.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", utils.MinPasswordLength)
	}

	pool, err := database.NewPgxPool(ctx, v.GetString("database_url"))
	if err != nil {
		return err
	}
	defer database.ClosePgxPool(pool)

	repos := pgsql.NewRepositoryProvider(pool)
	auth := services.NewAuthService(repos.UserRepo, services.TokenSettings{})

	user, err := auth.CreateUser(ctx, req)
	if err == nil {
		logger.Info("User created", slog.String("user_id", user.UserID), slog.String("role", string(user.Role)))
		return nil
	}
	if !errors.Is(err, apperrors.ErrDuplicate) {
		return err
	}

	existing, err := repos.UserRepo.FindUserByUsername(ctx, req.Username)
	if err != nil {
		return err
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := repos.UserRepo.UpdateUserPassword(ctx, existing.UserID, hash); err != nil {
		return err
	}
	logger.Info("Password updated", slog.String("user_id", existing.UserID))
	return nil
}
