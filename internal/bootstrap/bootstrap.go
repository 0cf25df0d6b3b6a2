// Package bootstrap prepares a fresh database: schema, first admin and default shops.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const adminUsername = "admin"

var defaultShops = []model.Shop{
	{Name: "Main Store", Address: ptr("Bole SC W-11 House No. New"), Phone: ptr("+251911234567")},
	{Name: "Branch Store - Piazza", Address: ptr("Piassa, Addis Ababa"), Phone: ptr("+251922345678")},
	{Name: "Kaliti-Warehouse", Address: ptr("Kaliti Industrial Area"), Phone: ptr("+251933456789")},
}

func ptr(s string) *string { return &s }

// Options names the first admin account.
type Options struct {
	AdminEmail    string
	AdminPassword string
}

// Run migrates the schema and seeds the admin user and default shops.
func Run(ctx context.Context, db *gorm.DB, opts Options) error {
	if err := repository.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if _, err := SeedAdmin(ctx, repository.NewUserRepo(db), opts.AdminEmail, opts.AdminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if _, err := SeedShops(ctx, repository.NewShopRepo(db)); err != nil {
		return fmt.Errorf("seed shops: %w", err)
	}
	return nil
}

// SeedAdmin creates the admin account unless its email or username is taken.
func SeedAdmin(ctx context.Context, users repository.UserRepository, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	exists, err := users.ExistsByEmailOrUsername(ctx, email, adminUsername)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	admin := &model.User{Username: adminUsername, Email: email, Role: model.RoleAdmin}
	admin.Stamp("system")
	if err := admin.SetPassword(password); err != nil {
		return false, err
	}
	if err := users.Create(ctx, admin); err != nil {
		return false, err
	}

	log.Info().Str("email", email).Msg("Admin user created")
	return true, nil
}

// SeedShops inserts the default shops when the table is empty.
func SeedShops(ctx context.Context, shops repository.ShopRepository) (int, error) {
	_, err := shops.FindFirst(ctx)
	if err == nil {
		return 0, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, err
	}

	for _, s := range defaultShops {
		shop := s
		shop.Stamp("system")
		if err := shops.Create(ctx, &shop); err != nil {
			return 0, err
		}
	}

	log.Info().Int("count", len(defaultShops)).Msg("Default shops created")
	return len(defaultShops), nil
}
