package main

import (
	"context"
	"fmt"
	"os"

	"go-inventory-tracker/internal/bootstrap"
	"go-inventory-tracker/internal/config"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/service"
	"go-inventory-tracker/pkg/database"
	"go-inventory-tracker/pkg/jwt"
	"go-inventory-tracker/pkg/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "invctl",
	Short: "Administrative tasks for the inventory tracker",
	Long: `invctl runs one-off maintenance against the inventory database
configured through .env or the environment (DB_DRIVER, DATABASE_URL, ...).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger.Init(cfg.AppEnv, cfg.LogLevel)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := open()
		if err != nil {
			return err
		}
		if err := repository.Migrate(db); err != nil {
			return fmt.Errorf("migrate failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Migrate, then create the admin user and default shops",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := open()
		if err != nil {
			return err
		}
		if err := bootstrap.Run(cmd.Context(), db, bootstrap.Options{
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
		}); err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Seed complete")
		return nil
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:     "reset-password",
	Short:   "Set a new password for a user",
	Example: `  invctl reset-password --email admin@example.com --password 'N3wSecret'`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		db, err := open()
		if err != nil {
			return err
		}
		auth := service.NewAuthService(repository.NewUserRepo(db), jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL))
		if err := auth.ResetPassword(cmd.Context(), email, password); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Password for %s has been reset\n", email)
		return nil
	},
}

func open() (*gorm.DB, error) {
	return database.Open(cfg.DB)
}

func init() {
	resetPasswordCmd.Flags().String("email", "", "email of the account to update")
	resetPasswordCmd.Flags().String("password", "", "new password")
	resetPasswordCmd.MarkFlagRequired("email")
	resetPasswordCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(migrateCmd, seedCmd, resetPasswordCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
