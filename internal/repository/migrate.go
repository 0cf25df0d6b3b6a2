package repository

import (
	"go-inventory-tracker/internal/model"

	"gorm.io/gorm"
)

// Migrate creates or updates the tables for every entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.User{}, &model.Shop{}, &model.Product{}, &model.Transaction{})
}
