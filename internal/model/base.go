package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel carries the UUID primary key, timestamps, soft delete and the
// audit columns (user ids as strings) shared by every entity.
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CreatedBy string `gorm:"type:varchar(36)" json:"-"`
	UpdatedBy string `gorm:"type:varchar(36)" json:"-"`
	DeletedBy string `gorm:"type:varchar(36)" json:"-"`
}

func (base *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	return
}

// Stamp sets the creator and updater audit columns.
func (base *BaseModel) Stamp(userID string) {
	if base.CreatedBy == "" {
		base.CreatedBy = userID
	}
	base.UpdatedBy = userID
}
