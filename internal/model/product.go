package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultLowStockThreshold = 10

type Product struct {
	BaseModel
	Name              string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Description       *string         `gorm:"type:text" json:"description"`
	Price             decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity          int             `gorm:"not null" json:"quantity"`
	LowStockThreshold int             `gorm:"not null" json:"lowStockThreshold"`
	Category          *string         `gorm:"type:varchar(100);index" json:"category"`
	ShopID            uuid.UUID       `gorm:"type:char(36);not null;index" json:"shopId"`
	Shop              *Shop           `json:"shop,omitempty"`
	Transactions      []Transaction   `json:"transactions,omitempty"`
}

func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.LowStockThreshold
}

// Valuation is quantity times unit price.
func (p *Product) Valuation() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
