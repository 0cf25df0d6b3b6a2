package model

import "github.com/google/uuid"

type TransactionType string

const (
	TxIn  TransactionType = "in"
	TxOut TransactionType = "out"
)

func (t TransactionType) Valid() bool {
	return t == TxIn || t == TxOut
}

// Signed returns the effect of moving q units in direction t on a product's quantity.
func (t TransactionType) Signed(q int) int {
	if t == TxOut {
		return -q
	}
	return q
}

// Transaction is one ledger row. Product.Quantity always equals the sum of
// the signed effects of a product's live rows.
type Transaction struct {
	BaseModel
	Type      TransactionType `gorm:"type:varchar(10);not null;index" json:"type"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Reason    *string         `gorm:"type:varchar(255)" json:"reason"`
	ProductID uuid.UUID       `gorm:"type:char(36);not null;index" json:"productId"`
	Product   *Product        `json:"product,omitempty"`
	UserID    uuid.UUID       `gorm:"type:char(36);not null;index" json:"userId"`
	User      *User           `json:"user,omitempty"`
}

func (t *Transaction) Effect() int {
	return t.Type.Signed(t.Quantity)
}
