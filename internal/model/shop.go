package model

type Shop struct {
	BaseModel
	Name    string  `gorm:"type:varchar(255);not null" json:"name"`
	Address *string `gorm:"type:varchar(500)" json:"address"`
	Phone   *string `gorm:"type:varchar(50)" json:"phone"`
}
