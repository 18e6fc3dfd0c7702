package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Category  string          `gorm:"type:varchar(100);not null;default:'Geral'" json:"category"`
	Available bool            `gorm:"not null;default:true" json:"available"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null" json:"updated_at"`
	Recipe    []RecipeEntry   `gorm:"foreignKey:ProductID" json:"recipe,omitempty"`
}
