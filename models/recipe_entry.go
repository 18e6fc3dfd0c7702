package models

import "time"

// RecipeEntry is the quantity of one ingredient consumed per unit of one product.
type RecipeEntry struct {
	ProductID      uint       `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	IngredientID   uint       `gorm:"primaryKey;autoIncrement:false" json:"ingredient_id"`
	Ingredient     Ingredient `gorm:"foreignKey:IngredientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	QuantityNeeded int        `gorm:"not null;default:1" json:"quantity_needed"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
}

func (RecipeEntry) TableName() string { return "product_ingredients" }
