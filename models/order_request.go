package models

// LineItem is one requested line of an order submission.
type LineItem struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

// AffectedProduct names a product whose demand contributed to a shortfall.
type AffectedProduct struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// StockDiagnostic describes one ingredient that could not cover an order.
type StockDiagnostic struct {
	IngredientName   string            `json:"ingredientName"`
	Required         int               `json:"required"`
	Available        int               `json:"available"`
	AffectedProducts []AffectedProduct `json:"affectedProducts"`
}
