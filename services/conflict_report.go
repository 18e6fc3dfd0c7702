package services

import (
	"sort"

	"github.com/yeremiapane/restaurant-orders/models"
)

// Shortfall is an ingredient whose stock could not cover its aggregated demand.
type Shortfall struct {
	IngredientID   uint
	IngredientName string
	Required       int
	Available      int
	Products       map[uint]string
}

// BuildConflictReport turns every shortfall of a validation pass into a
// diagnostic. Entries are ordered by ingredient id and affected products by
// product id.
func BuildConflictReport(shortfalls []Shortfall) []models.StockDiagnostic {
	sorted := make([]Shortfall, len(shortfalls))
	copy(sorted, shortfalls)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].IngredientID < sorted[j].IngredientID })

	report := make([]models.StockDiagnostic, 0, len(sorted))
	for _, s := range sorted {
		affected := make([]models.AffectedProduct, 0, len(s.Products))
		for id, name := range s.Products {
			affected = append(affected, models.AffectedProduct{ID: id, Name: name})
		}
		sort.Slice(affected, func(i, j int) bool { return affected[i].ID < affected[j].ID })

		report = append(report, models.StockDiagnostic{
			IngredientName:   s.IngredientName,
			Required:         s.Required,
			Available:        s.Available,
			AffectedProducts: affected,
		})
	}
	return report
}
