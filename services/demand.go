package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/yeremiapane/restaurant-orders/models"
)

// IngredientDemand is the aggregated requirement for one ingredient across
// every line of a submission.
type IngredientDemand struct {
	IngredientID uint
	Required     int
	Products     map[uint]string
}

// Demand maps ingredient id to its aggregated requirement.
type Demand map[uint]*IngredientDemand

// AggregateDemand sums quantity-needed times line quantity per ingredient.
// products[i] must be the resolved product of lines[i]. Summation is
// commutative, so line order never changes the result. A requirement that
// does not fit in an int fails with ErrInvalidOrder.
func AggregateDemand(lines []models.LineItem, products []*models.Product) (Demand, error) {
	demand := make(Demand)
	for i, line := range lines {
		product := products[i]
		for _, entry := range product.Recipe {
			if entry.QuantityNeeded <= 0 {
				continue
			}
			if line.Quantity > math.MaxInt/entry.QuantityNeeded {
				return nil, fmt.Errorf("%w: demand for ingredient %d overflows", ErrInvalidOrder, entry.IngredientID)
			}
			needed := entry.QuantityNeeded * line.Quantity

			d, ok := demand[entry.IngredientID]
			if !ok {
				d = &IngredientDemand{
					IngredientID: entry.IngredientID,
					Products:     make(map[uint]string),
				}
				demand[entry.IngredientID] = d
			}
			if d.Required > math.MaxInt-needed {
				return nil, fmt.Errorf("%w: demand for ingredient %d overflows", ErrInvalidOrder, entry.IngredientID)
			}
			d.Required += needed
			d.Products[product.ID] = product.Name
		}
	}
	return demand, nil
}

// SortedIDs returns the ingredient ids in ascending order, the order in which
// their rows are locked.
func (d Demand) SortedIDs() []uint {
	ids := make([]uint, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
