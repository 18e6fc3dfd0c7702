package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-orders/models"
	"github.com/yeremiapane/restaurant-orders/repository"
)

// CatalogStore opens the transaction an order submission runs in.
type CatalogStore interface {
	WithinTransaction(ctx context.Context, fn func(tx repository.CatalogTx) error) error
}

// OrderService validates ingredient stock and commits orders.
type OrderService struct {
	store CatalogStore
	log   logrus.FieldLogger
}

func NewOrderService(store CatalogStore, log logrus.FieldLogger) *OrderService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &OrderService{store: store, log: log}
}

// MaxLineQuantity caps the quantity of a single line.
const MaxLineQuantity = math.MaxInt32

// ValidateLineItems rejects requests that must not reach the database.
func ValidateLineItems(lines []models.LineItem) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: expected a non-empty array of { productId, quantity }", ErrInvalidOrder)
	}
	for i, line := range lines {
		if line.ProductID == 0 {
			return fmt.Errorf("%w: line %d has no productId", ErrInvalidOrder, i)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: line %d quantity must be a positive integer", ErrInvalidOrder, i)
		}
		if line.Quantity > MaxLineQuantity {
			return fmt.Errorf("%w: line %d quantity exceeds %d", ErrInvalidOrder, i, MaxLineQuantity)
		}
	}
	return nil
}

// SubmitOrder resolves every product, aggregates ingredient demand, locks and
// checks each ingredient in ascending id order, deducts stock and creates the
// order, all in one transaction. It returns *ProductNotFoundError or
// *StockConflictError for the expected negative outcomes; nothing is written
// in either case.
func (s *OrderService) SubmitOrder(ctx context.Context, lines []models.LineItem) (*models.Order, error) {
	start := time.Now()

	order, err := s.submit(ctx, lines)

	outcome := Classify(err)
	orderSubmissions.WithLabelValues(string(outcome)).Inc()
	orderSubmitDuration.WithLabelValues(string(outcome)).Observe(float64(time.Since(start).Milliseconds()))

	entry := s.log.WithFields(logrus.Fields{
		"outcome": outcome,
		"lines":   len(lines),
	})
	switch outcome {
	case OutcomeCreated:
		entry.WithFields(logrus.Fields{
			"order_id": order.ID,
			"total":    order.TotalPrice.StringFixed(2),
		}).Info("order committed")
	case OutcomeConflict:
		var conflict *StockConflictError
		errors.As(err, &conflict)
		for _, d := range conflict.Diagnostics {
			ingredientShortfalls.WithLabelValues(d.IngredientName).Inc()
		}
		entry.WithField("ingredients", len(conflict.Diagnostics)).Info("order rejected: insufficient stock")
	case OutcomeFault:
		entry.WithError(err).Error("order submission failed")
	default:
		entry.WithError(err).Warn("order rejected")
	}

	return order, err
}

func (s *OrderService) submit(ctx context.Context, lines []models.LineItem) (*models.Order, error) {
	if err := ValidateLineItems(lines); err != nil {
		return nil, err
	}

	var created *models.Order
	err := s.store.WithinTransaction(ctx, func(tx repository.CatalogTx) error {
		products := make([]*models.Product, len(lines))
		for i, line := range lines {
			product, err := tx.FindProductWithRecipe(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return &ProductNotFoundError{ProductID: line.ProductID}
				}
				return err
			}
			products[i] = product
		}

		demand, err := AggregateDemand(lines, products)
		if err != nil {
			return err
		}

		var shortfalls []Shortfall
		locked := make([]*models.Ingredient, 0, len(demand))
		for _, id := range demand.SortedIDs() {
			ingredient, err := tx.LockIngredient(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("ingredient %d referenced by a recipe is missing: %w", id, err)
				}
				return err
			}

			required := demand[id].Required
			if required > ingredient.StockQuantity {
				shortfalls = append(shortfalls, Shortfall{
					IngredientID:   id,
					IngredientName: ingredient.Name,
					Required:       required,
					Available:      ingredient.StockQuantity,
					Products:       demand[id].Products,
				})
				continue
			}
			locked = append(locked, ingredient)
		}

		if len(shortfalls) > 0 {
			return &StockConflictError{Diagnostics: BuildConflictReport(shortfalls)}
		}

		for _, ingredient := range locked {
			ingredient.StockQuantity -= demand[ingredient.ID].Required
			if err := tx.SaveIngredient(ctx, ingredient); err != nil {
				return err
			}
		}

		order := &models.Order{
			Status: models.OrderStatusCompleted,
			Items:  make([]models.OrderItem, 0, len(lines)),
		}
		total := decimal.Zero
		for i, line := range lines {
			price := products[i].Price
			total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			order.Items = append(order.Items, models.OrderItem{
				ProductID:       line.ProductID,
				Quantity:        line.Quantity,
				PriceAtPurchase: price,
			})
		}
		order.TotalPrice = total.Round(2)

		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		persisted, err := tx.FindOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		created = persisted
		return nil
	})
	if err != nil {
		var notFound *ProductNotFoundError
		var conflict *StockConflictError
		if errors.Is(err, ErrInvalidOrder) || errors.As(err, &notFound) || errors.As(err, &conflict) {
			return nil, err
		}
		return nil, fmt.Errorf("submit order: %w", err)
	}

	return created, nil
}
