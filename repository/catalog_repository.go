package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/restaurant-orders/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogRepository runs order submissions against products, recipes and
// ingredient stock. Every call made through a CatalogTx shares one database
// transaction.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// CatalogTx is the transaction-scoped view handed to WithinTransaction
// callbacks.
type CatalogTx interface {
	FindProductWithRecipe(ctx context.Context, id uint) (*models.Product, error)
	LockIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
	SaveIngredient(ctx context.Context, ingredient *models.Ingredient) error
	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, id uint) (*models.Order, error)
}

type catalogTx struct {
	tx *gorm.DB
}

// WithinTransaction commits when fn returns nil and rolls back otherwise. Row
// locks taken through LockIngredient are released when it returns.
func (r *CatalogRepository) WithinTransaction(ctx context.Context, fn func(tx CatalogTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&catalogTx{tx: tx})
	})
}

func (t *catalogTx) FindProductWithRecipe(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := t.tx.WithContext(ctx).Preload("Recipe").First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find product %d: %w", id, err)
	}
	return &product, nil
}

// LockIngredient reads the ingredient with SELECT ... FOR UPDATE. The sqlite
// dialect drops the locking clause; sqlite serializes writers on its own.
func (t *catalogTx) LockIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	err := t.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ingredient, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock ingredient %d: %w", id, err)
	}
	return &ingredient, nil
}

func (t *catalogTx) SaveIngredient(ctx context.Context, ingredient *models.Ingredient) error {
	if ingredient.StockQuantity < 0 {
		return fmt.Errorf("%w: stock of ingredient %d cannot be negative", ErrInvalidInput, ingredient.ID)
	}
	if err := t.tx.WithContext(ctx).Save(ingredient).Error; err != nil {
		return fmt.Errorf("save ingredient %d: %w", ingredient.ID, err)
	}
	return nil
}

// CreateOrder inserts the order together with its items.
func (t *catalogTx) CreateOrder(ctx context.Context, order *models.Order) error {
	if len(order.Items) == 0 {
		return fmt.Errorf("%w: order has no items", ErrInvalidInput)
	}
	if err := t.tx.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (t *catalogTx) FindOrder(ctx context.Context, id uint) (*models.Order, error) {
	return findOrder(ctx, t.tx, id)
}

func findOrder(ctx context.Context, db *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	err := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find order %d: %w", id, err)
	}
	return &order, nil
}
