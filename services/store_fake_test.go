package services_test

import (
	"context"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/yeremiapane/restaurant-orders/models"
	"github.com/yeremiapane/restaurant-orders/repository"
	"github.com/yeremiapane/restaurant-orders/services"
)

// recordingStore is an in-memory CatalogStore that records lock order.
type recordingStore struct {
	products    map[uint]*models.Product
	ingredients map[uint]*models.Ingredient
	createErr   error

	transactions int
	locked       []uint
	saved        []uint
	created      int
	lastOrder    *models.Order
}

func newFakeService(store *recordingStore) *services.OrderService {
	log, _ := test.NewNullLogger()
	return services.NewOrderService(store, log)
}

func (s *recordingStore) WithinTransaction(ctx context.Context, fn func(tx repository.CatalogTx) error) error {
	s.transactions++
	return fn(s)
}

func (s *recordingStore) FindProductWithRecipe(_ context.Context, id uint) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *recordingStore) LockIngredient(_ context.Context, id uint) (*models.Ingredient, error) {
	ing, ok := s.ingredients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	s.locked = append(s.locked, id)
	cp := *ing
	return &cp, nil
}

func (s *recordingStore) SaveIngredient(_ context.Context, ingredient *models.Ingredient) error {
	s.saved = append(s.saved, ingredient.ID)
	return nil
}

func (s *recordingStore) CreateOrder(_ context.Context, order *models.Order) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created++
	order.ID = uint(s.created)
	s.lastOrder = order
	return nil
}

func (s *recordingStore) FindOrder(_ context.Context, id uint) (*models.Order, error) {
	if s.lastOrder == nil || s.lastOrder.ID != id {
		return nil, repository.ErrNotFound
	}
	return s.lastOrder, nil
}
