package offline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-orders/database"
)

// GormStore keeps the queue in a sqlite file next to the waiter CLI.
type GormStore struct {
	db *gorm.DB
}

// OpenGormStore opens (or creates) the queue database at path.
func OpenGormStore(path string) (*GormStore, error) {
	db, err := database.OpenSQLite(path, logger.Silent)
	if err != nil {
		return nil, err
	}
	return NewGormStore(db)
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&QueuedOrder{}); err != nil {
		return nil, fmt.Errorf("migrate queue: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Load(ctx context.Context) ([]QueuedOrder, error) {
	var orders []QueuedOrder
	if err := s.db.WithContext(ctx).Order("position ASC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("load queued orders: %w", err)
	}
	return orders, nil
}

func (s *GormStore) Save(ctx context.Context, orders []QueuedOrder) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&QueuedOrder{}).Error; err != nil {
			return fmt.Errorf("clear queued orders: %w", err)
		}
		if len(orders) == 0 {
			return nil
		}
		if err := tx.Create(&orders).Error; err != nil {
			return fmt.Errorf("write queued orders: %w", err)
		}
		return nil
	})
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// MemoryStore is a Store without durability, for tests and dry runs.
type MemoryStore struct {
	mu     sync.Mutex
	orders []QueuedOrder
	saves  int
}

func NewMemoryStore(initial ...QueuedOrder) *MemoryStore {
	s := &MemoryStore{}
	for _, o := range initial {
		s.orders = append(s.orders, o.clone())
	}
	return s
}

func (s *MemoryStore) Load(context.Context) ([]QueuedOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]QueuedOrder, len(s.orders))
	for i, o := range s.orders {
		out[i] = o.clone()
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, orders []QueuedOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = make([]QueuedOrder, len(orders))
	for i, o := range orders {
		s.orders[i] = o.clone()
	}
	s.saves++
	return nil
}

// Saves counts Save calls.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
