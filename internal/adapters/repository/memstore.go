package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/canteen/internal/domain/model"
)

// MemStore is an in-memory Store guarded by a single RWMutex. Reads return
// copies so callers never observe later writes through a returned slice.
type MemStore struct {
	mu sync.RWMutex

	foods       []model.Food
	foodIdx     map[string]int
	restaurants []model.Restaurant
	restIdx     map[string]int
	hostels     []model.HostelBlock
	hostelIdx   map[string]int

	users     map[string]model.User
	byStudent map[string]string

	orders   []model.Order
	orderIDs map[string]struct{}
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		foodIdx:   make(map[string]int),
		restIdx:   make(map[string]int),
		hostelIdx: make(map[string]int),
		users:     make(map[string]model.User),
		byStudent: make(map[string]string),
		orderIDs:  make(map[string]struct{}),
	}
}

// Close is a no-op.
func (s *MemStore) Close() error { return nil }

// ListFoods implements CatalogStore.ListFoods.
func (s *MemStore) ListFoods(_ context.Context) ([]model.Food, error) {
	defer observe("list_foods", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Food(nil), s.foods...), nil
}

// GetFood implements CatalogStore.GetFood.
func (s *MemStore) GetFood(_ context.Context, id string) (model.Food, error) {
	defer observe("get_food", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.foodIdx[id]
	if !ok {
		return model.Food{}, fmt.Errorf("food %q: %w", id, ErrNotFound)
	}
	return s.foods[i], nil
}

// ListRestaurants implements CatalogStore.ListRestaurants.
func (s *MemStore) ListRestaurants(_ context.Context) ([]model.Restaurant, error) {
	defer observe("list_restaurants", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Restaurant(nil), s.restaurants...), nil
}

// GetRestaurant implements CatalogStore.GetRestaurant.
func (s *MemStore) GetRestaurant(_ context.Context, id string) (model.Restaurant, error) {
	defer observe("get_restaurant", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.restIdx[id]
	if !ok {
		return model.Restaurant{}, fmt.Errorf("restaurant %q: %w", id, ErrNotFound)
	}
	return s.restaurants[i], nil
}

// ListHostelBlocks implements CatalogStore.ListHostelBlocks.
func (s *MemStore) ListHostelBlocks(_ context.Context) ([]model.HostelBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.HostelBlock(nil), s.hostels...), nil
}

// PutFood implements CatalogStore.PutFood.
func (s *MemStore) PutFood(_ context.Context, f model.Food) error {
	if f.ID == "" || f.Name == "" {
		return fmt.Errorf("food needs id and name: %w", ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.foodIdx[f.ID]; ok {
		s.foods[i] = f
		return nil
	}
	s.foodIdx[f.ID] = len(s.foods)
	s.foods = append(s.foods, f)
	return nil
}

// PutRestaurant implements CatalogStore.PutRestaurant.
func (s *MemStore) PutRestaurant(_ context.Context, r model.Restaurant) error {
	if r.ID == "" {
		return fmt.Errorf("restaurant needs id: %w", ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.restIdx[r.ID]; ok {
		s.restaurants[i] = r
		return nil
	}
	s.restIdx[r.ID] = len(s.restaurants)
	s.restaurants = append(s.restaurants, r)
	return nil
}

// PutHostelBlock implements CatalogStore.PutHostelBlock.
func (s *MemStore) PutHostelBlock(_ context.Context, h model.HostelBlock) error {
	if h.Name == "" {
		return fmt.Errorf("hostel block needs a name: %w", ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.hostelIdx[h.Name]; ok {
		s.hostels[i] = h
		return nil
	}
	s.hostelIdx[h.Name] = len(s.hostels)
	s.hostels = append(s.hostels, h)
	return nil
}

// AppendOrder implements OrderStore.AppendOrder.
func (s *MemStore) AppendOrder(_ context.Context, o model.Order) error {
	defer observe("append_order", time.Now())
	if o.ID == "" {
		return fmt.Errorf("order needs an id: %w", ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orderIDs[o.ID]; ok {
		return fmt.Errorf("order %q: %w", o.ID, ErrDuplicate)
	}
	o.Items = append([]model.LineItem(nil), o.Items...)
	s.orderIDs[o.ID] = struct{}{}
	s.orders = append(s.orders, o)
	return nil
}

// ListOrdersByUser implements OrderStore.ListOrdersByUser.
func (s *MemStore) ListOrdersByUser(_ context.Context, userID string) ([]model.Order, error) {
	defer observe("list_orders_by_user", time.Now())
	return s.filterOrders(func(o model.Order) bool { return o.UserID == userID }), nil
}

// ListOrdersByCohort implements OrderStore.ListOrdersByCohort.
func (s *MemStore) ListOrdersByCohort(_ context.Context, cohort string) ([]model.Order, error) {
	defer observe("list_orders_by_cohort", time.Now())
	return s.filterOrders(func(o model.Order) bool { return o.HostelBlock == cohort }), nil
}

func (s *MemStore) filterOrders(keep func(model.Order) bool) []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Order, 0)
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

// CountOrders implements OrderStore.CountOrders.
func (s *MemStore) CountOrders(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders), nil
}

// CreateUser implements UserStore.CreateUser.
func (s *MemStore) CreateUser(_ context.Context, u model.User) error {
	defer observe("create_user", time.Now())
	if u.ID == "" {
		return fmt.Errorf("user needs an id: %w", ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return fmt.Errorf("user %q: %w", u.ID, ErrDuplicate)
	}
	if u.StudentID != "" {
		if _, ok := s.byStudent[u.StudentID]; ok {
			return fmt.Errorf("student %q: %w", u.StudentID, ErrDuplicate)
		}
		s.byStudent[u.StudentID] = u.ID
	}
	s.users[u.ID] = u
	return nil
}

// GetUser implements UserStore.GetUser.
func (s *MemStore) GetUser(_ context.Context, id string) (model.User, error) {
	defer observe("get_user", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, fmt.Errorf("user %q: %w", id, ErrNotFound)
	}
	return u, nil
}

// FindUserByStudentID implements UserStore.FindUserByStudentID.
func (s *MemStore) FindUserByStudentID(_ context.Context, studentID string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byStudent[studentID]
	if !ok {
		return model.User{}, fmt.Errorf("student %q: %w", studentID, ErrNotFound)
	}
	return s.users[id], nil
}

// CountUsers implements UserStore.CountUsers.
func (s *MemStore) CountUsers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}
