package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/okian/canteen/internal/adapters/repository"
	"github.com/okian/canteen/internal/domain/model"
	"github.com/okian/canteen/internal/domain/types"
	"github.com/okian/canteen/pkg/logger"
)

// Foods lists the catalog in catalog order.
func (s *Service) Foods(ctx context.Context) ([]model.Food, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	foods, err := s.store.ListFoods(ctx)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	return nonNil(foods), nil
}

// Food returns one food with its restaurant. A dangling restaurant id is
// not an error; the restaurant is just left out.
func (s *Service) Food(ctx context.Context, id string) (types.FoodDetail, error) {
	if err := s.running(); err != nil {
		return types.FoodDetail{}, err
	}
	f, err := s.store.GetFood(ctx, id)
	if err != nil {
		return types.FoodDetail{}, fmt.Errorf("get food %s: %w", id, err)
	}
	d := types.FoodDetail{Food: f}
	if f.RestaurantID != "" {
		r, err := s.store.GetRestaurant(ctx, f.RestaurantID)
		switch {
		case err == nil:
			d.Restaurant = &r
		case !errors.Is(err, repository.ErrNotFound):
			return types.FoodDetail{}, fmt.Errorf("get restaurant %s: %w", f.RestaurantID, err)
		}
	}
	return d, nil
}

// Restaurants lists every restaurant.
func (s *Service) Restaurants(ctx context.Context) ([]model.Restaurant, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	rs, err := s.store.ListRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	return nonNil(rs), nil
}

// Restaurant returns one restaurant with its menu.
func (s *Service) Restaurant(ctx context.Context, id string) (types.RestaurantDetail, error) {
	if err := s.running(); err != nil {
		return types.RestaurantDetail{}, err
	}
	r, err := s.store.GetRestaurant(ctx, id)
	if err != nil {
		return types.RestaurantDetail{}, fmt.Errorf("get restaurant %s: %w", id, err)
	}
	foods, err := s.store.ListFoods(ctx)
	if err != nil {
		return types.RestaurantDetail{}, fmt.Errorf("list foods: %w", err)
	}
	menu := make([]model.Food, 0)
	for _, f := range foods {
		if f.RestaurantID == r.ID {
			menu = append(menu, f)
		}
	}
	return types.RestaurantDetail{Restaurant: r, Menu: menu}, nil
}

// HostelBlocks lists the trending cohorts.
func (s *Service) HostelBlocks(ctx context.Context) ([]model.HostelBlock, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	hs, err := s.store.ListHostelBlocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hostel blocks: %w", err)
	}
	return nonNil(hs), nil
}

// RegisterUser creates a user from a signup form. studentId, name, hostel
// and roomNumber are required; a taken studentId yields
// repository.ErrDuplicate.
func (s *Service) RegisterUser(ctx context.Context, u model.User) (model.User, error) { //nolint:gocritic // hugeParam
	if err := s.running(); err != nil {
		return model.User{}, err
	}
	u.StudentID = strings.TrimSpace(u.StudentID)
	u.Name = strings.TrimSpace(u.Name)
	u.Hostel = strings.TrimSpace(u.Hostel)
	u.RoomNumber = strings.TrimSpace(u.RoomNumber)
	if u.StudentID == "" || u.Name == "" || u.Hostel == "" || u.RoomNumber == "" {
		return model.User{}, fmt.Errorf("%w: studentId, name, hostel and roomNumber are required", ErrInvalidUser)
	}

	if _, err := s.store.FindUserByStudentID(ctx, u.StudentID); err == nil {
		return model.User{}, fmt.Errorf("student %s: %w", u.StudentID, repository.ErrDuplicate)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, fmt.Errorf("find student %s: %w", u.StudentID, err)
	}

	u.ID = uuid.NewString()
	if err := s.store.CreateUser(ctx, u); err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info(ctx, "user registered",
		logger.String("user_id", u.ID),
		logger.String("hostel", u.Hostel),
	)
	return u, nil
}

// User returns the raw user record.
func (s *Service) User(ctx context.Context, id string) (model.User, error) {
	if err := s.running(); err != nil {
		return model.User{}, err
	}
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return model.User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
