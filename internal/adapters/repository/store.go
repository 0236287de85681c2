// Package repository defines the catalog, order and user stores and their
// memory and SQLite implementations.
package repository

import (
	"context"

	"github.com/okian/canteen/internal/domain/model"
)

// CatalogStore holds food, restaurant and hostel reference data.
type CatalogStore interface {
	// ListFoods returns every food in catalog order.
	ListFoods(ctx context.Context) ([]model.Food, error)
	// GetFood returns ErrNotFound if the id is unknown.
	GetFood(ctx context.Context, id string) (model.Food, error)
	ListRestaurants(ctx context.Context) ([]model.Restaurant, error)
	// GetRestaurant returns ErrNotFound if the id is unknown.
	GetRestaurant(ctx context.Context, id string) (model.Restaurant, error)
	ListHostelBlocks(ctx context.Context) ([]model.HostelBlock, error)

	// Upserts keep the original catalog position of an existing id.
	PutFood(ctx context.Context, f model.Food) error
	PutRestaurant(ctx context.Context, r model.Restaurant) error
	PutHostelBlock(ctx context.Context, h model.HostelBlock) error
}

// OrderStore is an append-only order log.
type OrderStore interface {
	// AppendOrder returns ErrDuplicate if the order id was already stored.
	AppendOrder(ctx context.Context, o model.Order) error
	// ListOrdersByUser returns the user's orders in append order.
	ListOrdersByUser(ctx context.Context, userID string) ([]model.Order, error)
	// ListOrdersByCohort returns orders whose hostel block equals cohort, in append order.
	ListOrdersByCohort(ctx context.Context, cohort string) ([]model.Order, error)
	CountOrders(ctx context.Context) (int, error)
}

// UserStore holds raw user records.
type UserStore interface {
	// CreateUser returns ErrDuplicate if the id or student id is taken.
	CreateUser(ctx context.Context, u model.User) error
	// GetUser returns ErrNotFound if the id is unknown.
	GetUser(ctx context.Context, id string) (model.User, error)
	// FindUserByStudentID returns ErrNotFound if no user has that student id.
	FindUserByStudentID(ctx context.Context, studentID string) (model.User, error)
	CountUsers(ctx context.Context) (int, error)
}

// Store is the full persistence surface used by the service.
type Store interface {
	CatalogStore
	OrderStore
	UserStore
	Close() error
}
