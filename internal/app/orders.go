package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/canteen/internal/adapters/mq/queue"
	"github.com/okian/canteen/internal/adapters/repository"
	"github.com/okian/canteen/internal/domain/model"
	"github.com/okian/canteen/pkg/logger"
	"github.com/okian/canteen/pkg/metrics"
)

// UnknownLocation fills cohort, floor and room when neither the user record
// nor the request carries them.
const UnknownLocation = "Unknown"

// PlaceOrder validates draft, completes it and enqueues it for storage. The
// stored order becomes visible to reads once a worker appends it.
//
// A client supplied draft.ID makes the call idempotent: a repeat returns the
// first order's id with duplicate set.
func (s *Service) PlaceOrder(ctx context.Context, draft model.Order) (model.Order, bool, error) { //nolint:gocritic // hugeParam: orders are values end to end
	if err := s.running(); err != nil {
		return model.Order{}, false, err
	}
	if err := validateOrder(draft); err != nil {
		metrics.RecordOrderRejected("invalid")
		return model.Order{}, false, err
	}

	order := s.completeOrder(ctx, draft)

	if s.deduper.SeenAndRecord(ctx, order.ID) {
		s.logger.Debug(ctx, "duplicate order submission", logger.String("order_id", order.ID))
		return order, true, nil
	}

	if err := s.orderQueue.Enqueue(ctx, order); err != nil {
		// Let the client retry the same id.
		s.deduper.Unrecord(ctx, order.ID)
		if errors.Is(err, queue.ErrFull) || errors.Is(err, queue.ErrClosed) {
			metrics.RecordOrderRejected("backpressure")
			return model.Order{}, false, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		metrics.RecordOrderRejected("enqueue")
		return model.Order{}, false, err
	}

	metrics.RecordOrderPlaced()
	s.logger.Info(ctx, "order placed",
		logger.String("order_id", order.ID),
		logger.String("user_id", order.UserID),
		logger.String("hostel_block", order.HostelBlock),
		logger.Int("items", len(order.Items)),
	)
	return order, false, nil
}

func validateOrder(o model.Order) error { //nolint:gocritic // hugeParam
	if strings.TrimSpace(o.UserID) == "" {
		return fmt.Errorf("%w: missing userId", ErrInvalidOrder)
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidOrder)
	}
	for i, li := range o.Items {
		if strings.TrimSpace(li.FoodID) == "" && strings.TrimSpace(li.Name) == "" {
			return fmt.Errorf("%w: item %d has neither foodId nor name", ErrInvalidOrder, i)
		}
	}
	return nil
}

// completeOrder resolves the order's location from the user record, then
// the request, then UnknownLocation, and fills item names from the catalog.
func (s *Service) completeOrder(ctx context.Context, draft model.Order) model.Order { //nolint:gocritic // hugeParam
	o := draft
	if strings.TrimSpace(o.ID) == "" {
		o.ID = uuid.NewString()
	}
	o.Status = model.OrderStatusConfirmed
	o.Timestamp = time.Now().UTC()

	user, err := s.store.GetUser(ctx, o.UserID)
	switch {
	case err == nil:
		o.HostelBlock = firstNonEmpty(user.Hostel, o.HostelBlock)
		o.Floor = firstNonEmpty(user.Floor, o.Floor)
		o.RoomNumber = firstNonEmpty(user.RoomNumber, o.RoomNumber)
	case !errors.Is(err, repository.ErrNotFound):
		s.logger.Warn(ctx, "user lookup failed while placing order",
			logger.String("user_id", o.UserID), logger.Error(err))
	}
	o.HostelBlock = firstNonEmpty(o.HostelBlock, UnknownLocation)
	o.Floor = firstNonEmpty(o.Floor, UnknownLocation)
	o.RoomNumber = firstNonEmpty(o.RoomNumber, UnknownLocation)

	items := make([]model.LineItem, len(o.Items))
	for i, li := range o.Items {
		if li.Name == "" && li.FoodID != "" {
			if f, err := s.store.GetFood(ctx, li.FoodID); err == nil {
				li.Name = f.Name
			}
		}
		if li.Quantity < 1 {
			li.Quantity = 1
		}
		items[i] = li
	}
	o.Items = items
	return o
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// OrdersByUser returns the stored orders of userID in placement order.
func (s *Service) OrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	orders, err := s.store.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}
