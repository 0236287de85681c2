// Package recommend composes preference extraction, the scoring gateway and
// the fallback ranker into one recommendation read path.
package recommend

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/okian/canteen/internal/domain/fallback"
	"github.com/okian/canteen/internal/domain/model"
	"github.com/okian/canteen/internal/domain/preference"
	"github.com/okian/canteen/internal/domain/scoring"
	"github.com/okian/canteen/internal/domain/types"
	"github.com/okian/canteen/pkg/logger"
	"github.com/okian/canteen/pkg/metrics"
)

// ErrStoreRead marks a failed history or catalog read on the known-user path.
var ErrStoreRead = errors.New("recommendation inputs unavailable")

// UserSource resolves raw user records.
type UserSource interface {
	GetUser(ctx context.Context, id string) (model.User, error)
}

// OrderSource lists a user's orders in append order.
type OrderSource interface {
	ListOrdersByUser(ctx context.Context, userID string) ([]model.Order, error)
}

// CatalogSource lists every food in catalog order.
type CatalogSource interface {
	ListFoods(ctx context.Context) ([]model.Food, error)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecentWindow sets how many recent orders are sent for scoring.
func WithRecentWindow(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.recentWindow = n
		}
	}
}

// WithFallbackLimit caps the guest and fallback lists.
func WithFallbackLimit(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.fallbackLimit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// WithNotFound tells the orchestrator which user store errors mean "no such
// user". Those are served the guest list silently; any other error is logged
// first.
func WithNotFound(isNotFound func(error) bool) Option {
	return func(o *Orchestrator) {
		if isNotFound != nil {
			o.isNotFound = isNotFound
		}
	}
}

// Orchestrator holds only its collaborators; it is safe for concurrent use.
type Orchestrator struct {
	users   UserSource
	orders  OrderSource
	catalog CatalogSource
	gateway scoring.Gateway

	recentWindow  int
	fallbackLimit int
	isNotFound    func(error) bool
	log           logger.Logger
}

// New creates an Orchestrator.
func New(users UserSource, orders OrderSource, catalog CatalogSource, gw scoring.Gateway, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		users:         users,
		orders:        orders,
		catalog:       catalog,
		gateway:       gw,
		recentWindow:  scoring.DefaultRecentWindow,
		fallbackLimit: fallback.DefaultLimit,
		isNotFound:    func(error) bool { return false },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Recommend never fails. Unknown users get the guest list without a scoring
// call; a scoring failure of any kind is answered by the preference fallback.
func (o *Orchestrator) Recommend(ctx context.Context, userID string) types.Result {
	if userID == "" {
		return o.guest(ctx)
	}

	user, err := o.users.GetUser(ctx, userID)
	if err != nil {
		if !o.isNotFound(err) {
			o.logger().Warn(ctx, "user lookup failed, serving guest list",
				logger.String("user_id", userID), logger.Error(err))
			metrics.RecordErrorByComponent("recommend", "user_store")
		}
		return o.guest(ctx)
	}

	profile := preference.Extract(user)

	var (
		history []model.Order
		foods   []model.Food
		g       errgroup.Group
	)
	g.Go(func() error {
		var err error
		history, err = o.orders.ListOrdersByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("list orders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		foods, err = o.catalog.ListFoods(ctx)
		if err != nil {
			return fmt.Errorf("list foods: %w", err)
		}
		return nil
	})

	var outcome scoring.Outcome
	if err := g.Wait(); err != nil {
		outcome = scoring.Failure(fmt.Errorf("%w: %w", ErrStoreRead, err))
	} else {
		outcome = o.gateway.Score(ctx, scoring.Request{
			UserPreferences: profile,
			RecentOrders:    scoring.RecentOrders(history, o.recentWindow),
			AvailableFoods:  foods,
		})
	}

	if recs, ok := outcome.Recommendations(); ok {
		metrics.RecordRecommendation(string(types.SourceScored))
		return types.NewResult(types.SourceScored, recs)
	}

	reason := outcome.Reason()
	kind := scoring.Kind(reason)
	if errors.Is(reason, ErrStoreRead) {
		kind = "store"
	}
	o.logger().Warn(ctx, "scoring failed, serving fallback",
		logger.String("user_id", userID), logger.String("kind", kind), logger.Error(reason))
	metrics.RecordFallback(kind)
	metrics.RecordRecommendation(string(types.SourceFallback))
	return types.NewResult(types.SourceFallback, fallback.ByPreference(profile, foods, o.fallbackLimit))
}

func (o *Orchestrator) guest(ctx context.Context) types.Result {
	foods, err := o.catalog.ListFoods(ctx)
	if err != nil {
		o.logger().Error(ctx, "list foods for guest list", logger.Error(err))
		metrics.RecordErrorByComponent("recommend", "catalog_store")
	}
	metrics.RecordRecommendation(string(types.SourceGuest))
	return types.NewResult(types.SourceGuest, fallback.Guest(foods, o.fallbackLimit))
}

func (o *Orchestrator) logger() logger.Logger {
	if o.log != nil {
		return o.log
	}
	return logger.Get().Named("recommend")
}
