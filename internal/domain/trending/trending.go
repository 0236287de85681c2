// Package trending ranks foods by demand within a cohort, computed from the
// order log on every call.
package trending

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okian/canteen/internal/domain/model"
	"github.com/okian/canteen/internal/domain/types"
	"github.com/okian/canteen/pkg/logger"
	"github.com/okian/canteen/pkg/metrics"
)

// DefaultLimit caps a trending list.
const DefaultLimit = 5

// OrderSource lists the orders of one cohort.
type OrderSource interface {
	ListOrdersByCohort(ctx context.Context, cohort string) ([]model.Order, error)
}

// CatalogSource resolves line items to canonical food ids and names.
type CatalogSource interface {
	ListFoods(ctx context.Context) ([]model.Food, error)
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLimit sets the maximum number of entries returned.
func WithLimit(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.limit = n
		}
	}
}

// WithLogger sets the logger used for store failures.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}

// Aggregator has no state of its own; every call reads the stores afresh.
type Aggregator struct {
	orders  OrderSource
	catalog CatalogSource
	limit   int
	log     logger.Logger
}

// New creates an Aggregator. catalog may be nil, in which case line items
// are keyed by their own id or name.
func New(orders OrderSource, catalog CatalogSource, opts ...Option) *Aggregator {
	a := &Aggregator{
		orders:  orders,
		catalog: catalog,
		limit:   DefaultLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Reason formats the reason string of a trending entry.
func Reason(cohort string, count int) string {
	return fmt.Sprintf("Popular in %s (%d orders)", cohort, count)
}

// Trending returns up to the configured limit of entries for cohort, most
// ordered first. It never fails: an unreadable order log yields an empty list.
func (a *Aggregator) Trending(ctx context.Context, cohort string) []model.TrendingEntry {
	start := time.Now()

	orders, err := a.orders.ListOrdersByCohort(ctx, cohort)
	if err != nil {
		a.logger().Error(ctx, "list cohort orders", logger.String("cohort", cohort), logger.Error(err))
		metrics.RecordErrorByComponent("trending", "order_store")
		return []model.TrendingEntry{}
	}

	idx := a.index(ctx)
	entries := Rank(cohort, orders, idx, a.limit)
	metrics.RecordTrending(len(orders), float64(time.Since(start).Microseconds())/1000)
	return entries
}

// Result wraps Trending in the uniform response shape.
func (a *Aggregator) Result(ctx context.Context, cohort string) types.Result {
	entries := a.Trending(ctx, cohort)
	recs := make([]model.Recommendation, len(entries))
	for i, e := range entries {
		recs[i] = e.Recommendation()
	}
	return types.NewResult(types.SourceTrending, recs)
}

func (a *Aggregator) index(ctx context.Context) Index {
	if a.catalog == nil {
		return Index{}
	}
	foods, err := a.catalog.ListFoods(ctx)
	if err != nil {
		// Counting still works without the catalog, keys just are not canonical.
		a.logger().Warn(ctx, "list foods for trending", logger.Error(err))
		metrics.RecordErrorByComponent("trending", "catalog_store")
		return Index{}
	}
	return NewIndex(foods)
}

func (a *Aggregator) logger() logger.Logger {
	if a.log != nil {
		return a.log
	}
	return logger.Get().Named("trending")
}

// Index maps food ids to names and names back to ids.
type Index struct {
	nameByID map[string]string
	idByName map[string]string
}

// NewIndex builds an index over foods. The first food with a given name wins.
func NewIndex(foods []model.Food) Index {
	idx := Index{
		nameByID: make(map[string]string, len(foods)),
		idByName: make(map[string]string, len(foods)),
	}
	for _, f := range foods {
		idx.nameByID[f.ID] = f.Name
		if _, ok := idx.idByName[f.Name]; !ok && f.Name != "" {
			idx.idByName[f.Name] = f.ID
		}
	}
	return idx
}

// key returns the grouping key and display name of a line item. A blank
// key means the item carries nothing to group by. An id the catalog does
// not know groups under the item's name, or under the name other items
// gave that id in learned, so the same food is never split in two.
func (idx Index) key(li model.LineItem, learned map[string]string) (key, display string) {
	if li.FoodID != "" {
		if name, ok := idx.nameByID[li.FoodID]; ok {
			if name == "" {
				name = firstNonEmpty(li.Name, li.FoodID)
			}
			return li.FoodID, name
		}
		if name := firstNonEmpty(li.Name, learned[li.FoodID]); name != "" {
			return idx.byName(name)
		}
		return li.FoodID, li.FoodID
	}
	if li.Name != "" {
		return idx.byName(li.Name)
	}
	return "", ""
}

// byName keys a name by its catalog id when the catalog has one.
func (idx Index) byName(name string) (key, display string) {
	if id, ok := idx.idByName[name]; ok {
		return id, name
	}
	return name, name
}

// learnNames collects the names line items give to ids the catalog does not
// know. The first name seen for an id wins.
func (idx Index) learnNames(orders []model.Order) map[string]string {
	learned := make(map[string]string)
	for _, o := range orders {
		for _, li := range o.Items {
			if li.FoodID == "" || li.Name == "" {
				continue
			}
			if _, known := idx.nameByID[li.FoodID]; known {
				continue
			}
			if _, ok := learned[li.FoodID]; !ok {
				learned[li.FoodID] = li.Name
			}
		}
	}
	return learned
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

type tally struct {
	key   string
	name  string
	count int
}

// Rank aggregates orders into at most limit entries. Orders without items
// and items without id or name are skipped. Ties on count order by display
// name, then by key, so repeated calls give the same output.
func Rank(cohort string, orders []model.Order, idx Index, limit int) []model.TrendingEntry {
	if limit <= 0 {
		limit = DefaultLimit
	}

	learned := idx.learnNames(orders)
	byKey := make(map[string]*tally)
	for _, o := range orders {
		for _, li := range o.Items {
			key, name := idx.key(li, learned)
			if key == "" {
				continue
			}
			t, ok := byKey[key]
			if !ok {
				t = &tally{key: key, name: name}
				byKey[key] = t
			}
			t.count += li.Units()
		}
	}

	// Two catalog ids can share a display name; their counts add up under
	// the smaller key.
	byName := make(map[string]*tally, len(byKey))
	for _, t := range byKey {
		if prev, ok := byName[t.name]; ok {
			prev.count += t.count
			if t.key < prev.key {
				prev.key = t.key
			}
			continue
		}
		byName[t.name] = t
	}

	tallies := make([]*tally, 0, len(byName))
	for _, t := range byName {
		tallies = append(tallies, t)
	}
	sort.Slice(tallies, func(i, j int) bool {
		a, b := tallies[i], tallies[j]
		if a.count != b.count {
			return a.count > b.count
		}
		if a.name != b.name {
			return a.name < b.name
		}
		return a.key < b.key
	})

	out := make([]model.TrendingEntry, 0, limit)
	for _, t := range tallies {
		if len(out) == limit {
			break
		}
		out = append(out, model.TrendingEntry{Name: t.name, Count: t.count, Reason: Reason(cohort, t.count)})
	}
	return out
}
