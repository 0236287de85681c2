package scoring

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/okian/canteen/internal/domain/model"
)

// Scoring weights and caps of the reference scorer.
const (
	cuisineWeight = 5
	spiceWeight   = 3
	recentWeight  = 2
	maxScored     = 5
	coldStartSize = 3
	defaultSeed   = 42
)

// Option applies a configuration option to Local.
type Option func(*Local)

// WithLatencyRange simulates service latency drawn from [minLatency, maxLatency).
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(s *Local) {
		if minLatency > 0 && maxLatency > minLatency {
			s.minLatency = minLatency
			s.maxLatency = maxLatency
		}
	}
}

// WithSeed fixes the latency jitter source.
func WithSeed(seed int64) Option {
	return func(s *Local) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // latency jitter only
	}
}

// Local is the reference scoring model: strict Veg filter, then +5 for a
// preferred cuisine, +3 for the preferred spice level and +2 for foods in the
// recent orders. It backs cmd/scorer and can stand in for the remote service.
type Local struct {
	minLatency time.Duration
	maxLatency time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewLocal creates a reference scorer. Without WithLatencyRange it answers
// immediately.
func NewLocal(opts ...Option) *Local {
	s := &Local{
		rng: rand.New(rand.NewSource(defaultSeed)), //nolint:gosec // latency jitter only
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score implements Gateway.
func (s *Local) Score(ctx context.Context, req Request) Outcome {
	recs, err := s.Recommend(ctx, req)
	if err != nil {
		return Failure(err)
	}
	return Success(recs)
}

// Recommend ranks req.AvailableFoods for the request's profile.
func (s *Local) Recommend(ctx context.Context, req Request) ([]model.Recommendation, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if len(req.AvailableFoods) == 0 {
		return []model.Recommendation{}, nil
	}

	foods := req.AvailableFoods
	if req.UserPreferences.VegNonVeg == model.Veg {
		foods = make([]model.Food, 0, len(req.AvailableFoods))
		for _, f := range req.AvailableFoods {
			if f.VegNonVeg == model.Veg {
				foods = append(foods, f)
			}
		}
	}
	if len(foods) == 0 {
		return []model.Recommendation{{Name: "No items match your strict diet", Reason: "Try changing filters"}}, nil
	}

	spice := req.UserPreferences.SpiceLevel
	if spice == "" {
		spice = model.SpiceMedium
	}
	recent := make(map[string]struct{})
	for _, o := range req.RecentOrders {
		for _, li := range o.Items {
			if li.FoodID != "" {
				recent[li.FoodID] = struct{}{}
			}
		}
	}

	type scored struct {
		food    model.Food
		score   int
		reasons []string
	}
	var ranked []scored
	for _, f := range foods {
		sc := scored{food: f}
		if req.UserPreferences.PrefersCuisine(f.Cuisine) {
			sc.score += cuisineWeight
			sc.reasons = append(sc.reasons, "Matches your love for "+f.Cuisine)
		}
		if f.SpiceLevel == spice {
			sc.score += spiceWeight
			sc.reasons = append(sc.reasons, "Perfect spice level")
		}
		if _, ok := recent[f.ID]; ok {
			sc.score += recentWeight
			sc.reasons = append(sc.reasons, "You ordered this recently")
		}
		if sc.score > 0 {
			ranked = append(ranked, sc)
		}
	}

	// Stable so equal scores keep catalog order.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > maxScored {
		ranked = ranked[:maxScored]
	}

	out := make([]model.Recommendation, 0, maxScored)
	for _, sc := range ranked {
		out = append(out, model.Recommendation{Name: sc.food.Name, Reason: strings.Join(sc.reasons, " & ")})
	}
	if len(out) == 0 {
		for i := 0; i < len(foods) && i < coldStartSize; i++ {
			out = append(out, model.Recommendation{Name: foods[i].Name, Reason: "Popular choice"})
		}
	}
	return out, nil
}

func (s *Local) wait(ctx context.Context) error {
	if s.maxLatency <= 0 {
		return nil
	}
	s.mu.Lock()
	latency := s.minLatency + time.Duration(s.rng.Int63n(int64(s.maxLatency-s.minLatency)))
	s.mu.Unlock()

	t := time.NewTimer(latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}
