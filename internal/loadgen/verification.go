package loadgen

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okian/canteen/internal/domain/model"
	"github.com/okian/canteen/internal/domain/trending"
	"github.com/okian/canteen/internal/domain/types"
	"github.com/okian/canteen/pkg/logger"
)

// expectTrending ranks the accepted orders of every hostel the same way the
// service does. Hostels without orders expect an empty list.
func expectTrending(cat catalog, accepted []model.Order) map[string][]model.Recommendation {
	byHostel := make(map[string][]model.Order, len(cat.Hostels))
	for _, o := range accepted {
		byHostel[o.HostelBlock] = append(byHostel[o.HostelBlock], o)
	}

	idx := trending.NewIndex(cat.Foods)
	out := make(map[string][]model.Recommendation, len(cat.Hostels))
	for _, h := range cat.Hostels {
		entries := trending.Rank(h.Name, byHostel[h.Name], idx, trending.DefaultLimit)
		recs := make([]model.Recommendation, len(entries))
		for i, e := range entries {
			recs[i] = e.Recommendation()
		}
		out[h.Name] = recs
	}
	return out
}

// diffTrending describes the first difference between want and got, or
// returns "" when they match.
func diffTrending(want, got []model.Recommendation) string {
	if len(want) != len(got) {
		return fmt.Sprintf("want %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if want[i] != got[i] {
			return fmt.Sprintf("entry %d: want %q (%s), got %q (%s)",
				i, want[i].Name, want[i].Reason, got[i].Name, got[i].Reason)
		}
	}
	return ""
}

// verifyTrending polls every hostel's trending list until it matches the
// expectation or cfg.Settle elapses. Orders are stored asynchronously, so
// early reads may lag behind.
func verifyTrending(ctx context.Context, cfg *Config, c *client, want map[string][]model.Recommendation, stats *Stats) error {
	log := logger.Named("loadgen")
	log.Info(ctx, "verifying hostel trending", logger.Int("hostels", len(want)))

	hostels := make([]string, 0, len(want))
	for h := range want {
		hostels = append(hostels, h)
	}
	sort.Strings(hostels)

	deadline := time.Now().Add(cfg.Settle)
	for _, h := range hostels {
		var diff string
		for {
			var got types.Result
			if err := c.getJSON(ctx, trendingPath(h), &got); err != nil {
				return err
			}
			if diff = diffTrending(want[h], got.Recommendations); diff == "" {
				break
			}
			if time.Now().After(deadline) {
				return fmt.Errorf("%w: %s: %s", ErrTrendingMismatch, h, diff)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollInterval):
			}
		}
		stats.CohortsVerified++
		if cfg.Verbose {
			for i, rec := range want[h] {
				log.Info(ctx, "trending", logger.String("hostel", h), logger.Int("rank", i+1),
					logger.String("name", rec.Name), logger.String("reason", rec.Reason))
			}
		}
	}

	log.Info(ctx, "trending verified", logger.Int("hostels", stats.CohortsVerified))
	return nil
}
