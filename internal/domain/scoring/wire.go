package scoring

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/goccy/go-json"

	"github.com/okian/canteen/internal/domain/model"
)

// DecodeResponse validates the response shape: a JSON object whose
// "recommendations" member is an array of {name, reason} objects. Entries are
// not validated beyond that.
func DecodeResponse(body []byte) ([]model.Recommendation, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	raw, ok := envelope["recommendations"]
	if !ok {
		return nil, fmt.Errorf("%w: missing recommendations", ErrMalformed)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("%w: recommendations is not an array", ErrMalformed)
	}
	var recs []model.Recommendation
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if recs == nil {
		recs = []model.Recommendation{}
	}
	return recs, nil
}

// RecentOrders returns at most n of the most recent orders, oldest first.
// The input is not modified.
func RecentOrders(orders []model.Order, n int) []model.Order {
	if n <= 0 {
		n = DefaultRecentWindow
	}
	sorted := make([]model.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	if len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}
	return sorted
}
