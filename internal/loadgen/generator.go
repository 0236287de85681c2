package loadgen

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/okian/canteen/internal/domain/model"
	"github.com/okian/canteen/pkg/logger"
)

var (
	cuisinePool = []string{"North Indian", "South Indian", "Chinese"}
	spicePool   = []string{model.SpiceLow, model.SpiceMedium, model.SpiceHigh}
	dietPool    = []string{model.Veg, model.NonVeg, model.Both}
)

// catalog is the reference data the generator orders from.
type catalog struct {
	Foods   []model.Food
	Hostels []model.HostelBlock
}

// fetchCatalog reads foods and hostel blocks from the service.
func fetchCatalog(ctx context.Context, c *client) (catalog, error) {
	var cat catalog
	if err := c.getJSON(ctx, "/api/foods", &cat.Foods); err != nil {
		return cat, fmt.Errorf("failed to list foods: %w", err)
	}
	if err := c.getJSON(ctx, "/api/hostels", &cat.Hostels); err != nil {
		return cat, fmt.Errorf("failed to list hostels: %w", err)
	}
	if len(cat.Foods) == 0 || len(cat.Hostels) == 0 {
		return cat, ErrEmptyCatalog
	}
	return cat, nil
}

// generator draws students and orders from a seeded source so that a run
// can be replayed.
type generator struct {
	rng *rand.Rand
	cat catalog
}

func newGenerator(seed int64, cat catalog) *generator {
	return &generator{
		rng: rand.New(rand.NewSource(seed)), //nolint:gosec // test data only
		cat: cat,
	}
}

// students creates n signup payloads with unique student ids.
func (g *generator) students(n int) []Student {
	out := make([]Student, n)
	for i := range out {
		hostel := g.cat.Hostels[g.rng.Intn(len(g.cat.Hostels))]
		floors := max(hostel.Floors, 1)
		floor := strconv.Itoa(g.rng.Intn(floors) + 1)
		out[i] = Student{
			StudentID:  "LG-" + uuid.NewString(),
			Name:       "Load Student " + strconv.Itoa(i+1),
			Hostel:     hostel.Name,
			Floor:      floor,
			RoomNumber: floor + fmt.Sprintf("%02d", g.rng.Intn(40)+1),
			Cuisines:   model.StringList{cuisinePool[g.rng.Intn(len(cuisinePool))]},
			SpiceLevel: spicePool[g.rng.Intn(len(spicePool))],
			VegNonVeg:  dietPool[g.rng.Intn(len(dietPool))],
		}
	}
	return out
}

// orders creates n orders for registered students. Every order carries a
// client id so that a resubmission is recognised as a duplicate. One line
// item in four names its food instead of referencing the id.
func (g *generator) orders(n, maxItems int, students []Student) []model.Order {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	out := make([]model.Order, n)
	for i := range out {
		st := students[g.rng.Intn(len(students))]
		items := make([]model.LineItem, g.rng.Intn(maxItems)+1)
		for j := range items {
			food := g.cat.Foods[g.rng.Intn(len(g.cat.Foods))]
			li := model.LineItem{FoodID: food.ID, Quantity: g.rng.Intn(maxQuantity) + 1}
			if g.rng.Intn(4) == 0 {
				li = model.LineItem{Name: food.Name, Quantity: li.Quantity}
			}
			items[j] = li
		}
		out[i] = model.Order{
			ID:          uuid.NewString(),
			UserID:      st.ID,
			HostelBlock: st.Hostel,
			Items:       items,
		}
	}
	return out
}

// registerStudents signs every student up and records the id the service
// assigned. Students that fail to register are dropped.
func registerStudents(ctx context.Context, c *client, students []Student, stats *Stats) ([]Student, error) {
	log := logger.Named("loadgen")
	registered := make([]Student, 0, len(students))
	for _, st := range students {
		status, body, err := c.postJSON(ctx, "/api/users", st)
		if err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", st.StudentID, err)
		}
		if status != http.StatusCreated {
			log.Warn(ctx, "signup rejected", logger.String("studentId", st.StudentID), logger.Int("status", status))
			continue
		}
		var ack userAck
		if err := unmarshalAck(body, &ack); err != nil {
			return nil, err
		}
		st.ID = ack.User.ID
		registered = append(registered, st)
	}
	stats.UsersRegistered = len(registered)
	if len(registered) == 0 {
		return nil, fmt.Errorf("%w: no student could register", ErrUnexpectedStatus)
	}
	log.Info(ctx, "students registered", logger.Int("count", len(registered)))
	return registered, nil
}
