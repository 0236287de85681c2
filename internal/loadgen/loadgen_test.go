package loadgen

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/canteen/internal/adapters/http/api"
	"github.com/okian/canteen/internal/adapters/repository"
	service "github.com/okian/canteen/internal/app"
	"github.com/okian/canteen/internal/config"
	"github.com/okian/canteen/internal/domain/model"
	"github.com/okian/canteen/internal/domain/scoring"
	"github.com/okian/canteen/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

func testCatalog() catalog {
	c := repository.DefaultCatalog()
	return catalog{Foods: c.Foods, Hostels: c.HostelBlocks}
}

// startService runs a memory-backed service behind the API routes.
func startService(t *testing.T) *httptest.Server {
	cfg := config.New()
	cfg.WorkerCount = 4
	cfg.QueueSize = 1000

	ctx := context.Background()
	svc := service.New(service.WithConfig(cfg), service.WithGateway(scoring.NewLocal()))
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start service: %v", err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(ctx, mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		_ = svc.Stop(ctx)
	})
	return srv
}

func TestGenerator(t *testing.T) {
	Convey("Given two generators with the same seed", t, func() {
		a := newGenerator(7, testCatalog())
		b := newGenerator(7, testCatalog())

		Convey("Then students differ only in their unique ids", func() {
			sa, sb := a.students(10), b.students(10)
			So(len(sa), ShouldEqual, 10)
			for i := range sa {
				So(sa[i].StudentID, ShouldNotEqual, sb[i].StudentID)
				So(sa[i].Hostel, ShouldEqual, sb[i].Hostel)
				So(sa[i].RoomNumber, ShouldEqual, sb[i].RoomNumber)
				So(sa[i].Name, ShouldNotBeEmpty)
			}
		})

		Convey("Then orders stay within the catalog and item bounds", func() {
			students := a.students(5)
			for i := range students {
				students[i].ID = students[i].StudentID
			}
			orders := a.orders(200, 3, students)
			So(len(orders), ShouldEqual, 200)

			ids := map[string]bool{}
			for _, f := range testCatalog().Foods {
				ids[f.ID] = true
				ids[f.Name] = true
			}
			for _, o := range orders {
				So(o.ID, ShouldNotBeEmpty)
				So(o.UserID, ShouldNotBeEmpty)
				So(len(o.Items), ShouldBeBetweenOrEqual, 1, 3)
				for _, li := range o.Items {
					So(ids[li.FoodID] || ids[li.Name], ShouldBeTrue)
					So(li.Quantity, ShouldBeBetweenOrEqual, 1, maxQuantity)
				}
			}
		})
	})
}

func TestExpectTrending(t *testing.T) {
	Convey("Given accepted orders in one hostel", t, func() {
		cat := testCatalog()
		accepted := []model.Order{
			{HostelBlock: "Hostel A", Items: []model.LineItem{{FoodID: "f2", Quantity: 2}}},
			{HostelBlock: "Hostel A", Items: []model.LineItem{{Name: "Chicken Biryani"}, {FoodID: "f3"}}},
		}

		Convey("Then the ordering hostel expects its ranking and the others expect nothing", func() {
			want := expectTrending(cat, accepted)
			So(want["Hostel A"], ShouldResemble, []model.Recommendation{
				{Name: "Chicken Biryani", Reason: "Popular in Hostel A (3 orders)"},
				{Name: "Masala Dosa", Reason: "Popular in Hostel A (1 orders)"},
			})
			So(want["Hostel B"], ShouldBeEmpty)
			So(want["Girls Hostel"], ShouldBeEmpty)
		})
	})

	Convey("Given two trending lists", t, func() {
		a := []model.Recommendation{{Name: "Idli Vada", Reason: "Popular in Hostel B (2 orders)"}}

		Convey("Then equal lists have no diff and different ones describe the first gap", func() {
			So(diffTrending(a, a), ShouldEqual, "")
			So(diffTrending(a, nil), ShouldContainSubstring, "want 1 entries, got 0")
			b := []model.Recommendation{{Name: "Idli Vada", Reason: "Popular in Hostel B (3 orders)"}}
			So(diffTrending(a, b), ShouldContainSubstring, "entry 0")
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running canteen service", t, func() {
		srv := startService(t)
		out := filepath.Join(t.TempDir(), "orders.json")

		Convey("When a load run places orders", func() {
			stats, err := Run(context.Background(), &Config{
				BaseURL:    srv.URL,
				NumUsers:   12,
				NumOrders:  150,
				Workers:    8,
				Timeout:    5 * time.Second,
				Settle:     10 * time.Second,
				Seed:       11,
				OutputFile: out,
			})

			Convey("Then every hostel's trending list matches the accepted orders", func() {
				So(err, ShouldBeNil)
				So(stats.UsersRegistered, ShouldEqual, 12)
				So(stats.OrdersGenerated, ShouldEqual, 150)
				So(stats.OrdersAccepted, ShouldEqual, 150)
				So(stats.OrdersFailed, ShouldEqual, 0)
				So(stats.CohortsVerified, ShouldEqual, len(repository.DefaultCatalog().HostelBlocks))
			})

			Convey("Then the generated orders are written to the output file", func() {
				data, readErr := os.ReadFile(out)
				So(readErr, ShouldBeNil)
				var saved []model.Order
				So(json.Unmarshal(data, &saved), ShouldBeNil)
				So(len(saved), ShouldEqual, 150)
			})
		})
	})

	Convey("Given a service that is not reachable", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		Convey("Then the run fails the health check", func() {
			_, err := Run(context.Background(), &Config{BaseURL: srv.URL, Timeout: time.Second})
			So(errors.Is(err, ErrUnhealthy), ShouldBeTrue)
		})
	})
}
