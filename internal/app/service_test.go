package service_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/okian/canteen/internal/adapters/repository"
	service "github.com/okian/canteen/internal/app"
	"github.com/okian/canteen/internal/config"
	"github.com/okian/canteen/internal/domain/model"
	"github.com/okian/canteen/internal/domain/types"
	"github.com/okian/canteen/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

func testConfig() *config.Config {
	cfg := config.New()
	cfg.WorkerCount = 2
	cfg.QueueSize = 100
	return cfg
}

// eventually polls cond for up to two seconds.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithConfig(testConfig()),
			service.WithWorkerCount(8),
			service.WithQueueSize(50),
			service.WithDedupeSize(25),
		)

		Convey("Then the options are reflected in its stats", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["workerCount"], ShouldEqual, 8)
			So(stats["queueSize"], ShouldEqual, 50)
			So(stats["dedupeSize"], ShouldEqual, 25)
			So(stats["scoring"], ShouldEqual, "local")
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithConfig(testConfig()))

		Convey("When it is used before Start", func() {
			_, err := svc.Foods(ctx)
			_, _, placeErr := svc.PlaceOrder(ctx, model.Order{UserID: "u1", Items: []model.LineItem{{FoodID: "f1"}}})
			res := svc.Recommendations(ctx, "u1")

			Convey("Then calls report ErrNotStarted and reads stay empty", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(errors.Is(placeErr, service.ErrNotStarted), ShouldBeTrue)
				So(res.Len(), ShouldEqual, 0)
			})
		})

		Convey("When starting and stopping the service", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			started := svc.GetStats()["started"]
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then it reports its state", func() {
				So(started, ShouldEqual, true)
				So(svc.GetStats()["started"], ShouldEqual, false)
				So(svc.Stop(ctx), ShouldBeNil)
			})
		})

		Convey("When the store driver is unknown", func() {
			cfg := testConfig()
			cfg.StoreDriver = "postgres"
			err := service.New(service.WithConfig(cfg)).Start(ctx)

			Convey("Then Start fails", func() {
				So(errors.Is(err, repository.ErrUnknownDriver), ShouldBeTrue)
			})
		})
	})
}

func TestService_Catalog(t *testing.T) {
	Convey("Given a started service with the seeded catalog", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithConfig(testConfig()))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("When listing foods and hostels", func() {
			foods, err := svc.Foods(ctx)
			So(err, ShouldBeNil)
			hostels, err := svc.HostelBlocks(ctx)
			So(err, ShouldBeNil)

			Convey("Then catalog order is preserved", func() {
				So(len(foods), ShouldEqual, 8)
				So(foods[0].Name, ShouldEqual, "Veg Biryani")
				So(len(hostels), ShouldEqual, 3)
				So(hostels[0].Name, ShouldEqual, "Hostel A")
			})
		})

		Convey("When fetching a food", func() {
			d, err := svc.Food(ctx, "f3")

			Convey("Then its restaurant is attached", func() {
				So(err, ShouldBeNil)
				So(d.Name, ShouldEqual, "Masala Dosa")
				So(d.Restaurant, ShouldNotBeNil)
				So(d.Restaurant.Name, ShouldEqual, "Southern Delights")
			})
		})

		Convey("When fetching a restaurant", func() {
			d, err := svc.Restaurant(ctx, "r2")

			Convey("Then its menu is attached in catalog order", func() {
				So(err, ShouldBeNil)
				So(d.Name, ShouldEqual, "Southern Delights")
				So(len(d.Menu), ShouldEqual, 2)
				So(d.Menu[0].ID, ShouldEqual, "f3")
				So(d.Menu[1].ID, ShouldEqual, "f7")
			})
		})

		Convey("When fetching unknown records", func() {
			_, foodErr := svc.Food(ctx, "nope")
			_, restErr := svc.Restaurant(ctx, "nope")
			_, userErr := svc.User(ctx, "nope")

			Convey("Then ErrNotFound is reported", func() {
				So(errors.Is(foodErr, repository.ErrNotFound), ShouldBeTrue)
				So(errors.Is(restErr, repository.ErrNotFound), ShouldBeTrue)
				So(errors.Is(userErr, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_Users(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithConfig(testConfig()))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		signup := model.User{StudentID: "S100", Name: "Asha", Hostel: "Hostel A", RoomNumber: "101"}

		Convey("When a student signs up", func() {
			u, err := svc.RegisterUser(ctx, signup)

			Convey("Then a user id is assigned and the record is readable", func() {
				So(err, ShouldBeNil)
				So(u.ID, ShouldNotBeEmpty)
				got, err := svc.User(ctx, u.ID)
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "Asha")
			})

			Convey("And the same student id signs up again", func() {
				_, err := svc.RegisterUser(ctx, signup)

				Convey("Then ErrDuplicate is reported", func() {
					So(errors.Is(err, repository.ErrDuplicate), ShouldBeTrue)
				})
			})
		})

		Convey("When a required field is missing", func() {
			missing := signup
			missing.RoomNumber = "  "
			_, err := svc.RegisterUser(ctx, missing)

			Convey("Then ErrInvalidUser is reported", func() {
				So(errors.Is(err, service.ErrInvalidUser), ShouldBeTrue)
			})
		})
	})
}

func TestService_PlaceOrderValidation(t *testing.T) {
	cases := []struct {
		name  string
		order model.Order
	}{
		{"missing user", model.Order{Items: []model.LineItem{{FoodID: "f1"}}}},
		{"no items", model.Order{UserID: "u1"}},
		{"blank item", model.Order{UserID: "u1", Items: []model.LineItem{{Quantity: 2}}}},
	}

	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithConfig(testConfig()))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		for _, tc := range cases {
			Convey("When the order has "+tc.name, func() {
				_, _, err := svc.PlaceOrder(ctx, tc.order)

				Convey("Then ErrInvalidOrder is reported", func() {
					So(errors.Is(err, service.ErrInvalidOrder), ShouldBeTrue)
				})
			})
		}
	})
}

func TestService_Results(t *testing.T) {
	Convey("Given a started service with no orders", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithConfig(testConfig()))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("Then a guest gets the first three foods", func() {
			res := svc.Recommendations(ctx, "")
			So(res.Source, ShouldEqual, types.SourceGuest)
			So(res.Recommendations, ShouldResemble, []model.Recommendation{
				{Name: "Veg Biryani", Reason: "Popular items for everyone"},
				{Name: "Chicken Biryani", Reason: "Popular items for everyone"},
				{Name: "Masala Dosa", Reason: "Popular items for everyone"},
			})
		})

		Convey("Then trending for an empty hostel is empty", func() {
			res := svc.Trending(ctx, "Hostel B")
			So(res.Source, ShouldEqual, types.SourceTrending)
			So(res.Len(), ShouldEqual, 0)
		})
	})
}
