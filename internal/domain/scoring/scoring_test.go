package scoring_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/canteen/internal/domain/model"
	"github.com/okian/canteen/internal/domain/preference"
	scoring "github.com/okian/canteen/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func menu() []model.Food {
	return []model.Food{
		{ID: "f1", Name: "Veg Biryani", Cuisine: "North Indian", VegNonVeg: model.Veg, SpiceLevel: model.SpiceMedium},
		{ID: "f2", Name: "Chicken Biryani", Cuisine: "North Indian", VegNonVeg: model.NonVeg, SpiceLevel: model.SpiceHigh},
		{ID: "f3", Name: "Masala Dosa", Cuisine: "South Indian", VegNonVeg: model.Veg, SpiceLevel: model.SpiceLow},
		{ID: "f4", Name: "Idli Sambar", Cuisine: "South Indian", VegNonVeg: model.Veg, SpiceLevel: model.SpiceLow},
		{ID: "f5", Name: "Chicken Fried Rice", Cuisine: "Chinese", VegNonVeg: model.NonVeg, SpiceLevel: model.SpiceMedium},
		{ID: "f6", Name: "Veg Noodles", Cuisine: "Chinese", VegNonVeg: model.Veg, SpiceLevel: model.SpiceMedium},
	}
}

func TestOutcome(t *testing.T) {
	Convey("Given gateway outcomes", t, func() {
		Convey("When the call succeeded with an empty list", func() {
			o := scoring.Success(nil)

			Convey("Then it is a success carrying an empty list", func() {
				recs, ok := o.Recommendations()
				So(ok, ShouldBeTrue)
				So(o.OK(), ShouldBeTrue)
				So(recs, ShouldNotBeNil)
				So(recs, ShouldBeEmpty)
				So(o.Reason(), ShouldBeNil)
			})
		})

		Convey("When the call failed", func() {
			o := scoring.Failure(fmt.Errorf("dial: %w", scoring.ErrTimeout))

			Convey("Then the reason is kept and no list is exposed", func() {
				recs, ok := o.Recommendations()
				So(ok, ShouldBeFalse)
				So(recs, ShouldBeNil)
				So(errors.Is(o.Reason(), scoring.ErrTimeout), ShouldBeTrue)
				So(scoring.Kind(o.Reason()), ShouldEqual, "timeout")
			})
		})

		Convey("When a failure carries no reason", func() {
			o := scoring.Failure(nil)

			Convey("Then it is still a failure", func() {
				So(o.OK(), ShouldBeFalse)
				So(errors.Is(o.Reason(), scoring.ErrUnavailable), ShouldBeTrue)
			})
		})
	})
}

func TestDecodeResponse(t *testing.T) {
	Convey("Given scoring service bodies", t, func() {
		Convey("When the body is well formed", func() {
			recs, err := scoring.DecodeResponse([]byte(`{"recommendations":[{"name":"Masala Dosa","reason":"Because you like South Indian"}]}`))

			Convey("Then the list is returned verbatim", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldResemble, []model.Recommendation{{Name: "Masala Dosa", Reason: "Because you like South Indian"}})
			})
		})

		Convey("When the list is empty", func() {
			recs, err := scoring.DecodeResponse([]byte(`{"recommendations":[]}`))

			Convey("Then it is a valid empty success", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldNotBeNil)
				So(recs, ShouldBeEmpty)
			})
		})

		Convey("When the body is malformed", func() {
			bodies := []string{
				``,
				`not json`,
				`[]`,
				`{}`,
				`{"recommendations":null}`,
				`{"recommendations":"Dosa"}`,
				`{"recommendations":["Dosa"]}`,
				`{"recommendations":[{"name":1}]}`,
			}

			Convey("Then every one is rejected as malformed", func() {
				for _, b := range bodies {
					_, err := scoring.DecodeResponse([]byte(b))
					So(err, ShouldNotBeNil)
					So(errors.Is(err, scoring.ErrMalformed), ShouldBeTrue)
				}
			})
		})
	})
}

func TestRecentOrders(t *testing.T) {
	Convey("Given a user's order history", t, func() {
		base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		var orders []model.Order
		for i := 6; i >= 0; i-- {
			orders = append(orders, model.Order{ID: fmt.Sprintf("o%d", i), Timestamp: base.Add(time.Duration(i) * time.Minute)})
		}

		Convey("When trimming to the default window", func() {
			recent := scoring.RecentOrders(orders, 0)

			Convey("Then the five most recent are kept oldest first", func() {
				So(len(recent), ShouldEqual, scoring.DefaultRecentWindow)
				ids := make([]string, len(recent))
				for i, o := range recent {
					ids[i] = o.ID
				}
				So(ids, ShouldResemble, []string{"o2", "o3", "o4", "o5", "o6"})
			})

			Convey("And the input is left untouched", func() {
				So(orders[0].ID, ShouldEqual, "o6")
			})
		})

		Convey("When there are fewer orders than the window", func() {
			recent := scoring.RecentOrders(orders[:2], 5)

			Convey("Then all of them are kept", func() {
				So(len(recent), ShouldEqual, 2)
				So(recent[0].ID, ShouldEqual, "o5")
			})
		})
	})
}

func TestLocal_Recommend(t *testing.T) {
	Convey("Given the reference scorer", t, func() {
		s := scoring.NewLocal()
		ctx := context.Background()

		Convey("When a user likes South Indian at low spice", func() {
			recs, err := s.Recommend(ctx, scoring.Request{
				UserPreferences: preference.Profile{Cuisines: []string{"South Indian"}, SpiceLevel: model.SpiceLow, VegNonVeg: model.Both},
				AvailableFoods:  menu(),
			})

			Convey("Then matching foods lead with combined reasons", func() {
				So(err, ShouldBeNil)
				So(recs[0], ShouldResemble, model.Recommendation{
					Name:   "Masala Dosa",
					Reason: "Matches your love for South Indian & Perfect spice level",
				})
				So(recs[1].Name, ShouldEqual, "Idli Sambar")
				So(len(recs), ShouldEqual, 2)
			})
		})

		Convey("When the user recently ordered a food", func() {
			recs, err := s.Recommend(ctx, scoring.Request{
				UserPreferences: preference.Profile{SpiceLevel: model.SpiceHigh, VegNonVeg: model.Both},
				RecentOrders:    []model.Order{{Items: []model.LineItem{{FoodID: "f5"}}}},
				AvailableFoods:  menu(),
			})

			Convey("Then the spice match outranks the recent order", func() {
				So(err, ShouldBeNil)
				So(recs[0].Name, ShouldEqual, "Chicken Biryani")
				So(recs[1], ShouldResemble, model.Recommendation{Name: "Chicken Fried Rice", Reason: "You ordered this recently"})
			})
		})

		Convey("When the user is strictly vegetarian", func() {
			recs, err := s.Recommend(ctx, scoring.Request{
				UserPreferences: preference.Profile{Cuisines: []string{"North Indian", "Chinese"}, SpiceLevel: model.SpiceMedium, VegNonVeg: model.Veg},
				AvailableFoods:  menu(),
			})

			Convey("Then no non-veg food is suggested", func() {
				So(err, ShouldBeNil)
				for _, r := range recs {
					So(r.Name, ShouldNotContainSubstring, "Chicken")
				}
				So(recs[0].Name, ShouldEqual, "Veg Biryani")
			})
		})

		Convey("When a vegetarian faces a meat-only menu", func() {
			recs, err := s.Recommend(ctx, scoring.Request{
				UserPreferences: preference.Profile{VegNonVeg: model.Veg},
				AvailableFoods:  []model.Food{menu()[1], menu()[4]},
			})

			Convey("Then the diet notice is returned", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldResemble, []model.Recommendation{{Name: "No items match your strict diet", Reason: "Try changing filters"}})
			})
		})

		Convey("When nothing matches at all", func() {
			recs, err := s.Recommend(ctx, scoring.Request{
				UserPreferences: preference.Profile{Cuisines: []string{"Italian"}, SpiceLevel: "Extreme", VegNonVeg: model.Both},
				AvailableFoods:  menu(),
			})

			Convey("Then the first three are popular choices", func() {
				So(err, ShouldBeNil)
				So(len(recs), ShouldEqual, 3)
				So(recs[0], ShouldResemble, model.Recommendation{Name: "Veg Biryani", Reason: "Popular choice"})
			})
		})

		Convey("When the catalog is empty", func() {
			o := s.Score(ctx, scoring.Request{})

			Convey("Then it succeeds with an empty list", func() {
				recs, ok := o.Recommendations()
				So(ok, ShouldBeTrue)
				So(recs, ShouldBeEmpty)
			})
		})

		Convey("When many foods match", func() {
			recs, err := s.Recommend(ctx, scoring.Request{
				UserPreferences: preference.Profile{Cuisines: []string{"North Indian", "South Indian", "Chinese"}, SpiceLevel: model.SpiceMedium},
				AvailableFoods:  menu(),
			})

			Convey("Then at most five are returned", func() {
				So(err, ShouldBeNil)
				So(len(recs), ShouldEqual, 5)
			})
		})
	})
}

func TestLocal_Latency(t *testing.T) {
	Convey("Given a scorer with simulated latency", t, func() {
		s := scoring.NewLocal(scoring.WithLatencyRange(200*time.Millisecond, 300*time.Millisecond), scoring.WithSeed(7))

		Convey("When the caller's deadline is shorter", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()
			o := s.Score(ctx, scoring.Request{AvailableFoods: menu()})

			Convey("Then the outcome is a failure", func() {
				So(o.OK(), ShouldBeFalse)
				So(errors.Is(o.Reason(), context.DeadlineExceeded), ShouldBeTrue)
			})
		})
	})
}
