package types_test

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/okian/canteen/internal/domain/model"
	types "github.com/okian/canteen/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResult(t *testing.T) {
	Convey("Given a Result", t, func() {
		Convey("When built from a nil list", func() {
			r := types.NewResult(types.SourceGuest, nil)

			Convey("Then it encodes recommendations as an empty array", func() {
				raw, err := json.Marshal(r)
				So(err, ShouldBeNil)
				So(string(raw), ShouldEqual, `{"recommendations":[],"source":"guest"}`)
				So(r.Len(), ShouldEqual, 0)
			})
		})

		Convey("When built from entries", func() {
			r := types.NewResult(types.SourceScored, []model.Recommendation{
				{Name: "Masala Dosa", Reason: "Perfect spice level"},
			})

			Convey("Then the entries are kept in order", func() {
				So(r.Len(), ShouldEqual, 1)
				So(r.Recommendations[0].Name, ShouldEqual, "Masala Dosa")
				So(r.Source, ShouldEqual, types.SourceScored)
			})
		})
	})
}

func TestDetailShapes(t *testing.T) {
	Convey("Given a restaurant with an empty menu", t, func() {
		d := types.RestaurantDetail{Restaurant: model.Restaurant{ID: "r1", Name: "Spice Hub"}}

		Convey("Then the restaurant fields are flattened next to the menu", func() {
			raw, err := json.Marshal(d)
			So(err, ShouldBeNil)

			var got map[string]any
			So(json.Unmarshal(raw, &got), ShouldBeNil)
			So(got["id"], ShouldEqual, "r1")
			So(got["name"], ShouldEqual, "Spice Hub")
			So(got, ShouldContainKey, "menu")
		})
	})

	Convey("Given a food without a known restaurant", t, func() {
		d := types.FoodDetail{Food: model.Food{ID: "f1", Name: "Biryani"}}

		Convey("Then the restaurant key is omitted", func() {
			raw, err := json.Marshal(d)
			So(err, ShouldBeNil)
			So(string(raw), ShouldNotContainSubstring, `"restaurant"`)
			So(string(raw), ShouldContainSubstring, `"id":"f1"`)
		})
	})
}
