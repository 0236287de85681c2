package scorer_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/okian/canteen/internal/adapters/gateway"
	"github.com/okian/canteen/internal/adapters/http/scorer"
	"github.com/okian/canteen/internal/domain/model"
	"github.com/okian/canteen/internal/domain/preference"
	"github.com/okian/canteen/internal/domain/scoring"
	"github.com/okian/canteen/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

type failingModel struct{ err error }

func (f failingModel) Recommend(context.Context, scoring.Request) ([]model.Recommendation, error) {
	return nil, f.err
}

var catalog = []model.Food{
	{ID: "f1", Name: "Veg Biryani", Cuisine: "North Indian", VegNonVeg: model.Veg, SpiceLevel: model.SpiceMedium},
	{ID: "f2", Name: "Chicken Biryani", Cuisine: "North Indian", VegNonVeg: model.NonVeg, SpiceLevel: model.SpiceHigh},
	{ID: "f3", Name: "Masala Dosa", Cuisine: "South Indian", VegNonVeg: model.Veg, SpiceLevel: model.SpiceLow},
}

func newMux(m scorer.Recommender) *http.ServeMux {
	mux := http.NewServeMux()
	scorer.NewHandler(m).Register(context.Background(), mux)
	return mux
}

func TestHandleRecommend(t *testing.T) {
	Convey("Given the reference scorer behind HTTP", t, func() {
		mux := newMux(scoring.NewLocal())

		Convey("When a scoring request is posted", func() {
			body, err := json.Marshal(scoring.Request{
				UserPreferences: preference.Profile{Cuisines: []string{"South Indian"}, SpiceLevel: model.SpiceLow, VegNonVeg: model.Veg},
				AvailableFoods:  catalog,
			})
			So(err, ShouldBeNil)
			req := httptest.NewRequest(http.MethodPost, scoring.RecommendPath, strings.NewReader(string(body)))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the body satisfies the gateway's decoder", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				recs, err := scoring.DecodeResponse(w.Body.Bytes())
				So(err, ShouldBeNil)
				So(recs, ShouldResemble, []model.Recommendation{
					{Name: "Masala Dosa", Reason: "Matches your love for South Indian & Perfect spice level"},
				})
			})
		})

		Convey("When the body is malformed", func() {
			req := httptest.NewRequest(http.MethodPost, scoring.RecommendPath, strings.NewReader(`{"user_preferences":`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the method is wrong", func() {
			req := httptest.NewRequest(http.MethodGet, scoring.RecommendPath, http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it is not allowed and POST is advertised", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(w.Header().Get("Allow"), ShouldEqual, http.MethodPost)
			})
		})

		Convey("When checking health", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it answers ok", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})
	})

	Convey("Given a model that fails", t, func() {
		mux := newMux(failingModel{err: errors.New("model exploded")})
		req := httptest.NewRequest(http.MethodPost, scoring.RecommendPath, strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		Convey("Then the handler answers 500", func() {
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestGatewayRoundTrip(t *testing.T) {
	Convey("Given the gateway pointed at the reference scorer", t, func() {
		srv := httptest.NewServer(newMux(scoring.NewLocal()))
		defer srv.Close()
		gw := gateway.New(srv.URL)

		Convey("When a cold start user is scored", func() {
			out := gw.Score(context.Background(), scoring.Request{
				UserPreferences: preference.Profile{SpiceLevel: "Extra Hot", VegNonVeg: model.Both},
				AvailableFoods:  catalog,
			})

			Convey("Then the popular choices come back as a success", func() {
				recs, ok := out.Recommendations()
				So(ok, ShouldBeTrue)
				So(len(recs), ShouldEqual, 3)
				So(recs[0], ShouldResemble, model.Recommendation{Name: "Veg Biryani", Reason: "Popular choice"})
			})
		})
	})
}
