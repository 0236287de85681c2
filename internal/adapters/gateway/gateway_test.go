package gateway_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/okian/canteen/internal/adapters/gateway"
	"github.com/okian/canteen/internal/domain/model"
	"github.com/okian/canteen/internal/domain/preference"
	"github.com/okian/canteen/internal/domain/scoring"
	"github.com/okian/canteen/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init(logger.WithWriter(io.Discard))
}

func request() scoring.Request {
	return scoring.Request{
		UserPreferences: preference.Profile{Cuisines: []string{"South Indian"}, SpiceLevel: model.SpiceLow, VegNonVeg: model.Veg, FavouriteFoods: []string{}},
		RecentOrders:    []model.Order{{ID: "o1", UserID: "u1", Items: []model.LineItem{{FoodID: "f3", Quantity: 1}}}},
		AvailableFoods:  []model.Food{{ID: "f3", Name: "Masala Dosa", Cuisine: "South Indian", VegNonVeg: model.Veg, SpiceLevel: model.SpiceLow}},
	}
}

// service answers every call with handler and counts the hits.
func service(handler http.HandlerFunc) (*httptest.Server, *int32) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	return srv, &hits
}

func TestGateway_Success(t *testing.T) {
	Convey("Given a healthy scoring service", t, func() {
		var (
			got          map[string]json.RawMessage
			method, path string
		)
		srv, hits := service(func(w http.ResponseWriter, r *http.Request) {
			method, path = r.Method, r.URL.Path
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &got)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"recommendations":[{"name":"Masala Dosa","reason":"Matches your love for South Indian"}]}`))
		})
		defer srv.Close()
		gw := gateway.New(srv.URL + "/")

		Convey("When scoring a request", func() {
			o := gw.Score(context.Background(), request())

			Convey("Then the list comes back unchanged", func() {
				recs, ok := o.Recommendations()
				So(ok, ShouldBeTrue)
				So(recs, ShouldResemble, []model.Recommendation{{Name: "Masala Dosa", Reason: "Matches your love for South Indian"}})
				So(atomic.LoadInt32(hits), ShouldEqual, 1)
				So(method, ShouldEqual, http.MethodPost)
				So(path, ShouldEqual, scoring.RecommendPath)
			})

			Convey("And the body uses the service's field names", func() {
				So(got, ShouldContainKey, "user_preferences")
				So(got, ShouldContainKey, "recent_orders")
				So(got, ShouldContainKey, "available_foods")
				So(string(got["user_preferences"]), ShouldContainSubstring, `"spiceLevel":"Low"`)
			})
		})
	})
}

func TestGateway_HTTPClient(t *testing.T) {
	Convey("Given a caller supplied HTTP client", t, func() {
		srv, hits := service(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"recommendations":[]}`))
		})
		defer srv.Close()
		shared := &http.Client{Timeout: time.Minute}

		Convey("When a gateway is built on it", func() {
			gw := gateway.New(srv.URL, gateway.WithHTTPClient(shared), gateway.WithTimeout(time.Second))
			out := gw.Score(context.Background(), request())

			Convey("Then calls go through and the caller's client keeps its timeout", func() {
				So(out.OK(), ShouldBeTrue)
				So(atomic.LoadInt32(hits), ShouldEqual, 1)
				So(shared.Timeout, ShouldEqual, time.Minute)
			})
		})
	})
}

func TestGateway_Failures(t *testing.T) {
	Convey("Given a misbehaving scoring service", t, func() {
		ctx := context.Background()

		Convey("When it answers 500", func() {
			srv, _ := service(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
			})
			defer srv.Close()
			o := gateway.New(srv.URL).Score(ctx, request())

			Convey("Then the outcome is a bad status failure", func() {
				So(o.OK(), ShouldBeFalse)
				So(errors.Is(o.Reason(), scoring.ErrBadStatus), ShouldBeTrue)
			})
		})

		Convey("When the body is malformed", func() {
			srv, _ := service(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"recs":[]}`))
			})
			defer srv.Close()
			o := gateway.New(srv.URL).Score(ctx, request())

			Convey("Then the outcome is a malformed failure", func() {
				So(errors.Is(o.Reason(), scoring.ErrMalformed), ShouldBeTrue)
			})
		})

		Convey("When it is slower than the timeout", func() {
			srv, _ := service(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
				_, _ = w.Write([]byte(`{"recommendations":[]}`))
			})
			defer srv.Close()
			start := time.Now()
			o := gateway.New(srv.URL, gateway.WithTimeout(50*time.Millisecond)).Score(ctx, request())

			Convey("Then the call gives up within the budget", func() {
				So(errors.Is(o.Reason(), scoring.ErrTimeout), ShouldBeTrue)
				So(time.Since(start), ShouldBeLessThan, time.Second)
			})
		})

		Convey("When nothing is listening", func() {
			srv, _ := service(func(http.ResponseWriter, *http.Request) {})
			url := srv.URL
			srv.Close()
			o := gateway.New(url).Score(ctx, request())

			Convey("Then the outcome is a failure", func() {
				So(o.OK(), ShouldBeFalse)
				So(errors.Is(o.Reason(), scoring.ErrUnavailable), ShouldBeTrue)
			})
		})
	})
}

func TestGateway_RateLimit(t *testing.T) {
	Convey("Given a gateway allowing one call per minute", t, func() {
		srv, hits := service(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"recommendations":[]}`))
		})
		defer srv.Close()
		gw := gateway.New(srv.URL, gateway.WithRateLimit(1.0/60, 1))

		Convey("When called twice", func() {
			first := gw.Score(context.Background(), request())
			second := gw.Score(context.Background(), request())

			Convey("Then the second is shed without reaching the service", func() {
				So(first.OK(), ShouldBeTrue)
				So(errors.Is(second.Reason(), scoring.ErrRateLimited), ShouldBeTrue)
				So(atomic.LoadInt32(hits), ShouldEqual, 1)
			})
		})
	})
}

func TestGateway_Breaker(t *testing.T) {
	Convey("Given a failing service behind a sensitive breaker", t, func() {
		srv, hits := service(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		defer srv.Close()
		gw := gateway.New(srv.URL, gateway.WithBreaker(2, 0.5, time.Minute))
		ctx := context.Background()

		Convey("When enough calls fail", func() {
			gw.Score(ctx, request())
			gw.Score(ctx, request())
			o := gw.Score(ctx, request())

			Convey("Then the breaker opens and calls stop reaching the service", func() {
				So(gw.State(), ShouldEqual, gobreaker.StateOpen)
				So(errors.Is(o.Reason(), scoring.ErrCircuitOpen), ShouldBeTrue)
				So(scoring.Kind(o.Reason()), ShouldEqual, "circuit_open")
				So(atomic.LoadInt32(hits), ShouldEqual, 2)
			})
		})
	})
}
