package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"faretrack-service/internal/domain/entity"
	"faretrack-service/internal/domain/repository"
	"faretrack-service/internal/usecase"
	"faretrack-service/pkg/logger"
	"faretrack-service/pkg/metrics"

	. "github.com/smartystreets/goconvey/convey"
)

var handlerMetrics = metrics.NewMetrics("faretrack_httpapi_test")

type fakeFlightRepo struct {
	flights map[uint]*entity.Flight
}

func (r *fakeFlightRepo) Create(_ context.Context, flight *entity.Flight) error {
	r.flights[flight.ID] = flight
	return nil
}

func (r *fakeFlightRepo) GetByID(_ context.Context, id uint) (*entity.Flight, error) {
	flight, ok := r.flights[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return flight, nil
}

type fakeHistoryRepo struct {
	observations []*entity.PriceObservation
}

func (r *fakeHistoryRepo) Append(_ context.Context, obs *entity.PriceObservation) error {
	r.observations = append(r.observations, obs)
	return nil
}

func (r *fakeHistoryRepo) ListByFlight(_ context.Context, flightID uint, _ time.Time) ([]*entity.PriceObservation, error) {
	return r.byFlight(flightID), nil
}

func (r *fakeHistoryRepo) ListByFlightAsc(_ context.Context, flightID uint) ([]*entity.PriceObservation, error) {
	return r.byFlight(flightID), nil
}

func (r *fakeHistoryRepo) byFlight(flightID uint) []*entity.PriceObservation {
	var result []*entity.PriceObservation
	for _, obs := range r.observations {
		if obs.FlightID != nil && *obs.FlightID == flightID {
			result = append(result, obs)
		}
	}
	return result
}

func newTestMux() (*http.ServeMux, *fakeFlightRepo, *fakeHistoryRepo) {
	flightRepo := &fakeFlightRepo{flights: map[uint]*entity.Flight{}}
	historyRepo := &fakeHistoryRepo{}
	log := logger.NewNop()

	aggregator := usecase.NewSearchAggregator(nil, flightRepo, historyRepo, nil, nil, nil, nil, time.Second, handlerMetrics, log)
	predictor := usecase.NewPricePredictor(flightRepo, historyRepo, handlerMetrics, log)
	analyzer := usecase.NewPatternAnalyzer(flightRepo, historyRepo, log)

	mux := http.NewServeMux()
	NewHandler(aggregator, predictor, analyzer, log).Register(mux)
	return mux, flightRepo, historyRepo
}

func TestHandlerRoutes(t *testing.T) {
	Convey("Given the mounted routes", t, func() {
		mux, flightRepo, historyRepo := newTestMux()
		flightID := uint(7)
		flightRepo.flights[flightID] = &entity.Flight{
			ID:           flightID,
			FlightNumber: "BA100",
			TotalPrice:   450,
			BasePrice:    360,
			Currency:     "USD",
		}

		Convey("When fetching a known flight", func() {
			recorder := httptest.NewRecorder()
			mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/flights/7", nil))

			Convey("Then it returns the flight JSON", func() {
				So(recorder.Code, ShouldEqual, http.StatusOK)
				var body map[string]interface{}
				So(json.Unmarshal(recorder.Body.Bytes(), &body), ShouldBeNil)
				So(body["flight_number"], ShouldEqual, "BA100")
				So(body["total_price"], ShouldEqual, 450.0)
			})
		})

		Convey("When fetching an unknown flight", func() {
			recorder := httptest.NewRecorder()
			mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/flights/999", nil))

			Convey("Then it returns 404", func() {
				So(recorder.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the flight id is not numeric", func() {
			recorder := httptest.NewRecorder()
			mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/flights/abc", nil))

			Convey("Then it returns 400", func() {
				So(recorder.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When searching with a malformed body", func() {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodPost, "/flights/search", strings.NewReader("{not json"))
			mux.ServeHTTP(recorder, request)

			Convey("Then it returns 400", func() {
				So(recorder.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When searching with a bad departure date", func() {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodPost, "/flights/search", strings.NewReader(`{"origin_code":"JFK","destination_code":"LHR","departure_date":"next week","passengers":1}`))
			mux.ServeHTTP(recorder, request)

			Convey("Then it returns 400", func() {
				So(recorder.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When predicting for a flight with no history", func() {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodPost, "/flights/7/predict-price", strings.NewReader(`{"prediction_days":5}`))
			mux.ServeHTTP(recorder, request)

			Convey("Then the synthetic forecast comes back", func() {
				So(recorder.Code, ShouldEqual, http.StatusOK)
				var body predictionResponse
				So(json.Unmarshal(recorder.Body.Bytes(), &body), ShouldBeNil)
				So(body.FlightID, ShouldEqual, flightID)
				So(body.PredictedPrices, ShouldHaveLength, 5)
				So(body.Recommendation, ShouldEqual, "buy_now")
				So(body.ConfidenceScore, ShouldEqual, 0.6)
			})
		})

		Convey("When analyzing a flight with a single observation", func() {
			historyRepo.Append(context.Background(), &entity.PriceObservation{
				SearchID: 1, FlightID: &flightID, Price: 450, Currency: "USD", Region: "US", RecordedAt: time.Now(),
			})
			recorder := httptest.NewRecorder()
			mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/flights/7/price-analysis", nil))

			Convey("Then it returns 422", func() {
				So(recorder.Code, ShouldEqual, http.StatusUnprocessableEntity)
			})
		})

		Convey("When requesting history with a bad days parameter", func() {
			recorder := httptest.NewRecorder()
			mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/flights/7/price-history?days=soon", nil))

			Convey("Then it returns 400", func() {
				So(recorder.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}
