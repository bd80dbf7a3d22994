package usecase

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"faretrack-service/internal/domain/entity"
	"faretrack-service/internal/domain/repository"
	"faretrack-service/pkg/logger"
	"faretrack-service/pkg/metrics"
	"faretrack-service/pkg/utils"

	"github.com/montanaflynn/stats"
)

const (
	// minModelObservations is the threshold below which a statistical
	// fit is meaningless and the synthetic fallback runs instead
	minModelObservations = 3

	defaultHorizonDays = 30
	maxHorizonDays     = 90

	// predictionNoiseShare is the relative sigma of the gaussian jitter
	// added to every model prediction. Inherited constant, provenance
	// unclear; kept rather than re-derived.
	predictionNoiseShare = 0.05

	// priceFloorShare keeps forecasts from implying implausible
	// near-zero fares
	priceFloorShare = 0.5

	recommendationWindow = 7
)

// PricePredictor forecasts a flight's price over a horizon and turns
// the forecast into a buy/wait recommendation
type PricePredictor struct {
	flightRepo  repository.FlightRepository
	historyRepo repository.PriceObservationRepository
	metrics     *metrics.Metrics
	logger      logger.Logger
	now         func() time.Time
}

// NewPricePredictor creates a new price predictor
func NewPricePredictor(
	flightRepo repository.FlightRepository,
	historyRepo repository.PriceObservationRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *PricePredictor {
	return &PricePredictor{
		flightRepo:  flightRepo,
		historyRepo: historyRepo,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// Predict produces horizonDays of predicted prices plus a
// recommendation for one flight. Forecasting problems are never hard
// failures: any model error falls back to the synthetic forecast. Only
// an unknown flight id is an error.
func (p *PricePredictor) Predict(ctx context.Context, flightID uint, horizonDays int) (*entity.PricePrediction, error) {
	if horizonDays < 1 {
		horizonDays = defaultHorizonDays
	}
	if horizonDays > maxHorizonDays {
		horizonDays = maxHorizonDays
	}

	flight, err := p.flightRepo.GetByID(ctx, flightID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFlightNotFound
		}
		return nil, err
	}

	history, err := p.historyRepo.ListByFlightAsc(ctx, flightID)
	if err != nil {
		p.logger.Warn("Failed to load price history, using synthetic forecast", "flightId", flightID, "error", err)
		history = nil
	}

	var prediction *entity.PricePrediction
	if len(history) < minModelObservations {
		prediction = p.syntheticForecast(flight, horizonDays)
	} else {
		prediction, err = p.modelForecast(flight, history, horizonDays)
		if err != nil {
			p.logger.Warn("Model forecast failed, using synthetic forecast", "flightId", flightID, "error", err)
			prediction = p.syntheticForecast(flight, horizonDays)
		}
	}

	p.metrics.PredictionsTotal.Inc()
	return prediction, nil
}

// modelForecast fits a degree-2 polynomial regression of price on
// (sequence index, hour, day of week, weekend flag) and extrapolates
// it over the horizon, with per-day jitter and a hard price floor.
func (p *PricePredictor) modelForecast(flight *entity.Flight, history []*entity.PriceObservation, horizonDays int) (*entity.PricePrediction, error) {
	features := make([][]float64, len(history))
	targets := make([]float64, len(history))
	for i, obs := range history {
		features[i] = observationFeatures(i, obs.RecordedAt)
		targets[i] = obs.Price
	}

	model, err := fitPolynomialModel(features, targets)
	if err != nil {
		return nil, err
	}

	start := p.now().UTC()
	floor := flight.BasePrice * priceFloorShare
	points := make([]entity.PredictionPoint, 0, horizonDays)

	for i := 0; i < horizonDays; i++ {
		future := start.AddDate(0, 0, i)
		predicted := model.predict(observationFeatures(len(history)+i, future))

		noise := rand.NormFloat64() * predicted * predictionNoiseShare
		price := predicted + noise
		if price < floor {
			price = floor
		}

		confidence := clamp(1.0-0.02*float64(i), 0.3, 0.95)

		points = append(points, entity.PredictionPoint{
			Date:       future,
			Price:      utils.Round2(price),
			Confidence: utils.Round2(confidence),
		})
	}

	recommendation, confidence := recommend(flight.TotalPrice, windowPrices(points))

	return &entity.PricePrediction{
		FlightID:       flight.ID,
		CurrentPrice:   flight.TotalPrice,
		Points:         points,
		Recommendation: recommendation,
		Confidence:     confidence,
	}, nil
}

// syntheticForecast is the explicit fallback for thin histories: a
// day-of-week shaped variation around the current price. The verdict
// is always buy_now at 0.6, matching the fallback's fixed confidence.
func (p *PricePredictor) syntheticForecast(flight *entity.Flight, horizonDays int) *entity.PricePrediction {
	start := p.now().UTC()
	base := flight.TotalPrice
	points := make([]entity.PredictionPoint, 0, horizonDays)

	for i := 0; i < horizonDays; i++ {
		future := start.AddDate(0, 0, i)

		dayFactor := 1.0
		switch future.Weekday() {
		case time.Saturday, time.Sunday:
			dayFactor = 1.1
		case time.Monday, time.Friday:
			dayFactor = 1.05
		}

		randomFactor := 0.9 + rand.Float64()*0.2
		price := base * dayFactor * randomFactor

		points = append(points, entity.PredictionPoint{
			Date:       future,
			Price:      utils.Round2(price),
			Confidence: utils.Round2(0.6 - 0.01*float64(i)),
		})
	}

	return &entity.PricePrediction{
		FlightID:       flight.ID,
		CurrentPrice:   flight.TotalPrice,
		Points:         points,
		Recommendation: entity.RecommendationBuyNow,
		Confidence:     0.6,
	}
}

// observationFeatures builds the regression features for one sample:
// sequence index, hour of day, Monday-based day of week, weekend flag
func observationFeatures(index int, ts time.Time) []float64 {
	dow := mondayIndex(ts.Weekday())
	weekend := 0.0
	if dow >= 5 {
		weekend = 1.0
	}
	return []float64{float64(index), float64(ts.Hour()), float64(dow), weekend}
}

// mondayIndex converts Go's Sunday-based weekday to a Monday-based
// index so the weekend flag stays dow >= 5
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// recommend applies the buy/wait rule to the first week of predicted
// prices: an expected 10% drop means wait, an expected 10% rise means
// buy now, anything in between is a buy now at penalized confidence.
func recommend(currentPrice float64, window []float64) (entity.Recommendation, float64) {
	if len(window) == 0 || currentPrice <= 0 {
		return entity.RecommendationBuyNow, 0.5
	}

	minFuture, _ := stats.Min(window)
	avgFuture, _ := stats.Mean(window)
	variance, _ := stats.PopulationVariance(window)

	confidence := clamp(1.0-variance/(currentPrice*currentPrice), 0.3, 0.9)

	switch {
	case minFuture < currentPrice*0.9:
		return entity.RecommendationWait, confidence
	case avgFuture > currentPrice*1.1:
		return entity.RecommendationBuyNow, confidence
	default:
		return entity.RecommendationBuyNow, confidence * 0.8
	}
}

// windowPrices extracts the first recommendation window of prices
func windowPrices(points []entity.PredictionPoint) []float64 {
	limit := recommendationWindow
	if len(points) < limit {
		limit = len(points)
	}
	prices := make([]float64, 0, limit)
	for _, point := range points[:limit] {
		prices = append(prices, point.Price)
	}
	return prices
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
