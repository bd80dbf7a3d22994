package usecase

import (
	"context"
	"errors"

	"faretrack-service/internal/domain/entity"
	"faretrack-service/internal/domain/repository"
	"faretrack-service/pkg/logger"
	"faretrack-service/pkg/utils"

	"github.com/montanaflynn/stats"
)

// minAnalysisObservations is the smallest history that supports any
// statistic; below it the analyzer reports insufficient history.
const minAnalysisObservations = 2

// PatternAnalyzer computes read-only statistics over a flight's price
// history. It has no persistence side effects and no state between
// calls.
type PatternAnalyzer struct {
	flightRepo  repository.FlightRepository
	historyRepo repository.PriceObservationRepository
	logger      logger.Logger
}

// NewPatternAnalyzer creates a new pattern analyzer
func NewPatternAnalyzer(
	flightRepo repository.FlightRepository,
	historyRepo repository.PriceObservationRepository,
	logger logger.Logger,
) *PatternAnalyzer {
	return &PatternAnalyzer{
		flightRepo:  flightRepo,
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// Analyze summarizes a flight's historical prices. A history shorter
// than two observations yields ErrInsufficientHistory, never a
// half-computed statistic.
func (a *PatternAnalyzer) Analyze(ctx context.Context, flightID uint) (*entity.PriceStats, error) {
	if _, err := a.flightRepo.GetByID(ctx, flightID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFlightNotFound
		}
		return nil, err
	}

	history, err := a.historyRepo.ListByFlightAsc(ctx, flightID)
	if err != nil {
		return nil, err
	}
	if len(history) < minAnalysisObservations {
		return nil, ErrInsufficientHistory
	}

	prices := make([]float64, len(history))
	for i, obs := range history {
		prices[i] = obs.Price
	}

	minPrice, _ := stats.Min(prices)
	maxPrice, _ := stats.Max(prices)
	avgPrice, _ := stats.Mean(prices)
	volatility, _ := stats.StandardDeviationPopulation(prices)

	changeSum := 0.0
	for i := 1; i < len(prices); i++ {
		changeSum += prices[i] - prices[i-1]
	}
	avgChange := changeSum / float64(len(prices)-1)

	// First occurrence wins for both extremes
	bestIdx, worstIdx := 0, 0
	for i, price := range prices {
		if price < prices[bestIdx] {
			bestIdx = i
		}
		if price > prices[worstIdx] {
			worstIdx = i
		}
	}

	return &entity.PriceStats{
		MinPrice:       minPrice,
		MaxPrice:       maxPrice,
		AvgPrice:       utils.Round2(avgPrice),
		CurrentPrice:   prices[len(prices)-1],
		PriceRange:     utils.Round2(maxPrice - minPrice),
		AvgDailyChange: utils.Round2(avgChange),
		BestBuyDate:    history[bestIdx].RecordedAt,
		WorstBuyDate:   history[worstIdx].RecordedAt,
		DataPoints:     len(prices),
		Volatility:     utils.Round2(volatility),
	}, nil
}
