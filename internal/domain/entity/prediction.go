package entity

import "time"

// Recommendation is the forecaster's verdict for the current price
type Recommendation string

const (
	RecommendationBuyNow Recommendation = "buy_now"
	RecommendationWait   Recommendation = "wait"
)

// PredictionPoint is one forecast day. Confidence is the forecaster's
// self-reported certainty in [0,1], not a calibrated probability.
type PredictionPoint struct {
	Date       time.Time
	Price      float64
	Confidence float64
}

// PricePrediction is the full forecast for one flight, regenerated on
// every call
type PricePrediction struct {
	FlightID       uint
	CurrentPrice   float64
	Points         []PredictionPoint
	Recommendation Recommendation
	Confidence     float64
}

// PriceStats summarizes a flight's historical price behaviour
type PriceStats struct {
	MinPrice       float64
	MaxPrice       float64
	AvgPrice       float64
	CurrentPrice   float64
	PriceRange     float64
	AvgDailyChange float64
	BestBuyDate    time.Time
	WorstBuyDate   time.Time
	DataPoints     int
	Volatility     float64
}
