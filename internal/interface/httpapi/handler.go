package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"faretrack-service/internal/domain/entity"
	"faretrack-service/internal/usecase"
	"faretrack-service/pkg/logger"
	"faretrack-service/pkg/utils"
)

// Handler exposes the pipeline's four operations as thin JSON
// endpoints. Everything else (auth, users, bookings) lives in other
// services.
type Handler struct {
	aggregator *usecase.SearchAggregator
	predictor  *usecase.PricePredictor
	analyzer   *usecase.PatternAnalyzer
	logger     logger.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	aggregator *usecase.SearchAggregator,
	predictor *usecase.PricePredictor,
	analyzer *usecase.PatternAnalyzer,
	logger logger.Logger,
) *Handler {
	return &Handler{
		aggregator: aggregator,
		predictor:  predictor,
		analyzer:   analyzer,
		logger:     logger,
	}
}

// Register mounts the flight routes on the mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /flights/search", h.searchFlights)
	mux.HandleFunc("GET /flights/{id}", h.getFlight)
	mux.HandleFunc("GET /flights/{id}/price-history", h.getPriceHistory)
	mux.HandleFunc("POST /flights/{id}/predict-price", h.predictPrice)
	mux.HandleFunc("GET /flights/{id}/price-analysis", h.analyzePatterns)
}

type searchRequest struct {
	OriginCode        string   `json:"origin_code"`
	DestinationCode   string   `json:"destination_code"`
	DepartureDate     string   `json:"departure_date"`
	ReturnDate        string   `json:"return_date,omitempty"`
	Passengers        int      `json:"passengers"`
	FlightType        string   `json:"flight_type,omitempty"`
	PreferredAirlines []string `json:"preferred_airlines,omitempty"`
	MaxStops          int      `json:"max_stops"`
	MaxPrice          *float64 `json:"max_price,omitempty"`
	PreferredCurrency string   `json:"preferred_currency,omitempty"`
}

type flightResponse struct {
	ID              uint    `json:"id"`
	FlightNumber    string  `json:"flight_number"`
	AirlineCode     string  `json:"airline_code"`
	AirlineName     string  `json:"airline_name"`
	OriginCode      string  `json:"origin_code"`
	OriginName      string  `json:"origin_name"`
	DestinationCode string  `json:"destination_code"`
	DestinationName string  `json:"destination_name"`
	DepartureTime   string  `json:"departure_time"`
	ArrivalTime     string  `json:"arrival_time"`
	DurationMinutes int     `json:"duration_minutes"`
	BasePrice       float64 `json:"base_price"`
	Currency        string  `json:"currency"`
	Taxes           float64 `json:"taxes"`
	Fees            float64 `json:"fees"`
	TotalPrice      float64 `json:"total_price"`
	Stops           int     `json:"stops"`
	IsDirect        bool    `json:"is_direct"`
}

type observationResponse struct {
	Price      float64 `json:"price"`
	Currency   string  `json:"currency"`
	Region     string  `json:"region"`
	RecordedAt string  `json:"recorded_at"`
}

type predictionPointResponse struct {
	Date       string  `json:"date"`
	Price      float64 `json:"price"`
	Confidence float64 `json:"confidence"`
}

type predictionResponse struct {
	FlightID        uint                      `json:"flight_id"`
	CurrentPrice    float64                   `json:"current_price"`
	PredictedPrices []predictionPointResponse `json:"predicted_prices"`
	Recommendation  string                    `json:"recommendation"`
	ConfidenceScore float64                   `json:"confidence_score"`
}

type statsResponse struct {
	MinPrice        float64 `json:"min_price"`
	MaxPrice        float64 `json:"max_price"`
	AvgPrice        float64 `json:"avg_price"`
	CurrentPrice    float64 `json:"current_price"`
	PriceRange      float64 `json:"price_range"`
	AvgDailyChange  float64 `json:"avg_daily_change"`
	BestBuyDate     string  `json:"best_buy_date"`
	WorstBuyDate    string  `json:"worst_buy_date"`
	DataPoints      int     `json:"data_points"`
	PriceVolatility float64 `json:"price_volatility"`
}

func (h *Handler) searchFlights(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	criteria, err := criteriaFromRequest(&req)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	flights, err := h.aggregator.Search(r.Context(), criteria, nil)
	if err != nil {
		h.writeUsecaseError(w, err)
		return
	}

	response := make([]flightResponse, 0, len(flights))
	for _, flight := range flights {
		response = append(response, toFlightResponse(flight))
	}
	h.writeJSON(w, http.StatusOK, response)
}

func (h *Handler) getFlight(w http.ResponseWriter, r *http.Request) {
	flightID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	flight, err := h.aggregator.GetFlight(r.Context(), flightID)
	if err != nil {
		h.writeUsecaseError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toFlightResponse(flight))
}

func (h *Handler) getPriceHistory(w http.ResponseWriter, r *http.Request) {
	flightID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "days must be an integer")
			return
		}
		days = parsed
	}

	history, err := h.aggregator.GetPriceHistory(r.Context(), flightID, days)
	if err != nil {
		h.writeUsecaseError(w, err)
		return
	}

	observations := make([]observationResponse, 0, len(history))
	for _, obs := range history {
		observations = append(observations, observationResponse{
			Price:      obs.Price,
			Currency:   obs.Currency,
			Region:     obs.Region,
			RecordedAt: obs.RecordedAt.UTC().Format(time.RFC3339),
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"flight_id":     flightID,
		"days":          days,
		"price_history": observations,
	})
}

func (h *Handler) predictPrice(w http.ResponseWriter, r *http.Request) {
	flightID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req struct {
		PredictionDays int `json:"prediction_days"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	prediction, err := h.predictor.Predict(r.Context(), flightID, req.PredictionDays)
	if err != nil {
		h.writeUsecaseError(w, err)
		return
	}

	points := make([]predictionPointResponse, 0, len(prediction.Points))
	for _, point := range prediction.Points {
		points = append(points, predictionPointResponse{
			Date:       point.Date.Format(utils.DateLayout),
			Price:      point.Price,
			Confidence: point.Confidence,
		})
	}

	h.writeJSON(w, http.StatusOK, predictionResponse{
		FlightID:        prediction.FlightID,
		CurrentPrice:    prediction.CurrentPrice,
		PredictedPrices: points,
		Recommendation:  string(prediction.Recommendation),
		ConfidenceScore: prediction.Confidence,
	})
}

func (h *Handler) analyzePatterns(w http.ResponseWriter, r *http.Request) {
	flightID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	analysis, err := h.analyzer.Analyze(r.Context(), flightID)
	if err != nil {
		h.writeUsecaseError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, statsResponse{
		MinPrice:        analysis.MinPrice,
		MaxPrice:        analysis.MaxPrice,
		AvgPrice:        analysis.AvgPrice,
		CurrentPrice:    analysis.CurrentPrice,
		PriceRange:      analysis.PriceRange,
		AvgDailyChange:  analysis.AvgDailyChange,
		BestBuyDate:     analysis.BestBuyDate.Format(utils.DateLayout),
		WorstBuyDate:    analysis.WorstBuyDate.Format(utils.DateLayout),
		DataPoints:      analysis.DataPoints,
		PriceVolatility: analysis.Volatility,
	})
}

func criteriaFromRequest(req *searchRequest) (*entity.SearchCriteria, error) {
	departure, err := time.Parse(utils.DateLayout, req.DepartureDate)
	if err != nil {
		return nil, errors.New("departure_date must be YYYY-MM-DD")
	}

	criteria := &entity.SearchCriteria{
		OriginCode:        req.OriginCode,
		DestinationCode:   req.DestinationCode,
		DepartureDate:     departure,
		Passengers:        req.Passengers,
		FlightType:        entity.FlightType(req.FlightType),
		PreferredAirlines: req.PreferredAirlines,
		MaxStops:          req.MaxStops,
		MaxPrice:          req.MaxPrice,
		PreferredCurrency: req.PreferredCurrency,
	}

	if req.ReturnDate != "" {
		ret, err := time.Parse(utils.DateLayout, req.ReturnDate)
		if err != nil {
			return nil, errors.New("return_date must be YYYY-MM-DD")
		}
		criteria.ReturnDate = &ret
	}

	return criteria, nil
}

func toFlightResponse(flight *entity.Flight) flightResponse {
	return flightResponse{
		ID:              flight.ID,
		FlightNumber:    flight.FlightNumber,
		AirlineCode:     flight.AirlineCode,
		AirlineName:     flight.AirlineName,
		OriginCode:      flight.OriginCode,
		OriginName:      flight.OriginName,
		DestinationCode: flight.DestinationCode,
		DestinationName: flight.DestinationName,
		DepartureTime:   flight.DepartureTime.UTC().Format(time.RFC3339),
		ArrivalTime:     flight.ArrivalTime.UTC().Format(time.RFC3339),
		DurationMinutes: flight.DurationMinutes,
		BasePrice:       flight.BasePrice,
		Currency:        flight.Currency,
		Taxes:           flight.Taxes,
		Fees:            flight.Fees,
		TotalPrice:      flight.TotalPrice,
		Stops:           flight.Stops,
		IsDirect:        flight.IsDirect,
	}
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "flight id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) writeUsecaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidCriteria):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrFlightNotFound):
		h.writeError(w, http.StatusNotFound, "flight not found")
	case errors.Is(err, usecase.ErrInsufficientHistory):
		h.writeError(w, http.StatusUnprocessableEntity, "insufficient price history")
	case errors.Is(err, usecase.ErrSearchUnavailable):
		h.writeError(w, http.StatusServiceUnavailable, "search temporarily unavailable")
	default:
		h.logger.Error("Unhandled request error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, detail string) {
	h.writeJSON(w, status, map[string]string{"detail": detail})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}
