package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"faretrack-service/internal/domain/entity"
	"faretrack-service/internal/domain/repository"
	"faretrack-service/pkg/logger"
	"faretrack-service/pkg/metrics"
	"faretrack-service/pkg/utils"
)

const (
	// maxSearchResults caps both the response and the persisted Flight
	// rows; nothing outside the cap is ever written.
	maxSearchResults = 50

	defaultFanOutTimeout = 45 * time.Second

	sourceAPIName = "skyscanner"
)

// SearchAggregator runs the flight search pipeline: fan out across
// regions, record raw price observations, dedupe and rank the merged
// offers, persist the capped result as Flight rows.
type SearchAggregator struct {
	searchRepo   repository.FlightSearchRepository
	flightRepo   repository.FlightRepository
	historyRepo  repository.PriceObservationRepository
	offerArchive repository.OfferArchiveRepository
	provider     repository.FareProvider
	switcher     repository.RegionSwitcher
	regions      []string
	timeout      time.Duration
	metrics      *metrics.Metrics
	logger       logger.Logger
}

// NewSearchAggregator creates a new search aggregator
func NewSearchAggregator(
	searchRepo repository.FlightSearchRepository,
	flightRepo repository.FlightRepository,
	historyRepo repository.PriceObservationRepository,
	offerArchive repository.OfferArchiveRepository,
	provider repository.FareProvider,
	switcher repository.RegionSwitcher,
	regions []string,
	timeout time.Duration,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *SearchAggregator {
	if len(regions) == 0 {
		regions = []string{"US", "UK", "DE", "FR", "IT"}
	}
	if timeout <= 0 {
		timeout = defaultFanOutTimeout
	}

	return &SearchAggregator{
		searchRepo:   searchRepo,
		flightRepo:   flightRepo,
		historyRepo:  historyRepo,
		offerArchive: offerArchive,
		provider:     provider,
		switcher:     switcher,
		regions:      regions,
		timeout:      timeout,
		metrics:      metrics,
		logger:       logger,
	}
}

// regionResult is what one fan-out task hands back
type regionResult struct {
	region string
	offers []entity.RegionOffer
	ok     bool
}

// Search runs one pipeline invocation. The returned flights are the
// exact rows persisted: sorted ascending by total price, at most 50.
// A run where every region fails returns an empty slice and no error;
// only invalid criteria or an unreachable search store are errors.
func (a *SearchAggregator) Search(ctx context.Context, criteria *entity.SearchCriteria, userID *uint) ([]*entity.Flight, error) {
	if criteria == nil {
		return nil, fmt.Errorf("%w: criteria is required", ErrInvalidCriteria)
	}
	if err := criteria.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
	}

	search := searchRecordFromCriteria(criteria, userID)
	if err := a.searchRepo.Create(ctx, search); err != nil {
		a.logger.Error("Failed to create search record", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}

	a.metrics.SearchesTotal.Inc()
	started := time.Now()

	results := a.fanOut(ctx, criteria)

	// Raw observations and the archive are best-effort: a storage
	// hiccup on one offer must not cancel the search.
	lastRegion := ""
	var merged []entity.RegionOffer
	for _, result := range results {
		if !result.ok {
			continue
		}
		lastRegion = result.region
		for i := range result.offers {
			offer := result.offers[i]
			a.metrics.OffersCollected.Inc()
			a.recordObservation(ctx, search.ID, nil, offer.TotalPrice, offer.Currency, offer.SourceRegion)
			if err := a.offerArchive.Archive(ctx, search.ID, &offer); err != nil {
				a.logger.Warn("Failed to archive raw offer", "searchId", search.ID, "error", err)
			}
			merged = append(merged, offer)
		}
	}

	deduped := dedupeOffers(merged)
	sortOffersByPrice(deduped)

	if len(deduped) > maxSearchResults {
		deduped = deduped[:maxSearchResults]
	}

	stored := make([]*entity.Flight, 0, len(deduped))
	for i := range deduped {
		flight := flightFromOffer(&deduped[i])
		if err := a.flightRepo.Create(ctx, flight); err != nil {
			a.logger.Error("Failed to persist flight", "flightNumber", flight.FlightNumber, "error", err)
			continue
		}
		a.metrics.FlightsPersisted.Inc()
		a.recordObservation(ctx, search.ID, &flight.ID, flight.TotalPrice, flight.Currency, deduped[i].SourceRegion)
		stored = append(stored, flight)
	}

	if err := a.searchRepo.UpdateResults(ctx, search.ID, len(stored), lastRegion); err != nil {
		a.logger.Error("Failed to update search record", "searchId", search.ID, "error", err)
	}

	a.metrics.SearchDuration.Observe(time.Since(started).Seconds())
	a.logger.Info("Flight search completed",
		"searchId", search.ID,
		"offers", len(merged),
		"results", len(stored))

	return stored, nil
}

// fanOut queries every configured region concurrently under one
// deadline. Each task owns its own activation session; results come
// back indexed by configured region order so dedup stays first-seen
// deterministic regardless of completion order.
func (a *SearchAggregator) fanOut(ctx context.Context, criteria *entity.SearchCriteria) []regionResult {
	fanCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	results := make([]regionResult, len(a.regions))
	var wg sync.WaitGroup

	for i, region := range a.regions {
		wg.Add(1)
		go func(slot int, region string) {
			defer wg.Done()
			results[slot] = a.queryRegion(fanCtx, region, criteria)
		}(i, region)
	}

	wg.Wait()
	return results
}

// queryRegion activates one region and fetches its offers. Every
// failure mode here is recoverable: the region is skipped and the
// search continues with whatever the other regions returned.
func (a *SearchAggregator) queryRegion(ctx context.Context, region string, criteria *entity.SearchCriteria) regionResult {
	session, err := a.switcher.Activate(ctx, region)
	if err != nil {
		a.metrics.RegionFailures.WithLabelValues(region).Inc()
		a.logger.Warn("Region activation failed, skipping", "region", region, "error", err)
		return regionResult{region: region}
	}
	defer func() {
		if err := a.switcher.Disconnect(ctx, session); err != nil {
			a.logger.Debug("Region disconnect failed", "region", region, "error", err)
		}
	}()

	offers, err := a.provider.Fetch(ctx, session, criteria)
	if err != nil {
		a.metrics.RegionFailures.WithLabelValues(region).Inc()
		a.logger.Warn("Region fetch failed, skipping", "region", region, "error", err)
		return regionResult{region: region}
	}

	return regionResult{region: region, offers: offers, ok: true}
}

// recordObservation appends one price sample, swallowing storage
// errors so one observation cannot fail the run
func (a *SearchAggregator) recordObservation(ctx context.Context, searchID uint, flightID *uint, price float64, currency, region string) {
	obs := &entity.PriceObservation{
		SearchID: searchID,
		FlightID: flightID,
		Price:    price,
		Currency: currency,
		Region:   region,
	}
	if err := a.historyRepo.Append(ctx, obs); err != nil {
		a.metrics.ObservationErrors.Inc()
		a.logger.Warn("Failed to record price observation", "searchId", searchID, "error", err)
	}
}

// GetFlight fetches one persisted flight
func (a *SearchAggregator) GetFlight(ctx context.Context, flightID uint) (*entity.Flight, error) {
	flight, err := a.flightRepo.GetByID(ctx, flightID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFlightNotFound
		}
		return nil, err
	}
	return flight, nil
}

// GetPriceHistory returns a flight's observations inside the requested
// day window, most recent first
func (a *SearchAggregator) GetPriceHistory(ctx context.Context, flightID uint, days int) ([]*entity.PriceObservation, error) {
	if days < 1 {
		days = 30
	}
	if days > 365 {
		days = 365
	}

	if _, err := a.GetFlight(ctx, flightID); err != nil {
		return nil, err
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	return a.historyRepo.ListByFlight(ctx, flightID, since)
}

func searchRecordFromCriteria(criteria *entity.SearchCriteria, userID *uint) *entity.FlightSearch {
	flightType := criteria.FlightType
	if flightType == "" {
		flightType = entity.FlightTypeOneWay
	}
	currency := criteria.PreferredCurrency
	if currency == "" {
		currency = "USD"
	}

	return &entity.FlightSearch{
		UserID:            userID,
		OriginCode:        criteria.OriginCode,
		DestinationCode:   criteria.DestinationCode,
		DepartureDate:     criteria.DepartureDate,
		ReturnDate:        criteria.ReturnDate,
		Passengers:        criteria.Passengers,
		FlightType:        flightType,
		PreferredAirlines: criteria.PreferredAirlines,
		MaxStops:          criteria.MaxStops,
		MaxPrice:          criteria.MaxPrice,
		PreferredCurrency: currency,
	}
}

// dedupeOffers keeps the first offer seen for each identity key, so
// region order decides which duplicate's fields survive
func dedupeOffers(offers []entity.RegionOffer) []entity.RegionOffer {
	seen := make(map[string]struct{}, len(offers))
	unique := make([]entity.RegionOffer, 0, len(offers))

	for _, offer := range offers {
		key := offer.IdentityKey()
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, offer)
	}

	return unique
}

// sortOffersByPrice orders ascending by total price; offers with no
// usable price sort last
func sortOffersByPrice(offers []entity.RegionOffer) {
	sort.SliceStable(offers, func(i, j int) bool {
		return sortPrice(&offers[i]) < sortPrice(&offers[j])
	})
}

func sortPrice(offer *entity.RegionOffer) float64 {
	if offer.TotalPrice <= 0 {
		return math.Inf(1)
	}
	return offer.TotalPrice
}

func flightFromOffer(offer *entity.RegionOffer) *entity.Flight {
	return &entity.Flight{
		FlightNumber:    offer.FlightNumber,
		AirlineCode:     offer.AirlineCode,
		AirlineName:     offer.AirlineName,
		OriginCode:      offer.OriginCode,
		OriginName:      offer.OriginName,
		DestinationCode: offer.DestinationCode,
		DestinationName: offer.DestinationName,
		DepartureTime:   offer.DepartureTime,
		ArrivalTime:     offer.ArrivalTime,
		DurationMinutes: offer.DurationMinutes,
		BasePrice:       utils.Round2(offer.BasePrice),
		Currency:        offer.Currency,
		Taxes:           utils.Round2(offer.Taxes),
		Fees:            utils.Round2(offer.Fees),
		TotalPrice:      offer.TotalPrice,
		AvailableSeats:  offer.AvailableSeats,
		BookingClass:    offer.BookingClass,
		AircraftType:    offer.AircraftType,
		Stops:           offer.Stops,
		IsDirect:        offer.IsDirect,
		ExternalID:      offer.ExternalID,
		SourceAPI:       sourceAPIName,
	}
}
