package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"faretrack-service/internal/domain/entity"
	"faretrack-service/internal/domain/repository"
	"faretrack-service/pkg/metrics"
)

// Shared across the package's tests: promauto registers against the
// default registry, so the metrics bundle must be created exactly once
// per test binary.
var testMetrics = metrics.NewMetrics("faretrack_test")

type memSearchRepo struct {
	mu        sync.Mutex
	createErr error
	nextID    uint
	records   []*entity.FlightSearch

	updatedID     uint
	updatedCount  int
	updatedRegion string
	updates       int
}

func (r *memSearchRepo) Create(_ context.Context, search *entity.FlightSearch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	search.ID = r.nextID
	search.SearchTimestamp = time.Now().UTC()
	r.records = append(r.records, search)
	return nil
}

func (r *memSearchRepo) UpdateResults(_ context.Context, searchID uint, resultsCount int, lastRegion string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updatedID = searchID
	r.updatedCount = resultsCount
	r.updatedRegion = lastRegion
	r.updates++
	return nil
}

type memFlightRepo struct {
	mu        sync.Mutex
	createErr error
	nextID    uint
	flights   map[uint]*entity.Flight
}

func newMemFlightRepo() *memFlightRepo {
	return &memFlightRepo{flights: make(map[uint]*entity.Flight)}
}

func (r *memFlightRepo) Create(_ context.Context, flight *entity.Flight) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	flight.ID = r.nextID
	stored := *flight
	r.flights[flight.ID] = &stored
	return nil
}

func (r *memFlightRepo) GetByID(_ context.Context, id uint) (*entity.Flight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	flight, ok := r.flights[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *flight
	return &found, nil
}

func (r *memFlightRepo) add(flight *entity.Flight) *entity.Flight {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	flight.ID = r.nextID
	stored := *flight
	r.flights[flight.ID] = &stored
	return flight
}

type memHistoryRepo struct {
	mu           sync.Mutex
	appendErr    error
	nextID       uint
	observations []*entity.PriceObservation
}

func (r *memHistoryRepo) Append(_ context.Context, obs *entity.PriceObservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.nextID++
	obs.ID = r.nextID
	if obs.RecordedAt.IsZero() {
		obs.RecordedAt = time.Now().UTC()
	}
	stored := *obs
	r.observations = append(r.observations, &stored)
	return nil
}

func (r *memHistoryRepo) ListByFlight(_ context.Context, flightID uint, since time.Time) ([]*entity.PriceObservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.PriceObservation
	for _, obs := range r.observations {
		if obs.FlightID != nil && *obs.FlightID == flightID && !obs.RecordedAt.Before(since) {
			found := *obs
			result = append(result, &found)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].RecordedAt.After(result[j].RecordedAt)
	})
	return result, nil
}

func (r *memHistoryRepo) ListByFlightAsc(_ context.Context, flightID uint) ([]*entity.PriceObservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.PriceObservation
	for _, obs := range r.observations {
		if obs.FlightID != nil && *obs.FlightID == flightID {
			found := *obs
			result = append(result, &found)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].RecordedAt.Before(result[j].RecordedAt)
	})
	return result, nil
}

func (r *memHistoryRepo) rawCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, obs := range r.observations {
		if obs.FlightID == nil {
			count++
		}
	}
	return count
}

func (r *memHistoryRepo) linkedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, obs := range r.observations {
		if obs.FlightID != nil {
			count++
		}
	}
	return count
}

type memOfferArchive struct {
	mu       sync.Mutex
	err      error
	archived []string
}

func (r *memOfferArchive) Archive(_ context.Context, searchID uint, offer *entity.RegionOffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.archived = append(r.archived, fmt.Sprintf("%d:%s", searchID, offer.IdentityKey()))
	return nil
}

type stubSwitcher struct {
	mu       sync.Mutex
	failing  map[string]bool
	sessions int
}

func (s *stubSwitcher) Activate(_ context.Context, region string) (*entity.RegionSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing[region] {
		return nil, fmt.Errorf("region %s unreachable", region)
	}
	s.sessions++
	return &entity.RegionSession{
		Region:      region,
		Market:      region,
		Locale:      "en-US",
		ActivatedAt: time.Now().UTC(),
	}, nil
}

func (s *stubSwitcher) Disconnect(context.Context, *entity.RegionSession) error { return nil }

func (s *stubSwitcher) AvailableRegions() []entity.Region { return nil }

func (s *stubSwitcher) BestRegionFor(string) string { return "US" }

type stubProvider struct {
	mu             sync.Mutex
	offersByRegion map[string][]entity.RegionOffer
	errByRegion    map[string]error
	fetches        int
}

func (p *stubProvider) Fetch(_ context.Context, session *entity.RegionSession, _ *entity.SearchCriteria) ([]entity.RegionOffer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fetches++
	if err := p.errByRegion[session.Region]; err != nil {
		return nil, err
	}
	return p.offersByRegion[session.Region], nil
}

func (p *stubProvider) fetchCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetches
}

func makeOffer(flightNumber string, price float64, region string, departure time.Time) entity.RegionOffer {
	base, taxes, fees := price*0.8, price*0.15, price*0.05
	return entity.RegionOffer{
		FlightNumber:    flightNumber,
		AirlineCode:     flightNumber[:2],
		AirlineName:     region + " Air",
		OriginCode:      "JFK",
		DestinationCode: "LHR",
		DepartureTime:   departure,
		ArrivalTime:     departure.Add(7 * time.Hour),
		DurationMinutes: 420,
		BasePrice:       base,
		Taxes:           taxes,
		Fees:            fees,
		TotalPrice:      price,
		Currency:        "USD",
		IsDirect:        true,
		SourceRegion:    region,
		ExternalID:      flightNumber + "-" + region,
	}
}

func validCriteria() *entity.SearchCriteria {
	return &entity.SearchCriteria{
		OriginCode:        "JFK",
		DestinationCode:   "LHR",
		DepartureDate:     time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Passengers:        1,
		FlightType:        entity.FlightTypeOneWay,
		MaxStops:          2,
		PreferredCurrency: "USD",
	}
}
