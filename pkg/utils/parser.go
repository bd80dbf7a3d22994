package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"faretrack-service/internal/domain/entity"
	"faretrack-service/pkg/logger"
)

// OfferParser translates raw provider documents into region offers
type OfferParser struct {
	logger logger.Logger
}

// NewOfferParser creates a new offer parser
func NewOfferParser(logger logger.Logger) *OfferParser {
	return &OfferParser{
		logger: logger,
	}
}

// ParseDocument parses one provider response into offers. A document
// that cannot be decoded at all yields an error; a single itinerary or
// leg that cannot be parsed is skipped so the rest of the document
// still produces offers.
func (p *OfferParser) ParseDocument(raw []byte, region string) ([]entity.RegionOffer, error) {
	var doc ProviderDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode provider document: %w", err)
	}

	currency := "USD"
	if len(doc.Currencies) > 0 && doc.Currencies[0].Code != "" {
		currency = doc.Currencies[0].Code
	}

	legsByID := make(map[string]ProviderLeg, len(doc.Legs))
	for _, leg := range doc.Legs {
		legsByID[leg.ID] = leg
	}
	carriersByID := make(map[int]ProviderCarrier, len(doc.Carriers))
	for _, carrier := range doc.Carriers {
		carriersByID[carrier.ID] = carrier
	}
	placesByID := make(map[int]ProviderPlace, len(doc.Places))
	for _, place := range doc.Places {
		placesByID[place.ID] = place
	}

	var offers []entity.RegionOffer
	for _, itinerary := range doc.Itineraries {
		if len(itinerary.PricingOptions) == 0 {
			continue
		}

		price := cheapestPrice(itinerary.PricingOptions)

		leg, ok := legsByID[itinerary.OutboundLegID]
		if !ok {
			p.logger.Warn("Outbound leg missing from document", "legId", itinerary.OutboundLegID, "region", region)
			continue
		}

		offer, err := p.parseLeg(leg, carriersByID, placesByID, price, currency, region)
		if err != nil {
			p.logger.Error("Failed to parse leg", "legId", leg.ID, "error", err)
			continue
		}
		offers = append(offers, *offer)
	}

	return offers, nil
}

// parseLeg converts one leg plus its quoted price into a RegionOffer.
// Missing carrier or place lookups degrade to empty-string fields
// instead of failing the offer.
func (p *OfferParser) parseLeg(leg ProviderLeg, carriers map[int]ProviderCarrier, places map[int]ProviderPlace, price float64, currency, region string) (*entity.RegionOffer, error) {
	departure, err := parseProviderTime(leg.Departure)
	if err != nil {
		return nil, fmt.Errorf("departure time: %w", err)
	}
	arrival, err := parseProviderTime(leg.Arrival)
	if err != nil {
		return nil, fmt.Errorf("arrival time: %w", err)
	}

	var carrier ProviderCarrier
	if len(leg.Carriers) > 0 {
		carrier = carriers[leg.Carriers[0]]
	}
	origin := places[leg.OriginStation]
	destination := places[leg.DestinationStation]

	base, taxes, fees := SplitFare(price)
	stops := len(leg.Stops)

	rawLeg, _ := json.Marshal(leg)

	return &entity.RegionOffer{
		FlightNumber:    fmt.Sprintf("%s%s", carrier.Code, leg.FlightNumber),
		AirlineCode:     carrier.Code,
		AirlineName:     carrier.Name,
		OriginCode:      origin.Code,
		OriginName:      origin.Name,
		DestinationCode: destination.Code,
		DestinationName: destination.Name,
		DepartureTime:   departure,
		ArrivalTime:     arrival,
		DurationMinutes: int(arrival.Sub(departure).Minutes()),
		BasePrice:       base,
		Taxes:           taxes,
		Fees:            fees,
		TotalPrice:      price,
		Currency:        currency,
		Stops:           stops,
		IsDirect:        stops == 0,
		BookingClass:    "Economy",
		SourceRegion:    region,
		ExternalID:      leg.ID,
		RawDocument:     string(rawLeg),
	}, nil
}

// cheapestPrice picks the lowest quoted option; options without a
// price are treated as infinitely expensive
func cheapestPrice(options []ProviderPricingOption) float64 {
	cheapest := math.Inf(1)
	for _, option := range options {
		price := option.Price
		if price <= 0 {
			continue
		}
		if price < cheapest {
			cheapest = price
		}
	}
	if math.IsInf(cheapest, 1) {
		return 0
	}
	return cheapest
}

func parseProviderTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.UTC(), nil
	}
	return time.Parse(ProviderTimeLayout, value)
}
