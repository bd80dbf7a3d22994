package utils

// ProviderDocument is the itinerary/leg/carrier/place shape the fare
// provider returns for one region query
type ProviderDocument struct {
	Itineraries []ProviderItinerary `json:"Itineraries"`
	Legs        []ProviderLeg       `json:"Legs"`
	Carriers    []ProviderCarrier   `json:"Carriers"`
	Places      []ProviderPlace     `json:"Places"`
	Currencies  []ProviderCurrency  `json:"Currencies"`
	Status      string              `json:"Status"`
}

// ProviderItinerary pairs a leg with its pricing options
type ProviderItinerary struct {
	OutboundLegID  string                  `json:"OutboundLegId"`
	InboundLegID   string                  `json:"InboundLegId"`
	PricingOptions []ProviderPricingOption `json:"PricingOptions"`
}

// ProviderPricingOption is one quoted price for an itinerary
type ProviderPricingOption struct {
	Price         float64 `json:"Price"`
	QuoteAgeInMin int     `json:"QuoteAgeInMinutes"`
	DeeplinkURL   string  `json:"DeeplinkUrl"`
}

// ProviderLeg is one flight segment in the provider document
type ProviderLeg struct {
	ID                 string   `json:"Id"`
	SegmentIds         []int    `json:"SegmentIds"`
	OriginStation      int      `json:"OriginStation"`
	DestinationStation int      `json:"DestinationStation"`
	Departure          string   `json:"Departure"`
	Arrival            string   `json:"Arrival"`
	Duration           int      `json:"Duration"`
	Carriers           []int    `json:"Carriers"`
	Stops              []int    `json:"Stops"`
	FlightNumber       string   `json:"FlightNumber"`
	Directionality     string   `json:"Directionality"`
}

// ProviderCarrier is an airline referenced by id from legs
type ProviderCarrier struct {
	ID   int    `json:"Id"`
	Code string `json:"Code"`
	Name string `json:"Name"`
}

// ProviderPlace is an airport or city referenced by id from legs
type ProviderPlace struct {
	ID   int    `json:"Id"`
	Code string `json:"Code"`
	Name string `json:"Name"`
}

// ProviderCurrency describes the currency of the quoted prices
type ProviderCurrency struct {
	Code string `json:"Code"`
}

// Constants
const (
	ProviderTimeLayout = "2006-01-02T15:04:05"
	DateLayout         = "2006-01-02"
)
