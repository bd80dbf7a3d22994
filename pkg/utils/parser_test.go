package utils

import (
	"testing"
	"time"

	"faretrack-service/pkg/logger"

	. "github.com/smartystreets/goconvey/convey"
)

const sampleDocument = `{
	"Status": "UpdatesComplete",
	"Currencies": [{"Code": "GBP"}],
	"Itineraries": [
		{
			"OutboundLegId": "leg-1",
			"PricingOptions": [
				{"Price": 512.40, "DeeplinkUrl": "https://example.com/a"},
				{"Price": 489.99, "DeeplinkUrl": "https://example.com/b"},
				{"Price": 0}
			]
		},
		{
			"OutboundLegId": "leg-2",
			"PricingOptions": [{"Price": 230.00}]
		},
		{
			"OutboundLegId": "leg-3",
			"PricingOptions": []
		}
	],
	"Legs": [
		{
			"Id": "leg-1",
			"OriginStation": 11,
			"DestinationStation": 12,
			"Departure": "2026-10-01T09:30:00",
			"Arrival": "2026-10-01T17:45:00",
			"Carriers": [881],
			"Stops": [],
			"FlightNumber": "100"
		},
		{
			"Id": "leg-2",
			"OriginStation": 99,
			"DestinationStation": 12,
			"Departure": "2026-10-02T06:00:00",
			"Arrival": "2026-10-02T11:15:00",
			"Carriers": [999],
			"Stops": [13],
			"FlightNumber": "321"
		}
	],
	"Carriers": [{"Id": 881, "Code": "BA", "Name": "British Airways"}],
	"Places": [
		{"Id": 11, "Code": "JFK", "Name": "New York JFK"},
		{"Id": 12, "Code": "LHR", "Name": "London Heathrow"}
	]
}`

func TestOfferParser_ParseDocument(t *testing.T) {
	parser := NewOfferParser(logger.NewNop())

	Convey("Given a provider document with two parseable legs", t, func() {
		Convey("When parsing", func() {
			offers, err := parser.ParseDocument([]byte(sampleDocument), "UK")

			Convey("Then itineraries without pricing are skipped", func() {
				So(err, ShouldBeNil)
				So(offers, ShouldHaveLength, 2)
			})

			Convey("Then the first offer is fully resolved", func() {
				So(err, ShouldBeNil)
				offer := offers[0]
				So(offer.FlightNumber, ShouldEqual, "BA100")
				So(offer.AirlineCode, ShouldEqual, "BA")
				So(offer.AirlineName, ShouldEqual, "British Airways")
				So(offer.OriginCode, ShouldEqual, "JFK")
				So(offer.DestinationCode, ShouldEqual, "LHR")
				So(offer.DestinationName, ShouldEqual, "London Heathrow")
				So(offer.Currency, ShouldEqual, "GBP")
				So(offer.SourceRegion, ShouldEqual, "UK")
				So(offer.ExternalID, ShouldEqual, "leg-1")
				So(offer.Stops, ShouldEqual, 0)
				So(offer.IsDirect, ShouldBeTrue)
			})

			Convey("Then the cheapest positive quote wins", func() {
				So(err, ShouldBeNil)
				So(offers[0].TotalPrice, ShouldEqual, 489.99)
			})

			Convey("Then the fare breakdown follows the estimate shares", func() {
				So(err, ShouldBeNil)
				So(offers[0].BasePrice, ShouldAlmostEqual, 489.99*0.80, 1e-9)
				So(offers[0].Taxes, ShouldAlmostEqual, 489.99*0.15, 1e-9)
				So(offers[0].Fees, ShouldAlmostEqual, 489.99*0.05, 1e-9)
			})

			Convey("Then departure and arrival drive the duration", func() {
				So(err, ShouldBeNil)
				expected := time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)
				So(offers[0].DepartureTime.Equal(expected), ShouldBeTrue)
				So(offers[0].DurationMinutes, ShouldEqual, 495)
			})

			Convey("Then missing carrier and place lookups degrade to empty fields", func() {
				So(err, ShouldBeNil)
				offer := offers[1]
				So(offer.AirlineCode, ShouldEqual, "")
				So(offer.AirlineName, ShouldEqual, "")
				So(offer.OriginCode, ShouldEqual, "")
				So(offer.FlightNumber, ShouldEqual, "321")
				So(offer.Stops, ShouldEqual, 1)
				So(offer.IsDirect, ShouldBeFalse)
			})

			Convey("Then the raw leg travels with the offer", func() {
				So(err, ShouldBeNil)
				So(offers[0].RawDocument, ShouldContainSubstring, `"Id":"leg-1"`)
			})
		})
	})

	Convey("Given a document without a currency block", t, func() {
		doc := `{
			"Itineraries": [{"OutboundLegId": "leg-1", "PricingOptions": [{"Price": 100}]}],
			"Legs": [{"Id": "leg-1", "Departure": "2026-10-01T09:30:00", "Arrival": "2026-10-01T11:30:00"}]
		}`

		Convey("When parsing", func() {
			offers, err := parser.ParseDocument([]byte(doc), "US")

			Convey("Then the currency defaults to USD", func() {
				So(err, ShouldBeNil)
				So(offers, ShouldHaveLength, 1)
				So(offers[0].Currency, ShouldEqual, "USD")
			})
		})
	})

	Convey("Given an itinerary referencing a missing leg", t, func() {
		doc := `{
			"Itineraries": [{"OutboundLegId": "ghost", "PricingOptions": [{"Price": 100}]}],
			"Legs": []
		}`

		Convey("When parsing", func() {
			offers, err := parser.ParseDocument([]byte(doc), "US")

			Convey("Then the itinerary is dropped without error", func() {
				So(err, ShouldBeNil)
				So(offers, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a leg with a malformed timestamp", t, func() {
		doc := `{
			"Itineraries": [{"OutboundLegId": "leg-1", "PricingOptions": [{"Price": 100}]}],
			"Legs": [{"Id": "leg-1", "Departure": "yesterday", "Arrival": "2026-10-01T11:30:00"}]
		}`

		Convey("When parsing", func() {
			offers, err := parser.ParseDocument([]byte(doc), "US")

			Convey("Then only that leg is skipped", func() {
				So(err, ShouldBeNil)
				So(offers, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a document that is not JSON", t, func() {
		Convey("When parsing", func() {
			offers, err := parser.ParseDocument([]byte("<html>rate limited</html>"), "US")

			Convey("Then parsing fails outright", func() {
				So(err, ShouldNotBeNil)
				So(offers, ShouldBeNil)
			})
		})
	})
}

func TestSplitFare(t *testing.T) {
	Convey("Given a quoted total", t, func() {
		Convey("When splitting", func() {
			base, taxes, fees := SplitFare(400)

			Convey("Then the shares sum back to the total", func() {
				So(base, ShouldEqual, 320)
				So(taxes, ShouldEqual, 60)
				So(fees, ShouldEqual, 20)
				So(base+taxes+fees, ShouldAlmostEqual, 400, 1e-9)
			})
		})
	})
}

func TestCheapestPrice(t *testing.T) {
	Convey("Given pricing options with zero and negative quotes", t, func() {
		options := []ProviderPricingOption{{Price: 0}, {Price: -10}, {Price: 310.5}, {Price: 280}}

		Convey("When picking the cheapest", func() {
			So(cheapestPrice(options), ShouldEqual, 280)
		})
	})

	Convey("Given no usable quotes", t, func() {
		options := []ProviderPricingOption{{Price: 0}}

		Convey("When picking the cheapest", func() {
			So(cheapestPrice(options), ShouldEqual, 0)
		})
	})
}
