package repository

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"faretrack-service/internal/domain/entity"
	"faretrack-service/internal/domain/repository"
	"faretrack-service/pkg/logger"
	"faretrack-service/pkg/utils"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	sessionPath    = "/pricing/v1.0"
	resultsPath    = "/pricing/uk2/v1.0"
	pollInterval   = 2 * time.Second
	maxPollRounds  = 3
	requestTimeout = 15 * time.Second
)

// SkyscannerProvider implements the FareProvider interface against a
// Skyscanner-style pricing API: create a pricing session, poll the
// session for results, translate the itinerary document into offers.
//
// Fetch never surfaces transport or payload errors to the aggregator;
// a failed region query logs and yields zero offers so the remaining
// regions still count.
type SkyscannerProvider struct {
	baseURL string
	client  *http.Client
	parser  *utils.OfferParser
	logger  logger.Logger
}

// NewSkyscannerProvider creates a new Skyscanner fare provider. The
// API token is wired as a static bearer token source.
func NewSkyscannerProvider(baseURL, apiToken string, parser *utils.OfferParser, logger logger.Logger) repository.FareProvider {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiToken})
	client := oauth2.NewClient(context.Background(), source)
	client.Timeout = requestTimeout

	return &SkyscannerProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		parser:  parser,
		logger:  logger,
	}
}

// Fetch queries one region for offers matching the criteria
func (p *SkyscannerProvider) Fetch(ctx context.Context, session *entity.RegionSession, criteria *entity.SearchCriteria) ([]entity.RegionOffer, error) {
	sessionKey, err := p.createPricingSession(ctx, session, criteria)
	if err != nil {
		p.logger.Error("Failed to create pricing session", "region", session.Region, "error", err)
		return nil, nil
	}

	raw, err := p.pollResults(ctx, sessionKey)
	if err != nil {
		p.logger.Error("Failed to poll pricing results", "region", session.Region, "error", err)
		return nil, nil
	}

	offers, err := p.parser.ParseDocument(raw, session.Region)
	if err != nil {
		p.logger.Error("Failed to parse provider document", "region", session.Region, "error", err)
		return nil, nil
	}

	p.logger.Debug("Fetched offers", "region", session.Region, "count", len(offers))
	return offers, nil
}

// createPricingSession starts a provider pricing session and returns
// its key. When the provider omits the Location header a local key is
// generated so polling still has a stable identifier to log.
func (p *SkyscannerProvider) createPricingSession(ctx context.Context, session *entity.RegionSession, criteria *entity.SearchCriteria) (string, error) {
	form := url.Values{}
	form.Set("country", session.Market)
	form.Set("currency", criteria.PreferredCurrency)
	form.Set("locale", session.Locale)
	form.Set("originPlace", criteria.OriginCode)
	form.Set("destinationPlace", criteria.DestinationCode)
	form.Set("outboundDate", criteria.DepartureDate.Format(utils.DateLayout))
	form.Set("adults", strconv.Itoa(criteria.Passengers))
	if criteria.ReturnDate != nil {
		form.Set("inboundDate", criteria.ReturnDate.Format(utils.DateLayout))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+sessionPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	location := resp.Header.Get("Location")
	if location == "" {
		return uuid.NewString(), nil
	}
	parts := strings.Split(location, "/")
	return parts[len(parts)-1], nil
}

// pollResults fetches the session document, retrying until the
// provider reports completion or the rounds run out
func (p *SkyscannerProvider) pollResults(ctx context.Context, sessionKey string) ([]byte, error) {
	var raw []byte

	for round := 0; round < maxPollRounds; round++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+resultsPath+"/"+sessionKey, nil)
		if err != nil {
			return nil, err
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return nil, err
		}

		raw, err = io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		if !strings.Contains(string(raw), `"Status":"UpdatesPending"`) {
			break
		}
	}

	return raw, nil
}
