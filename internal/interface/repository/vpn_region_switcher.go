package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"faretrack-service/internal/domain/entity"
	"faretrack-service/internal/domain/repository"
	"faretrack-service/pkg/logger"
)

// regionCatalog is the fixed set of markets the VPN provider can
// impersonate. The fan-out set is configured separately and must be a
// subset of this catalog.
var regionCatalog = []entity.Region{
	{Code: "US", Name: "United States", Country: "US"},
	{Code: "UK", Name: "United Kingdom", Country: "GB"},
	{Code: "DE", Name: "Germany", Country: "DE"},
	{Code: "FR", Name: "France", Country: "FR"},
	{Code: "IT", Name: "Italy", Country: "IT"},
	{Code: "ES", Name: "Spain", Country: "ES"},
	{Code: "NL", Name: "Netherlands", Country: "NL"},
	{Code: "CA", Name: "Canada", Country: "CA"},
	{Code: "AU", Name: "Australia", Country: "AU"},
	{Code: "JP", Name: "Japan", Country: "JP"},
}

// VPNRegionSwitcher implements the RegionSwitcher interface against a
// VPN control endpoint. Every Activate call returns its own session,
// so concurrent fan-out tasks never share a "current region": the
// region travels with the session instead of living in process state.
type VPNRegionSwitcher struct {
	endpoint string
	token    string
	client   *http.Client
	logger   logger.Logger
}

// NewVPNRegionSwitcher creates a new VPN region switcher
func NewVPNRegionSwitcher(endpoint, token string, logger logger.Logger) repository.RegionSwitcher {
	return &VPNRegionSwitcher{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

type connectRequest struct {
	Country string `json:"country"`
}

// Activate establishes a VPN session for the region and returns the
// activation context the caller's provider queries run under. A
// missing token or an unreachable control plane fails the activation;
// the caller skips the region.
func (s *VPNRegionSwitcher) Activate(ctx context.Context, region string) (*entity.RegionSession, error) {
	catalogEntry, ok := s.lookup(region)
	if !ok {
		return nil, fmt.Errorf("unknown region %q", region)
	}

	if s.token == "" {
		return nil, fmt.Errorf("vpn token not configured")
	}

	body, _ := json.Marshal(connectRequest{Country: catalogEntry.Country})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/v1/connect", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("vpn connect returned status %d", resp.StatusCode)
	}

	s.logger.Info("Activated VPN region", "region", region)
	return &entity.RegionSession{
		Region:      region,
		Market:      catalogEntry.Country,
		Locale:      "en-US",
		ActivatedAt: time.Now().UTC(),
	}, nil
}

// Disconnect releases the session's VPN connection. Failures are
// returned for logging only; nothing downstream depends on them.
func (s *VPNRegionSwitcher) Disconnect(ctx context.Context, session *entity.RegionSession) error {
	if session == nil || s.token == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/v1/disconnect", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("vpn disconnect returned status %d", resp.StatusCode)
	}
	return nil
}

// AvailableRegions lists the full region catalog
func (s *VPNRegionSwitcher) AvailableRegions() []entity.Region {
	regions := make([]entity.Region, len(regionCatalog))
	copy(regions, regionCatalog)
	return regions
}

// BestRegionFor maps a target country to the catalog region that
// serves it, falling back to US
func (s *VPNRegionSwitcher) BestRegionFor(country string) string {
	for _, region := range regionCatalog {
		if region.Country == country {
			return region.Code
		}
	}
	return "US"
}

func (s *VPNRegionSwitcher) lookup(code string) (entity.Region, bool) {
	for _, region := range regionCatalog {
		if region.Code == code {
			return region, true
		}
	}
	return entity.Region{}, false
}
