package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mayday/coordinator/internal/constants"

	"github.com/go-resty/resty/v2"
)

const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// Coordinates is a resolved latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Address holds the components a reverse lookup can fill in. Any may be nil.
type Address struct {
	Street   *string `json:"street,omitempty"`
	City     *string `json:"city,omitempty"`
	Postcode *string `json:"postcode,omitempty"`
	Country  *string `json:"country,omitempty"`
}

func (a *Address) IsEmpty() bool {
	return a == nil || (a.Street == nil && a.City == nil && a.Postcode == nil && a.Country == nil)
}

// Geocoder resolves addresses to coordinates and back. A lookup that finds
// nothing returns a ProviderError with code ErrCodeNoResult.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*Coordinates, error)
	Reverse(ctx context.Context, lat, lon float64) (*Address, error)
}

// NominatimProvider implements Geocoder against the OpenStreetMap Nominatim API
type NominatimProvider struct {
	client *resty.Client
}

var _ Geocoder = (*NominatimProvider)(nil)

// NewNominatimProvider creates a new Nominatim client. Nominatim's usage policy
// requires an identifying User-Agent.
func NewNominatimProvider(baseURL, userAgent string, timeout time.Duration) *NominatimProvider {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(1).
		SetRetryWaitTime(200 * time.Millisecond).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)

	return &NominatimProvider{client: client}
}

// nominatim returns lat/lon as strings
type searchHit struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

type reverseHit struct {
	Error   string `json:"error"`
	Address struct {
		Road         string `json:"road"`
		HouseNumber  string `json:"house_number"`
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Municipality string `json:"municipality"`
		Postcode     string `json:"postcode"`
		Country      string `json:"country"`
	} `json:"address"`
}

// Geocode resolves a free-text address to the best matching coordinates
func (p *NominatimProvider) Geocode(ctx context.Context, query string) (*Coordinates, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Geocoding query cannot be empty",
		}
	}

	body, err := p.get(ctx, "/search", map[string]string{
		"q":      query,
		"format": "json",
		"limit":  "1",
	})
	if err != nil {
		return nil, err
	}

	var hits []searchHit
	if err := json.Unmarshal(body, &hits); err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to decode search response",
			Details: string(body),
			Err:     err,
		}
	}
	if len(hits) == 0 {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNoResult,
			Message: constants.GetErrorMessage(constants.ErrCodeNoResult),
			Details: query,
		}
	}

	lat, errLat := strconv.ParseFloat(hits[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(hits[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Search result carried unparsable coordinates",
			Details: fmt.Sprintf("lat=%q lon=%q", hits[0].Lat, hits[0].Lon),
		}
	}

	return &Coordinates{Latitude: lat, Longitude: lon}, nil
}

// Reverse resolves coordinates to address components
func (p *NominatimProvider) Reverse(ctx context.Context, lat, lon float64) (*Address, error) {
	body, err := p.get(ctx, "/reverse", map[string]string{
		"lat":    strconv.FormatFloat(lat, 'f', -1, 64),
		"lon":    strconv.FormatFloat(lon, 'f', -1, 64),
		"format": "json",
	})
	if err != nil {
		return nil, err
	}

	var hit reverseHit
	if err := json.Unmarshal(body, &hit); err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to decode reverse response",
			Details: string(body),
			Err:     err,
		}
	}

	a := hit.Address
	street := strings.TrimSpace(a.Road + " " + a.HouseNumber)
	addr := &Address{
		Street:   nonEmpty(street),
		City:     nonEmpty(firstNonEmpty(a.City, a.Town, a.Village, a.Municipality)),
		Postcode: nonEmpty(a.Postcode),
		Country:  nonEmpty(a.Country),
	}

	if hit.Error != "" || addr.IsEmpty() {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNoResult,
			Message: constants.GetErrorMessage(constants.ErrCodeNoResult),
			Details: hit.Error,
		}
	}
	return addr, nil
}

func (p *NominatimProvider) get(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(endpoint)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}

	switch {
	case resp.StatusCode() == http.StatusTooManyRequests:
		return nil, &ProviderError{
			Code:    constants.ErrCodeRateLimited,
			Message: constants.GetErrorMessage(constants.ErrCodeRateLimited),
			Details: resp.String(),
		}
	case resp.IsError():
		return nil, &ProviderError{
			Code:    constants.ErrCodeUpstreamError,
			Message: fmt.Sprintf("Geocoder returned status %d for %s", resp.StatusCode(), endpoint),
			Details: resp.String(),
		}
	}

	return resp.Body(), nil
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
