// Package geo reads provinces, cities/municipalities and barangays from the Philippine
// Standard Geographic Code API.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker"

	"github.com/jwalitptl/clinic-api/pkg/circuitbreaker"
)

var ErrInvalidCode = errors.New("invalid geographic code")

// Area is one entry of any PSGC level
type Area struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	RegionCode   string `json:"regionCode,omitempty"`
	ProvinceCode string `json:"provinceCode,omitempty"`
	IsCity       bool   `json:"isCity,omitempty"`
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("geo api %s returned status %d", e.URL, e.StatusCode)
}

type Client interface {
	Provinces(ctx context.Context) ([]Area, error)
	CitiesMunicipalities(ctx context.Context, provinceCode string) ([]Area, error)
	Barangays(ctx context.Context, cityCode string) ([]Area, error)
}

type Config struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type client struct {
	baseURL string
	http    *http.Client
	cache   *cache.Cache
	cb      *gobreaker.CircuitBreaker
}

func NewClient(cfg Config) Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		cache:   cache.New(ttl, 2*ttl),
		cb:      circuitbreaker.New(circuitbreaker.DefaultSettings("geo-api")),
	}
}

func (c *client) Provinces(ctx context.Context) ([]Area, error) {
	return c.get(ctx, "/provinces.json")
}

func (c *client) CitiesMunicipalities(ctx context.Context, provinceCode string) ([]Area, error) {
	if !validCode(provinceCode) {
		return nil, ErrInvalidCode
	}
	return c.get(ctx, "/provinces/"+url.PathEscape(provinceCode)+"/cities-municipalities.json")
}

func (c *client) Barangays(ctx context.Context, cityCode string) ([]Area, error) {
	if !validCode(cityCode) {
		return nil, ErrInvalidCode
	}
	return c.get(ctx, "/cities-municipalities/"+url.PathEscape(cityCode)+"/barangays.json")
}

// get is a single attempt. Failures are not retried. Callers always get their own copy.
func (c *client) get(ctx context.Context, path string) ([]Area, error) {
	if cached, ok := c.cache.Get(path); ok {
		return slices.Clone(cached.([]Area)), nil
	}

	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.fetch(ctx, c.baseURL+path)
	})
	if err != nil {
		return nil, err
	}

	areas := out.([]Area)
	c.cache.SetDefault(path, areas)
	return slices.Clone(areas), nil
}

func (c *client) fetch(ctx context.Context, target string) ([]Area, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call geo api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: target, StatusCode: resp.StatusCode}
	}

	var areas []Area
	if err := json.NewDecoder(resp.Body).Decode(&areas); err != nil {
		return nil, fmt.Errorf("failed to decode geo response: %w", err)
	}
	if areas == nil {
		areas = []Area{}
	}
	return areas, nil
}

func validCode(code string) bool {
	if code == "" || len(code) > 10 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
