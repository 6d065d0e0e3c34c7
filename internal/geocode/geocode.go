package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joshua-takyi/rentyclub/internal/models"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "rentyclub-api/1.0"
	DefaultCacheTTL  = 24 * time.Hour
	requestTimeout   = 10 * time.Second
)

var ErrNoResults = errors.New("address not found")

// Cache stores resolved addresses. A miss is (zero, false, nil).
type Cache interface {
	Get(ctx context.Context, address string) (models.Coordinates, bool, error)
	Set(ctx context.Context, address string, c models.Coordinates, ttl time.Duration) error
}

type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	cache      Cache
	ttl        time.Duration
	logger     *slog.Logger
}

type Option func(*Client)

func WithCache(c Cache, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		if ttl > 0 {
			cl.ttl = ttl
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(cl *Client) { cl.httpClient = h }
}

func New(baseURL, userAgent string, logger *slog.Logger, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: requestTimeout},
		ttl:        DefaultCacheTTL,
		logger:     logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func normalize(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}

// Geocode resolves a free-text address to the first match.
func (c *Client) Geocode(ctx context.Context, address string) (models.Coordinates, error) {
	key := normalize(address)
	if key == "" {
		return models.Coordinates{}, ErrNoResults
	}

	if c.cache != nil {
		coords, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.Warn("geocode cache read failed", "error", err)
		} else if ok {
			return coords, nil
		}
	}

	coords, err := c.lookup(ctx, address)
	if err != nil {
		return models.Coordinates{}, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, coords, c.ttl); err != nil {
			c.logger.Warn("geocode cache write failed", "error", err)
		}
	}
	return coords, nil
}

func (c *Client) lookup(ctx context.Context, address string) (models.Coordinates, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("failed to build geocode request: %v", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("geocode request failed: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return models.Coordinates{}, fmt.Errorf("geocoder returned status %d", res.StatusCode)
	}

	var places []place
	if err := json.NewDecoder(res.Body).Decode(&places); err != nil {
		return models.Coordinates{}, fmt.Errorf("failed to decode geocode response: %v", err)
	}
	if len(places) == 0 {
		return models.Coordinates{}, ErrNoResults
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("invalid latitude %q: %v", places[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("invalid longitude %q: %v", places[0].Lon, err)
	}
	return models.Coordinates{Latitude: lat, Longitude: lng}, nil
}

// Resolve geocodes address and falls back to prev when the lookup fails.
// Failures are logged, never returned.
func (c *Client) Resolve(ctx context.Context, address string, prev models.Coordinates) models.Coordinates {
	coords, err := c.Geocode(ctx, address)
	if err != nil {
		c.logger.Warn("geocoding failed, keeping previous coordinates", "address", address, "error", err)
		return prev
	}
	return coords
}
