package googlemaps

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com/maps/api"

	metersToMiles = 0.000621371
)

// GoogleClient implements ports.Geocoder and ports.RouteProvider against the
// Google Maps Geocoding and Directions web services.
//
// Every outbound request waits on a shared rate limiter, so geocoding a whole
// catalog cannot exceed the configured quota. The client is safe for
// concurrent use.
type GoogleClient struct {
	session *http.Client
	apiKey  string
	baseURL string
	limiter *rate.Limiter
	backoff time.Duration
}

type Options struct {
	BaseURL string
	// RequestsPerMinute <= 0 disables rate limiting.
	RequestsPerMinute int
	HTTPClient        *http.Client
}

func NewGoogleClient(apiKey string, opts Options) (*GoogleClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("google api key is empty")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	session := opts.HTTPClient
	if session == nil {
		session = &http.Client{Timeout: 10 * time.Second}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}

	return &GoogleClient{
		session: session,
		apiKey:  apiKey,
		baseURL: baseURL,
		limiter: limiter,
		backoff: 200 * time.Millisecond,
	}, nil
}

// normalize collapses whitespace so equivalent addresses share cache keys.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
