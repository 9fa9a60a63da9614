// Package storefront provides the REST adapter to the upstream storefront
// platform. The wire format follows the storefront's v3 commerce API:
// JSON payloads, string-encoded amounts and key/secret basic auth.
package storefront

import (
	"errors"
	"strings"
	"time"
)

// RestConfig holds configuration for the storefront REST API
type RestConfig struct {
	// BaseURL is the shop root, e.g. "https://shop.example.com"
	BaseURL string
	// ConsumerKey is the API consumer key
	ConsumerKey string
	// ConsumerSecret is the API consumer secret
	ConsumerSecret string
	// Timeout is the HTTP request timeout
	Timeout time.Duration
	// PageSize is the number of orders requested per page (1..100)
	PageSize int
}

// Errors for storefront configuration
var (
	ErrConfigMissingBaseURL        = errors.New("storefront: base URL is required")
	ErrConfigMissingConsumerKey    = errors.New("storefront: consumer key is required")
	ErrConfigMissingConsumerSecret = errors.New("storefront: consumer secret is required")
)

// apiPrefix is the storefront's REST namespace, appended to the base URL.
const apiPrefix = "/wp-json/wc/v3"

// Validate validates the configuration and applies defaults
func (c *RestConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.ConsumerKey == "" {
		return ErrConfigMissingConsumerKey
	}
	if c.ConsumerSecret == "" {
		return ErrConfigMissingConsumerSecret
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		c.PageSize = 100
	}
	return nil
}
