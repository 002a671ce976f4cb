package utils

import (
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly,
// while allowing extension with additional application-specific behavior.
type HTTPClient struct {
	*resty.Client
}

// HTTPClientOptions configures [NewHTTPClient].
type HTTPClientOptions struct {
	BaseURL string
	Timeout time.Duration

	// Headers are attached to every request.
	Headers map[string]string
}

// NewHTTPClient creates and returns a new HTTPClient instance.
//
// Each call returns an independent client instance with its own
// configuration, connection pool, and state. Empty header values are skipped.
//
//	client := utils.NewHTTPClient(utils.HTTPClientOptions{BaseURL: "https://x.supabase.co/rest/v1"})
//	resp, err := client.R().Get("/invoices")
func NewHTTPClient(opts HTTPClientOptions) *HTTPClient {
	cli := resty.New()

	if opts.BaseURL != "" {
		cli.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	}
	if opts.Timeout > 0 {
		cli.SetTimeout(opts.Timeout)
	}
	for name, value := range opts.Headers {
		if value == "" {
			continue
		}
		cli.SetHeader(name, value)
	}

	return &HTTPClient{Client: cli}
}
