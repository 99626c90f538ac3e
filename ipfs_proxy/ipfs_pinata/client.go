package ipfs_pinata

import (
	"net/http"
	"strings"
	"time"

	"github.com/explormate/explormate-chain/common/config"
	"github.com/rubyist/circuitbreaker"
)

const (
	pinFilePath  = "/pinning/pinFileToIPFS"
	pinJSONPath  = "/pinning/pinJSONToIPFS"
	testAuthPath = "/data/testAuthentication"
	gatewayPath  = "/ipfs/"
)

// Client talks to the Pinata pinning API. It holds an immutable copy of the
// credential set and issues exactly one HTTP request per operation.
type Client struct {
	conf       config.PinataConfig
	apiUrl     string
	gatewayUrl string
	httpClient *http.Client
	now        func() time.Time

	apiBreaker     *circuit.Breaker
	gatewayBreaker *circuit.Breaker
}

type Option func(c *Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithClock replaces time.Now for metadata names and document timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func WithApiUrl(apiUrl string) Option {
	return func(c *Client) {
		c.apiUrl = strings.TrimSuffix(apiUrl, "/")
	}
}

func WithGatewayUrl(gatewayUrl string) Option {
	return func(c *Client) {
		c.gatewayUrl = strings.TrimSuffix(gatewayUrl, "/")
	}
}

func New(conf config.PinataConfig, opts ...Option) *Client {
	defaults := config.NewDefaultMainConfig().Pinata
	if conf.ApiUrl == "" {
		conf.ApiUrl = defaults.ApiUrl
	}
	if conf.GatewayUrl == "" {
		conf.GatewayUrl = defaults.GatewayUrl
	}

	c := &Client{
		conf:       conf,
		apiUrl:     strings.TrimSuffix(conf.ApiUrl, "/"),
		gatewayUrl: strings.TrimSuffix(conf.GatewayUrl, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(conf.TimeoutSeconds) * time.Second,
		},
		now:            time.Now,
		apiBreaker:     newBreaker(conf.BackoffAt),
		gatewayBreaker: newBreaker(conf.BackoffAt),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) HasCredentials() bool {
	return c.conf.HasCredentials()
}

// Stop exists to satisfy ipfs_proxy.IPFSImplementation; there is nothing to release.
func (c *Client) Stop() {
}

func (c *Client) millis() int64 {
	return c.now().UnixNano() / int64(time.Millisecond)
}

func (c *Client) setAuthHeaders(req *http.Request) {
	if c.conf.HasKeyPair() {
		req.Header.Set("pinata_api_key", c.conf.ApiKey)
		req.Header.Set("pinata_secret_api_key", c.conf.SecretApiKey)
	} else if c.conf.Jwt != "" {
		req.Header.Set("Authorization", "Bearer "+c.conf.Jwt)
	}
}
