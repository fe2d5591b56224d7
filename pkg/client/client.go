// Package client is a Go client for the realmbroker HTTP API.
package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultRealmHeader = "Realm"

type Client struct {
	baseURL     string
	authToken   string
	realm       string
	realmHeader string
	httpClient  *http.Client
}

type Option func(c *Client)

// WithAuthToken sends the token as bearer credentials with every request.
func WithAuthToken(token string) Option {
	return func(c *Client) {
		c.authToken = token
	}
}

// WithRealm selects the realm requests are made in. The server's default
// realm is used when unset.
func WithRealm(realm string) Option {
	return func(c *Client) {
		c.realm = realm
	}
}

func WithRealmHeader(header string) Option {
	return func(c *Client) {
		c.realmHeader = header
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		realmHeader: DefaultRealmHeader,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type urlBuilder struct {
	base  string
	path  string
	query url.Values
}

func (c *Client) url() *urlBuilder {
	return &urlBuilder{base: c.baseURL, query: url.Values{}}
}

func (b *urlBuilder) setPath(path string) *urlBuilder {
	b.path = path
	return b
}

func (b *urlBuilder) addQueryParam(key string, value any) *urlBuilder {
	b.query.Add(key, fmt.Sprint(value))
	return b
}

func (b *urlBuilder) build() string {
	u := b.base + b.path
	if len(b.query) > 0 {
		u += "?" + b.query.Encode()
	}
	return u
}
