// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mongo

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/poiesic/netingest/core"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultServerSelectionTimeout = 30 * time.Second
	defaultConnectTimeout         = 10 * time.Second
	disconnectTimeout             = 5 * time.Second
)

// URI query options that must never be enabled, and the value that enables them.
var insecureOptions = map[string]string{
	"tls":                         "false",
	"ssl":                         "false",
	"tlsinsecure":                 "true",
	"tlsallowinvalidcertificates": "true",
	"tlsallowinvalidhostnames":    "true",
	"sslallowinvalidcertificates": "true",
	"sslallowinvalidhostnames":    "true",
}

type connector struct {
	caFile                 string
	serverSelectionTimeout time.Duration
	connectTimeout         time.Duration
	logger                 *slog.Logger
	dial                   func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error)
}

// Option configures a Loader or CollectionSource.
type Option func(*connector)

// WithCAFile verifies the server against the PEM bundle at path instead of
// the system roots.
func WithCAFile(path string) Option {
	return func(c *connector) {
		c.caFile = path
	}
}

// WithServerSelectionTimeout bounds how long the driver waits for a usable
// server. Default is 30s.
func WithServerSelectionTimeout(d time.Duration) Option {
	return func(c *connector) {
		if d > 0 {
			c.serverSelectionTimeout = d
		}
	}
}

// WithConnectTimeout bounds a single TCP+TLS handshake. Default is 10s.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *connector) {
		if d > 0 {
			c.connectTimeout = d
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *connector) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

func newConnector(opts []Option) connector {
	c := connector{
		serverSelectionTimeout: defaultServerSelectionTimeout,
		connectTimeout:         defaultConnectTimeout,
		logger:                 slog.Default(),
		dial: func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
			return mongo.Connect(ctx, opts)
		},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// CheckURI rejects connection strings that turn off TLS or certificate
// verification. Hosts are not parsed here; the driver validates the rest.
// Options may be separated by '&' or ';'. A pair whose escapes do not decode
// is checked as written.
func CheckURI(uri string) error {
	idx := strings.IndexByte(uri, '?')
	if idx < 0 {
		return nil
	}
	pairs := strings.FieldsFunc(uri[idx+1:], func(r rune) bool {
		return r == '&' || r == ';'
	})
	for _, pair := range pairs {
		key, value, _ := strings.Cut(pair, "=")
		key, value = unescapeOption(key), unescapeOption(value)
		bad, ok := insecureOptions[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(value), bad) {
			return fmt.Errorf("%w: %s=%s", ErrInsecureTransport, key, value)
		}
	}
	return nil
}

func unescapeOption(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}

// TLSConfig builds the verified TLS configuration used for every connection.
func (c connector) TLSConfig() (*tls.Config, error) {
	var pool *x509.CertPool
	if c.caFile != "" {
		pem, err := os.ReadFile(c.caFile)
		if err != nil {
			return nil, err
		}
		pool = x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCABundle, c.caFile)
		}
	} else {
		var err error
		pool, err = x509.SystemCertPool()
		if err != nil {
			return nil, err
		}
	}
	return &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	}, nil
}

// connect opens a client to uri and pings the primary. Failures are tagged
// with kind and stage so loads and exports report under their own step.
func (c connector) connect(ctx context.Context, uri string, kind core.Kind, stage core.Stage) (*mongo.Client, error) {
	if err := CheckURI(uri); err != nil {
		return nil, core.Wrap(core.KindConfig, stage, err)
	}
	tlsConfig, err := c.TLSConfig()
	if err != nil {
		return nil, core.Wrap(core.KindConfig, stage, err)
	}

	// SetTLSConfig comes after ApplyURI so nothing in the URI can replace it.
	clientOpts := options.Client().
		ApplyURI(uri).
		SetTLSConfig(tlsConfig).
		SetServerSelectionTimeout(c.serverSelectionTimeout).
		SetConnectTimeout(c.connectTimeout)

	client, err := c.dial(ctx, clientOpts)
	if err != nil {
		return nil, core.Wrap(kind, stage, fmt.Errorf("connect: %w", err))
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		c.disconnect(client)
		return nil, core.Wrap(kind, stage, fmt.Errorf("ping: %w", err))
	}
	return client, nil
}

func (c connector) disconnect(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		c.logger.Warn("error disconnecting from mongodb", "err", err)
	}
}
