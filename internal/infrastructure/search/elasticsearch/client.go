package elasticsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	zlog "github.com/rs/zerolog/log"
)

type Config struct {
	Addresses []string
	Username  string
	Password  string
	CACert    []byte

	MaxRetries     int
	MaxConns       int
	RequestTimeout time.Duration
}

// Client is the process-wide Elasticsearch client. It owns the connection pool
// and is released with Close at shutdown.
type Client struct {
	*es.Client
	transport *http.Transport
}

func NewClient(cfg Config) (*Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("elasticsearch: no addresses configured")
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 10
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          cfg.MaxConns,
		MaxIdleConnsPerHost:   cfg.MaxConns,
		MaxConnsPerHost:       cfg.MaxConns,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: cfg.RequestTimeout,
	}

	c, err := es.NewClient(es.Config{
		Addresses:     cfg.Addresses,
		Username:      cfg.Username,
		Password:      cfg.Password,
		CACert:        cfg.CACert,
		Transport:     tr,
		MaxRetries:    cfg.MaxRetries,
		RetryOnStatus: []int{502, 503, 504},
		RetryOnError:  retryOnError,
		RetryBackoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * 100 * time.Millisecond
		},
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: new client: %w", err)
	}
	return &Client{Client: c, transport: tr}, nil
}

// retryOnError retries transport failures, timeouts included. Context
// cancellation is the caller giving up and is never retried.
func retryOnError(_ *http.Request, err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

func (c *Client) Close() {
	c.transport.CloseIdleConnections()
}

type clusterHealth struct {
	Status   string `json:"status"`
	TimedOut bool   `json:"timed_out"`
}

// clusterStatus returns the cluster health color ("green", "yellow", "red").
// With waitFor set the store blocks until that color is reached or it times out.
func (c *Client) clusterStatus(ctx context.Context, waitFor string) (clusterHealth, error) {
	var h clusterHealth

	opts := []func(*esapi.ClusterHealthRequest){c.Cluster.Health.WithContext(ctx)}
	if waitFor != "" {
		opts = append(opts,
			c.Cluster.Health.WithWaitForStatus(waitFor),
			c.Cluster.Health.WithTimeout(5*time.Second),
		)
	}

	res, err := c.Cluster.Health(opts...)
	if err != nil {
		return h, err
	}
	defer res.Body.Close()

	// 408 means wait_for_status timed out; the body still carries the status.
	if res.IsError() && res.StatusCode != http.StatusRequestTimeout {
		return h, decodeError(res)
	}
	if err := json.NewDecoder(res.Body).Decode(&h); err != nil {
		return h, fmt.Errorf("decode cluster health: %w", err)
	}
	return h, nil
}

// WaitReady blocks until the cluster reports at least the given status or ctx
// is done.
func (c *Client) WaitReady(ctx context.Context, status string) error {
	for {
		h, err := c.clusterStatus(ctx, status)
		switch {
		case err != nil:
			zlog.Warn().Err(err).Msg("elasticsearch not reachable yet")
		case h.TimedOut || !statusAtLeast(h.Status, status):
			zlog.Warn().Str("status", h.Status).Str("want", status).Msg("elasticsearch cluster not ready yet")
		default:
			zlog.Info().Str("status", h.Status).Msg("elasticsearch cluster ready")
			return nil
		}

		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("elasticsearch wait ready: %w", err)
			}
			return fmt.Errorf("elasticsearch wait ready: %w", ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
}

var statusRank = map[string]int{"red": 0, "yellow": 1, "green": 2}

func statusAtLeast(got, want string) bool {
	g, ok := statusRank[got]
	if !ok {
		return false
	}
	return g >= statusRank[want]
}
