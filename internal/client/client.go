// Package client is the Go client for the Courier API. A Client carries an
// explicit Session and reports server-side expiry to a SessionObserver.
// Wire errors map back to the same domain errors the server raised.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JaimeStill/courier/pkg/auth"
)

const defaultTimeout = 30 * time.Second

// Config configures a Client. BaseURL includes the API base path,
// for example http://localhost:8080/api.
type Config struct {
	BaseURL    string
	Session    Session
	Observer   SessionObserver
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client calls the Courier API on behalf of one session.
type Client struct {
	base    *url.URL
	session Session
	http    *http.Client
	logger  *slog.Logger
	expiry  *expiry
}

// New creates a Client from cfg.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %s", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		base:    base,
		session: cfg.Session,
		http:    httpClient,
		logger:  logger.With("system", "client"),
		expiry:  &expiry{observer: cfg.Observer},
	}, nil
}

// Session returns the session the client sends.
func (c *Client) Session() Session {
	return c.session
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		err := decodeError(resp)
		if errors.Is(err, auth.ErrSessionExpired) {
			c.logger.Warn("session expired", "user", c.session.UserID)
			c.expiry.notify(c.session)
		}
		return err
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// escape encodes a path segment; path arguments to do are already escaped.
func escape(segment string) string {
	return url.PathEscape(segment)
}
