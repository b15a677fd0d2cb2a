// Package rest reads the ledger from a key-value REST store that serves
// each resource as a JSON array at GET {base}/{resource}.
package rest

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

const (
	transactionsPath = "transactions"
	assetsPath       = "assets"
	categoriesPath   = "categories"
)

type Client struct {
	baseURL string
	http    *http.Client
}

var _ ledger.Reader = (*Client)(nil)

// New returns a client for baseURL. A nil httpClient gets a pooled default.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = newHTTPClient()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) Transactions(ctx context.Context) ([]core.Transaction, error) {
	return fetch(ctx, c, transactionsPath, ledger.DecodeTransactions)
}

func (c *Client) Assets(ctx context.Context) ([]core.Asset, error) {
	return fetch(ctx, c, assetsPath, ledger.DecodeAssets)
}

func (c *Client) Categories(ctx context.Context) ([]core.Category, error) {
	return fetch(ctx, c, categoriesPath, ledger.DecodeCategories)
}

func fetch[T any](ctx context.Context, c *Client, resource string, decode func(io.Reader) ([]T, error)) ([]T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+resource, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", resource, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", resource, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("fetch %s: %w", resource, ledger.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch %s: unexpected status %d: %s", resource, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	out, err := decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", resource, err)
	}
	return out, nil
}

func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   6,
			IdleConnTimeout:       90 * time.Second,
			ResponseHeaderTimeout: 15 * time.Second,
		},
	}
}
