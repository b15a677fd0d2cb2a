package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"fintrack/internal/cache"
	"fintrack/internal/log"
)

// Source fetches a full rate table for one pivot currency.
type Source interface {
	Fetch(ctx context.Context, pivot string) (Rates, error)
}

// HTTPSource talks to an exchangerate-api compatible endpoint:
// GET {baseURL}/{apiKey}/latest/{pivot}.
type HTTPSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPSource builds a source. A nil client gets a pooled default.
func NewHTTPSource(baseURL, apiKey string, client *http.Client) *HTTPSource {
	if client == nil {
		client = newHTTPClient()
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

type latestResponse struct {
	Result    string             `json:"result"`
	ErrorType string             `json:"error-type"`
	Base      string             `json:"base_code"`
	Rates     map[string]float64 `json:"conversion_rates"`
}

func (s *HTTPSource) Fetch(ctx context.Context, pivot string) (Rates, error) {
	endpoint := fmt.Sprintf("%s/%s/latest/%s", s.baseURL, url.PathEscape(s.apiKey), url.PathEscape(pivot))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build rates request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRatesUnavailable, err)
	}
	defer resp.Body.Close()

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode response (status %d): %v", ErrRatesUnavailable, resp.StatusCode, err)
	}
	if body.Result != "success" {
		reason := body.ErrorType
		if reason == "" {
			reason = resp.Status
		}
		return nil, fmt.Errorf("%w: provider returned %q", ErrRatesUnavailable, reason)
	}
	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("%w: empty rate table", ErrRatesUnavailable)
	}

	rates := Rates(body.Rates)
	if _, ok := rates[pivot]; !ok {
		rates[pivot] = 1
	}
	return rates, nil
}

func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Timeout: 15 * time.Second,
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   2,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			ForceAttemptHTTP2:     true,
		},
	}
}

// fetchTimeout bounds one shared source fetch.
const fetchTimeout = 20 * time.Second

// Provider serves rate tables from a TTL cache, refilling it from a Source.
// Concurrent misses for the same pivot share one fetch. When a refresh fails
// and an expired table is still held, that table is served instead.
//
// Returned tables are shared and must not be modified.
type Provider struct {
	source Source
	cache  *cache.LRUCache[Rates]
	group  singleflight.Group
	logger *log.Logger
	slog   *log.StructuredLogger
}

func NewProvider(source Source, ttl time.Duration, logger *log.Logger) *Provider {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentRates)
	return &Provider{
		source: source,
		cache:  cache.NewLRUCache[Rates](32, ttl),
		logger: logger,
		slog:   log.NewStructuredLogger(logger),
	}
}

// Cache exposes the backing cache so it can be swept by a cache.Manager.
func (p *Provider) Cache() *cache.LRUCache[Rates] {
	return p.cache
}

// Rates returns the table for pivot.
func (p *Provider) Rates(ctx context.Context, pivot string) (Rates, error) {
	pivot = strings.ToUpper(pivot)
	if rates, fresh, ok := p.cache.Peek(pivot); ok && fresh {
		return rates, nil
	}

	// The fetch runs detached from ctx; a cancelled caller only stops waiting.
	ch := p.group.DoChan(pivot, func() (any, error) {
		if rates, fresh, ok := p.cache.Peek(pivot); ok && fresh {
			return rates, nil
		}
		if p.source == nil {
			return nil, ErrRatesUnavailable
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		rates, err := p.source.Fetch(fetchCtx, pivot)
		if err != nil {
			return nil, err
		}
		p.cache.Set(pivot, rates)
		p.slog.LogRatesFetched(fetchCtx, pivot, len(rates), "provider")
		return rates, nil
	})

	var v any
	var err error
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		v, err = res.Val, res.Err
	}
	if err == nil {
		return v.(Rates), nil
	}

	if stale, _, ok := p.cache.Peek(pivot); ok {
		p.logger.WarnContext(ctx, "Serving stale exchange rates", log.FieldPivot, pivot, log.FieldError, err.Error())
		return stale, nil
	}
	if !errors.Is(err, ErrRatesUnavailable) {
		err = fmt.Errorf("%w: %v", ErrRatesUnavailable, err)
	}
	return nil, err
}

// Prime stores a table received out of band, e.g. from a broadcast.
func (p *Provider) Prime(ctx context.Context, pivot string, rates Rates) {
	pivot = strings.ToUpper(pivot)
	if len(rates) == 0 {
		return
	}
	p.cache.Set(pivot, rates)
	p.slog.LogRatesFetched(ctx, pivot, len(rates), "broadcast")
}
