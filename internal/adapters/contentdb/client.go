// Package contentdb talks to TheMealDB and TheCocktailDB. One client serves
// one source; both go through a circuit breaker so an outage of a public API
// fails fast instead of stacking up timed-out requests.
package contentdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goncalofm90/foodi3/internal/contextkeys"
	"github.com/goncalofm90/foodi3/internal/core/domain"
	"github.com/goncalofm90/foodi3/internal/core/port"

	gobreaker "github.com/sony/gobreaker/v2"
)

const DefaultTimeout = 10 * time.Second

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	// OnBreakerStateChange is called on every breaker transition; may be nil.
	OnBreakerStateChange func(name, from, to string)
}

type ContentDBClient struct {
	source     Source
	baseURL    string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[[]byte]
}

func NewContentDBClient(source Source, cfg ClientConfig, logger port.LoggerPort) *ContentDBClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cbLogger := logger.WithFields(port.Fields{"component": "ContentDBClient", "source": source.Name})

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        source.Name + "-api",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		// A caller going away says nothing about the API's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			cbLogger.Warn("Circuit breaker state transition", port.Fields{"breaker": name, "from": from.String(), "to": to.String()})
			if cfg.OnBreakerStateChange != nil {
				cfg.OnBreakerStateChange(name, from.String(), to.String())
			}
		},
	})

	return &ContentDBClient{
		source:     source,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cb:         cb,
	}
}

func (c *ContentDBClient) Kind() domain.ItemKind {
	return c.source.Kind
}

// Search returns matching items. An empty query returns an empty list
// without calling the API.
func (c *ContentDBClient) Search(ctx context.Context, query string) ([]domain.DisplayItem, error) {
	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "ContentDBClient",
		"method":    "Search",
		"source":    c.source.Name,
		"query":     query,
	})

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.DisplayItem{}, nil
	}

	body, err := c.get(ctx, "/search.php?s="+url.QueryEscape(query))
	if err != nil {
		clientLogger.Error("Search request failed", err, nil)
		return nil, err
	}
	items, err := decodeItems(body, c.source.ListKey)
	if err != nil {
		clientLogger.Error("Failed to decode search response", err, nil)
		return nil, fmt.Errorf("%w: %w", domain.ErrContentFetch, err)
	}

	result := make([]domain.DisplayItem, 0, len(items))
	for _, it := range items {
		item := c.source.toDisplayItem(it)
		if item.ID == "" {
			continue
		}
		result = append(result, item)
	}
	clientLogger.Debug("Search finished.", port.Fields{"results": len(result)})
	return result, nil
}

// GetByID returns nil, nil when the API knows no such item.
func (c *ContentDBClient) GetByID(ctx context.Context, id string) (*domain.ItemDetails, error) {
	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "ContentDBClient",
		"method":    "GetByID",
		"source":    c.source.Name,
		"item_id":   id,
	})

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}

	body, err := c.get(ctx, "/lookup.php?i="+url.QueryEscape(id))
	if err != nil {
		clientLogger.Error("Lookup request failed", err, nil)
		return nil, err
	}
	items, err := decodeItems(body, c.source.ListKey)
	if err != nil {
		clientLogger.Error("Failed to decode lookup response", err, nil)
		return nil, fmt.Errorf("%w: %w", domain.ErrContentFetch, err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	details := c.source.toItemDetails(items[0])
	return &details, nil
}

func (c *ContentDBClient) get(ctx context.Context, path string) ([]byte, error) {
	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.doRequest(ctx, c.baseURL+path)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s unavailable: %w", domain.ErrContentFetch, c.source.Name, err)
		}
		return nil, err
	}
	return body, nil
}

func (c *ContentDBClient) doRequest(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrContentFetch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %w", domain.ErrContentFetch, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", domain.ErrContentFetch, c.source.Name, resp.StatusCode)
	}
	return body, nil
}
