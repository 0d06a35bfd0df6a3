package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bloom-shop/internal/domain"
)

// DefaultRemoteTimeout bounds every call to the remote record API
const DefaultRemoteTimeout = 3 * time.Second

// RemoteSource reads products from an HTTP record API exposing
// GET {base}/products and GET {base}/products/{id}
type RemoteSource struct {
	BaseURL string
	Client  *http.Client
}

// NewRemoteSource creates a client for baseURL. A non-positive timeout uses
// DefaultRemoteTimeout.
func NewRemoteSource(baseURL string, timeout time.Duration) *RemoteSource {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	return &RemoteSource{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

// List fetches GET {base}/products
func (s *RemoteSource) List(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	found, err := s.fetch(ctx, s.BaseURL+"/products", &products)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: product collection not found", ErrSourceUnavailable)
	}
	return products, nil
}

// Get fetches GET {base}/products/{id}; a 404 reports false
func (s *RemoteSource) Get(ctx context.Context, id int64) (domain.Product, bool, error) {
	var p domain.Product
	found, err := s.fetch(ctx, s.BaseURL+"/products/"+strconv.FormatInt(id, 10), &p)
	if err != nil || !found {
		return domain.Product{}, false, err
	}
	return p, true, nil
}

// fetch decodes the JSON body at target into out. It reports false on 404.
func (s *RemoteSource) fetch(ctx context.Context, target string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, fmt.Errorf("%w: status=%d", ErrSourceUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("%w: failed to decode response: %v", ErrSourceUnavailable, err)
	}
	return true, nil
}
