package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/storesync/backend/internal/domain/storefront"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB max response

// RestAdapter implements the storefront.Platform port against the
// storefront's REST API.
type RestAdapter struct {
	config     *RestConfig
	httpClient *http.Client
}

// NewRestAdapter creates a new REST adapter with the given configuration
func NewRestAdapter(config *RestConfig) (*RestAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &RestAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// PullOrders fetches all pages matching the request, oldest first
func (a *RestAdapter) PullOrders(ctx context.Context, req *storefront.PullRequest) ([]storefront.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pageSize := req.PageSize
	if pageSize > a.config.PageSize {
		pageSize = a.config.PageSize
	}

	statuses := make([]string, len(req.Statuses))
	for i, s := range req.Statuses {
		statuses[i] = s.String()
	}

	var orders []storefront.Order
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("status", strings.Join(statuses, ","))
		query.Set("per_page", strconv.Itoa(pageSize))
		query.Set("page", strconv.Itoa(page))
		query.Set("orderby", "date")
		query.Set("order", "asc")
		if !req.After.IsZero() {
			query.Set("after", req.After.UTC().Format(time.RFC3339))
		}

		respBody, err := a.doRequest(ctx, http.MethodGet, "/orders", query, nil)
		if err != nil {
			return nil, err
		}

		var wireOrders []wireOrder
		if err := json.Unmarshal(respBody, &wireOrders); err != nil {
			return nil, fmt.Errorf("%w: %v", storefront.ErrInvalidResponse, err)
		}

		for i := range wireOrders {
			orders = append(orders, wireOrders[i].toDomain())
		}

		if len(wireOrders) < pageSize {
			break
		}
	}

	return orders, nil
}

// GetOrder fetches a single order by the storefront's order id
func (a *RestAdapter) GetOrder(ctx context.Context, orderID string) (*storefront.Order, error) {
	if orderID == "" {
		return nil, storefront.ErrOrderNotFound
	}

	respBody, err := a.doRequest(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, nil)
	if err != nil {
		return nil, err
	}

	var wire wireOrder
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", storefront.ErrInvalidResponse, err)
	}

	order := wire.toDomain()
	return &order, nil
}

// UpdateStatus sets the order status on the storefront and appends the
// audit note to the order's history when one is given
func (a *RestAdapter) UpdateStatus(ctx context.Context, update *storefront.StatusUpdate) error {
	if err := update.Validate(); err != nil {
		return err
	}

	path := "/orders/" + url.PathEscape(update.OrderID)
	if _, err := a.doRequest(ctx, http.MethodPut, path, nil, statusUpdateRequest{
		Status: update.Status.String(),
	}); err != nil {
		return err
	}

	if update.Note == "" {
		return nil
	}
	_, err := a.doRequest(ctx, http.MethodPost, path+"/notes", nil, orderNoteRequest{
		Note: update.Note,
	})
	return err
}

// doRequest performs one HTTP request against the storefront API
func (a *RestAdapter) doRequest(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	endpoint := a.config.BaseURL + apiPrefix + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("storefront: failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("storefront: failed to create request: %w", err)
	}
	req.SetBasicAuth(a.config.ConsumerKey, a.config.ConsumerSecret)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storefront.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("storefront: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode < 400:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: HTTP %d", storefront.ErrAuthFailed, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, storefront.ErrOrderNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, storefront.ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: HTTP %d", storefront.ErrUnavailable, resp.StatusCode)
	default:
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("%w: %s - %s", storefront.ErrRequestFailed, apiErr.Code, apiErr.Message)
		}
		return nil, fmt.Errorf("%w: HTTP %d", storefront.ErrRequestFailed, resp.StatusCode)
	}
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

// Ensure RestAdapter implements the Platform port
var _ storefront.Platform = (*RestAdapter)(nil)
