package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/clockd/clockd/internal/client/models"
	"github.com/clockd/clockd/internal/common"
	"github.com/clockd/clockd/internal/syncapi"
)

// HTTPClient implements Client against the sync server's JSON API. Per-call
// timeouts are this adapter's responsibility; the orchestrator never sets
// deadlines of its own.
type HTTPClient struct {
	baseURL      string
	http         *http.Client
	accessToken  string
	refreshToken string
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// do performs one authenticated call, transparently refreshing the token
// pair and retrying once when the server reports an expired access token.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	err := c.doOnce(ctx, method, path, in, out)
	if !errors.Is(err, common.ErrTokenExpired) || c.refreshToken == "" {
		return err
	}

	var tokens syncapi.TokenResponse
	refreshReq := syncapi.RefreshRequest{RefreshToken: c.refreshToken}
	if err := c.doOnce(ctx, http.MethodPost, "/api/auth/refresh", refreshReq, &tokens); err != nil {
		return err
	}
	c.accessToken = tokens.AccessToken
	c.refreshToken = tokens.RefreshToken

	return c.doOnce(ctx, method, path, in, out)
}

func (c *HTTPClient) doOnce(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *HTTPClient) mapError(resp *http.Response) error {
	var apiErr syncapi.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if apiErr.Error == common.ErrTokenExpired.Error() {
			return common.ErrTokenExpired
		}
		return common.ErrorUnauthorized
	case http.StatusConflict:
		return common.ErrorAlreadyExists
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return common.ErrUnavailable
	default:
		if apiErr.Error != "" {
			return fmt.Errorf("server error: %s", apiErr.Error)
		}
		return fmt.Errorf("server error: status %d", resp.StatusCode)
	}
}

func (c *HTTPClient) Register(ctx context.Context, username, password string) error {
	req := syncapi.RegisterRequest{Username: username, Password: password}
	return c.do(ctx, http.MethodPost, "/api/auth/register", req, nil)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	req := syncapi.LoginRequest{Username: username, Password: password}
	var tokens syncapi.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &tokens); err != nil {
		return "", err
	}
	c.accessToken = tokens.AccessToken
	c.refreshToken = tokens.RefreshToken
	return tokens.UserID, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp syncapi.PingResponse
	if err := c.do(ctx, http.MethodGet, "/api/ping", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return common.ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) FetchItemsSince(ctx context.Context, since int64) ([]*models.Item, error) {
	path := "/api/items?since=" + url.QueryEscape(strconv.FormatInt(since, 10))
	var resp syncapi.FetchItemsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	result := make([]*models.Item, 0, len(resp.Items))
	for _, it := range resp.Items {
		result = append(result, itemFromWire(it))
	}
	return result, nil
}

func (c *HTTPClient) FetchRecordsSince(ctx context.Context, since int64) ([]*models.Record, error) {
	path := "/api/records?since=" + url.QueryEscape(strconv.FormatInt(since, 10))
	var resp syncapi.FetchRecordsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	result := make([]*models.Record, 0, len(resp.Records))
	for _, rec := range resp.Records {
		result = append(result, recordFromWire(rec))
	}
	return result, nil
}

func (c *HTTPClient) PushItems(ctx context.Context, items []*models.Item) ([]*models.Item, error) {
	req := syncapi.PushItemsRequest{Items: make([]syncapi.Item, 0, len(items))}
	for _, it := range items {
		req.Items = append(req.Items, itemToWire(it))
	}
	var resp syncapi.PushItemsResponse
	if err := c.do(ctx, http.MethodPost, "/api/items", req, &resp); err != nil {
		return nil, err
	}
	result := make([]*models.Item, 0, len(resp.Items))
	for _, it := range resp.Items {
		result = append(result, itemFromWire(it))
	}
	return result, nil
}

func (c *HTTPClient) PushRecords(ctx context.Context, records []*models.Record) ([]*models.Record, error) {
	req := syncapi.PushRecordsRequest{Records: make([]syncapi.Record, 0, len(records))}
	for _, rec := range records {
		req.Records = append(req.Records, recordToWire(rec))
	}
	var resp syncapi.PushRecordsResponse
	if err := c.do(ctx, http.MethodPost, "/api/records", req, &resp); err != nil {
		return nil, err
	}
	result := make([]*models.Record, 0, len(resp.Records))
	for _, rec := range resp.Records {
		result = append(result, recordFromWire(rec))
	}
	return result, nil
}

func itemToWire(i *models.Item) syncapi.Item {
	return syncapi.Item{
		ItemID:       i.ItemID,
		UserID:       i.UserID,
		Name:         i.Name,
		Description:  i.Description,
		ClockInCount: i.ClockInCount,
		LastModified: i.LastModified,
		Deleted:      i.Deleted,
	}
}

func itemFromWire(i syncapi.Item) *models.Item {
	return &models.Item{
		ItemID:       i.ItemID,
		UserID:       i.UserID,
		Name:         i.Name,
		Description:  i.Description,
		ClockInCount: i.ClockInCount,
		LastModified: i.LastModified,
		Deleted:      i.Deleted,
	}
}

func recordToWire(r *models.Record) syncapi.Record {
	return syncapi.Record{
		RecordID:     r.RecordID,
		UserID:       r.UserID,
		ItemID:       r.ItemID,
		Timestamp:    r.Timestamp,
		LastModified: r.LastModified,
		Deleted:      r.Deleted,
	}
}

func recordFromWire(r syncapi.Record) *models.Record {
	return &models.Record{
		RecordID:     r.RecordID,
		UserID:       r.UserID,
		ItemID:       r.ItemID,
		Timestamp:    r.Timestamp,
		LastModified: r.LastModified,
		Deleted:      r.Deleted,
	}
}
