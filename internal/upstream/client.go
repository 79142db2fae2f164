package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"workorder_dashboard/internal/models"
)

// ErrWorkOrderNotFound maps upstream 404/410 responses.
var ErrWorkOrderNotFound = errors.New("upstream: work order not found")

const defaultHTTPTimeout = 10 * time.Second

// LogQuery narrows a historical log page request.
type LogQuery struct {
	Limit  int
	Offset int
	Level  string
	Step   string
}

// Client is the pull-mode collaborator: paged historical logs and the
// step-history fallback, both served by the work-order executor.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// LogPage fetches one page of historical log events for the work order.
func (c *Client) LogPage(ctx context.Context, workOrderID string, q LogQuery) (models.LogPage, error) {
	vals := url.Values{}
	if q.Limit > 0 {
		vals.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		vals.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Level != "" {
		vals.Set("level", q.Level)
	}
	if q.Step != "" {
		vals.Set("step", q.Step)
	}

	var page models.LogPage
	path := "/api/v1/workorders/" + url.PathEscape(workOrderID) + "/logs"
	if err := c.get(ctx, path, vals, &page); err != nil {
		return models.LogPage{}, err
	}
	return page, nil
}

// StepHistory fetches the ordered per-step records for the work order.
func (c *Client) StepHistory(ctx context.Context, workOrderID string) ([]models.StepRecord, error) {
	var out struct {
		Steps []models.StepRecord `json:"steps"`
	}
	path := "/api/v1/workorders/" + url.PathEscape(workOrderID) + "/steps"
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Steps, nil
}

func (c *Client) get(ctx context.Context, path string, vals url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(vals) > 0 {
		reqURL += "?" + vals.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("%w: %s", ErrWorkOrderNotFound, path)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upstream: %s returned %s: %s", path, resp.Status, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
