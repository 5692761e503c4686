// Package kb is the gateway to the knowledge-base review backend. Every
// method is one request/response exchange: no retries, no client-side
// timeout beyond the caller's context.
package kb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kalambet/qareview/internal/format"
)

// Client communicates with the review backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client targeting the given backend base URL.
func New(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 0,
		},
		logger: logger,
	}
}

// envelope is the common part of every backend response.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// call performs one exchange and decodes the payload into out (may be nil).
func (c *Client) call(ctx context.Context, op, method, path string, body, out any) (envelope, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return envelope{}, fmt.Errorf("%s: marshalling request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return envelope{}, fmt.Errorf("%s: creating request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend unreachable", "op", op, "error", err)
		return envelope{}, fmt.Errorf("%s: request: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return envelope{}, fmt.Errorf("%s: reading response: %w", op, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Warn("malformed backend response", "op", op, "status", resp.StatusCode)
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return envelope{}, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
		}
		return envelope{}, fmt.Errorf("%s: decoding response: %w", op, err)
	}
	if !env.Success {
		c.logger.Warn("backend rejected request", "op", op, "status", resp.StatusCode, "error", env.Error)
		return env, &RejectedError{Op: op, Status: resp.StatusCode, Message: env.Error}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return env, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return env, fmt.Errorf("%s: decoding payload: %w", op, err)
		}
	}
	return env, nil
}

type segmentsResponse struct {
	Data  []Segment `json:"data"`
	Total int       `json:"total"`
}

// ListUnreviewed returns the unreviewed pool and the server-reported total.
func (c *Client) ListUnreviewed(ctx context.Context) ([]Segment, int, error) {
	var out segmentsResponse
	if _, err := c.call(ctx, "list unreviewed", http.MethodGet, "/api/unreviewed/segments", nil, &out); err != nil {
		return nil, 0, err
	}
	return out.Data, out.Total, nil
}

// ListDocuments returns the reviewed category documents.
func (c *Client) ListDocuments(ctx context.Context) ([]Document, error) {
	var out struct {
		Data []Document `json:"data"`
	}
	if _, err := c.call(ctx, "list documents", http.MethodGet, "/api/reviewed/documents", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListDocumentSegments returns the reviewed segments of one document.
func (c *Client) ListDocumentSegments(ctx context.Context, documentID string) ([]Segment, int, error) {
	var out segmentsResponse
	path := "/api/reviewed/segments/" + url.PathEscape(documentID)
	if _, err := c.call(ctx, "list document segments", http.MethodGet, path, nil, &out); err != nil {
		return nil, 0, err
	}
	return out.Data, out.Total, nil
}

// GetReviewedSegment fetches one reviewed segment. Question and answer are
// parsed from the raw line-prefixed content when the backend omits them.
func (c *Client) GetReviewedSegment(ctx context.Context, segmentID string) (Segment, error) {
	var out struct {
		Data Segment `json:"data"`
	}
	path := "/api/reviewed/segment/" + url.PathEscape(segmentID)
	if _, err := c.call(ctx, "get reviewed segment", http.MethodGet, path, nil, &out); err != nil {
		return Segment{}, err
	}
	seg := out.Data
	if seg.Content != "" {
		seg.Question, seg.Answer = format.ParseQAContent(seg.Content)
	}
	if seg.ID == "" {
		seg.ID = segmentID
	}
	return seg, nil
}

// UpdateSegment rewrites the question and answer of a segment in the given
// dataset.
func (c *Client) UpdateSegment(ctx context.Context, req UpdateRequest) error {
	_, err := c.call(ctx, "update segment", http.MethodPost, "/api/segment/update", req, nil)
	return err
}

// ApproveSegment moves a segment from the unreviewed pool into the target
// document and returns the server message, if any.
func (c *Client) ApproveSegment(ctx context.Context, req ApproveRequest) (string, error) {
	env, err := c.call(ctx, "approve segment", http.MethodPost, "/api/segment/approve", req, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// DeleteSegment removes a segment from the given dataset.
func (c *Client) DeleteSegment(ctx context.Context, req DeleteRequest) error {
	_, err := c.call(ctx, "delete segment", http.MethodPost, "/api/segment/delete", req, nil)
	return err
}

// CheckDuplicates runs the server-side duplicate detection. threshold is a
// fraction in [0,1].
func (c *Client) CheckDuplicates(ctx context.Context, threshold float64) (DuplicateReport, error) {
	var out struct {
		Data DuplicateReport `json:"data"`
	}
	body := map[string]float64{"similarity_threshold": threshold}
	if _, err := c.call(ctx, "check duplicates", http.MethodPost, "/api/reviewed/check-duplicates", body, &out); err != nil {
		return DuplicateReport{}, err
	}
	return out.Data, nil
}

// TodayCount returns how many segments were approved today.
func (c *Client) TodayCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if _, err := c.call(ctx, "today stats", http.MethodGet, "/api/stats/today", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// TotalReviewed returns the number of segments across all reviewed documents.
func (c *Client) TotalReviewed(ctx context.Context) (int, error) {
	var out struct {
		Total int `json:"total"`
	}
	if _, err := c.call(ctx, "total reviewed", http.MethodGet, "/api/stats/total-reviewed", nil, &out); err != nil {
		return 0, err
	}
	return out.Total, nil
}

// MonthlyStats returns the per-day approval counts of one month keyed by
// ISO date.
func (c *Client) MonthlyStats(ctx context.Context, year, month int) (map[string]int, error) {
	var out struct {
		Stats map[string]int `json:"stats"`
	}
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(month))
	if _, err := c.call(ctx, "monthly stats", http.MethodGet, "/api/stats/monthly?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	if out.Stats == nil {
		out.Stats = map[string]int{}
	}
	return out.Stats, nil
}

// DocumentCategories returns the classification picklist.
func (c *Client) DocumentCategories(ctx context.Context) ([]Category, error) {
	var out struct {
		Categories []Category `json:"categories"`
	}
	if _, err := c.call(ctx, "document categories", http.MethodGet, "/api/document-categories", nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}
