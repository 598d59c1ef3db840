package client

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

	"github.com/foiaworks/foiad/internal/model"
	"github.com/foiaworks/foiad/internal/orchestrator"
	"github.com/foiaworks/foiad/internal/tracker"
)

// HTTPClient implements FOIAClient over the foiad REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ FOIAClient = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the given base URL, e.g.
// "http://localhost:8080". token may be empty when the server runs
// without auth.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *HTTPClient) Close() error { return nil }

func (c *HTTPClient) CreateRequest(ctx context.Context, params orchestrator.CreateParams) (*model.Request, error) {
	var req model.Request
	if err := c.doJSON(ctx, http.MethodPost, "/v1/requests", params, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *HTTPClient) GetRequest(ctx context.Context, id string) (*model.Request, error) {
	var req model.Request
	if err := c.doJSON(ctx, http.MethodGet, "/v1/requests/"+url.PathEscape(id), nil, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *HTTPClient) ListRequests(ctx context.Context, opts ListOptions) (*ListRequestsResponse, error) {
	q := url.Values{}
	if opts.Agency != "" {
		q.Set("agency", opts.Agency)
	}
	if opts.Requester != "" {
		q.Set("requester", opts.Requester)
	}
	if opts.State != "" {
		q.Set("state", opts.State)
	}
	if opts.ActiveOnly {
		q.Set("active", "true")
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	path := "/v1/requests"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListRequestsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Withdraw(ctx context.Context, id, actor string) (*model.Request, error) {
	return c.lifecycle(ctx, id, "withdraw", actorBody{Actor: actor})
}

func (c *HTTPClient) CloseRequest(ctx context.Context, id, actor string) (*model.Request, error) {
	return c.lifecycle(ctx, id, "close", actorBody{Actor: actor})
}

func (c *HTTPClient) Escalate(ctx context.Context, id, reason, actor string) (*model.Request, error) {
	return c.lifecycle(ctx, id, "escalate", actorBody{Actor: actor, Reason: reason})
}

func (c *HTTPClient) Resume(ctx context.Context, id, actor string) (*model.Request, error) {
	return c.lifecycle(ctx, id, "resume", actorBody{Actor: actor})
}

func (c *HTTPClient) ListCorrespondence(ctx context.Context, id string) ([]*model.CorrespondenceItem, error) {
	var resp struct {
		Items []*model.CorrespondenceItem `json:"items"`
	}
	path := "/v1/requests/" + url.PathEscape(id) + "/correspondence"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *HTTPClient) Reply(ctx context.Context, id, subject, body, actor string) (*model.CorrespondenceItem, error) {
	in := struct {
		Subject string `json:"subject,omitempty"`
		Body    string `json:"body"`
		Actor   string `json:"actor,omitempty"`
	}{Subject: subject, Body: body, Actor: actor}

	var item model.CorrespondenceItem
	path := "/v1/requests/" + url.PathEscape(id) + "/reply"
	if err := c.doJSON(ctx, http.MethodPost, path, in, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *HTTPClient) Ingest(ctx context.Context, msg tracker.RawMessage) (*model.CorrespondenceItem, error) {
	var item model.CorrespondenceItem
	if err := c.doJSON(ctx, http.MethodPost, "/v1/ingest", msg, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *HTTPClient) GetEvents(ctx context.Context, id string) ([]*model.Event, error) {
	var resp struct {
		Events []*model.Event `json:"events"`
	}
	path := "/v1/requests/" + url.PathEscape(id) + "/events"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

func (c *HTTPClient) GetVerification(ctx context.Context, id string) (*model.VerificationResult, error) {
	var v model.VerificationResult
	path := "/v1/requests/" + url.PathEscape(id) + "/verification"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *HTTPClient) Report(ctx context.Context) (*orchestrator.StatusReport, error) {
	var rep orchestrator.StatusReport
	if err := c.doJSON(ctx, http.MethodGet, "/v1/report", nil, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

type actorBody struct {
	Actor  string `json:"actor,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func (c *HTTPClient) lifecycle(ctx context.Context, id, verb string, body actorBody) (*model.Request, error) {
	var req model.Request
	path := "/v1/requests/" + url.PathEscape(id) + "/" + verb
	if err := c.doJSON(ctx, http.MethodPost, path, body, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the
// JSON response. If result is nil, the response body is discarded.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
