// internal/client/client.go
//
// HTTP client for the remote process-intelligence services: topology,
// per-location suggestions, assignment sync, and the optimization trigger.
// Each call is one request/response; retries are the caller's decision.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tbecker/twinboard/internal/roster"
	"github.com/tbecker/twinboard/internal/simulate"
)

// ProcessLocation is one assignable step of the mined process. Owned by
// the topology service; read-only here.
type ProcessLocation struct {
	ID              string  `json:"id"`
	Label           string  `json:"label"`
	IsBottleneck    bool    `json:"isBottleneck"`
	AvgDurationDays float64 `json:"avgDurationDays"`
}

// Suggestion is the advisory response for a single location's assignment.
type Suggestion struct {
	Result simulate.Result `json:"result"`
	Advice string          `json:"advice"`
}

type topologyResponse struct {
	Locations []ProcessLocation `json:"locations"`
}

// SuggestRequest is the per-location evaluation payload.
type SuggestRequest struct {
	LocationID      string          `json:"locationId"`
	Label           string          `json:"label"`
	AssignedWorkers []roster.Worker `json:"assignedWorkers"`
}

type assignmentsRequest struct {
	AssignedWorkers []roster.Worker `json:"assignedWorkers"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// Option tweaks a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// Client talks to the remote services at a single base URL.
type Client struct {
	baseURL string
	hc      *http.Client
}

// New creates a client; the default HTTP client carries a 15s timeout.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Topology fetches the process locations.
func (c *Client) Topology(ctx context.Context) ([]ProcessLocation, error) {
	var resp topologyResponse
	if err := c.getJSON(ctx, "/api/topology", &resp); err != nil {
		return nil, fmt.Errorf("fetch topology: %w", err)
	}
	return resp.Locations, nil
}

// Suggest asks for the one-shot advisory evaluation of a location.
func (c *Client) Suggest(ctx context.Context, locationID, label string, workers []roster.Worker) (Suggestion, error) {
	req := SuggestRequest{LocationID: locationID, Label: label, AssignedWorkers: workers}
	var resp Suggestion
	if err := c.postJSON(ctx, "/api/suggest", req, &resp); err != nil {
		return Suggestion{}, fmt.Errorf("suggest %s: %w", locationID, err)
	}
	return resp, nil
}

// Evaluate satisfies simulate.Evaluator using the suggestion endpoint.
func (c *Client) Evaluate(ctx context.Context, locationID, label string, workers []roster.Worker) (simulate.Result, error) {
	s, err := c.Suggest(ctx, locationID, label, workers)
	if err != nil {
		return simulate.Result{}, err
	}
	return s.Result, nil
}

// SyncAssignments pushes the current assigned-worker set to the server.
func (c *Client) SyncAssignments(ctx context.Context, workers []roster.Worker) error {
	if workers == nil {
		workers = []roster.Worker{}
	}
	var resp statusResponse
	if err := c.postJSON(ctx, "/api/assignments", assignmentsRequest{AssignedWorkers: workers}, &resp); err != nil {
		return fmt.Errorf("sync assignments: %w", err)
	}
	return nil
}

// StartOptimization triggers remote RL training and returns its status
// ("started" or "already_training").
func (c *Client) StartOptimization(ctx context.Context) (string, error) {
	var resp statusResponse
	if err := c.postJSON(ctx, "/api/optimize", struct{}{}, &resp); err != nil {
		return "", fmt.Errorf("start optimization: %w", err)
	}
	return resp.Status, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
