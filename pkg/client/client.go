// Package client provides a Go client for the KektorGraph REST API.
//
// It offers a type-safe way to perform the major operations:
//   - Graph inspection (Stats, GetVertex, FindVertices, Neighbors, Range).
//   - Bulk dataset loading (Load, LoadDataset).
//   - System administration (Save).
//
// The client handles HTTP communication, JSON serialization/deserialization,
// and standardized error handling.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sanonone/kektorgraph/pkg/graph"
	"github.com/sanonone/kektorgraph/pkg/persistence"
)

// APIError represents an error returned by the KektorGraph API (status >= 400).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// --- JSON Response Structs ---

// Vertex models a vertex returned by the API.
type Vertex struct {
	ID         uint32         `json:"id"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties,omitempty"`
}

// VertexList models list endpoints.
type VertexList struct {
	Count    int      `json:"count"`
	Vertices []Vertex `json:"vertices"`
}

// Neighbors models the neighbor expansion response.
type Neighbors struct {
	ID        uint32   `json:"id"`
	Direction string   `json:"direction"`
	Count     int      `json:"count"`
	Neighbors []Vertex `json:"neighbors"`
}

// LoadResult reports the outcome of a bulk load.
type LoadResult struct {
	Status   string `json:"status"`
	Vertices int    `json:"vertices"`
	Edges    int    `json:"edges"`
}

// --- Client ---

// Client is the Go client for a remote KektorGraph server.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// New creates a new KektorGraph client.
func New(host string, port int) *Client {
	return &Client{
		baseURL:    fmt.Sprintf("http://%s:%d", host, port),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// WithAuthToken sets the bearer token sent with every request.
func (c *Client) WithAuthToken(token string) *Client {
	c.authToken = token
	return c
}

// jsonRequest is a helper method to execute all requests to the API.
// It handles JSON serialization, HTTP calls, and error management.
func (c *Client) jsonRequest(method, endpoint string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON payload: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		if json.Unmarshal(respBody, &errResp) == nil {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: errResp["error"]}
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	return respBody, nil
}

// --- Graph API ---

// Stats returns vertex/edge counts broken down by label.
func (c *Client) Stats() (graph.Stats, error) {
	var st graph.Stats
	body, err := c.jsonRequest(http.MethodGet, "/graph/stats", nil)
	if err != nil {
		return st, err
	}
	err = json.Unmarshal(body, &st)
	return st, err
}

// GetVertex fetches a single vertex by ID.
func (c *Client) GetVertex(id uint32) (*Vertex, error) {
	body, err := c.jsonRequest(http.MethodGet, fmt.Sprintf("/graph/vertices/%d", id), nil)
	if err != nil {
		return nil, err
	}
	var v Vertex
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// FindVertices lists vertices with the given label. Key/value, when both are
// non-empty, restrict the result to an exact property match.
func (c *Client) FindVertices(label, key, value string, limit int) (*VertexList, error) {
	q := url.Values{}
	if label != "" {
		q.Set("label", label)
	}
	if key != "" {
		q.Set("key", key)
		q.Set("value", value)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.jsonRequest(http.MethodGet, "/graph/vertices?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var list VertexList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Neighbors expands from a vertex. Direction is "out", "in", or "both";
// edgeLabel, when non-empty, restricts which edges are followed.
func (c *Client) Neighbors(id uint32, direction, edgeLabel string) (*Neighbors, error) {
	q := url.Values{}
	if direction != "" {
		q.Set("direction", direction)
	}
	if edgeLabel != "" {
		q.Set("label", edgeLabel)
	}

	endpoint := fmt.Sprintf("/graph/vertices/%d/neighbors?%s", id, q.Encode())
	body, err := c.jsonRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var n Neighbors
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// Range returns vertices whose numeric property falls in [min, max).
func (c *Client) Range(label, key string, min, max float64) (*VertexList, error) {
	q := url.Values{}
	q.Set("label", label)
	q.Set("key", key)
	q.Set("min", strconv.FormatFloat(min, 'f', -1, 64))
	q.Set("max", strconv.FormatFloat(max, 'f', -1, 64))

	body, err := c.jsonRequest(http.MethodGet, "/graph/vertices/range?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var list VertexList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// LoadDataset replaces the server's graph with the given dataset.
func (c *Client) LoadDataset(ds *persistence.Dataset) (*LoadResult, error) {
	body, err := c.jsonRequest(http.MethodPost, "/graph/load", ds)
	if err != nil {
		return nil, err
	}
	var res LoadResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Save asks the server to write a snapshot. An empty path uses the server's
// configured snapshot path.
func (c *Client) Save(path string) error {
	payload := map[string]string{}
	if path != "" {
		payload["path"] = path
	}
	_, err := c.jsonRequest(http.MethodPost, "/system/save", payload)
	return err
}

// Healthz probes the server's health endpoint.
func (c *Client) Healthz() error {
	_, err := c.jsonRequest(http.MethodGet, "/healthz", nil)
	return err
}
