// Package fabric implements the deployer against the Microsoft Fabric REST
// API, with publishing delegated to an external publisher command.
package fabric

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spachava753/jumpstart/internal/deployer"
)

// DefaultAPIURL is the public Fabric REST endpoint.
const DefaultAPIURL = "https://api.fabric.microsoft.com"

// APIError is a non-2xx response from the Fabric API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fabric api: HTTP %d: %s", e.StatusCode, e.Body)
}

// ItemNotFoundError reports a lookup that matched no item.
type ItemNotFoundError struct {
	WorkspaceID string
	ItemType    string
	ItemName    string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("item %s.%s not found in workspace %s", e.ItemName, e.ItemType, e.WorkspaceID)
}

// Client talks to the Fabric API.
type Client struct {
	baseURL   string
	token     string
	pageSize  int
	http      *http.Client
	publisher Publisher
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithPageSize sets the maxResults hint sent on listings.
func WithPageSize(n int) Option {
	return func(c *Client) { c.pageSize = n }
}

// WithPublisher sets the publisher used by Publish.
func WithPublisher(p Publisher) Option {
	return func(c *Client) { c.publisher = p }
}

// NewClient creates a Client for baseURL authenticating with a bearer token.
func NewClient(baseURL, token string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type listResponse struct {
	Value             []deployer.Item `json:"value"`
	ContinuationToken string          `json:"continuationToken"`
	ContinuationURI   string          `json:"continuationUri"`
}

// ListItems fetches one page of workspace items. A continuation URI is
// followed verbatim; otherwise a continuation token is sent as a query
// parameter.
func (c *Client) ListItems(ctx context.Context, workspaceID string, next deployer.Continuation) (deployer.ItemPage, error) {
	return c.list(ctx, workspaceID, "", next)
}

func (c *Client) list(ctx context.Context, workspaceID, itemType string, next deployer.Continuation) (deployer.ItemPage, error) {
	var page deployer.ItemPage

	endpoint := next.URI
	if endpoint == "" {
		q := url.Values{}
		if next.Token != "" {
			q.Set("continuationToken", next.Token)
		}
		if itemType != "" {
			q.Set("type", itemType)
		}
		if c.pageSize > 0 {
			q.Set("maxResults", strconv.Itoa(c.pageSize))
		}
		endpoint = fmt.Sprintf("%s/v1/workspaces/%s/items", c.baseURL, url.PathEscape(workspaceID))
		if len(q) > 0 {
			endpoint += "?" + q.Encode()
		}
	}

	var resp listResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return page, err
	}

	slog.Debug("listed workspace items", "workspace_id", workspaceID, "count", len(resp.Value))
	page.Items = resp.Value
	page.Next = deployer.Continuation{Token: resp.ContinuationToken, URI: resp.ContinuationURI}
	return page, nil
}

// ResolveItemID pages through items of itemType and returns the id of the
// one whose display name is itemName.
func (c *Client) ResolveItemID(ctx context.Context, h deployer.Handle, itemType, itemName string) (string, error) {
	var next deployer.Continuation
	seen := map[deployer.Continuation]bool{}
	for {
		page, err := c.list(ctx, h.WorkspaceID, itemType, next)
		if err != nil {
			return "", err
		}
		for _, item := range page.Items {
			if item.Type == itemType && item.DisplayName == itemName {
				return item.ID, nil
			}
		}
		if page.Next.Done() || seen[page.Next] {
			break
		}
		seen[page.Next] = true
		next = page.Next
	}
	return "", &ItemNotFoundError{WorkspaceID: h.WorkspaceID, ItemType: itemType, ItemName: itemName}
}

// Publish hands the request to the configured publisher.
func (c *Client) Publish(ctx context.Context, req deployer.PublishRequest) (deployer.Handle, error) {
	if c.publisher == nil {
		return deployer.Handle{}, fmt.Errorf("no publisher configured")
	}
	if err := c.publisher.Publish(ctx, req); err != nil {
		return deployer.Handle{}, err
	}
	return deployer.Handle{WorkspaceID: req.WorkspaceID}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling fabric api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
