package spaceship

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-logr/logr"
	"github.com/gorilla/schema"
	"github.com/hashicorp/go-cleanhttp"

	"github.com/yuriy-kovalchuk/spaceship-dns/internal/dns"
)

const (
	// DefaultBaseURL is the Spaceship DNS records endpoint; the domain is
	// appended as the last path segment.
	DefaultBaseURL = "https://spaceship.dev/api/v1/dns/records"

	// PageSize is the number of records requested per list call.
	PageSize = 100
	// DeleteChunkSize is the maximum number of records per delete call.
	DeleteChunkSize = 50
)

var (
	// ErrDecode is returned when a response body does not match the expected schema.
	ErrDecode = errors.New("spaceship: unexpected response")
	// ErrAPIStatus is returned for non-2xx responses.
	ErrAPIStatus = errors.New("spaceship: api returned an error")
)

var queryEncoder = schema.NewEncoder()

// Options identifies the domain and credentials the client operates on.
type Options struct {
	Domain    string
	APIKey    string
	APISecret string
	BaseURL   string // defaults to DefaultBaseURL

	// HTTPClient overrides the default pooled client.
	HTTPClient *http.Client
}

// Client implements dns.Client for the Spaceship DNS API.
type Client struct {
	url       string
	apiKey    string
	apiSecret string
	client    *http.Client
	log       logr.Logger
}

var _ dns.Client = (*Client)(nil)

// New creates a Spaceship client scoped to opts.Domain.
// Required options: Domain, APIKey, APISecret.
func New(log logr.Logger, opts Options) (*Client, error) {
	if opts.Domain == "" {
		return nil, fmt.Errorf("spaceship: missing required option 'domain'")
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("spaceship: missing required option 'api_key'")
	}
	if opts.APISecret == "" {
		return nil, fmt.Errorf("spaceship: missing required option 'api_secret'")
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = cleanhttp.DefaultPooledClient()
	}

	return &Client{
		url:       strings.TrimRight(baseURL, "/") + "/" + url.PathEscape(opts.Domain),
		apiKey:    opts.APIKey,
		apiSecret: opts.APISecret,
		client:    client,
		log:       log,
	}, nil
}

// pageQuery holds the pagination parameters of a list call.
type pageQuery struct {
	Take int `schema:"take"`
	Skip int `schema:"skip"`
}

// listResponse is the shape returned by the list endpoint.
type listResponse struct {
	Items *[]dns.Record `json:"items"`
}

// deleteRequest is the body of a batch delete call.
type deleteRequest struct {
	Items []dns.Record `json:"items"`
}

// addRequest is the body of a batch add call.
type addRequest struct {
	Force bool         `json:"force"`
	Items []dns.Record `json:"items"`
}

// doRequest builds and executes an HTTP request against the domain's record
// endpoint. Non-2xx responses are turned into errors wrapping ErrAPIStatus.
func (c *Client) doRequest(ctx context.Context, method string, query url.Values, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("spaceship: marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	target := c.url
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("spaceship: build request: %w", err)
	}

	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("X-API-Secret", c.apiSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spaceship: %s records: %w", method, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %s returned status %d: %s",
			ErrAPIStatus, method, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return resp, nil
}

// listPage fetches a single page of records starting at skip.
func (c *Client) listPage(ctx context.Context, skip int) ([]dns.Record, error) {
	query := url.Values{}
	if err := queryEncoder.Encode(pageQuery{Take: PageSize, Skip: skip}, query); err != nil {
		return nil, fmt.Errorf("spaceship: encode query: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("%w: decode list response: %v", ErrDecode, err)
	}
	if lr.Items == nil {
		return nil, fmt.Errorf("%w: list response has no items field", ErrDecode)
	}
	// Only the fields the diff relies on are checked; other record types
	// pass through untouched.
	for i, r := range *lr.Items {
		if r.Type == "" {
			return nil, fmt.Errorf("%w: item %d is missing type", ErrDecode, skip+i)
		}
		if r.Type == dns.RecordTypeA && r.Name == "" {
			return nil, fmt.Errorf("%w: A record %d is missing name", ErrDecode, skip+i)
		}
	}
	return *lr.Items, nil
}

// List fetches all records of the domain page by page. Pagination stops on an
// empty or short page. On failure the records fetched so far are returned
// along with the error.
func (c *Client) List(ctx context.Context) ([]dns.Record, error) {
	var all []dns.Record
	for skip := 0; ; skip += PageSize {
		items, err := c.listPage(ctx, skip)
		if err != nil {
			return all, fmt.Errorf("spaceship: list records (skip=%d): %w", skip, err)
		}
		c.log.V(1).Info("fetched records page", "skip", skip, "count", len(items))
		if len(items) == 0 {
			break
		}
		all = append(all, items...)
		if len(items) < PageSize {
			break
		}
	}
	return all, nil
}

// Delete removes records in chunks of DeleteChunkSize, one request per chunk.
// A failed chunk does not stop the remaining ones; all failures are joined.
func (c *Client) Delete(ctx context.Context, records []dns.Record) error {
	if len(records) == 0 {
		return nil
	}
	c.log.V(1).Info("deleting records", "count", len(records))

	var errs []error
	for i, chunk := range dns.Chunk(records, DeleteChunkSize) {
		resp, err := c.doRequest(ctx, http.MethodDelete, nil, deleteRequest{Items: chunk})
		if err != nil {
			c.log.Error(err, "delete chunk failed", "chunk", i, "size", len(chunk))
			errs = append(errs, fmt.Errorf("chunk %d: %w", i, err))
			continue
		}
		resp.Body.Close()
		c.log.V(1).Info("deleted chunk", "chunk", i, "size", len(chunk))
	}
	if len(errs) > 0 {
		return fmt.Errorf("spaceship: delete records: %w", errors.Join(errs...))
	}
	return nil
}

// Add creates all records in a single forced request.
func (c *Client) Add(ctx context.Context, records []dns.Record) error {
	if len(records) == 0 {
		return nil
	}
	c.log.V(1).Info("adding records", "count", len(records))

	resp, err := c.doRequest(ctx, http.MethodPut, nil, addRequest{Force: true, Items: records})
	if err != nil {
		return fmt.Errorf("spaceship: add records: %w", err)
	}
	resp.Body.Close()
	return nil
}
