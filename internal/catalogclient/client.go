// Package catalogclient is the gateway's HTTP client for the catalog service.
package catalogclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cesargomez89/shamzam/internal/constants"
	"github.com/cesargomez89/shamzam/internal/domain"
	"github.com/cesargomez89/shamzam/internal/httpclient"
)

// Client calls the catalog's /tracks, /add_track and /remove_track endpoints.
// Every call is attempted once.
type Client struct {
	http    httpclient.Doer
	baseURL string
	timeout time.Duration
}

func New(baseURL string, timeout time.Duration, doer httpclient.Doer) *Client {
	if doer == nil {
		doer = httpclient.NewClient(nil, 0)
	}
	if timeout <= 0 {
		timeout = constants.DefaultCatalogTimeout
	}
	return &Client{
		http:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

type trackPayload struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

type addResponse struct {
	Track   *domain.Track `json:"track"`
	Message string        `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Create asks the catalog to store (artist, title). A duplicate comes back as
// a Conflict error.
func (c *Client) Create(ctx context.Context, artist, title string) (*domain.Track, error) {
	const op = "catalogclient.create"

	var out addResponse
	if err := c.do(ctx, op, http.MethodPost, "/add_track", trackPayload{Artist: artist, Title: title}, &out); err != nil {
		return nil, err
	}
	if out.Track == nil {
		// older catalogs only answer with a message
		return &domain.Track{Artist: artist, Title: title}, nil
	}
	return out.Track, nil
}

// List returns every cataloged track in id order.
func (c *Client) List(ctx context.Context) ([]*domain.Track, error) {
	tracks := []*domain.Track{}
	if err := c.do(ctx, "catalogclient.list", http.MethodGet, "/tracks", nil, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// Remove deletes (artist, title) and returns the catalog's confirmation.
func (c *Client) Remove(ctx context.Context, artist, title string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, "catalogclient.remove", http.MethodPost, "/remove_track", trackPayload{Artist: artist, Title: title}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return domain.E(domain.KindMalformedRequest, op, fmt.Errorf("failed to encode request: %w", err))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return domain.E(domain.KindUpstreamFailure, op, fmt.Errorf("failed to build request: %w", err))
	}
	if in != nil {
		req.Header.Set(constants.HeaderContentType, constants.MimeTypeJSON)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return domain.E(domain.KindUpstreamFailure, op, fmt.Errorf("catalog unreachable: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(op, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.E(domain.KindUpstreamFailure, op, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// statusError maps a catalog error response back onto the error kind the
// catalog raised.
func statusError(op string, resp *http.Response) error {
	var er errorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, constants.MaxRequestBodyBytes)).Decode(&er)
	cause := fmt.Errorf("catalog returned %s: %s", resp.Status, er.Error)

	var kind domain.Kind
	switch resp.StatusCode {
	case http.StatusConflict:
		kind = domain.KindConflict
	case http.StatusNotFound:
		kind = domain.KindNotFound
	case http.StatusBadRequest:
		switch er.Error {
		case constants.ErrMsgAddMissingFields, constants.ErrMsgRemoveMissingField:
			kind = domain.KindMissingField
		case constants.ErrMsgFieldsNotStrings:
			kind = domain.KindInvalidType
		default:
			kind = domain.KindMalformedRequest
		}
	case http.StatusInternalServerError:
		kind = domain.KindStorageFault
	default:
		kind = domain.KindUpstreamFailure
	}
	return domain.E(kind, op, cause)
}
