// Package userapi implements repository.UserRepository against a remote
// user service exposing /api/users.
package userapi

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

	"github.com/kjun-ai/authgate/internal/domain/repository"
	"github.com/kjun-ai/authgate/internal/domain/types"
	dto "github.com/kjun-ai/authgate/internal/http/dto/user"
)

// Client calls the user service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ repository.UserRepository = (*Client)(nil)

// New creates a client for the user service at baseURL.
// A zero timeout defaults to 5s.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient replaces the underlying http.Client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

func (c *Client) FindOrCreate(ctx context.Context, in repository.FindOrCreateInput) (*repository.User, error) {
	body, err := json.Marshal(dto.SaveRequest{
		Provider:        string(in.Provider),
		OAuthID:         in.OAuthID,
		Email:           in.Email,
		Nickname:        in.Nickname,
		ProfileImageURL: in.AvatarURL,
	})
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, c.baseURL+"/api/users/oauth", body)
}

func (c *Client) FindByID(ctx context.Context, id int64) (*repository.User, error) {
	return c.do(ctx, http.MethodGet, c.baseURL+"/api/users/"+strconv.FormatInt(id, 10), nil)
}

func (c *Client) FindByProvider(ctx context.Context, provider types.Provider, oauthID string) (*repository.User, error) {
	q := url.Values{}
	q.Set("provider", string(provider))
	q.Set("oauthId", oauthID)
	return c.do(ctx, http.MethodGet, c.baseURL+"/api/users/oauth?"+q.Encode(), nil)
}

// Ping hits the service status banner.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", repository.ErrUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) (*repository.User, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var out dto.Response
	decErr := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, repository.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", repository.ErrInvalidInput, out.Message)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: status %d", repository.ErrUnavailable, resp.StatusCode)
	case decErr != nil:
		return nil, fmt.Errorf("%w: decode response: %v", repository.ErrUnavailable, decErr)
	case !out.Success || out.User == nil:
		return nil, fmt.Errorf("%w: %s", repository.ErrUnavailable, out.Message)
	}
	return out.User.ToUser(), nil
}
