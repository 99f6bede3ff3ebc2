// Package client talks to the recipe service on behalf of the terminal UI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/valueproject/recipe-lookup/internal/recipe"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code   int
	Status string
	// Message is the "error" field of the JSON body, when there was one.
	Message string
}

func (e *StatusError) Error() string {
	return "HTTP " + e.Status
}

type Client struct {
	base *url.URL
	http *http.Client
}

// New returns a client for the service at baseURL. The client keeps the session
// cookie set by Login.
func New(baseURL string) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("server url %q needs a scheme and host", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{base: base, http: &http.Client{Jar: jar}}, nil
}

func (c *Client) BaseURL() string {
	return c.base.String()
}

// Recipe fetches GET /api/recipe/{id}.
func (c *Client) Recipe(ctx context.Context, id string) (*recipe.RecipeResponse, error) {
	var out recipe.RecipeResponse
	if err := c.do(ctx, http.MethodGet, "/api/recipe/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Search(ctx context.Context, keyword string) (*recipe.SearchResponse, error) {
	var out recipe.SearchResponse
	if err := c.do(ctx, http.MethodPost, "/api/search", recipe.SearchRequest{Keyword: keyword}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Recipes lists recipes matching query, or all of them when query is empty.
func (c *Client) Recipes(ctx context.Context, query string) (*recipe.SearchResponse, error) {
	path := "/api/recipes"
	if query = strings.TrimSpace(query); query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var out recipe.SearchResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Material(ctx context.Context, code string) (*recipe.Material, error) {
	var out recipe.Material
	if err := c.do(ctx, http.MethodGet, "/api/materials/"+url.PathEscape(code), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MaterialUsage(ctx context.Context, code string) (*recipe.MaterialUsageResponse, error) {
	var out recipe.MaterialUsageResponse
	if err := c.do(ctx, http.MethodGet, "/api/materials/"+url.PathEscape(code)+"/usage", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*recipe.LoginResponse, error) {
	var out recipe.LoginResponse
	req := recipe.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	var out recipe.LoginResponse
	return c.do(ctx, http.MethodPost, "/api/logout", struct{}{}, &out)
}

func (c *Client) Session(ctx context.Context) (*recipe.SessionResponse, error) {
	var out recipe.SessionResponse
	if err := c.do(ctx, http.MethodGet, "/api/session", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var out recipe.ChatResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat", recipe.ChatRequest{Message: message}, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Code: resp.StatusCode, Status: resp.Status}
		var payload recipe.ErrorResponse
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); readErr == nil {
			if json.Unmarshal(data, &payload) == nil {
				statusErr.Message = payload.Error
			}
		}
		return statusErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
