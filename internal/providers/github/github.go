package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Repo is one repository object exactly as GitHub returned it.
type Repo = json.RawMessage

type Provider interface {
	Repos(ctx context.Context, username string) ([]Repo, error)
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string { return fmt.Sprintf("github: unexpected status %d", e.Status) }

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Repos lists the user's five oldest repositories.
func (c *Client) Repos(ctx context.Context, username string) ([]Repo, error) {
	q := url.Values{}
	q.Set("per_page", "5")
	q.Set("sort", "created")
	q.Set("direction", "asc")
	endpoint := c.baseURL + "/users/" + url.PathEscape(username) + "/repos?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "node.js")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return nil, &StatusError{Status: resp.StatusCode}
	}

	const maxBytes = 1 << 20
	repos := []Repo{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBytes)).Decode(&repos); err != nil {
		return nil, fmt.Errorf("github: decode repos: %w", err)
	}
	return repos, nil
}
