// Package reddit fetches posts from Reddit's public search endpoint.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the public Reddit API root.
const DefaultBaseURL = "https://www.reddit.com"

// Post is one search hit, flattened from the listing envelope.
type Post struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Body       string  `json:"body"`
	Subreddit  string  `json:"subreddit"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"createdUtc"`
}

// Client queries the search API. Reddit rejects requests without a
// descriptive User-Agent, so one is always sent.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewClient constructs a Client. Empty baseURL falls back to the public
// API; zero timeout gets a sane default.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = "redscout/1.0"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

// listing mirrors the subset of Reddit's search envelope we read.
type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID         string  `json:"id"`
				Title      string  `json:"title"`
				Selftext   string  `json:"selftext"`
				Subreddit  string  `json:"subreddit"`
				Permalink  string  `json:"permalink"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Search returns the newest posts matching keyword, at most limit.
func (c *Client) Search(ctx context.Context, keyword string, limit int) ([]Post, error) {
	if keyword == "" {
		return nil, fmt.Errorf("reddit: empty keyword")
	}
	if limit <= 0 {
		limit = 25
	}

	q := url.Values{}
	q.Set("q", keyword)
	q.Set("sort", "new")
	q.Set("limit", strconv.Itoa(limit))
	endpoint := c.baseURL + "/search.json?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reddit: search %q: %w", keyword, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("reddit: search %q: status %d: %s", keyword, resp.StatusCode, body)
	}

	var env listing
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("reddit: search %q: decode: %w", keyword, err)
	}

	posts := make([]Post, 0, len(env.Data.Children))
	for _, child := range env.Data.Children {
		d := child.Data
		if d.ID == "" {
			continue
		}
		posts = append(posts, Post{
			ID:         d.ID,
			Title:      d.Title,
			Body:       d.Selftext,
			Subreddit:  d.Subreddit,
			Permalink:  d.Permalink,
			CreatedUTC: d.CreatedUTC,
		})
	}
	return posts, nil
}
