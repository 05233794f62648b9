// Package api is the client for the read API: a GraphQL endpoint exposing
// the aggregated post feed and per-post detail with neighbor prefetch.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/glabrego/postdeck/internal/post"
)

// ErrDetailUnavailable marks any failure to fetch full detail for a post:
// transport errors, not-found, or a malformed response. Callers show an
// error state in the detail pane and keep the current selection.
var ErrDetailUnavailable = errors.New("post detail unavailable")

const listPostsQuery = `query ($limit: Int, $interweave: Boolean!) {
  posts(limit: $limit, interweave: $interweave) {
    id source sub title text author upvotes url publishedDate commentUrl
  }
}`

const getDetailQuery = `query ($id: String!, $surroundingIds: [String!]!) {
  getDetailedPosts(id: $id, surroundingIds: $surroundingIds) {
    post {
      id source sub title text author upvotes url publishedDate commentUrl commentHtml
    }
    surroundingPosts {
      id source sub title text author upvotes url publishedDate commentUrl commentHtml
    }
  }
}`

type Client struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/") + "/graphql",
		http:     httpClient,
		limiter:  rate.NewLimiter(rate.Every(200*time.Millisecond), 3),
	}
}

// wirePost mirrors the GraphQL post type. Optional fields are pointers so a
// null never fails the decode.
type wirePost struct {
	ID            *string `json:"id"`
	Source        *string `json:"source"`
	Sub           *string `json:"sub"`
	Title         *string `json:"title"`
	Text          *string `json:"text"`
	Author        *string `json:"author"`
	Upvotes       *int    `json:"upvotes"`
	URL           *string `json:"url"`
	PublishedDate *string `json:"publishedDate"`
	CommentURL    *string `json:"commentUrl"`
	CommentHTML   *string `json:"commentHtml"`
}

func (w wirePost) toPost() post.Post {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	p := post.Post{
		ID:          deref(w.ID),
		Source:      post.Source(deref(w.Source)),
		Sub:         deref(w.Sub),
		Title:       deref(w.Title),
		Text:        deref(w.Text),
		Author:      deref(w.Author),
		URL:         deref(w.URL),
		CommentURL:  deref(w.CommentURL),
		CommentHTML: deref(w.CommentHTML),
		PublishedAt: post.ParsePublished(deref(w.PublishedDate)),
	}
	if w.Upvotes != nil && *w.Upvotes > 0 {
		p.Upvotes = *w.Upvotes
	}
	return p
}

// ListPosts fetches up to limit summary posts. When interweave is set the
// server pre-interleaves sources by upvotes; client-side ordering still
// applies afterward. Posts arriving without an id are dropped silently.
func (c *Client) ListPosts(ctx context.Context, limit int, interweave bool) ([]post.Post, error) {
	if limit < 1 {
		limit = 50
	}

	var payload struct {
		Posts []wirePost `json:"posts"`
	}
	err := c.query(ctx, listPostsQuery, map[string]any{
		"limit":      limit,
		"interweave": interweave,
	}, &payload)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	posts := make([]post.Post, 0, len(payload.Posts))
	for _, w := range payload.Posts {
		p := w.toPost()
		if p.ID == "" {
			continue
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// GetDetail fetches detail for one post plus summary-or-better data for its
// surrounding ids in a single round trip. Any failure comes back wrapping
// ErrDetailUnavailable and the result is never partially populated.
func (c *Client) GetDetail(ctx context.Context, id string, surroundingIDs []string) (post.Post, []post.Post, error) {
	if id == "" {
		return post.Post{}, nil, fmt.Errorf("%w: empty post id", ErrDetailUnavailable)
	}
	if surroundingIDs == nil {
		surroundingIDs = []string{}
	}

	var payload struct {
		Detailed struct {
			Post        wirePost   `json:"post"`
			Surrounding []wirePost `json:"surroundingPosts"`
		} `json:"getDetailedPosts"`
	}
	err := c.query(ctx, getDetailQuery, map[string]any{
		"id":             id,
		"surroundingIds": surroundingIDs,
	}, &payload)
	if err != nil {
		return post.Post{}, nil, fmt.Errorf("get detail for %s: %w: %v", id, ErrDetailUnavailable, err)
	}

	primary := payload.Detailed.Post.toPost()
	if primary.ID == "" {
		return post.Post{}, nil, fmt.Errorf("get detail for %s: %w: response missing post id", id, ErrDetailUnavailable)
	}

	neighbors := make([]post.Post, 0, len(payload.Detailed.Surrounding))
	for _, w := range payload.Detailed.Surrounding {
		n := w.toPost()
		if n.ID == "" {
			continue
		}
		neighbors = append(neighbors, n)
	}
	return primary, neighbors, nil
}

func (c *Client) query(ctx context.Context, query string, variables map[string]any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("query failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("server error: %s", envelope.Errors[0].Message)
	}
	if len(envelope.Data) == 0 {
		return fmt.Errorf("response missing data")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
