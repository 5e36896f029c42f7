// Package remote implements content.Store against a blog server's HTTP API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/content"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const userAgent = "go-blog/remote"

// StatusError reports an unexpected response status.
type StatusError struct {
	Method  string
	URL     string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote: %s %s: status %d", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("remote: %s %s: status %d: %s", e.Method, e.URL, e.Status, e.Message)
}

// Client fetches and saves raw post blobs through the mdx endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     interfaces.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithToken sets the bearer credential sent with saves.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithLogger sets the client logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a client for the server rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("remote: parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("remote: base url %q must be absolute", baseURL)
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimSuffix(parsed.String(), "/"),
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ content.Store = (*Client)(nil)

// documentPayload is the wire shape of GET /api/mdx and POST /api/mdx responses.
type documentPayload struct {
	ID      string    `json:"id,omitempty"`
	Slug    string    `json:"slug,omitempty"`
	Content string    `json:"content"`
	Title   string    `json:"title,omitempty"`
	Date    time.Time `json:"date,omitzero"`
	Tags    []string  `json:"tags,omitempty"`
	Excerpt string    `json:"excerpt,omitempty"`
	Author  string    `json:"author,omitempty"`
}

type savePayload struct {
	Slug    string `json:"slug"`
	Content string `json:"content"`
	Mode    string `json:"mode"`
}

type postPayload struct {
	ID      string    `json:"id"`
	Slug    string    `json:"slug"`
	Content string    `json:"content"`
	Title   string    `json:"title"`
	Date    time.Time `json:"date"`
	Tags    []string  `json:"tags"`
	Excerpt *string   `json:"excerpt"`
	Author  *string   `json:"author"`
}

func (c *Client) FetchBySlug(ctx context.Context, slug string) (*content.Document, error) {
	slug = content.NormalizeSlug(slug)
	if slug == "" {
		return nil, content.ErrEmptySlug
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/api/mdx?id="+url.QueryEscape(slug), nil)
	if err != nil {
		return nil, err
	}
	var payload documentPayload
	if err := c.do(req, slug, &payload); err != nil {
		return nil, err
	}
	return payload.document(slug), nil
}

func (c *Client) FetchByID(ctx context.Context, id string) (*content.Document, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &content.NotFoundError{Resource: "post", Key: id}
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/api/posts/"+id, nil)
	if err != nil {
		return nil, err
	}
	var payload postPayload
	if err := c.do(req, id, &payload); err != nil {
		return nil, err
	}
	doc := &content.Document{
		ID:   payload.ID,
		Slug: payload.Slug,
		Raw:  payload.Content,
		Fields: content.Fields{
			Title: payload.Title,
			Date:  payload.Date,
			Tags:  payload.Tags,
		},
	}
	if payload.Excerpt != nil {
		doc.Fields.Excerpt = *payload.Excerpt
	}
	if payload.Author != nil {
		doc.Fields.Author = *payload.Author
	}
	return doc, nil
}

func (c *Client) Save(ctx context.Context, saveReq content.SaveRequest) (*content.Document, error) {
	slug := content.NormalizeSlug(saveReq.Slug)
	if slug == "" {
		return nil, content.ErrEmptySlug
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/mdx", savePayload{
		Slug:    slug,
		Content: saveReq.Raw,
		Mode:    saveReq.Mode.String(),
	})
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	var payload documentPayload
	if err := c.do(req, slug, &payload); err != nil {
		return nil, err
	}
	if payload.Content == "" {
		payload.Content = saveReq.Raw
	}
	return payload.document(slug), nil
}

func (p documentPayload) document(slug string) *content.Document {
	if p.Slug != "" {
		slug = p.Slug
	}
	return &content.Document{
		ID:   p.ID,
		Slug: slug,
		Raw:  p.Content,
		Fields: content.Fields{
			Title:   p.Title,
			Date:    p.Date,
			Tags:    p.Tags,
			Excerpt: p.Excerpt,
			Author:  p.Author,
		},
	}
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("remote: parse base url: %w", err)
	}
	clean := strings.TrimPrefix(endpoint, "/")
	if idx := strings.Index(clean, "?"); idx != -1 {
		u.RawQuery = clean[idx+1:]
		clean = clean[:idx]
	}
	u.RawPath = ""
	u.Path = path.Join(strings.TrimSuffix(u.Path, "/"), "/", clean)

	reader := io.Reader(http.NoBody)
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("remote: encode body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

func (c *Client) do(req *http.Request, key string, out any) error {
	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote: %s %s: %w", req.Method, req.URL.Redacted(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("remote.request",
		"method", req.Method,
		"url", req.URL.Redacted(),
		"status", resp.StatusCode,
		"duration", time.Since(started),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &content.NotFoundError{Resource: "post", Key: key}
	case resp.StatusCode == http.StatusConflict:
		return &content.ConflictError{Resource: "post", Key: key}
	case resp.StatusCode >= 400:
		limited, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method:  req.Method,
			URL:     req.URL.Redacted(),
			Status:  resp.StatusCode,
			Message: errorMessage(limited),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote: decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(strings.ReplaceAll(string(body), "\n", " "))
}
