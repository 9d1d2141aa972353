// Package meerkat talks to the Meerkat service that stores dashboards,
// uploaded files and application settings.
package meerkat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tonhe/meerkat/internal/dashboard"
)

// ErrNotFound is returned when the requested dashboard does not exist.
var ErrNotFound = errors.New("dashboard not found")

// Settings holds application-level preferences.
type Settings struct {
	AppName string `json:"appName"`
}

// Client is a Meerkat service client.
type Client struct {
	base *url.URL
	http *http.Client
	log  zerolog.Logger
}

// NewClient builds a Client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse meerkat url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("meerkat url %q needs a scheme and host", baseURL)
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
		log:  logger.With().Str("component", "meerkat").Logger(),
	}, nil
}

// ResolveURL turns a server-relative reference such as "/dashboards-data/x.mp3"
// into an absolute URL. Absolute references and the empty string are
// returned unchanged.
func (c *Client) ResolveURL(ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() {
		return ref
	}
	return c.base.ResolveReference(u).String()
}

func (c *Client) endpoint(segments ...string) string {
	u := *c.base
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u.Path = c.base.Path + "/" + strings.Join(segments, "/")
	u.RawPath = c.base.EscapedPath() + "/" + strings.Join(escaped, "/")
	return u.String()
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	c.log.Debug().
		Str("method", method).
		Str("url", endpoint).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("meerkat request")

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("meerkat returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, endpoint string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	header := http.Header{"Content-Type": []string{"application/json"}}
	return c.do(ctx, method, endpoint, bytes.NewReader(data), header, out)
}

// List returns every dashboard, or only those carrying tag when it is set.
func (c *Client) List(ctx context.Context, tag string) ([]dashboard.Dashboard, error) {
	endpoint := c.endpoint("dashboard")
	if tag != "" {
		endpoint += "?" + url.Values{"tag": {tag}}.Encode()
	}
	var out []dashboard.Dashboard
	if err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("list dashboards: %w", err)
	}
	if tag == "" {
		return out, nil
	}
	// older servers ignore the tag parameter
	filtered := out[:0]
	for _, d := range out {
		for _, t := range d.Tags {
			if t == tag {
				filtered = append(filtered, d)
				break
			}
		}
	}
	return filtered, nil
}

// Get fetches the dashboard stored under slug.
func (c *Client) Get(ctx context.Context, slug string) (dashboard.Dashboard, error) {
	var d dashboard.Dashboard
	if err := c.do(ctx, http.MethodGet, c.endpoint("dashboard", slug), nil, nil, &d); err != nil {
		return dashboard.Dashboard{}, fmt.Errorf("get dashboard %s: %w", slug, err)
	}
	return d, nil
}

type slugResponse struct {
	Slug string `json:"slug"`
}

// Create stores a new dashboard and returns the slug the service derived
// from its title. A dashboard already stored under that slug is replaced.
func (c *Client) Create(ctx context.Context, d dashboard.Dashboard) (string, error) {
	var out slugResponse
	if err := c.send(ctx, http.MethodPost, c.endpoint("dashboard"), d, &out); err != nil {
		return "", fmt.Errorf("create dashboard %q: %w", d.Title, err)
	}
	return out.Slug, nil
}

// Update replaces the dashboard at slug. The returned slug follows the
// dashboard's title and differs from slug after a rename.
func (c *Client) Update(ctx context.Context, slug string, d dashboard.Dashboard) (string, error) {
	var out slugResponse
	if err := c.send(ctx, http.MethodPost, c.endpoint("dashboard", slug), d, &out); err != nil {
		return "", fmt.Errorf("update dashboard %s: %w", slug, err)
	}
	return out.Slug, nil
}

// Delete removes the dashboard at slug.
func (c *Client) Delete(ctx context.Context, slug string) error {
	if err := c.do(ctx, http.MethodDelete, c.endpoint("dashboard", slug), nil, nil, nil); err != nil {
		return fmt.Errorf("delete dashboard %s: %w", slug, err)
	}
	return nil
}

// Upload stores a file and returns the URL it is served from.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	header := http.Header{
		"Filename":     []string{filename},
		"Content-Type": []string{"application/octet-stream"},
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, c.endpoint("upload"), r, header, &out); err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	return out.URL, nil
}

// Settings returns the application settings.
func (c *Client) Settings(ctx context.Context) (Settings, error) {
	var s Settings
	if err := c.do(ctx, http.MethodGet, c.endpoint("settings"), nil, nil, &s); err != nil {
		return Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

// SaveSettings stores the application settings.
func (c *Client) SaveSettings(ctx context.Context, s Settings) error {
	if err := c.send(ctx, http.MethodPost, c.endpoint("settings"), s, nil); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
