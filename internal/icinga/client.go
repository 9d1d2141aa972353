package icinga

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tonhe/meerkat/internal/metrics"
)

var (
	// ErrNoObjects is returned when a lookup by name matches nothing.
	ErrNoObjects = errors.New("no matching icinga objects")
	// ErrUnauthorized is returned when the API rejects the credentials.
	ErrUnauthorized = errors.New("icinga rejected the api credentials")
)

const breakerName = "icinga-api"

var defaultAttrs = []string{
	"name", "display_name", "host_name", "state", "state_type",
	"acknowledgement", "next_check", "last_check", "last_check_result", "groups",
}

// Config describes how to reach the Icinga2 API.
type Config struct {
	URL         string
	Username    string
	Password    string
	InsecureTLS bool
	Timeout     time.Duration
	// RateLimit caps requests per second; zero disables limiting.
	RateLimit float64
}

// Client talks to the Icinga2 v1 REST API. Requests share one rate limiter
// and one circuit breaker.
type Client struct {
	base     *url.URL
	http     *http.Client
	username string
	password string
	limiter  *rate.Limiter
	cb       *gobreaker.CircuitBreaker[[]Object]
	log      zerolog.Logger
}

// NewClient builds a Client. It does not contact the server.
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse icinga url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("icinga url %q needs a scheme and host", cfg.URL)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	burst := 1
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
		burst = int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
	}

	c := &Client{
		base: base,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureTLS},
			},
		},
		username: cfg.Username,
		password: cfg.Password,
		limiter:  rate.NewLimiter(limit, burst),
		log:      logger.With().Str("component", "icinga").Logger(),
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	c.cb = gobreaker.NewCircuitBreaker[[]Object](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// a missing object is an answer, not an outage
			return err == nil || errors.Is(err, ErrNoObjects)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerGauge(to))
		},
	})
	return c, nil
}

func breakerGauge(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return 0
}

type objectsResponse struct {
	Results []Object `json:"results"`
}

type errorResponse struct {
	Error  float64 `json:"error"`
	Status string  `json:"status"`
}

// query runs GET /v1/objects/<collection> through the limiter and breaker.
func (c *Client) query(ctx context.Context, t ObjectType, name string, params url.Values) ([]Object, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	objs, err := c.cb.Execute(func() ([]Object, error) {
		return c.get(ctx, t, name, params)
	})
	metrics.IcingaRequestDuration.Observe(time.Since(start).Seconds())
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.IcingaRequests.WithLabelValues("rejected").Inc()
	case err != nil && !errors.Is(err, ErrNoObjects):
		metrics.IcingaRequests.WithLabelValues("failure").Inc()
	default:
		metrics.IcingaRequests.WithLabelValues("success").Inc()
	}
	return objs, err
}

func (c *Client) get(ctx context.Context, t ObjectType, name string, params url.Values) ([]Object, error) {
	u := *c.base
	u.Path = u.Path + "/v1/objects/" + t.Collection()
	if name != "" {
		u.Path += "/" + name
		u.RawPath = c.base.EscapedPath() + "/v1/objects/" + t.Collection() + "/" + url.PathEscape(name)
	}
	if params == nil {
		params = url.Values{}
	}
	for _, a := range defaultAttrs {
		params.Add("attrs", a)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.Collection(), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", t.Collection(), err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNoObjects
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode >= 400:
		var e errorResponse
		if json.Unmarshal(body, &e) == nil && e.Status != "" {
			return nil, fmt.Errorf("query %s: %s (%d)", t.Collection(), e.Status, resp.StatusCode)
		}
		return nil, fmt.Errorf("query %s: %s", t.Collection(), resp.Status)
	}

	var out objectsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", t.Collection(), err)
	}
	return out.Results, nil
}

// Objects lists every object of type t.
func (c *Client) Objects(ctx context.Context, t ObjectType) ([]Object, error) {
	return c.query(ctx, t, "", nil)
}

// Object looks up a single object. Service names take the "host!service"
// form.
func (c *Client) Object(ctx context.Context, t ObjectType, name string) (Object, error) {
	objs, err := c.query(ctx, t, name, nil)
	if err != nil {
		return Object{}, err
	}
	if len(objs) == 0 {
		return Object{}, ErrNoObjects
	}
	return objs[0], nil
}

// Filter returns the objects of type t matching an Icinga filter
// expression.
func (c *Client) Filter(ctx context.Context, t ObjectType, expr string) ([]Object, error) {
	return c.query(ctx, t, "", url.Values{"filter": {expr}})
}

// Members returns the hosts or services belonging to a host or service
// group.
func (c *Client) Members(ctx context.Context, group ObjectType, name string) ([]Object, error) {
	member := group.Member()
	if member == group {
		return nil, fmt.Errorf("%s is not a group type", group)
	}
	expr := strconv.Quote(name) + " in " + string(member) + ".groups"
	return c.Filter(ctx, member, expr)
}

// Fetch polls whatever sel selects and aggregates it. Selections that
// match nothing produce an unknown result rather than an error.
func (c *Client) Fetch(ctx context.Context, sel Selector) (Result, error) {
	if sel.Idle() {
		return Result{}, fmt.Errorf("selector %s is not configured", sel)
	}
	var (
		objs []Object
		err  error
	)
	switch {
	case sel.Filter != "":
		objs, err = c.Filter(ctx, sel.Type.Member(), sel.Filter)
	case sel.Type == HostGroup || sel.Type == ServiceGroup:
		objs, err = c.Members(ctx, sel.Type, sel.Name)
	default:
		var o Object
		o, err = c.Object(ctx, sel.Type, sel.Name)
		if err == nil {
			objs = []Object{o}
		}
	}
	if err != nil && !errors.Is(err, ErrNoObjects) {
		return Result{}, err
	}
	return Aggregate(sel.Type, objs), nil
}

// Status checks that the API is reachable with the configured credentials.
func (c *Client) Status(ctx context.Context) error {
	u := *c.base
	u.Path = u.Path + "/v1/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.username, c.password)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("icinga status: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode >= 400:
		return fmt.Errorf("icinga status: %s", resp.Status)
	}
	return nil
}
