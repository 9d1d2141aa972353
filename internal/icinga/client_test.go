package icinga

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

type fakeIcinga struct {
	hosts    []Object
	services []Object
	lastPath string
	lastQ    string
}

func (f *fakeIcinga) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, pass, ok := r.BasicAuth()
	if !ok || user != "meerkat" || pass != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	f.lastPath = r.URL.Path
	f.lastQ = r.URL.Query().Get("filter")

	if r.URL.Path == "/v1/status" {
		w.Write([]byte(`{"results":[]}`))
		return
	}

	var pool []Object
	rest := ""
	switch {
	case strings.HasPrefix(r.URL.Path, "/v1/objects/hosts"):
		pool = f.hosts
		rest = strings.TrimPrefix(r.URL.Path, "/v1/objects/hosts")
	case strings.HasPrefix(r.URL.Path, "/v1/objects/services"):
		pool = f.services
		rest = strings.TrimPrefix(r.URL.Path, "/v1/objects/services")
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	name := strings.TrimPrefix(rest, "/")
	var out []Object
	for _, o := range pool {
		if name != "" && o.Name != name {
			continue
		}
		out = append(out, o)
	}
	if name != "" && len(out) == 0 {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":404,"status":"No objects found."}`))
		return
	}
	json.NewEncoder(w).Encode(objectsResponse{Results: out})
}

func newTestClient(t *testing.T, f *fakeIcinga, password string) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{URL: srv.URL, Username: "meerkat", Password: password}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return c
}

func TestClientObject(t *testing.T) {
	f := &fakeIcinga{services: []Object{
		{Name: "web01!http", Type: "Service", Attrs: Attributes{State: 2, LastCheckResult: CheckResult{Output: "HTTP CRITICAL"}}},
	}}
	c := newTestClient(t, f, "secret")

	o, err := c.Object(context.Background(), Service, "web01!http")
	if err != nil {
		t.Fatalf("Object() error: %v", err)
	}
	if o.Attrs.Code() != 2 {
		t.Errorf("expected state 2, got %d", o.Attrs.Code())
	}
	if f.lastPath != "/v1/objects/services/web01!http" {
		t.Errorf("unexpected request path %q", f.lastPath)
	}
}

func TestClientObjectMissing(t *testing.T) {
	c := newTestClient(t, &fakeIcinga{}, "secret")
	_, err := c.Object(context.Background(), Host, "nope")
	if !errors.Is(err, ErrNoObjects) {
		t.Errorf("expected ErrNoObjects, got %v", err)
	}
}

func TestClientUnauthorized(t *testing.T) {
	c := newTestClient(t, &fakeIcinga{}, "wrong")
	_, err := c.Objects(context.Background(), Host)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if err := c.Status(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Status() expected ErrUnauthorized, got %v", err)
	}
}

func TestClientFetchFilter(t *testing.T) {
	f := &fakeIcinga{hosts: []Object{
		{Name: "web01", Type: "Host", Attrs: Attributes{State: 0}},
		{Name: "web02", Type: "Host", Attrs: Attributes{State: 1, Acknowledgement: 1}},
	}}
	c := newTestClient(t, f, "secret")

	res, err := c.Fetch(context.Background(), Selector{Type: Host, Filter: `match("web*", host.name)`})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if res.State != StateDown || !res.Acknowledged {
		t.Errorf("expected acknowledged down, got %q ack=%v", res.State, res.Acknowledged)
	}
	if f.lastQ != `match("web*", host.name)` {
		t.Errorf("filter not forwarded, got %q", f.lastQ)
	}
}

func TestClientFetchGroupMembers(t *testing.T) {
	f := &fakeIcinga{services: []Object{
		{Name: "db01!pgsql", Type: "Service", Attrs: Attributes{State: 1}},
	}}
	c := newTestClient(t, f, "secret")

	res, err := c.Fetch(context.Background(), Selector{Type: ServiceGroup, Name: "databases"})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if res.State != StateWarning {
		t.Errorf("expected warning, got %q", res.State)
	}
	if f.lastQ != `"databases" in service.groups` {
		t.Errorf("unexpected member filter %q", f.lastQ)
	}
}

func TestClientFetchMissingIsUnknown(t *testing.T) {
	c := newTestClient(t, &fakeIcinga{}, "secret")
	res, err := c.Fetch(context.Background(), Selector{Type: Service, Name: "gone!svc"})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if res.State != StateUnknown {
		t.Errorf("expected unknown, got %q", res.State)
	}
}

func TestClientFetchIdle(t *testing.T) {
	c := newTestClient(t, &fakeIcinga{}, "secret")
	if _, err := c.Fetch(context.Background(), Selector{}); err == nil {
		t.Error("expected error for idle selector")
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	if _, err := NewClient(Config{URL: "not a url"}, zerolog.Nop()); err == nil {
		t.Error("expected error for url without scheme")
	}
}
