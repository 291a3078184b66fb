package lookup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/lookupreport/internal/category"
	"github.com/nao1215/lookupreport/internal/config"
)

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.RateLimit = 0
	cfg.CacheTTL = 0
	cfg.Timeout = 5 * time.Second
	return cfg
}

func newTestClient(t *testing.T, cfg *config.Config) *Client {
	t.Helper()

	c, err := NewClient(cfg, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return c
}

func specFor(url string) category.Spec {
	return category.Spec{
		Category: category.Mobile,
		Endpoint: url + "/lookup?num={query}",
		Headers:  map[string]string{"X-Api-Key": "k"},
	}
}

func TestClientFetch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		body        string
		wantFound   bool
		wantErr     error
		wantMessage string
	}{
		{"found", http.StatusOK, `{"data":{"name":"A"}}`, true, nil, ""},
		{"empty object", http.StatusOK, `{}`, false, ErrNotFound, "No data found for 9876543210."},
		{"empty array", http.StatusOK, `[]`, false, ErrNotFound, "No data found for 9876543210."},
		{"truthy error field", http.StatusOK, `{"error":"Invalid number"}`, false, ErrNotFound, "Invalid number"},
		{"message wins over error", http.StatusOK, `{"error":true,"message":"Limit reached"}`, false, ErrNotFound, "Limit reached"},
		{"falsy error field is found", http.StatusOK, `{"error":false,"data":{}}`, true, nil, ""},
		{"null body", http.StatusOK, `null`, false, ErrNotFound, "No data found for 9876543210."},
		{"empty body", http.StatusOK, ``, false, ErrNotFound, "No data found for 9876543210."},
		{"non-2xx", http.StatusNotFound, `{"detail":"x"}`, false, ErrNotFound, "No data found for 9876543210."},
		{"non-2xx with message", http.StatusBadGateway, `{"message":"Service down"}`, false, ErrNotFound, "Service down"},
		{"invalid json", http.StatusOK, `<html>`, false, ErrInvalidJSON, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			t.Cleanup(srv.Close)

			c := newTestClient(t, testConfig())
			res, err := c.Fetch(t.Context(), specFor(srv.URL), "9876543210")

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			} else if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}

			if tt.wantMessage != "" {
				if got := UserMessage(err); got != tt.wantMessage {
					t.Errorf("UserMessage = %q, want %q", got, tt.wantMessage)
				}
			}
			if errors.Is(tt.wantErr, ErrInvalidJSON) {
				if res != nil {
					t.Error("expected nil result for invalid JSON")
				}
				if UserMessage(err) != UnexpectedErrorMessage {
					t.Errorf("UserMessage = %q", UserMessage(err))
				}
				return
			}
			if res == nil {
				t.Fatal("expected a result")
			}
			if res.Found != tt.wantFound {
				t.Errorf("Found = %v, want %v", res.Found, tt.wantFound)
			}
			if res.Status != tt.status {
				t.Errorf("Status = %d, want %d", res.Status, tt.status)
			}
		})
	}
}

func TestClientRequest(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery, gotKey, gotUA, gotDefault string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("num")
		gotKey = r.Header.Get("X-Api-Key")
		gotUA = r.Header.Get("User-Agent")
		gotDefault = r.Header.Get("X-Tenant")
		_, _ = io.WriteString(w, `{"data":{"ok":1}}`)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.File = &config.File{Defaults: config.Defaults{Headers: map[string]string{"X-Tenant": "t1"}}}
	c := newTestClient(t, cfg)

	res, err := c.Fetch(t.Context(), specFor(srv.URL), "98 76")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/lookup" || gotQuery != "98 76" {
		t.Errorf("request path %q query %q", gotPath, gotQuery)
	}
	if gotKey != "k" {
		t.Errorf("X-Api-Key = %q", gotKey)
	}
	if gotUA != config.DefaultUserAgent {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotDefault != "t1" {
		t.Errorf("default header = %q", gotDefault)
	}
	if !strings.HasPrefix(res.URL, srv.URL+"/lookup?num=98+76") {
		t.Errorf("URL = %q", res.URL)
	}
	if got := res.Payload.Path("data", "ok").Text(); got != "1" {
		t.Errorf("payload data.ok = %q", got)
	}
}

func TestClientCache(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("num") == "missing" {
			_, _ = io.WriteString(w, `{"error":"nope"}`)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"n":1}}`)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.CacheTTL = time.Minute
	c := newTestClient(t, cfg)
	spec := specFor(srv.URL)

	first, err := c.Fetch(t.Context(), spec, "1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Fetch(t.Context(), spec, "1")
	if err != nil {
		t.Fatal(err)
	}

	if first.Cached || !second.Cached {
		t.Errorf("Cached = %v/%v, want false/true", first.Cached, second.Cached)
	}
	if calls.Load() != 1 {
		t.Errorf("upstream calls = %d, want 1", calls.Load())
	}
	if c.CachedItems() != 1 {
		t.Errorf("CachedItems = %d, want 1", c.CachedItems())
	}

	t.Run("not-found answers are not cached", func(t *testing.T) {
		for range 2 {
			if _, err := c.Fetch(t.Context(), spec, "missing"); !IsNotFound(err) {
				t.Fatalf("expected not found, got %v", err)
			}
		}
		if calls.Load() != 3 {
			t.Errorf("upstream calls = %d, want 3", calls.Load())
		}
	})
}

func TestClientErrors(t *testing.T) {
	t.Parallel()

	t.Run("no endpoint", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, testConfig())
		_, err := c.Fetch(t.Context(), category.Spec{Category: category.GST}, "x")
		if !errors.Is(err, category.ErrNoEndpoint) {
			t.Errorf("err = %v, want ErrNoEndpoint", err)
		}
	})

	t.Run("unreachable upstream", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c := newTestClient(t, testConfig())
		_, err := c.Fetch(t.Context(), specFor(url), "x")
		if !errors.Is(err, ErrUpstream) {
			t.Errorf("err = %v, want ErrUpstream", err)
		}
		if UserMessage(err) != UnexpectedErrorMessage {
			t.Errorf("UserMessage = %q", UserMessage(err))
		}
	})

	t.Run("body too large", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"data":"`+strings.Repeat("x", 64)+`"}`)
		}))
		t.Cleanup(srv.Close)

		cfg := testConfig()
		cfg.MaxBodySize = 16
		c := newTestClient(t, cfg)
		_, err := c.Fetch(t.Context(), specFor(srv.URL), "x")
		if !errors.Is(err, ErrBodyTooLarge) || !errors.Is(err, ErrUpstream) {
			t.Errorf("err = %v, want ErrBodyTooLarge", err)
		}
	})

	t.Run("cancelled context while rate limited", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		cfg.RateLimit = 0.001
		cfg.RateBurst = 1
		c := newTestClient(t, cfg)
		c.limiter.Allow()

		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_, err := c.Fetch(ctx, specFor("http://127.0.0.1:1"), "x")
		if !errors.Is(err, ErrUpstream) {
			t.Errorf("err = %v, want ErrUpstream", err)
		}
	})

	t.Run("invalid proxy address", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		cfg.ProxyAddress = "localhost"
		if _, err := NewClient(cfg); !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("err = %v, want ErrInvalidProxyAddress", err)
		}
	})
}

func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"127.0.0.1:9050": true,
		"localhost:1080": true,
		"[::1]:9050":     true,
		"localhost":      false,
		":9050":          false,
		"host:0":         false,
		"host:65536":     false,
		"host:abc":       false,
	}
	for addr, want := range tests {
		if got := isValidProxyAddress(addr); got != want {
			t.Errorf("isValidProxyAddress(%q) = %v, want %v", addr, got, want)
		}
	}
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	reg := category.DefaultRegistry()
	spec, _ := reg.Get(category.Mobile)
	verr := spec.Validate("1")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", verr, verr.Error()},
		{"not found", &NotFoundError{Message: "Nothing"}, "Nothing"},
		{"upstream", ErrUpstream, UnexpectedErrorMessage},
		{"other", errors.New("boom"), UnexpectedErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResultPayloadIsOrdered(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"z":1,"a":2,"m":3}`)
	}))
	t.Cleanup(srv.Close)

	res, err := newTestClient(t, testConfig()).Fetch(t.Context(), specFor(srv.URL), "x")
	if err != nil {
		t.Fatal(err)
	}
	m, ok := res.Payload.Mapping()
	if !ok {
		t.Fatalf("payload kind = %v", res.Payload.Kind())
	}
	if got := strings.Join(m.Keys(), ","); got != "z,a,m" {
		t.Errorf("keys = %s, want z,a,m", got)
	}
}
