package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/lookupreport/internal/category"
	"github.com/nao1215/lookupreport/internal/history"
	"github.com/nao1215/lookupreport/internal/lookup"
	"github.com/nao1215/lookupreport/internal/payload"
	"github.com/nao1215/lookupreport/internal/pipeline"
	"github.com/nao1215/lookupreport/internal/report"
)

var fixedTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func testEngine() *report.Engine {
	return report.NewEngine(report.WithClock(func() time.Time { return fixedTime }))
}

type stubFetcher struct {
	body string
	err  error
}

func (f stubFetcher) Fetch(_ context.Context, spec category.Spec, query string) (*lookup.Result, error) {
	res := &lookup.Result{Category: spec.Category, Query: query, Status: http.StatusOK}
	if f.err != nil {
		return res, f.err
	}
	res.Found = true
	res.Payload = payload.MustParse(f.body)
	return res, nil
}

type stubHistory struct {
	searches []history.Search
	stats    history.Stats
	err      error
	limit    int
}

func (h *stubHistory) Recent(_ context.Context, limit int) ([]history.Search, error) {
	h.limit = limit
	return h.searches, h.err
}

func (h *stubHistory) Stats(context.Context) (history.Stats, error) {
	return h.stats, h.err
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRender(t *testing.T) {
	t.Parallel()

	h := New(WithEngine(testEngine())).Handler()

	t.Run("returns plain text report", func(t *testing.T) {
		t.Parallel()

		w := do(t, h, http.MethodPost, "/v1/render",
			`{"category":"gst","query":"Q1","payload":{"data":{"tradeName":"ACME"}}}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "GST ANALYSIS REPORT")
		assert.Contains(t, w.Body.String(), "Trade Name  : ACME")
	})

	t.Run("missing payload renders the sentinel", func(t *testing.T) {
		t.Parallel()

		w := do(t, h, http.MethodPost, "/v1/render", `{"category":"mobile","query":"Q"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, report.NoDetails, w.Body.String())
	})

	t.Run("json format", func(t *testing.T) {
		t.Parallel()

		w := do(t, h, http.MethodPost, "/v1/render?format=json",
			`{"category":"gst","query":"Q","payload":{}}`)
		require.Equal(t, http.StatusOK, w.Code)

		var doc report.Document
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.True(t, doc.Sentinel)
		assert.Equal(t, report.NoDetails, doc.Text)
	})

	t.Run("missing category", func(t *testing.T) {
		t.Parallel()

		w := do(t, h, http.MethodPost, "/v1/render", `{"query":"Q"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"invalid request"}`, w.Body.String())
	})
}

func TestExplain(t *testing.T) {
	t.Parallel()

	h := New().Handler()

	tests := []struct {
		name      string
		body      string
		wantEmpty bool
		wantStage string
	}{
		{"empty data", `{"category":"gst","payload":{"data":{}}}`, true, string(payload.StageResolved)},
		{"null", `{"category":"gst","payload":null}`, true, string(payload.StageRaw)},
		{"record", `{"category":"gst","payload":{"data":{"a":1}}}`, false, string(payload.StageResolved)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := do(t, h, http.MethodPost, "/v1/explain", tt.body)
			require.Equal(t, http.StatusOK, w.Code)

			var got struct {
				Empty bool   `json:"empty"`
				Stage string `json:"stage"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.wantEmpty, got.Empty)
			assert.Equal(t, tt.wantStage, got.Stage)
		})
	}
}

func TestCategories(t *testing.T) {
	t.Parallel()

	reg := category.DefaultRegistry()
	reg.Apply(category.GST, category.Override{Endpoint: "https://api.example.test/gst?q={query}"})
	h := New(WithRegistry(reg)).Handler()

	w := do(t, h, http.MethodGet, "/v1/categories", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "api.example.test")

	var got []categoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, len(reg.All()))
	for _, c := range got {
		assert.Equal(t, c.Category == category.GST, c.Configured, c.Category)
	}

	// Second request is served from the response cache.
	again := do(t, h, http.MethodGet, "/v1/categories", "")
	assert.Equal(t, w.Body.String(), again.Body.String())
}

func TestLookup(t *testing.T) {
	t.Parallel()

	newHandler := func(f pipeline.Fetcher) http.Handler {
		return New(WithLookup(func() *pipeline.Pipeline {
			return pipeline.NewLookupPipeline(pipeline.Components{Fetcher: f, Engine: testEngine()})
		})).Handler()
	}

	tests := []struct {
		name     string
		fetcher  stubFetcher
		target   string
		wantCode int
		wantBody string
	}{
		{
			name:     "found",
			fetcher:  stubFetcher{body: `{"data":{"tradeName":"ACME"}}`},
			target:   "/v1/lookup/gst/27aapfu0939f1zv",
			wantCode: http.StatusOK,
			wantBody: "FOR 27AAPFU0939F1ZV",
		},
		{
			name:     "invalid query",
			target:   "/v1/lookup/mobile/123",
			wantCode: http.StatusBadRequest,
			wantBody: "Mobile must be 10 digits.",
		},
		{
			name:     "unknown category",
			target:   "/v1/lookup/passport/X1",
			wantCode: http.StatusNotFound,
			wantBody: "unknown category",
		},
		{
			name:     "not found",
			fetcher:  stubFetcher{err: &lookup.NotFoundError{Message: "No record found"}},
			target:   "/v1/lookup/telegram/someone",
			wantCode: http.StatusNotFound,
			wantBody: "No record found",
		},
		{
			name:     "upstream failure",
			fetcher:  stubFetcher{err: lookup.ErrUpstream},
			target:   "/v1/lookup/telegram/someone",
			wantCode: http.StatusBadGateway,
			wantBody: lookup.UnexpectedErrorMessage,
		},
		{
			name:     "no endpoint",
			fetcher:  stubFetcher{err: category.ErrNoEndpoint},
			target:   "/v1/lookup/telegram/someone",
			wantCode: http.StatusServiceUnavailable,
			wantBody: category.ErrNoEndpoint.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := do(t, newHandler(tt.fetcher), http.MethodGet, tt.target, "")
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()

		w := do(t, New().Handler(), http.MethodGet, "/v1/lookup/gst/x", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestHistoryRoutes(t *testing.T) {
	t.Parallel()

	t.Run("recent uses the default limit", func(t *testing.T) {
		t.Parallel()

		h := &stubHistory{searches: []history.Search{
			{ID: 2, Category: category.GST, Query: "Q2", Status: history.StatusError},
			{ID: 1, Category: category.GST, Query: "Q1", Status: history.StatusFound},
		}}
		w := do(t, New(WithHistory(h), WithHistoryLimit(3)).Handler(), http.MethodGet, "/v1/history", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 3, h.limit)

		var got []struct {
			ID    int64  `json:"id"`
			Label string `json:"label"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "Not Found", got[0].Label)
		assert.Equal(t, "Found", got[1].Label)
	})

	t.Run("explicit limit", func(t *testing.T) {
		t.Parallel()

		h := &stubHistory{}
		w := do(t, New(WithHistory(h)).Handler(), http.MethodGet, "/v1/history?limit=10", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 10, h.limit)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("bad limit", func(t *testing.T) {
		t.Parallel()

		w := do(t, New(WithHistory(&stubHistory{})).Handler(), http.MethodGet, "/v1/history?limit=-1", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("stats", func(t *testing.T) {
		t.Parallel()

		h := &stubHistory{stats: history.Stats{Total: 3, SuccessRate: 33, AvgResponse: 134}}
		w := do(t, New(WithHistory(h)).Handler(), http.MethodGet, "/v1/stats", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"total":3,"success_rate":33,"avg_response_ms":134}`, w.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()

		h := &stubHistory{err: errors.New("locked")}
		w := do(t, New(WithHistory(h)).Handler(), http.MethodGet, "/v1/stats", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()

		for _, target := range []string{"/v1/history", "/v1/stats"} {
			w := do(t, New().Handler(), http.MethodGet, target, "")
			assert.Equal(t, http.StatusServiceUnavailable, w.Code, target)
		}
	})
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	h := New(WithRateLimit(0.001, 1)).Handler()

	first := do(t, h, http.MethodGet, "/v1/categories", "")
	assert.Equal(t, http.StatusOK, first.Code)

	second := do(t, h, http.MethodGet, "/v1/categories", "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestIPRateLimiterExpiresIdleClients(t *testing.T) {
	t.Parallel()

	l := newIPRateLimiter(0.001, 1, 50*time.Millisecond)

	first := l.limiter("192.0.2.1")
	require.True(t, first.Allow())
	assert.Same(t, first, l.limiter("192.0.2.1"))
	assert.False(t, l.limiter("192.0.2.1").Allow())

	l.limiter("192.0.2.2")
	assert.Equal(t, 2, l.size())

	time.Sleep(100 * time.Millisecond)

	again := l.limiter("192.0.2.1")
	assert.NotSame(t, first, again)
	assert.True(t, again.Allow(), "an idle client should start with a fresh bucket")
}

func TestRunShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New().Run(ctx, "127.0.0.1:0")
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
