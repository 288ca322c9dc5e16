package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/physiokg/internal/config"
	"github.com/agenthands/physiokg/internal/core/apperr"
	"github.com/agenthands/physiokg/internal/core/model"
	"github.com/agenthands/physiokg/internal/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeEngine struct {
	conditions []string
	record     *model.ReasoningRecord
	err        error
	pingErr    error

	gotFragment  string
	gotCondition string
	gotDeadline  bool
}

func (f *fakeEngine) Search(ctx context.Context, fragment string) ([]string, error) {
	f.gotFragment = fragment
	_, f.gotDeadline = ctx.Deadline()
	return f.conditions, f.err
}

func (f *fakeEngine) ListConditions(ctx context.Context) ([]string, error) {
	return f.conditions, f.err
}

func (f *fakeEngine) Generate(ctx context.Context, condition string) (*model.ReasoningRecord, error) {
	f.gotCondition = condition
	return f.record, f.err
}

func (f *fakeEngine) Ping(ctx context.Context) error {
	return f.pingErr
}

func serve(t *testing.T, engine Reasoner, target string) *httptest.ResponseRecorder {
	t.Helper()
	s := NewServer(engine, config.ServerConfig{RequestTimeoutSeconds: 5}, logger.NewNop())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	s.SetupRouter().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSearch(t *testing.T) {
	engine := &fakeEngine{conditions: []string{"Frozen Shoulder"}}

	w := serve(t, engine, "/api/search?q=shoulder")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"conditions":["Frozen Shoulder"]}`, w.Body.String())
	assert.Equal(t, "shoulder", engine.gotFragment)
	assert.True(t, engine.gotDeadline)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestSearch_MissingQuery(t *testing.T) {
	for _, target := range []string{"/api/search", "/api/search?q=%20%20"} {
		w := serve(t, &fakeEngine{}, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Equal(t, "Search query is required", decode(t, w)["error"])
	}
}

func TestListConditions(t *testing.T) {
	w := serve(t, &fakeEngine{conditions: []string{"Achilles Tendinopathy", "Frozen Shoulder"}}, "/api/conditions")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"conditions":["Achilles Tendinopathy","Frozen Shoulder"]}`, w.Body.String())
}

func TestReasoning(t *testing.T) {
	action := "Urgent referral"
	engine := &fakeEngine{record: &model.ReasoningRecord{
		Condition:       "Frozen Shoulder",
		Impairments:     []model.Impairment{},
		Assessments:     []model.Assessment{},
		Interventions:   []model.Intervention{},
		Exercises:       []model.Exercise{},
		RedFlags:        []model.RedFlag{{Flag: "Night pain", Action: &action, Urgency: model.UrgencyHigh}},
		Medications:     []model.Medication{},
		OutcomeMeasures: []model.OutcomeMeasure{},
	}}

	w := serve(t, engine, "/api/reasoning/Frozen%20Shoulder")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Frozen Shoulder", engine.gotCondition)
	assert.JSONEq(t, `{
		"condition": "Frozen Shoulder",
		"impairments": [], "assessments": [], "interventions": [], "exercises": [],
		"redFlags": [{"flag": "Night pain", "action": "Urgent referral", "urgency": "High"}],
		"medications": [], "outcomeMeasures": []
	}`, w.Body.String())
}

func TestReasoning_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.New(apperr.NotFound, "index.Resolve", errors.New("condition \"x\" not found")), http.StatusNotFound, "Condition not found"},
		{apperr.New(apperr.InvalidArgument, "reasoning.Generate", errors.New("condition is required")), http.StatusBadRequest, "condition is required"},
		{apperr.New(apperr.UpstreamUnavailable, "category.Fetch", errors.New("bolt: connection reset")), http.StatusServiceUnavailable, "Failed to generate reasoning"},
		{apperr.New(apperr.Timeout, "reasoning.Generate", context.DeadlineExceeded), http.StatusGatewayTimeout, "Request timed out"},
		{errors.New("unexpected"), http.StatusInternalServerError, "Failed to generate reasoning"},
	}

	for _, tc := range cases {
		w := serve(t, &fakeEngine{err: tc.err}, "/api/reasoning/Tennis%20Elbow")
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.Equal(t, tc.msg, decode(t, w)["error"])
	}
}

func TestHealth(t *testing.T) {
	w := serve(t, &fakeEngine{}, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(t, &fakeEngine{pingErr: errors.New("down")}, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	engine := &fakeEngine{conditions: []string{}}
	serve(t, engine, "/api/conditions")

	w := serve(t, engine, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "physiokg_http_requests_total")
}

func TestRequestID_Propagated(t *testing.T) {
	s := NewServer(&fakeEngine{}, config.ServerConfig{}, logger.NewNop())
	assert.Equal(t, 15*time.Second, s.RequestTimeout)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	s.SetupRouter().ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}

func TestRateLimit(t *testing.T) {
	s := NewServer(&fakeEngine{conditions: []string{"Frozen Shoulder"}},
		config.ServerConfig{RateLimitPerMinute: 2}, logger.NewNop())
	r := s.SetupRouter()

	get := func(target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		return w
	}

	assert.Equal(t, http.StatusOK, get("/api/conditions").Code)
	assert.Equal(t, http.StatusOK, get("/api/conditions").Code)
	w := get("/api/conditions")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))

	// health checks are outside the API group
	assert.Equal(t, http.StatusOK, get("/healthz").Code)
}

func TestRateLimit_ForwardedForIgnoredWithoutTrustedProxy(t *testing.T) {
	s := NewServer(&fakeEngine{conditions: []string{"Frozen Shoulder"}},
		config.ServerConfig{RateLimitPerMinute: 2}, logger.NewNop())
	r := s.SetupRouter()

	limited := 0
	for i := 0; i < 1000; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/conditions", nil)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d, 10.0.%d.1", i%256, i/256))
		r.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited++
		}
	}

	assert.Equal(t, 998, limited)
	assert.Equal(t, 1, s.RateLimit.Len())
}

func TestRateLimit_TrustedProxyForwardsClientIP(t *testing.T) {
	// httptest requests arrive from 192.0.2.1
	s := NewServer(&fakeEngine{conditions: []string{"Frozen Shoulder"}},
		config.ServerConfig{RateLimitPerMinute: 1, TrustedProxies: []string{"192.0.2.1"}}, logger.NewNop())
	r := s.SetupRouter()

	get := func(clientIP string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/conditions", nil)
		req.Header.Set("X-Forwarded-For", clientIP)
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get("198.51.100.7"))
	assert.Equal(t, http.StatusTooManyRequests, get("198.51.100.7"))
	assert.Equal(t, http.StatusOK, get("198.51.100.8"))
	assert.Equal(t, 2, s.RateLimit.Len())
}

func TestRateLimit_InvalidTrustedProxyFallsBackToPeer(t *testing.T) {
	s := NewServer(&fakeEngine{},
		config.ServerConfig{RateLimitPerMinute: 1, TrustedProxies: []string{"not-an-ip"}}, logger.NewNop())
	r := s.SetupRouter()

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/conditions", nil)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		r.ServeHTTP(w, req)
	}
	assert.Equal(t, 1, s.RateLimit.Len())
}

func TestRateLimiter_BoundedClients(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(2)
	l.maxClients = 10
	l.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow(fmt.Sprintf("198.51.100.%d", i)))
		assert.LessOrEqual(t, l.Len(), 10)
	}

	// a recently seen client survives eviction of older ones
	now = now.Add(time.Second)
	assert.True(t, l.Allow("198.51.100.99"))
	assert.True(t, l.Allow("203.0.113.1"))
	assert.False(t, l.Allow("198.51.100.99"), "bucket kept, so the burst is spent")
	assert.Equal(t, 10, l.Len())
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(2)
	l.maxClients = 5
	l.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		l.Allow(fmt.Sprintf("198.51.100.%d", i))
	}
	require.Equal(t, 5, l.Len())

	now = now.Add(2 * time.Minute)
	assert.True(t, l.Allow("203.0.113.1"))
	assert.Equal(t, 1, l.Len())
}

func TestNewRateLimiter_Disabled(t *testing.T) {
	assert.Nil(t, NewRateLimiter(0))
	assert.Nil(t, NewRateLimiter(-1))
}

func TestCORS(t *testing.T) {
	s := NewServer(&fakeEngine{}, config.ServerConfig{CORSOrigins: []string{"http://localhost:3000"}}, logger.NewNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/conditions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	s.SetupRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
