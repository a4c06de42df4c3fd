package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swipehire/internal/domain/session"
	"swipehire/internal/metrics"
	"swipehire/internal/observability"
	"swipehire/internal/security"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }), mark("a"), mark("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestRequestIDPropagates(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = observability.RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestLoggingRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewLoggerTo(&buf, "info")
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}), RequestID, Logging(logger))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"path":"/brew"`)
	assert.Contains(t, buf.String(), `"request_id"`)
}

func TestRecoverReturnsInternalError(t *testing.T) {
	var buf bytes.Buffer
	h := Recover(observability.NewLoggerTo(&buf, "info"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "panic recovered")
}

func TestMetricsCountsRequests(t *testing.T) {
	collector := metrics.NewCollector()
	h := Metrics(collector)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, uint64(1), collector.Snapshot().Requests)
}

func TestTimeoutSetsDeadline(t *testing.T) {
	var hasDeadline bool
	h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, hasDeadline)
}

func TestBodyLimit(t *testing.T) {
	h := BodyLimit(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 16)
		_, err := r.Body.Read(buf)
		for err == nil {
			_, err = r.Body.Read(buf)
		}
		if strings.Contains(err.Error(), "too large") {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
		}
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestAuthenticateBuildsSession(t *testing.T) {
	provider := security.NewJWTProvider("secret")
	token, _, err := provider.Generate(session.Session{ActorID: "dev-1", Role: session.RoleDeveloper}, time.Hour)
	require.NoError(t, err)

	var got session.Session
	h := NewAuthMiddleware(provider).Authenticate(RequireRole(session.RoleDeveloper)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = SessionFromContext(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev-1", got.ActorID.String())

	req = httptest.NewRequest(http.MethodGet, "/ws?access_token="+token, nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticateRejects(t *testing.T) {
	provider := security.NewJWTProvider("secret")
	companyToken, _, err := provider.Generate(session.Session{ActorID: "co-1", Role: session.RoleCompany}, time.Hour)
	require.NoError(t, err)
	h := NewAuthMiddleware(provider).Authenticate(RequireRole(session.RoleDeveloper)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})))

	cases := map[string]int{
		"":                       http.StatusUnauthorized,
		"Basic abc":              http.StatusUnauthorized,
		"Bearer not-a-token":     http.StatusUnauthorized,
		"Bearer " + companyToken: http.StatusForbidden,
	}
	for header, status := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, status, rec.Code, header)
	}
}

func TestRateLimitByActor(t *testing.T) {
	limiter := NewRateLimiter()
	h := RateLimit(limiter, ActorKey("action"), 2, time.Minute)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	ctx := WithSession(context.Background(), session.Session{ActorID: "dev-1", Role: session.RoleDeveloper})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/", nil).WithContext(ctx))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	other := WithSession(context.Background(), session.Session{ActorID: "dev-2", Role: session.RoleDeveloper})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/", nil).WithContext(other))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRedisLimiter(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	limiter := NewRedisLimiter(client, "swipehire:test:"+time.Now().Format("150405.000000000"))
	ctx := context.Background()
	assert.True(t, limiter.Allow(ctx, "k", 1, time.Minute))
	assert.False(t, limiter.Allow(ctx, "k", 1, time.Minute))
}

func TestNilRedisLimiterAllows(t *testing.T) {
	var limiter *RedisLimiter
	assert.True(t, limiter.Allow(context.Background(), "k", 1, time.Minute))
	assert.Nil(t, NewRedisLimiter(nil, ""))
}
