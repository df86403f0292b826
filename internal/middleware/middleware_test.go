package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pageza/nocapcooking/backend/internal/logging"
	"github.com/pageza/nocapcooking/backend/internal/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestRequestIDGeneratesAndPropagates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var fromContext string
	r.GET("/x", func(c *gin.Context) {
		fromContext, _ = logging.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := perform(r, http.MethodGet, "/x", nil)
	id := w.Header().Get(HeaderRequestID)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, fromContext)

	incoming := uuid.NewString()
	w = perform(r, http.MethodGet, "/x", map[string]string{HeaderRequestID: incoming})
	assert.Equal(t, incoming, w.Header().Get(HeaderRequestID))

	w = perform(r, http.MethodGet, "/x", map[string]string{HeaderRequestID: "not-a-uuid"})
	assert.NotEqual(t, "not-a-uuid", w.Header().Get(HeaderRequestID))
}

func TestRecoveryReturnsJSON(t *testing.T) {
	core, observed := observer.New(zap.ErrorLevel)
	r := gin.New()
	r.Use(RequestID(), Recovery(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	before := testutil.ToFloat64(panicRecoveries)
	w := perform(r, http.MethodGet, "/boom", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decodeError(t, w))
	assert.Equal(t, before+1, testutil.ToFloat64(panicRecoveries))

	entries := observed.FilterMessage("panic recovered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
	assert.NotEmpty(t, entries[0].ContextMap()[logging.FieldRequestID])
}

func TestAccessLogLevels(t *testing.T) {
	core, observed := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	perform(r, http.MethodGet, "/ok?page=2", nil)
	perform(r, http.MethodGet, "/bad", nil)
	perform(r, http.MethodGet, "/fail", nil)

	entries := observed.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, "page=2", entries[0].ContextMap()["query"])
	assert.Equal(t, int64(200), entries[0].ContextMap()["status"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
}

func TestMetricsCountsByRouteTemplate(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/things/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", MetricsHandler())

	counter := httpRequestsTotal.WithLabelValues(http.MethodGet, "/things/:id", "200")
	before := testutil.ToFloat64(counter)
	perform(r, http.MethodGet, "/things/1", nil)
	perform(r, http.MethodGet, "/things/2", nil)
	assert.Equal(t, before+2, testutil.ToFloat64(counter))

	w := perform(r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "catalog_http_requests_total")
}

type fakeValidator struct {
	claims *types.TokenClaims
	err    error
}

func (f fakeValidator) ValidateToken(string) (*types.TokenClaims, error) {
	return f.claims, f.err
}

func TestAdminAuth(t *testing.T) {
	admin := &types.TokenClaims{Role: types.RoleAdmin}
	admin.Subject = "ops"

	tests := []struct {
		name      string
		validator TokenValidator
		header    string
		status    int
		message   string
	}{
		{"missing header", fakeValidator{claims: admin}, "", http.StatusUnauthorized, "missing authorization header"},
		{"wrong scheme", fakeValidator{claims: admin}, "Basic abc", http.StatusUnauthorized, "invalid authorization header format"},
		{"invalid token", fakeValidator{err: errors.New("invalid token")}, "Bearer abc", http.StatusUnauthorized, "invalid token"},
		{"not admin", fakeValidator{claims: &types.TokenClaims{Role: "viewer"}}, "Bearer abc", http.StatusForbidden, "admin role required"},
		{"valid", fakeValidator{claims: admin}, "bearer abc", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/admin", AdminAuth(tt.validator), func(c *gin.Context) {
				c.String(http.StatusOK, c.GetString(ContextKeyAdminSubject))
			})

			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := perform(r, http.MethodGet, "/admin", headers)

			assert.Equal(t, tt.status, w.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, decodeError(t, w))
			} else {
				assert.Equal(t, "ops", w.Body.String())
			}
		})
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.example"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/x", map[string]string{"Origin": "https://app.example"})
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = perform(r, http.MethodGet, "/x", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = perform(r, http.MethodOptions, "/x", map[string]string{
		"Origin":                        "https://app.example",
		"Access-Control-Request-Method": "GET",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)

	all := gin.New()
	all.Use(CORS([]string{"*"}))
	all.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	w = perform(all, http.MethodGet, "/x", map[string]string{"Origin": "https://any.example"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiterKey(t *testing.T) {
	rl := NewFilterRateLimiter(nil, 5, time.Minute, nil)
	at := time.Unix(1_700_000_030, 0)

	assert.Equal(t, "rate_limit:recipe_filter:10.0.0.1:1700000000", rl.Key("10.0.0.1", at))
	assert.Equal(t, rl.Key("10.0.0.1", at), rl.Key("10.0.0.1", at.Add(20*time.Second)))
	assert.NotEqual(t, rl.Key("10.0.0.1", at), rl.Key("10.0.0.1", at.Add(time.Minute)))
}

func TestRateLimiterDisabledWithoutRedis(t *testing.T) {
	rl := NewFilterRateLimiter(nil, 1, time.Minute, nil)
	assert.False(t, rl.Enabled())

	r := gin.New()
	r.GET("/x", rl.RateLimitMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := perform(r, http.MethodGet, "/x", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimiterFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })

	rl := NewFilterRateLimiter(client, 1, time.Minute, nil)
	r := gin.New()
	r.GET("/x", rl.RateLimitMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(rateLimitErrors)
	w := perform(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rate limit check failed", w.Header().Get("X-RateLimit-Error"))
	assert.Equal(t, before+1, testutil.ToFloat64(rateLimitErrors))
}

func TestRateLimiterWithRedis(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { client.Close() })

	rl := NewFilterRateLimiter(client, 2, time.Minute, nil)
	fixed := time.Now()
	rl.now = func() time.Time { return fixed }

	r := gin.New()
	r.GET("/x", rl.RateLimitMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	w = perform(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = perform(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "rate limit exceeded", body["error"])

	ttl, err := client.TTL(ctx, rl.Key("192.0.2.1", fixed)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
