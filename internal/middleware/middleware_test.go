package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
	"github.com/jwalitptl/clinic-api/pkg/result"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func pong(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse("ok"))
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.Response {
	t.Helper()
	var resp handler.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func resultFailure() result.Result[string] {
	return result.Failure[string](apperrors.Conflict("email already registered", nil))
}

func TestAuthenticate(t *testing.T) {
	jwt := auth.NewJWTService("secret", "clinic-api", time.Hour)
	mw := NewAuthMiddleware(jwt)

	principal := model.Principal{StaffID: uuid.New(), Email: "ana@clinic.ph", Role: model.RoleNurse}
	token, _, err := jwt.GenerateAccessToken(principal)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", mw.Authenticate(), func(c *gin.Context) {
		p, ok := handler.Principal(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, handler.NewSuccessResponse(p.StaffID.String()))
	})
	r.GET("/admin", mw.Authenticate(), mw.RequireRole(model.RoleAdmin), pong)
	r.GET("/nurse", mw.Authenticate(), mw.RequireRole(model.RoleAdmin, model.RoleNurse), pong)

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"valid token", "/me", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "/me", "bearer " + token, http.StatusOK},
		{"missing header", "/me", "", http.StatusUnauthorized},
		{"wrong scheme", "/me", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "/me", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"role refused", "/admin", "Bearer " + token, http.StatusForbidden},
		{"role allowed", "/nurse", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status != http.StatusOK {
				assert.Equal(t, handler.StatusError, decode(t, w).Status)
			}
		})
	}

	w := serve(r, func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return req
	}())
	assert.Equal(t, principal.StaffID.String(), decode(t, w).Data)
}

func TestRequireRoleWithoutPrincipal(t *testing.T) {
	mw := NewAuthMiddleware(auth.NewJWTService("secret", "clinic-api", time.Hour))
	r := gin.New()
	r.GET("/admin", mw.RequireRole(model.RoleAdmin), pong)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimitPerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Every(time.Hour), Burst: 1})
	r := gin.New()
	r.GET("/ping", rl.RateLimit(), pong)

	from := func(addr string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = addr
		return req
	}

	assert.Equal(t, http.StatusOK, serve(r, from("192.0.2.1:1000")).Code)

	w := serve(r, from("192.0.2.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "rate limit exceeded", decode(t, w).Message)

	assert.Equal(t, http.StatusOK, serve(r, from("192.0.2.2:1000")).Code)
}

func TestRateLimitKeysByStaff(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Every(time.Hour), Burst: 1})
	staff := uuid.New()
	r := gin.New()
	r.GET("/ping", func(c *gin.Context) {
		if c.GetHeader("X-Staff") != "" {
			handler.SetPrincipal(c, model.Principal{StaffID: staff, Role: model.RoleAdmin})
		}
	}, rl.RateLimit(), pong)

	req := func(asStaff bool) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "192.0.2.9:1000"
		if asStaff {
			req.Header.Set("X-Staff", "1")
		}
		return req
	}

	assert.Equal(t, http.StatusOK, serve(r, req(true)).Code)
	assert.Equal(t, http.StatusOK, serve(r, req(false)).Code, "anonymous bucket is separate")
	assert.Equal(t, http.StatusTooManyRequests, serve(r, req(true)).Code)
}

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://front.clinic.ph"}
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/ping", pong)
	r.OPTIONS("/ping", pong)

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", origin)
		return serve(r, req)
	}

	w := preflight("https://front.clinic.ph")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://front.clinic.ph", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	w = preflight("https://evil.example")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(DefaultSecurityConfig()))
	r.GET("/ping", pong)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", w.Header().Get("Content-Security-Policy"))
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(SizeLimit(SizeLimitConfig{MaxBodySize: 16, MaxHeaderSize: 1 << 10}))
	r.POST("/echo", func(c *gin.Context) {
		var body map[string]string
		if !handler.BindJSON(c, &body) {
			return
		}
		c.JSON(http.StatusOK, handler.NewSuccessResponse(body))
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"a":"b"}`)))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":"much too long for the limit"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{}`))
	req.Header.Set("X-Padding", strings.Repeat("x", 2<<10))
	assert.Equal(t, http.StatusRequestHeaderFieldsTooLarge, serve(r, req).Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(zerolog.Nop()), Recovery(zerolog.Nop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode(t, w)
	assert.Equal(t, handler.StatusError, resp.Status)
	assert.Equal(t, "internal server error", resp.Message)
	assert.NotEmpty(t, w.Header().Get(HeaderXRequestID))
}

func TestRequestIDReusesHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(zerolog.Nop()))
	r.GET("/ping", func(c *gin.Context) {
		assert.Equal(t, "abc-123", c.GetString(ContextRequestID))
		assert.NotNil(t, zerolog.Ctx(c.Request.Context()))
		pong(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	w := serve(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))
}

func TestErrorHandlerRendersUnwrittenErrors(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(zerolog.Nop()))
	r.GET("/missing", func(c *gin.Context) {
		_ = c.Error(apperrors.NotFound("doctor", nil))
	})
	r.GET("/rendered", func(c *gin.Context) {
		handler.Respond(c, http.StatusOK, resultFailure())
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "doctor not found", decode(t, w).Message)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/rendered", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "email already registered", decode(t, w).Message)
}

func TestTimeoutSetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(TimeoutConfig{Duration: time.Minute}))
	r.GET("/ping", func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil)).Code)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry(), "clinic")
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/doctors/:id", pong)

	serve(r, httptest.NewRequest(http.MethodGet, "/doctors/1", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/doctors/2", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "/doctors/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPInFlight))
}
