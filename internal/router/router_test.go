package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

// routes registers GET and POST on path
type routes struct{ path string }

func (h routes) RegisterRoutes(r *gin.RouterGroup) {
	r.GET(h.path, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST(h.path, func(c *gin.Context) { c.Status(http.StatusCreated) })
}

// guarded puts guard in front of the POST
type guarded struct{ path string }

func (h guarded) RegisterRoutes(r *gin.RouterGroup, guard ...gin.HandlerFunc) {
	r.GET(h.path, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST(h.path, append(guard, func(c *gin.Context) { c.Status(http.StatusCreated) })...)
}

type authRoutes struct{}

func (authRoutes) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })
}

func (authRoutes) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("/auth/me", func(c *gin.Context) { c.Status(http.StatusOK) })
}

type fixture struct {
	engine *gin.Engine
	jwt    auth.JWTService
}

func newFixture(t *testing.T, limiter *middleware.RateLimiter) fixture {
	t.Helper()
	jwt := auth.NewJWTService("secret", "clinic-api", time.Hour)
	m := metrics.New(prometheus.NewRegistry(), "clinic")

	r := NewRouter(zerolog.Nop(), middleware.NewAuthMiddleware(jwt), m, Handlers{
		Auth:          authRoutes{},
		Health:        routes{"/health/live"},
		Doctor:        routes{"/doctors"},
		Patient:       routes{"/patients"},
		Staff:         routes{"/staff"},
		Appointment:   routes{"/appointments"},
		MedicalRecord: guarded{"/medical-records"},
		Billing:       guarded{"/bills"},
		Geo:           routes{"/geo/provinces"},
		Metrics:       func(c *gin.Context) { c.String(http.StatusOK, "# metrics") },
	}, Config{
		Mode:           gin.TestMode,
		RequestTimeout: time.Second,
		MaxBodyBytes:   1 << 20,
		CORS:           middleware.DefaultCORSConfig(),
		Security:       middleware.DefaultSecurityConfig(),
		RateLimiter:    limiter,
	})
	return fixture{engine: r.Engine(), jwt: jwt}
}

func (f fixture) token(t *testing.T, role model.StaffRole) string {
	t.Helper()
	token, _, err := f.jwt.GenerateAccessToken(model.Principal{StaffID: uuid.New(), Email: "staff@clinic.ph", Role: role})
	require.NoError(t, err)
	return token
}

func (f fixture) do(method, path, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w.Code
}

func TestPublicRoutes(t *testing.T) {
	f := newFixture(t, nil)

	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/v1/auth/login", ""))
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/v1/health/live", ""))
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/metrics", ""))
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	f := newFixture(t, nil)
	receptionist := f.token(t, model.RoleReceptionist)

	for _, path := range []string{"/api/v1/auth/me", "/api/v1/doctors", "/api/v1/patients", "/api/v1/appointments", "/api/v1/bills", "/api/v1/geo/provinces"} {
		assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, path, ""), path)
		assert.Equal(t, http.StatusOK, f.do(http.MethodGet, path, receptionist), path)
	}
}

func TestRoleChecks(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		role   model.StaffRole
		method string
		path   string
		status int
	}{
		{model.RoleReceptionist, http.MethodGet, "/api/v1/staff", http.StatusForbidden},
		{model.RoleAdmin, http.MethodGet, "/api/v1/staff", http.StatusOK},
		{model.RoleReceptionist, http.MethodGet, "/api/v1/bills", http.StatusOK},
		{model.RoleReceptionist, http.MethodPost, "/api/v1/bills", http.StatusForbidden},
		{model.RoleBilling, http.MethodPost, "/api/v1/bills", http.StatusCreated},
		{model.RoleBilling, http.MethodPost, "/api/v1/medical-records", http.StatusForbidden},
		{model.RoleNurse, http.MethodPost, "/api/v1/medical-records", http.StatusCreated},
		{model.RoleAdmin, http.MethodPost, "/api/v1/medical-records", http.StatusCreated},
		{model.RoleNurse, http.MethodPost, "/api/v1/doctors", http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+" "+tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.status, f.do(tt.method, tt.path, f.token(t, tt.role)))
		})
	}
}

func TestUnknownRoutes(t *testing.T) {
	f := newFixture(t, nil)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/v1/clinics", ""))
	assert.Equal(t, http.StatusMethodNotAllowed, f.do(http.MethodPatch, "/api/v1/auth/login", ""))
}

func TestRateLimiterApplied(t *testing.T) {
	f := newFixture(t, middleware.NewRateLimiter(middleware.RateLimiterConfig{Rate: rate.Every(time.Hour), Burst: 1}))

	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/v1/auth/login", ""))
	assert.Equal(t, http.StatusTooManyRequests, f.do(http.MethodPost, "/api/v1/auth/login", ""))
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/v1/health/live", ""), "health is not limited")
}
