package httpkit

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hiring_pipeline_backend/platform/apperr"
	"hiring_pipeline_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const testSecret = "console-secret"

type jwtConfig struct{}

func (jwtConfig) GetJWTAccessSecret() string { return testSecret }

func sign(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func accessClaims(sub uuid.UUID, roles ...any) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   sub.String(),
		"type":  "access",
		"email": "founder@example.com",
		"roles": roles,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func consoleEngine(seen *Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/console", AuthRequired(jwtConfig{}), RequireRole(RoleAdmin), func(c *gin.Context) {
		*seen = GetIdentity(c)
		c.Status(http.StatusNoContent)
	})
	return engine
}

func call(engine *gin.Engine, token string) int {
	req := httptest.NewRequest(http.MethodGet, "/console", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec.Code
}

func TestAuthRequiredAcceptsAdminToken(t *testing.T) {
	var seen Identity
	engine := consoleEngine(&seen)
	uid := uuid.New()

	if code := call(engine, sign(t, jwt.SigningMethodHS256, accessClaims(uid, RoleAdmin))); code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", code)
	}
	if seen.UserID != uid || seen.Email != "founder@example.com" {
		t.Fatalf("expected identity from claims, got %+v", seen)
	}
}

func TestAuthRequiredRejections(t *testing.T) {
	uid := uuid.New()
	expired := accessClaims(uid, RoleAdmin)
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	refresh := accessClaims(uid, RoleAdmin)
	refresh["type"] = "refresh"
	noExp := accessClaims(uid, RoleAdmin)
	delete(noExp, "exp")

	cases := []struct {
		name  string
		token string
		want  int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "not-a-jwt", http.StatusUnauthorized},
		{"expired", sign(t, jwt.SigningMethodHS256, expired), http.StatusUnauthorized},
		{"refresh token", sign(t, jwt.SigningMethodHS256, refresh), http.StatusUnauthorized},
		{"no expiry", sign(t, jwt.SigningMethodHS256, noExp), http.StatusUnauthorized},
		{"other algorithm", sign(t, jwt.SigningMethodHS512, accessClaims(uid, RoleAdmin)), http.StatusUnauthorized},
		{"no admin role", sign(t, jwt.SigningMethodHS256, accessClaims(uid, "viewer")), http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen Identity
			if code := call(consoleEngine(&seen), tc.token); code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, code)
			}
		})
	}
}

func TestGetIdentityWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if GetIdentity(c).IsAuthenticated() {
		t.Fatalf("expected unauthenticated identity")
	}
}

func TestRateLimitReturns429WithRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewIPRateLimiter(rate.Limit(0.5), 1, logger.NewWithWriter("test", io.Discard))
	engine := gin.New()
	engine.POST("/applications", limiter.RateLimit(), func(c *gin.Context) { c.Status(http.StatusAccepted) })

	codes := make([]int, 0, 2)
	var last *httptest.ResponseRecorder
	for i := 0; i < 2; i++ {
		last = httptest.NewRecorder()
		engine.ServeHTTP(last, httptest.NewRequest(http.MethodPost, "/applications", nil))
		codes = append(codes, last.Code)
	}
	if codes[0] != http.StatusAccepted || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("expected [202 429], got %v", codes)
	}
	if got := last.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("expected Retry-After 2, got %q", got)
	}
}

func TestHandleErrorHidesUntypedErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	HandleError(c, errors.New("pq: connection refused"))
	if rec.Code != http.StatusInternalServerError || rec.Body.String() != `{"error":"internal error"}` {
		t.Fatalf("expected generic 500, got %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	HandleError(c, apperr.New(apperr.KindConflict, "applicant status changed"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}
