package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

// whoami echoes the session user, or 401 when anonymous.
func whoami() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(userID))
	})
}

func serveWith(cfg SessionConfig, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	SessionMiddleware(cfg)(whoami()).ServeHTTP(rr, req)
	return rr
}

func TestSessionMiddleware_NoToken_Anonymous(t *testing.T) {
	req := httptest.NewRequest("GET", "/search/limit", http.NoBody)
	rr := serveWith(SessionConfig{Secret: testSecret, CookieName: "session"}, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("no token: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestSessionMiddleware_BearerEmailClaim(t *testing.T) {
	tok := signToken(t, testSecret, jwt.MapClaims{
		"email": "ada@example.com",
		"sub":   "user-1",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest("GET", "/search/limit", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := serveWith(SessionConfig{Secret: testSecret}, req)

	if rr.Code != http.StatusOK || rr.Body.String() != "ada@example.com" {
		t.Errorf("bearer: got %d %q", rr.Code, rr.Body.String())
	}
}

func TestSessionMiddleware_CookieSubjectFallback(t *testing.T) {
	tok := signToken(t, testSecret, jwt.MapClaims{"sub": "user-1"})
	req := httptest.NewRequest("GET", "/search/limit", http.NoBody)
	req.AddCookie(&http.Cookie{Name: "session", Value: tok})
	rr := serveWith(SessionConfig{Secret: testSecret, CookieName: "session"}, req)

	if rr.Code != http.StatusOK || rr.Body.String() != "user-1" {
		t.Errorf("cookie: got %d %q", rr.Code, rr.Body.String())
	}
}

func TestSessionMiddleware_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", signToken(t, "other-secret", jwt.MapClaims{"email": "a@b.c"})},
		{"expired", signToken(t, testSecret, jwt.MapClaims{"email": "a@b.c", "exp": time.Now().Add(-time.Hour).Unix()})},
		{"no identity", signToken(t, testSecret, jwt.MapClaims{"name": "Ada"})},
		{"garbage", "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/search/limit", http.NoBody)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rr := serveWith(SessionConfig{Secret: testSecret}, req)
			if rr.Code != http.StatusUnauthorized {
				t.Errorf("got %d, want %d", rr.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestSessionMiddleware_RejectsNoneAlgorithm(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"email": "a@b.c"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	req := httptest.NewRequest("GET", "/", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+tok)
	if rr := serveWith(SessionConfig{Secret: testSecret}, req); rr.Code != http.StatusUnauthorized {
		t.Errorf("alg none: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestSessionMiddleware_DevBypass(t *testing.T) {
	cfg := SessionConfig{Secret: testSecret, DevBypass: true, DevUserID: "dev@localhost"}

	req := httptest.NewRequest("GET", "/", http.NoBody)
	rr := serveWith(cfg, req)
	if rr.Code != http.StatusOK || rr.Body.String() != "dev@localhost" {
		t.Errorf("dev bypass: got %d %q", rr.Code, rr.Body.String())
	}

	// A valid session still wins over the bypass identity.
	tok := signToken(t, testSecret, jwt.MapClaims{"email": "ada@example.com"})
	req = httptest.NewRequest("GET", "/", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr = serveWith(cfg, req)
	if rr.Body.String() != "ada@example.com" {
		t.Errorf("session over bypass: got %q", rr.Body.String())
	}
}
