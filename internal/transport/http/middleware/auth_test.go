package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/titandealer/portal/internal/infra/security"
	"github.com/titandealer/portal/internal/usecase"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *security.TokenIssuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	issuer, err := security.NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	auth := usecase.NewAuthService(nil, issuer, nil)

	r := gin.New()
	r.GET("/protected", RequireAuth(auth), func(c *gin.Context) {
		username, _ := GetAuthenticatedUsername(c)
		c.JSON(http.StatusOK, gin.H{"username": username})
	})
	r.GET("/admin", RequireAuth(auth), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return r, issuer
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuthRejectsMalformedHeader(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuthRejectsInvalidToken(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	r, issuer := newAuthTestRouter(t)

	token, err := issuer.Issue("1234567", usecase.RoleDealer)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRequireAdminRejectsDealerSession(t *testing.T) {
	r, issuer := newAuthTestRouter(t)

	token, err := issuer.Issue("1234567", usecase.RoleDealer)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestRequireAdminAcceptsAdminSession(t *testing.T) {
	r, issuer := newAuthTestRouter(t)

	token, err := issuer.Issue("admin", usecase.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
