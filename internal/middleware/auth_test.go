package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"matdepot/authctl/internal/api"
	"matdepot/authctl/internal/auth"
	"matdepot/authctl/internal/config"
	"matdepot/authctl/internal/models"
	"matdepot/authctl/internal/store"
)

// newManager builds a real auth manager over a stub backend so the
// guard is exercised the way `serve` wires it.
func newManager(t *testing.T, user models.User) *auth.Manager {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok", "sessionId": "s1"})
		case "/auth/me":
			_ = json.NewEncoder(w).Encode(user)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(backend.Close)

	tokens := auth.NewTokenSource()
	client := api.NewClient(config.APIConfig{BaseURL: backend.URL, Timeout: 15 * time.Second}, tokens.Token, zerolog.Nop())
	creds := store.NewFileStore(filepath.Join(t.TempDir(), "creds.json"), "")
	return auth.NewManager(client, creds, tokens, zerolog.Nop())
}

func newRouter(manager *auth.Manager, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	group := engine.Group("/")
	group.Use(Auth(manager))
	group.Use(extra...)
	group.GET("/guarded", func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"email": user.Email})
	})
	return engine
}

func TestAuthRejectsAnonymous(t *testing.T) {
	manager := newManager(t, models.User{})
	manager.Initialize(context.Background()) // nothing stored, anonymous

	w := httptest.NewRecorder()
	newRouter(manager).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthPassesAuthenticatedUser(t *testing.T) {
	manager := newManager(t, models.User{ID: "u1", Email: "a@b.com", Role: models.UserRoleStaff, IsActive: true})
	if _, err := manager.Login(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	w := httptest.NewRecorder()
	newRouter(manager).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["email"] != "a@b.com" {
		t.Fatalf("handler did not see the current user: %+v", body)
	}
}

func TestAuthRejectsInactiveUser(t *testing.T) {
	manager := newManager(t, models.User{ID: "u1", Email: "a@b.com", IsActive: false})
	if _, err := manager.Login(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	w := httptest.NewRecorder()
	newRouter(manager).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	manager := newManager(t, models.User{ID: "u1", Email: "a@b.com", Role: models.UserRoleLogistics, IsActive: true})
	if _, err := manager.Login(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	cases := []struct {
		name  string
		roles []models.UserRole
		want  int
	}{
		{"member", []models.UserRole{models.UserRoleAdmin, models.UserRoleLogistics}, http.StatusOK},
		{"non-member", []models.UserRole{models.UserRoleAdmin, models.UserRoleManager}, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newRouter(manager, RequireRoles(tc.roles...)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}
}
