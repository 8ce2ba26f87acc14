package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/iidmage/backoffice/internal/types/user"
)

var testSecret = []byte("secret")

func signToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestJWTMiddleware(t *testing.T) {
	var gotID, gotEmail string
	var gotRole user.Role
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		gotEmail = EmailFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := JWTMiddleware(testSecret)(next)

	t.Run("valid token populates claims", func(t *testing.T) {
		token := signToken(t, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			UserID: "u-1",
			Role:   user.RoleManager,
			Email:  "manager@iidmage.fr",
		})
		req := httptest.NewRequest(http.MethodGet, "/api/commandes", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if gotID != "u-1" || gotRole != user.RoleManager || gotEmail != "manager@iidmage.fr" {
			t.Errorf("claims = (%q, %q, %q)", gotID, gotRole, gotEmail)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/commandes", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
			UserID: "u-1",
			Role:   user.RoleManager,
		})
		req := httptest.NewRequest(http.MethodGet, "/api/commandes", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("wrong signing key", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "u-1"}).
			SignedString([]byte("other"))
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/api/commandes", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})
}

func TestRoleGates(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name string
		gate func(http.Handler) http.Handler
		role user.Role
		want int
	}{
		{"writer allows owner", RequireWriter, user.RoleOwner, http.StatusOK},
		{"writer allows manager", RequireWriter, user.RoleManager, http.StatusOK},
		{"writer blocks poseur", RequireWriter, user.RolePoseur, http.StatusForbidden},
		{"writer blocks readonly", RequireWriter, user.RoleReadonly, http.StatusForbidden},
		{"writer blocks unknown role", RequireWriter, user.Role("ADMIN"), http.StatusForbidden},
		{"manager allows owner", RequireManager, user.RoleOwner, http.StatusOK},
		{"manager allows manager", RequireManager, user.RoleManager, http.StatusOK},
		{"manager blocks poseur", RequireManager, user.RolePoseur, http.StatusForbidden},
		{"owner allows owner", RequireOwner, user.RoleOwner, http.StatusOK},
		{"owner blocks manager", RequireOwner, user.RoleManager, http.StatusForbidden},
		{"owner blocks readonly", RequireOwner, user.RoleReadonly, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/commandes", nil)
			req = req.WithContext(ContextWithClaims(req.Context(), "u-1", tt.role, "x@iidmage.fr"))
			rec := httptest.NewRecorder()
			tt.gate(ok).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRoleGateWithoutClaims(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodPost, "/api/commandes", nil)
	rec := httptest.NewRecorder()
	RequireWriter(ok).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
