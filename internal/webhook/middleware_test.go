package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"agency_portal_backend/platform/logger"
)

func TestIsDomainAllowed(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		allowed []string
		want    bool
	}{
		{"empty allow list permits everything", "https://anything.test", nil, true},
		{"exact host match", "https://example.com", []string{"example.com"}, true},
		{"host with port", "https://example.com:8443", []string{"example.com"}, true},
		{"case insensitive", "https://EXAMPLE.com", []string{"example.com"}, true},
		{"wildcard matches subdomain", "https://www.example.com", []string{"*.example.com"}, true},
		{"wildcard matches apex", "https://example.com", []string{"*.example.com"}, true},
		{"wildcard rejects suffix trick", "https://evilexample.com", []string{"*.example.com"}, false},
		{"unlisted host rejected", "https://other.com", []string{"example.com"}, false},
		{"missing origin with allow list", "", []string{"example.com"}, false},
		{"bare host referer", "example.com", []string{"example.com"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDomainAllowed(tt.origin, tt.allowed); got != tt.want {
				t.Fatalf("isDomainAllowed(%q, %v) = %v, want %v", tt.origin, tt.allowed, got, tt.want)
			}
		})
	}
}

func newAuthTestRouter(t *testing.T, store Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/forms", APIKeyAuthMiddleware(store, logger.New("test")), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestAPIKeyAuthMiddleware(t *testing.T) {
	store := NewMemoryStore()
	plaintext, hash, prefix, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	_, err = store.Create(context.Background(), APIKey{
		Name:           "marketing site",
		KeyHash:        hash,
		KeyPrefix:      prefix,
		AllowedDomains: []string{"example.com"},
		IsActive:       true,
	})
	if err != nil {
		t.Fatalf("seed key: %v", err)
	}

	r := newAuthTestRouter(t, store)

	do := func(apiKey, origin string) int {
		req := httptest.NewRequest(http.MethodPost, "/forms", nil)
		if apiKey != "" {
			req.Header.Set(HeaderAPIKey, apiKey)
		}
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := do("", ""); code != http.StatusUnauthorized {
		t.Fatalf("missing key: got %d, want 401", code)
	}
	if code := do("whk_bogus", "https://example.com"); code != http.StatusUnauthorized {
		t.Fatalf("invalid key: got %d, want 401", code)
	}
	if code := do(plaintext, "https://other.com"); code != http.StatusForbidden {
		t.Fatalf("disallowed origin: got %d, want 403", code)
	}
	if code := do(plaintext, "https://example.com"); code != http.StatusOK {
		t.Fatalf("valid request: got %d, want 200", code)
	}
}

func TestInactiveKeyRejected(t *testing.T) {
	store := NewMemoryStore()
	plaintext, hash, prefix, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	_, err = store.Create(context.Background(), APIKey{
		Name:      "revoked",
		KeyHash:   hash,
		KeyPrefix: prefix,
		IsActive:  false,
	})
	if err != nil {
		t.Fatalf("seed key: %v", err)
	}

	if _, err := store.GetByHash(context.Background(), HashKey(plaintext)); err != ErrAPIKeyNotFound {
		t.Fatalf("GetByHash on inactive key: got %v, want ErrAPIKeyNotFound", err)
	}
}
