package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORSPreflightAndRejectedOrigin(t *testing.T) {
	handler := NewCORS([]string{"http://localhost:5173/"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/packages", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)

	req = httptest.NewRequest(http.MethodGet, "/api/packages", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
}

func TestOriginPolicy(t *testing.T) {
	policy := newOriginPolicy([]string{"https://app.example.com", "https://*.preview.example.com", " "})

	cases := map[string]bool{
		"https://app.example.com":           true,
		"HTTPS://APP.EXAMPLE.COM":           true,
		"https://pr-12.preview.example.com": true,
		"http://pr-12.preview.example.com":  false,
		"https://preview.example.com":       false,
		"https://evilpreview.example.com":   false,
		"https://other.example.com":         false,
		"":                                  false,
	}
	for origin, want := range cases {
		assert.Equal(t, want, policy.allows(origin), origin)
	}

	assert.True(t, newOriginPolicy([]string{"*"}).allows("https://anything.test"))
}
