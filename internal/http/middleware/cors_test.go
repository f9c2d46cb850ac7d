package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveCORS(t *testing.T, allowed []string, req *http.Request) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	CORS(allowed)(next).ServeHTTP(rec, req)
	return rec, called
}

func TestCORS_ActualRequests(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		origin     string
		wantOrigin string
	}{
		{"listed origin", []string{"https://book.example"}, "https://book.example", "https://book.example"},
		{"unknown origin", []string{"https://book.example"}, "https://evil.example", ""},
		{"subdomain wildcard", []string{"https://*.lumiere.example"}, "https://spa.lumiere.example", "https://spa.lumiere.example"},
		{"any origin", []string{" * "}, "https://random.example", "*"},
		{"no origin header", []string{"*"}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/booking/sessions", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}

			rec, called := serveCORS(t, tt.allowed, req)

			assert.True(t, called)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantOrigin != "" {
				assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Retry-After")
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/booking/sessions/abc/details", nil)
	req.Header.Set("Origin", "https://book.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	rec, called := serveCORS(t, []string{"https://book.example"}, req)

	assert.False(t, called)
	require.Equal(t, "https://book.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.MethodPatch, rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_PreflightRejectsUnlistedMethod(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/booking/sessions", nil)
	req.Header.Set("Origin", "https://book.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)

	rec, called := serveCORS(t, []string{"https://book.example"}, req)

	assert.False(t, called)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSOptions_DropsBlankEntries(t *testing.T) {
	opts := corsOptions([]string{" https://book.example ", "", "  "})
	assert.Equal(t, []string{"https://book.example"}, opts.AllowedOrigins)
}
