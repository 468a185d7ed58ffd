package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

const wantHSTS = "max-age=31536000; includeSubDomains"

func serveSecure(t *testing.T, csp string, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	handler := SecurityHeaders(csp)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestSecurityHeaders_Values(t *testing.T) {
	w := serveSecure(t, "", httptest.NewRequest(http.MethodGet, "/api/artist?name=x", nil))

	expected := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"X-XSS-Protection":        "0",
		"Content-Security-Policy": DefaultContentSecurityPolicy,
	}
	for header, want := range expected {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestSecurityHeaders_DefaultPolicyIsSameOrigin(t *testing.T) {
	want := "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; " +
		"img-src 'self' data: https:; connect-src 'self'; object-src 'none'; frame-ancestors 'none'"
	if DefaultContentSecurityPolicy != want {
		t.Errorf("default CSP = %q, want %q", DefaultContentSecurityPolicy, want)
	}
}

func TestSecurityHeaders_CustomPolicy(t *testing.T) {
	custom := "default-src 'self'; img-src https://lastfm.freetls.fastly.net"
	w := serveSecure(t, "  "+custom+"  ", httptest.NewRequest(http.MethodGet, "/", nil))

	if got := w.Header().Get("Content-Security-Policy"); got != custom {
		t.Errorf("CSP = %q, want %q", got, custom)
	}
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	tlsReq := httptest.NewRequest(http.MethodGet, "https://localhost/", nil)
	tlsReq.TLS = &tls.ConnectionState{}

	forwarded := httptest.NewRequest(http.MethodGet, "http://localhost/", nil)
	forwarded.Header.Set("X-Forwarded-Proto", "https")

	forwardedHTTP := httptest.NewRequest(http.MethodGet, "http://localhost/", nil)
	forwardedHTTP.Header.Set("X-Forwarded-Proto", "http")

	tests := []struct {
		name string
		req  *http.Request
		want string
	}{
		{"direct tls", tlsReq, wantHSTS},
		{"forwarded https", forwarded, wantHSTS},
		{"plain http", httptest.NewRequest(http.MethodGet, "http://localhost/", nil), ""},
		{"forwarded http", forwardedHTTP, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveSecure(t, "", tt.req)
			if got := w.Header().Get("Strict-Transport-Security"); got != tt.want {
				t.Errorf("HSTS = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSecurityHeaders_PassesThrough(t *testing.T) {
	called := false
	handler := SecurityHeaders("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if !called {
		t.Error("next handler was not called")
	}
	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTeapot)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, handler headers lost", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q after handler wrote", got)
	}
}
