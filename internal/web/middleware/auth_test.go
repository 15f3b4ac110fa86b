package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireClient(t *testing.T) {
	clients := map[string]string{"secret-token": "example.com"}

	var gotDomain string
	handler := RequireClient(clients)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDomain = ClientDomain(r.Context())
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantDomain string
	}{
		{"valid token", "Bearer secret-token", http.StatusOK, "example.com"},
		{"unknown token", "Bearer wrong", http.StatusUnauthorized, ""},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"malformed header", "secret-token", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotDomain = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if gotDomain != tt.wantDomain {
				t.Errorf("domain = %q, want %q", gotDomain, tt.wantDomain)
			}
		})
	}
}

func TestClientDomainWithoutAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := ClientDomain(req.Context()); got != "" {
		t.Errorf("domain = %q, want empty", got)
	}
}
