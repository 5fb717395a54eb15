package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		headers map[string]string
		want    string
	}{
		{
			name:    "untrusted peer keeps its address",
			trusted: []string{"10.0.0.0/8"},
			remote:  "203.0.113.9:4000",
			headers: map[string]string{"X-Real-IP": "198.51.100.1"},
			want:    "203.0.113.9:4000",
		},
		{
			name:    "trusted proxy with X-Real-IP",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.1.2.3:4000",
			headers: map[string]string{"X-Real-IP": "198.51.100.1"},
			want:    "198.51.100.1",
		},
		{
			name:    "trusted single address with X-Forwarded-For chain",
			trusted: []string{"127.0.0.1"},
			remote:  "127.0.0.1:4000",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.1"},
			want:    "198.51.100.7",
		},
		{
			name:    "garbage header is ignored",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.1.2.3:4000",
			headers: map[string]string{"X-Real-IP": "not-an-ip"},
			want:    "10.1.2.3:4000",
		},
		{
			name:    "invalid trusted entry is skipped",
			trusted: []string{"bogus", ""},
			remote:  "10.1.2.3:4000",
			headers: map[string]string{"X-Real-IP": "198.51.100.1"},
			want:    "10.1.2.3:4000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.4:5555"
	assert.Equal(t, "192.0.2.4", ClientIP(req))

	req.RemoteAddr = "192.0.2.4"
	assert.Equal(t, "192.0.2.4", ClientIP(req))
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, levelFor(http.StatusOK))
	assert.Equal(t, slog.LevelWarn, levelFor(http.StatusNotFound))
	assert.Equal(t, slog.LevelError, levelFor(http.StatusBadGateway))
}

func TestPresentedKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, presentedKey(req))

	req.Header.Set("Authorization", "Bearer  abc ")
	assert.Equal(t, "abc", presentedKey(req))

	req.Header.Set("X-API-Key", "xyz")
	assert.Equal(t, "xyz", presentedKey(req), "X-API-Key wins")
}

func TestIsValidAPIKey(t *testing.T) {
	keys := []string{"alpha", "beta"}
	assert.True(t, isValidAPIKey("beta", keys))
	assert.False(t, isValidAPIKey("gamma", keys))
	assert.False(t, isValidAPIKey("alpha", nil))
}
