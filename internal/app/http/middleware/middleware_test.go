package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gallery-la/internal/auth"
	"gallery-la/internal/ports"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() { gin.SetMode(gin.TestMode) }

type staticVerifier map[string]string

func (v staticVerifier) Verify(ctx context.Context, token string) (ports.Identity, error) {
	if id, ok := v[token]; ok {
		return ports.Identity{ID: id}, nil
	}
	return ports.Identity{}, auth.ErrInvalidToken
}

func whoami(c *gin.Context) {
	id, ok := auth.FromContext(c.Request.Context())
	if !ok {
		c.String(http.StatusOK, "anonymous")
		return
	}
	c.String(http.StatusOK, id.ID)
}

func TestAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/me", AuthMiddleware(staticVerifier{"good": "u1"}, zap.NewNop()), whoami)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing", "", http.StatusUnauthorized, "Authorization header missing"},
		{"malformed", "Token good", http.StatusUnauthorized, "Bearer token malformed"},
		{"invalid", "Bearer bad", http.StatusUnauthorized, "Invalid or expired token"},
		{"valid", "Bearer good", http.StatusOK, "u1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.status || !strings.Contains(w.Body.String(), tt.body) {
				t.Fatalf("got %d %q", w.Code, w.Body.String())
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	r := gin.New()
	r.GET("/who", OptionalAuth(staticVerifier{"good": "u1"}), whoami)

	for header, want := range map[string]string{"": "anonymous", "Bearer bad": "anonymous", "Bearer good": "u1"} {
		req := httptest.NewRequest(http.MethodGet, "/who", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK || w.Body.String() != want {
			t.Fatalf("header %q: got %d %q, want %q", header, w.Code, w.Body.String(), want)
		}
	}
}

func TestSanitizeNestedStrings(t *testing.T) {
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	r.POST("/echo", func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(b))
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"title":"<b>Hi</b>","tags":["<script>x</script>ok"],"n":1}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	body := w.Body.String()
	if strings.Contains(body, "<") || !strings.Contains(body, `"title":"Hi"`) || !strings.Contains(body, `"n":1`) {
		t.Fatalf("unexpected sanitized body %s", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed json = %d", w.Code)
	}
}

func TestSanitizeKeepsPlainTextLiteral(t *testing.T) {
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	r.POST("/echo", func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		c.Data(http.StatusOK, "application/json", b)
	})

	tests := []struct {
		in, want string
	}{
		{"Rock & Roll", "Rock & Roll"},
		{"a < b", "a < b"},
		{`"quoted" & 'single'`, `"quoted" & 'single'`},
		{"<i>Rock</i> &amp; Roll", "Rock & Roll"},
		{"&lt;script&gt;x&lt;/script&gt;ok", "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			payload, _ := json.Marshal(map[string]string{"title": tt.in})
			req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(string(payload)))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			var got map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode %s: %v", w.Body.String(), err)
			}
			if got["title"] != tt.want {
				t.Fatalf("title = %q, want %q", got["title"], tt.want)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(0.001, 2)
	r := gin.New()
	r.POST("/upload", l.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", nil))
		codes[i] = w.Code
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
}
