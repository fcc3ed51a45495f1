package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/booky/internal/actions"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		want   int
		ok     bool
		status int
	}{
		{"default", "", 24, true, http.StatusOK},
		{"explicit", "limit=5", 5, true, http.StatusOK},
		{"capped", "limit=500", 100, true, http.StatusOK},
		{"zero", "limit=0", 0, false, http.StatusBadRequest},
		{"not a number", "limit=abc", 0, false, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/books?"+tt.query, nil)

			got, ok := parseLimit(c, 24, 100)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestResultStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, resultStatus(actions.KindSuccess))
	assert.Equal(t, http.StatusUnauthorized, resultStatus(actions.KindAuthRequired))
	assert.Equal(t, http.StatusBadRequest, resultStatus(actions.KindInvalid))
	assert.Equal(t, http.StatusBadGateway, resultStatus(actions.KindFailed))
}

func TestRefererPath(t *testing.T) {
	tests := []struct {
		name    string
		referer string
		want    string
	}{
		{"empty", "", ""},
		{"same host", "http://example.com/discover?q=dune", "/discover?q=dune"},
		{"foreign host", "http://evil.example/steal", ""},
		{"path only", "/lists", "/lists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/books/1/status", nil)
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			assert.Equal(t, tt.want, refererPath(req))
		})
	}
}
