package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingT collects validation failures instead of failing the test.
type recordingT struct {
	testing.TB
	errors []string
}

func (r *recordingT) Helper() {}

func (r *recordingT) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func response(status int, contentType, body string) *http.Response {
	header := http.Header{}
	header.Set("Content-Type", contentType)
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestOpenAPIValidator_ValidateResponse(t *testing.T) {
	v := NewOpenAPIValidator(t, "../../api/openapi/openapi.yaml")

	tests := []struct {
		name      string
		path      string
		resp      *http.Response
		wantError bool
	}{
		{
			name: "event stream",
			path: "/api/v1/feeds/market",
			resp: response(http.StatusOK, "text/event-stream", "id: 0\nevent: update\ndata: {}\n\n"),
		},
		{
			name:      "stream route answering json on 200",
			path:      "/api/v1/feeds/market",
			resp:      response(http.StatusOK, "application/json", `{"data":{}}`),
			wantError: true,
		},
		{
			name:      "stream on an undocumented status",
			path:      "/api/v1/feeds/market",
			resp:      response(http.StatusTeapot, "text/event-stream", ""),
			wantError: true,
		},
		{
			name:      "stream on a json-only route",
			path:      "/api/v1/views",
			resp:      response(http.StatusOK, "text/event-stream", ""),
			wantError: true,
		},
		{
			name: "feed denial",
			path: "/api/v1/feeds/market",
			resp: response(http.StatusForbidden, "application/json", `{"error":{"message":"Access Denied","notice":{"title":"Access Denied","message":"m","permission":"analytics"}}}`),
		},
		{
			name: "watchlist",
			path: "/api/v1/watchlist",
			resp: response(http.StatusOK, "application/json", `{"data":{"symbols":["BTC"]}}`),
		},
		{
			name:      "watchlist missing symbols",
			path:      "/api/v1/watchlist",
			resp:      response(http.StatusOK, "application/json", `{"data":{}}`),
			wantError: true,
		},
		{
			name: "health check skipped",
			path: "/healthz",
			resp: response(http.StatusOK, "text/plain; charset=utf-8", "OK"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingT{TB: t}
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)

			v.ValidateResponse(rec, req, tt.resp)

			if tt.wantError {
				assert.NotEmpty(t, rec.errors)
			} else {
				assert.Empty(t, rec.errors)
			}
		})
	}
}

func TestOpenAPIValidator_StreamBodyUntouched(t *testing.T) {
	v := NewOpenAPIValidator(t, "../../api/openapi/openapi.yaml")
	const stream = "id: 0\nevent: update\ndata: {}\n\n"
	resp := response(http.StatusOK, "text/event-stream", stream)

	v.ValidateResponse(t, httptest.NewRequest(http.MethodGet, "/api/v1/feeds/ticker", nil), resp)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, stream, string(body))
}
