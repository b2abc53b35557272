package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (Service, *int) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	degraded := 0
	c := NewClient(&Config{
		BaseURL:    server.URL,
		Token:      "test-token",
		OnDegraded: func() { degraded++ },
	})
	return c, &degraded
}

func TestSummaryOK(t *testing.T) {
	c, degraded := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/test-token/weather.json", r.URL.Path)
		assert.Equal(t, "440300", r.URL.Query().Get("adcode"))
		assert.Equal(t, "true", r.URL.Query().Get("alert"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":{"forecast_keypoint":"未来两小时不会下雨"}}`))
	})

	got := c.Summary(context.Background(), "440300")
	assert.Equal(t, "未来两小时不会下雨", got)
	assert.Equal(t, 0, *degraded)
}

func TestSummaryNon200(t *testing.T) {
	c, degraded := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	got := c.Summary(context.Background(), "440300")
	assert.Equal(t, "天气接口错误：500", got)
	assert.Equal(t, 1, *degraded)
}

func TestSummaryTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // connection refused from now on

	c := NewClient(&Config{BaseURL: server.URL, Token: "t"})
	got := c.Summary(context.Background(), "440300")
	assert.Contains(t, got, "天气接口异常：")
}

func TestSummaryMissingKeypoint(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":{}}`))
	})

	got := c.Summary(context.Background(), "440300")
	assert.Equal(t, "暂无天气简报", got)
}

func TestSummaryMalformedBody(t *testing.T) {
	c, degraded := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	got := c.Summary(context.Background(), "440300")
	assert.Contains(t, got, "天气接口异常：")
	assert.Equal(t, 1, *degraded)
}
