package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qiwen/shopguide/ai"
	"github.com/qiwen/shopguide/assist"
	"github.com/qiwen/shopguide/internal/profile"
	"github.com/qiwen/shopguide/metrics"
	"github.com/qiwen/shopguide/retrieval"
	"github.com/qiwen/shopguide/store"
)

type stubStore struct {
	member *store.Member
	err    error
}

func (s *stubStore) GetMemberByCode(context.Context, string) (*store.Member, error) {
	return s.member, s.err
}

func (s *stubStore) GetShopCityByCode(context.Context, string) (string, error) {
	return "", s.err
}

type stubGeneration struct {
	chunks []string
}

func (s *stubGeneration) Generate(context.Context, string, ai.BackendProfile) <-chan ai.Chunk {
	out := make(chan ai.Chunk, len(s.chunks))
	for _, c := range s.chunks {
		out <- ai.Chunk{Content: c}
	}
	close(out)
	return out
}

type stubEmbedding struct{}

func (stubEmbedding) Embed(context.Context, string) ([]float32, error) {
	return []float32{0.1}, nil
}

type stubWeather struct{}

func (stubWeather) Summary(context.Context, string) string { return "晴" }

type stubSearcher struct{}

func (stubSearcher) Search(context.Context, []float32, int) ([]retrieval.Match, error) {
	return nil, nil
}

func newTestService(st *stubStore, gen *stubGeneration) *APIV1Service {
	dispatcher := assist.NewDispatcher(assist.Dependencies{
		Store:      st,
		Embedding:  stubEmbedding{},
		Generation: gen,
		Weather:    stubWeather{},
		Searcher:   stubSearcher{},
		Now:        func() time.Time { return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC) },
	})
	return NewAPIV1Service(&profile.Profile{Mode: "dev"}, dispatcher, metrics.NewCollector())
}

func doRequest(t *testing.T, svc *APIV1Service, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	svc.Register(e)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/script", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestScriptHandlerStreamsGeneration(t *testing.T) {
	st := &stubStore{member: &store.Member{Name: "张三", Sex: "男", Birthday: "19900520"}}
	svc := newTestService(st, &stubGeneration{chunks: []string{"生日", "快乐"}})

	rec := doRequest(t, svc, `{"mode":"0","code":"13800000001","message":"喜欢登山"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "生日快乐", rec.Body.String())
}

func TestScriptHandlerNotFound(t *testing.T) {
	svc := newTestService(&stubStore{}, &stubGeneration{})

	rec := doRequest(t, svc, `{"mode":"0","code":"unknown","message":""}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, assist.NotFoundText, rec.Body.String())
}

func TestScriptHandlerUnsupportedMode(t *testing.T) {
	svc := newTestService(&stubStore{}, &stubGeneration{})

	rec := doRequest(t, svc, `{"mode":"9","code":"x","message":"y"}`)

	// Unsupported modes answer 200 with the canned sentence, not an error.
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, assist.UnsupportedModeText, rec.Body.String())
}

func TestScriptHandlerInfrastructureFailure(t *testing.T) {
	svc := newTestService(&stubStore{err: assert.AnError}, &stubGeneration{})

	rec := doRequest(t, svc, `{"mode":"0","code":"13800000001","message":""}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestScriptHandlerLegacyRoute(t *testing.T) {
	st := &stubStore{member: &store.Member{Name: "张三", Sex: "男", Birthday: "19900520"}}
	svc := newTestService(st, &stubGeneration{chunks: []string{"ok"}})

	e := echo.New()
	svc.Register(e)

	req := httptest.NewRequest(http.MethodPost, "/script", strings.NewReader(`{"mode":"0","code":"c","message":""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
