package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/xxxsen/atomdocs/internal/config"
	"github.com/xxxsen/atomdocs/internal/handler"
	"github.com/xxxsen/atomdocs/internal/middleware"
	"github.com/xxxsen/atomdocs/internal/model"
	"github.com/xxxsen/atomdocs/internal/service"
	"github.com/xxxsen/atomdocs/internal/storage"
)

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"message"`
	Data json.RawMessage `json:"data"`
}

type brokenStore struct{}

func (brokenStore) Type() string { return "broken" }

func (brokenStore) Read(context.Context) (*model.SiteData, error) {
	return nil, errors.New("connection refused")
}

func (brokenStore) Write(context.Context, *model.SiteData) error {
	return errors.New("connection refused")
}

func (brokenStore) Close() error { return nil }

type testEnv struct {
	router      http.Handler
	store       storage.Store
	initialFile string
}

func setupRouter(t *testing.T, store storage.Store) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	initialFile := filepath.Join(t.TempDir(), "data.json")
	content := service.NewContentService(store, config.SiteConfig{Title: "Team Docs", EditMode: true}, initialFile)
	deps := handler.RouterDeps{
		Data:       handler.NewDataHandler(content),
		Pages:      handler.NewPageHandler(content),
		Categories: handler.NewCategoryHandler(content),
		Site:       handler.NewSiteHandler(content),
	}
	engine, err := webapi.NewEngine(
		"/api",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)
	return &testEnv{router: engine, store: store, initialFile: initialFile}
}

func (e *testEnv) do(t *testing.T, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}

// doEnvelope calls a route that wraps its reply in the envelope.
func (e *testEnv) doEnvelope(t *testing.T, method, path string, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	resp := e.do(t, method, path, body)
	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	return resp, env
}

func (e *testEnv) writeInitialData(t *testing.T, raw string) {
	t.Helper()
	require.NoError(t, os.WriteFile(e.initialFile, []byte(raw), 0o644))
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), dst))
}
