package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/api/handlers"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/configuration"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/upload"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testDeps(enforce bool) handlers.Deps {
	return handlers.Deps{Config: &configuration.Config{
		Server:  configuration.ServerConfig{MaxBodyBytes: 1 << 20, CSRFEnforce: enforce},
		Backend: configuration.BackendConfig{ImageCollection: "files"},
	}}
}

func TestRouterHealth(t *testing.T) {
	r := newRouter(testDeps(false), configuration.TracingConfig{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterServesCSRFPage(t *testing.T) {
	r := newRouter(testDeps(false), configuration.TracingConfig{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="csrf-token"`)
}

func TestRouterEnforcesCSRF(t *testing.T) {
	r := newRouter(testDeps(true), configuration.TracingConfig{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/upload", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouterPreflight(t *testing.T) {
	r := newRouter(testDeps(false), configuration.TracingConfig{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/upload", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterAcceptsEnforcedBatchUpload(t *testing.T) {
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"rec1","collectionName":"files","image":"a.png","author":"bob"}`)
	}))
	defer store.Close()
	t.Setenv(configuration.BackendURLEnv, store.URL)

	srv := httptest.NewServer(newRouter(testDeps(true), configuration.TracingConfig{}))
	defer srv.Close()

	var files []upload.File
	for i := 0; i < 8; i++ {
		files = append(files, upload.File{
			Name:        fmt.Sprintf("f%d.png", i),
			ContentType: "image/png",
			Data:        bytes.Repeat([]byte{0x89}, 512+i),
		})
	}

	for i := 0; i < 20; i++ {
		u, err := upload.NewUploader(srv.URL)
		require.NoError(t, err)
		require.NoError(t, u.UploadFiles(context.Background(), files, "bob", nil), "batch %d", i)
	}
}
