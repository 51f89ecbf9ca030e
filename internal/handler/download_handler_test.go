package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/service"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/storage"
)

func newDownloadFixture(t *testing.T, ttl time.Duration) (*DownloadHandler, *storage.LocalStorage, *storage.SignedURLSigner) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("download-secret", ttl)
	docs := service.NewDocumentService(store, signer, service.DocumentConfig{APIPrefix: "/api/v1"}, nil, nil, nil)
	return NewDownloadHandler(docs), store, signer
}

func downloadContext(token string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/downloads/"+token, nil)
	c.Params = gin.Params{{Key: "token", Value: token}}
	return c, w
}

func TestDownloadHandlerServesSignedFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store, signer := newDownloadFixture(t, time.Hour)

	_, err := store.Save("hall-tickets/exam-1/stu-1.pdf", []byte("%PDF-1.3"))
	require.NoError(t, err)
	token, _, err := signer.Generate("ticket", "hall-tickets/exam-1/stu-1.pdf")
	require.NoError(t, err)

	c, w := downloadContext(token)
	handler.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.3", w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="stu-1.pdf"`, w.Header().Get("Content-Disposition"))
}

func TestDownloadHandlerRejectsForeignToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store, _ := newDownloadFixture(t, time.Hour)
	_, err := store.Save("hall-tickets/x.pdf", []byte("%PDF"))
	require.NoError(t, err)

	token, _, err := storage.NewSignedURLSigner("other-secret", time.Hour).Generate("ticket", "hall-tickets/x.pdf")
	require.NoError(t, err)

	c, w := downloadContext(token)
	handler.Download(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDownloadHandlerMissingFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, signer := newDownloadFixture(t, time.Hour)
	token, _, err := signer.Generate("ticket", "hall-tickets/gone.pdf")
	require.NoError(t, err)

	c, w := downloadContext(token)
	handler.Download(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
