package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOriginClient struct {
	getErr    error
	putErr    error
	deleteErr error
	body      string
	contentType string
	lastPutBody string
}

func (f *fakeOriginClient) GetObject(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if f.getErr != nil {
		return nil, "", f.getErr
	}
	return io.NopCloser(strings.NewReader(f.body)), f.contentType, nil
}

func (f *fakeOriginClient) PutObject(ctx context.Context, key, contentType string, body io.Reader) error {
	if f.putErr != nil {
		return f.putErr
	}
	b, _ := io.ReadAll(body)
	f.lastPutBody = string(b)
	return nil
}

func (f *fakeOriginClient) DeleteObject(ctx context.Context, key string) error {
	return f.deleteErr
}

func TestProxyHandler_Get(t *testing.T) {
	fake := &fakeOriginClient{body: "hello world", contentType: "text/plain"}
	h := NewProxyHandler(fake, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/mybucket/path/to/key.txt", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello world", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
}

func TestProxyHandler_GetMissingKeyReturnsBadRequest(t *testing.T) {
	fake := &fakeOriginClient{}
	h := NewProxyHandler(fake, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/mybucket", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProxyHandler_GetOriginErrorReturnsNotFound(t *testing.T) {
	fake := &fakeOriginClient{getErr: errors.New("no such key")}
	h := NewProxyHandler(fake, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/mybucket/missing.txt", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProxyHandler_Put(t *testing.T) {
	fake := &fakeOriginClient{}
	h := NewProxyHandler(fake, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPut, "/mybucket/key.txt", strings.NewReader("payload"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "payload", fake.lastPutBody)
}

func TestProxyHandler_Delete(t *testing.T) {
	fake := &fakeOriginClient{}
	h := NewProxyHandler(fake, zerolog.Nop())

	req := httptest.NewRequest(http.MethodDelete, "/mybucket/key.txt", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestProxyHandler_UnsupportedMethod(t *testing.T) {
	fake := &fakeOriginClient{}
	h := NewProxyHandler(fake, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPatch, "/mybucket/key.txt", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
