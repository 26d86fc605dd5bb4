package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chershare/internal/images"
	"chershare/internal/store"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	pipeline, err := images.NewPipeline(t.TempDir())
	require.NoError(t, err)

	return &App{
		Config: &Config{ClientOrigins: []string{"http://localhost:3000"}},
		Store:  st,
		Images: pipeline,
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	app := newTestApp(t)
	return app.routes(NewSlowDownLimiter(15*time.Minute, 100, 500*time.Millisecond))
}

func do(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func multipartBody(t *testing.T, fileField string, fileBytes []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, "upload.png")
		require.NoError(t, err)
		_, err = part.Write(fileBytes)
		require.NoError(t, err)
	} else {
		require.NoError(t, writer.WriteField("note", "no file here"))
	}
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func smallPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func TestWelcome(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "welcome to the chershare api", rec.Body.String())
}

func TestListResources_EmptyStoreReturnsEmptyArray(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, httptest.NewRequest(http.MethodGet, "/resources", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetResource_MissingReturnsNotFoundEnvelope(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, httptest.NewRequest(http.MethodGet, "/resources/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t,
		`{"error":"Not Found","message":"Resource not found","code":404}`,
		rec.Body.String())
}

func TestUpload_NoFileField(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartBody(t, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/resource-images", body)
	req.Header.Set("Content-Type", contentType)

	rec := do(router, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"no image"}`, rec.Body.String())
}

func TestUpload_NonImagePayload(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartBody(t, "image", []byte("not an image"))
	req := httptest.NewRequest(http.MethodPost, "/resource-images", body)
	req.Header.Set("Content-Type", contentType)

	rec := do(router, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"failed to process images"}`, rec.Body.String())
}

func TestUpload_ThenServeRoundTrip(t *testing.T) {
	app := newTestApp(t)
	router := app.routes(NewSlowDownLimiter(15*time.Minute, 100, 500*time.Millisecond))

	body, contentType := multipartBody(t, "image", smallPNG(t))
	req := httptest.NewRequest(http.MethodPost, "/resource-images", body)
	req.Header.Set("Content-Type", contentType)

	rec := do(router, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result images.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.True(t, result.OK)
	assert.Regexp(t, `^\d+-\d{10}\.jpg$`, result.RelativeURL)

	rec = do(router, httptest.NewRequest(http.MethodGet, "/resource-images/"+result.RelativeURL, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestServeImage_TraversalKeyRejected(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, httptest.NewRequest(http.MethodGet, "/resource-images/secret..jpg", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeImage_MissingKeyNotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, httptest.NewRequest(http.MethodGet, "/resource-images/1700000000000-0000000001.jpg", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResourceBookings_MalformedWindow(t *testing.T) {
	router := newTestRouter(t)

	for _, target := range []string{
		"/resources/sauna/bookings",
		"/resources/sauna/bookings?from=yesterday&until=2026-03-01T10:00:00Z",
		"/resources/sauna/bookings?from=2026-03-01T10:00:00Z",
	} {
		rec := do(router, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "target %s", target)
	}
}

func TestAccountBookings_RequiresAccountID(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, httptest.NewRequest(http.MethodGet, "/bookings", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, httptest.NewRequest(http.MethodGet, "/bookings?accountId=acct-1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCORS_AllowsConfiguredOriginOnly(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := do(router, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = do(router, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightForUpload(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/resource-images", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := do(router, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}
