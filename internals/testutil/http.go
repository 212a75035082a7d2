package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	helper "schoolstaff_backend/internals/helpers"
)

const APIPrefix = "/api/s1/staff"

// NewApp returns a bare app and the staff group to mount routes on.
func NewApp() (*fiber.App, fiber.Router) {
	app := fiber.New(fiber.Config{ErrorHandler: helper.FiberErrorHandler})
	return app, app.Group(APIPrefix)
}

// Body is a decoded JSON envelope.
type Body map[string]any

func (b Body) Data() map[string]any {
	m, _ := b["data"].(map[string]any)
	return m
}

func (b Body) List() []any {
	l, _ := b["data"].([]any)
	return l
}

func (b Body) Pagination() map[string]any {
	m, _ := b["pagination"].(map[string]any)
	return m
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, Body) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body Body
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	}
	return resp.StatusCode, body
}

// JSON sends payload (nil for none) to APIPrefix+path.
func JSON(t *testing.T, app *fiber.App, method, path string, payload any) (int, Body) {
	t.Helper()
	var rdr io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, APIPrefix+path, rdr)
	if payload != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return do(t, app, req)
}

// Upload is one file part of a multipart request.
type Upload struct {
	Field    string
	Filename string
	Content  []byte
}

// Multipart sends form fields and files to APIPrefix+path.
func Multipart(t *testing.T, app *fiber.App, method, path string, fields map[string]string, files ...Upload) (int, Body) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		require.NoError(t, err)
		_, err = part.Write(f.Content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, APIPrefix+path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return do(t, app, req)
}

// Request sends a bodyless request with extra headers.
func Request(t *testing.T, app *fiber.App, method, path string, headers map[string]string) (int, Body) {
	t.Helper()
	req := httptest.NewRequest(method, APIPrefix+path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return do(t, app, req)
}
