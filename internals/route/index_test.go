package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helper "schoolstaff_backend/internals/helpers"
	"schoolstaff_backend/internals/middlewares"
	"schoolstaff_backend/internals/testutil"
)

func newServer(t *testing.T) *fiber.App {
	t.Helper()
	db := testutil.OpenDB(t)
	testutil.SeedMasters(t, db)
	store, _ := testutil.NewStore(t)

	app := fiber.New(fiber.Config{ErrorHandler: helper.FiberErrorHandler})
	middlewares.SetupMiddlewares(app)
	SetupRoutes(app, db, store)
	return app
}

func call(t *testing.T, app *fiber.App, method, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return resp, body
}

func TestHealth(t *testing.T) {
	app := newServer(t)
	resp, body := call(t, app, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "Connected", body["database"])
	assert.NotEmpty(t, resp.Header.Get(middlewares.HeaderRequestID))
}

func TestStaffFeaturesMounted(t *testing.T) {
	app := newServer(t)
	for _, path := range []string{"/exams", "/homework", "/attendance"} {
		resp, body := call(t, app, http.MethodGet, StaffPrefix+path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, true, body["success"], path)
	}

	resp, body := call(t, app, http.MethodGet, StaffPrefix+"/duties")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "duties need staff_id")
	assert.Equal(t, false, body["success"])

	resp, _ = call(t, app, http.MethodGet, StaffPrefix+"/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
