package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/InventoryUI/internal/backend"
	"github.com/JonMunkholm/InventoryUI/internal/config"
	"github.com/JonMunkholm/InventoryUI/internal/core"
	"github.com/JonMunkholm/InventoryUI/internal/importer"
	"github.com/JonMunkholm/InventoryUI/internal/itemapi"
	"github.com/JonMunkholm/InventoryUI/internal/notify"
	"github.com/JonMunkholm/InventoryUI/internal/store"
	"github.com/JonMunkholm/InventoryUI/internal/web/middleware"
)

const testSession = "5b0c6a52-3f4e-4a59-9d1e-0c1f2b3a4d5e"

func testConfig() *config.Config {
	return &config.Config{
		Import: config.ImportConfig{
			MaxFileSize:   1 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   time.Second,
			Timeout:       10 * time.Second,
			PreviewRows:   5,
		},
		Table:    config.TableConfig{PageSize: 10, MaxPageSize: 100},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

type testEnv struct {
	server *Server
	mem    *store.Memory
	notes  *notify.Queue
}

func newTestEnvWithBackend(t *testing.T, backendURL string, mem *store.Memory) *testEnv {
	t.Helper()
	client, err := backend.New(backendURL, backend.WithTimeout(2*time.Second))
	require.NoError(t, err)

	cfg := testConfig()
	svc := core.NewService(client, importer.New(client), core.ServiceConfig{
		ImportTimeout:        cfg.Import.Timeout,
		MaxConcurrentImports: cfg.Import.MaxConcurrent,
		MaxImportWait:        cfg.Import.MaxWaitTime,
	})
	notes := notify.NewQueue(time.Hour, 20)
	return &testEnv{server: NewServer(svc, notes, cfg), mem: mem, notes: notes}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mem := store.NewMemory()
	api := httptest.NewServer(itemapi.New(mem).Routes())
	t.Cleanup(api.Close)
	return newTestEnvWithBackend(t, api.URL, mem)
}

func (e *testEnv) seed(t *testing.T, part, name string, qty int64) core.Item {
	t.Helper()
	it, err := e.mem.Create(context.Background(), core.Item{IntPartNum: &part, IntName: &name, Quantity: &qty})
	require.NoError(t, err)
	return *it
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: testSession})
	w := httptest.NewRecorder()
	e.server.Router().ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *testEnv) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req)
}

func TestIndexRedirects(t *testing.T) {
	env := newTestEnv(t)
	w := env.get("/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/inventory", w.Header().Get("Location"))
}

func TestInventoryPage(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "P-1", "Bolt", 5)
	env.seed(t, "P-2", "Washer", 9)

	w := env.get("/inventory")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, "Welcome back!")
	assert.Contains(t, body, "Here is the current inventory")
	assert.Contains(t, body, "Bolt")
	assert.Contains(t, body, "Washer")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "https://unpkg.com")
}

func TestInventoryFilterFragment(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "P-1", "Bolt", 5)
	env.seed(t, "P-2", "Washer", 9)

	req := httptest.NewRequest(http.MethodGet, "/inventory?q=bol", nil)
	req.Header.Set("HX-Request", "true")
	w := env.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.NotContains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, `id="inventory-table"`)
	assert.Contains(t, body, `hx-swap-oob="true"`)
	assert.Contains(t, body, "Bolt")
	assert.NotContains(t, body, "Washer")
}

func TestInventoryJSON(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "P-1", "Bolt", 5)

	req := httptest.NewRequest(http.MethodGet, "/inventory", nil)
	req.Header.Set("Accept", "application/json")
	w := env.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	var items []core.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Bolt", *items[0].IntName)
}

func TestInventoryBackendDown(t *testing.T) {
	api := httptest.NewServer(http.NotFoundHandler())
	api.Close()
	env := newTestEnvWithBackend(t, api.URL, nil)

	w := env.get("/inventory")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Load Failed")
	assert.Contains(t, w.Body.String(), "Status: unknown")
}

func TestCreateItem(t *testing.T) {
	env := newTestEnv(t)

	w := env.post("/inventory/new", url.Values{
		"intPartNum": {"P-9"},
		"intName":    {"Hinge"},
		"quantity":   {"4"},
		"sloc":       {"A1"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/inventory/new", w.Header().Get("Location"))

	items, err := env.mem.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Hinge", *items[0].IntName)

	page := env.get("/inventory").Body.String()
	assert.Contains(t, page, "Item Created")
	assert.Contains(t, page, "The item has been successfully created.")
	assert.NotContains(t, env.get("/inventory").Body.String(), "Item Created", "toast shows once")
}

func TestCreateItemMissingFields(t *testing.T) {
	env := newTestEnv(t)

	w := env.post("/inventory/new", url.Values{"intName": {"Hinge"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Invalid Form Values")
	assert.Contains(t, body, "Part number is required.")
	assert.Contains(t, body, "Quantity is required.")
	assert.Contains(t, body, `value="Hinge"`)

	items, _ := env.mem.List(context.Background())
	assert.Empty(t, items)
}

func TestViewItem(t *testing.T) {
	env := newTestEnv(t)
	it := env.seed(t, "P-1", "Bolt", 5)

	w := env.get("/inventory/" + it.IDString())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Bolt")
	assert.Contains(t, w.Body.String(), "P-1")
}

func TestViewItemErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/inventory/abc", http.StatusBadRequest, "The provided item ID is invalid."},
		{"/inventory/999", http.StatusNotFound, "Load Failed"},
		{"/inventory/abc/edit", http.StatusBadRequest, "Invalid ID"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := env.get(tt.path)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestEditItem(t *testing.T) {
	env := newTestEnv(t)
	it := env.seed(t, "P-1", "Bolt", 5)
	id := it.IDString()

	for _, path := range []string{"/inventory/" + id + "/edit", "/inventory/edit/" + id} {
		w := env.get(path)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), `value="Bolt"`)
	}

	w := env.post("/inventory/"+id+"/edit", url.Values{
		"intPartNum": {"P-1"},
		"intName":    {"Hex Bolt"},
		"quantity":   {"7"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/inventory/"+id, w.Header().Get("Location"))

	got, err := env.mem.Get(context.Background(), *it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hex Bolt", *got.IntName)
	assert.Equal(t, int64(7), *got.Quantity)
	assert.Contains(t, env.get("/inventory/"+id).Body.String(), "Update Successful")
}

func TestDeleteItemNeedsConfirmation(t *testing.T) {
	env := newTestEnv(t)
	it := env.seed(t, "P-1", "Bolt", 5)
	id := it.IDString()

	w := env.get("/inventory/" + id + "/delete")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Confirm delete")

	w = env.post("/inventory/"+id+"/delete", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/inventory/"+id+"/delete", w.Header().Get("Location"))
	_, err := env.mem.Get(context.Background(), *it.ID)
	require.NoError(t, err)

	w = env.post("/inventory/"+id+"/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	_, err = env.mem.Get(context.Background(), *it.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Contains(t, env.get("/inventory").Body.String(), "The item has been successfully deleted.")
}

func TestDeleteMissingItem(t *testing.T) {
	env := newTestEnv(t)

	w := env.post("/inventory/999/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	body := env.get("/inventory").Body.String()
	assert.Contains(t, body, "Delete Failed")
	assert.Contains(t, body, "Status: 404")
}

func TestDeleteSelected(t *testing.T) {
	env := newTestEnv(t)
	a := env.seed(t, "P-1", "Bolt", 5)
	b := env.seed(t, "P-2", "Washer", 9)
	c := env.seed(t, "P-3", "Nut", 2)
	sel := []string{a.IDString(), b.IDString()}

	w := env.post("/inventory/delete-selected", url.Values{"sel": sel})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Delete 2 selected item(s)?")
	items, _ := env.mem.List(context.Background())
	assert.Len(t, items, 3, "nothing deleted before confirmation")

	w = env.post("/inventory/delete-selected", url.Values{"sel": sel, "confirm": {"yes"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	items, _ = env.mem.List(context.Background())
	require.Len(t, items, 1)
	assert.Equal(t, *c.ID, *items[0].ID)
	assert.Contains(t, env.get("/inventory").Body.String(), "Deleted 2 item(s).")
}

func TestDeleteSelectedNothing(t *testing.T) {
	env := newTestEnv(t)
	w := env.post("/inventory/delete-selected", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, env.get("/inventory").Body.String(), "No Items Selected")
}

func buildWorkbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func uploadRequest(t *testing.T, path, name string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImportSpreadsheet(t *testing.T) {
	env := newTestEnv(t)
	data := buildWorkbook(t,
		[]any{"intPartNum", "intName", "quantity"},
		[]any{"P-1", "Bolt", 5},
		[]any{"P-2", nil, 3},
		[]any{"P-3", "Nut", 8},
	)

	w := env.do(uploadRequest(t, "/inventory/import", "items.xlsx", data))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Import Successful")
	assert.Contains(t, body, "Bulk import completed. Created: 2, Errors: 1")

	items, _ := env.mem.List(context.Background())
	assert.Len(t, items, 2)
}

func TestImportSpreadsheetJSON(t *testing.T) {
	env := newTestEnv(t)
	data := buildWorkbook(t,
		[]any{"intPartNum", "intName", "quantity"},
		[]any{"P-1", "Bolt", 5},
	)

	req := uploadRequest(t, "/inventory/import", "items.xlsx", data)
	req.Header.Set("Accept", "application/json")
	w := env.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	var result core.ImportResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Submitted)
	assert.Equal(t, 1, result.Created)
	assert.Empty(t, result.Errors)
}

func TestImportRejectsBadFile(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(uploadRequest(t, "/inventory/import", "items.xlsx", []byte("not a workbook")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Import Failed")
	assert.Contains(t, body, "There was an error importing the file. Please try again.")

	items, _ := env.mem.List(context.Background())
	assert.Empty(t, items)
}

func TestImportPreview(t *testing.T) {
	env := newTestEnv(t)
	data := buildWorkbook(t,
		[]any{"intPartNum", "intName", "quantity"},
		[]any{"P-1", "Bolt", 5},
		[]any{"P-2", "Nut", 3},
	)

	w := env.do(uploadRequest(t, "/inventory/import/preview", "items.xlsx", data))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Bolt")

	items, _ := env.mem.List(context.Background())
	assert.Empty(t, items, "preview must not submit")
}

func TestDismissNotification(t *testing.T) {
	env := newTestEnv(t)
	n := env.notes.Push(testSession, notify.Info("Hello", "there"))

	req := httptest.NewRequest(http.MethodPost, "/notifications/"+n.ID+"/dismiss", nil)
	req.Header.Set("Referer", "http://example.com/help")
	w := env.do(req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/help", w.Header().Get("Location"))
	assert.Zero(t, env.notes.Pending(testSession))
}

func TestHelpAndHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/help")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "How do I add an Item?")

	w = env.get("/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
}

func TestStaticAssets(t *testing.T) {
	env := newTestEnv(t)
	w := env.get("/static/app.css")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ".toast")
}

func TestSessionCookieIssued(t *testing.T) {
	env := newTestEnv(t)
	w := httptest.NewRecorder()
	env.server.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/help", nil))

	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			found = true
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, found)
}

func TestBackendProxy(t *testing.T) {
	mem := store.NewMemory()
	api := httptest.NewServer(itemapi.New(mem).Routes())
	t.Cleanup(api.Close)

	env := newTestEnvWithBackend(t, api.URL, mem)
	env.server.cfg.Backend = config.BackendConfig{URL: api.URL, ProxyEnabled: true}
	env.server = NewServer(env.server.service, env.notes, env.server.cfg)
	env.seed(t, "P-1", "Bolt", 5)

	w := env.get("/allItems")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"intName":"Bolt"`)
}
