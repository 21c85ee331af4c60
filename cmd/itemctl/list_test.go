package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/InventoryUI/internal/config"
	"github.com/JonMunkholm/InventoryUI/internal/core"
	"github.com/JonMunkholm/InventoryUI/internal/itemapi"
	"github.com/JonMunkholm/InventoryUI/internal/store"
	"github.com/JonMunkholm/InventoryUI/internal/table"
)

func useBackend(t *testing.T, mem *store.Memory) {
	t.Helper()
	api := httptest.NewServer(itemapi.New(mem).Routes())
	t.Cleanup(api.Close)

	prevCfg, prevURL := cfg, backendURL
	t.Cleanup(func() { cfg, backendURL = prevCfg, prevURL })

	cfg = &config.Config{
		Backend: config.BackendConfig{URL: api.URL, Timeout: 5 * time.Second},
		Import:  config.ImportConfig{MaxFileSize: 1 << 20, MaxWaitTime: time.Second, Timeout: 10 * time.Second},
	}
	backendURL = api.URL
}

func TestListPrintsPageThroughService(t *testing.T) {
	mem := store.NewMemory()
	for _, part := range []string{"P-1", "P-2", "P-3"} {
		qty := int64(7)
		_, err := mem.Create(context.Background(), core.Item{IntPartNum: &part, IntName: &part, Quantity: &qty})
		require.NoError(t, err)
	}
	useBackend(t, mem)

	prevPage, prevSize := listPage, listSize
	t.Cleanup(func() { listPage, listSize = prevPage, prevSize })
	listPage, listSize = 1, 2

	var out bytes.Buffer
	listCmd.SetOut(&out)
	listCmd.SetContext(context.Background())
	t.Cleanup(func() { listCmd.SetOut(nil) })

	require.NoError(t, listCmd.RunE(listCmd, nil))

	got := out.String()
	assert.Contains(t, got, "PART")
	assert.Contains(t, got, "P-3")
	assert.Contains(t, got, "P-2")
	assert.NotContains(t, got, "P-1")
	assert.Contains(t, got, table.Placeholder, "missing sloc prints the placeholder")
	assert.Contains(t, got, "page 1 of 2 (3 items)")
}

func TestListReportsBackendFailure(t *testing.T) {
	useBackend(t, store.NewMemory())
	backendURL = "http://127.0.0.1:1"

	listCmd.SetOut(&bytes.Buffer{})
	listCmd.SetContext(context.Background())
	t.Cleanup(func() { listCmd.SetOut(nil) })

	err := listCmd.RunE(listCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list page")
}
