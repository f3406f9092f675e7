package catalog_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routinely/internal/catalog"
)

// testLogger creates a logger that writes to stderr for test visibility.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

const catalogJSON = `{
  "products": [
    {"id": 1, "name": "Gentle Foaming Cleanser", "brand": "Acme", "category": "cleanser", "description": "A mild cleanser.", "image": "cleanser.png"},
    {"id": "2", "name": "Hydra Serum", "brand": "Acme", "category": "serum", "description": "Hydrating serum."},
    {"id": 3, "name": "Day Cream SPF30", "brand": "Lumia", "category": "moisturizer", "description": "Daily moisturizer with SPF."}
  ]
}`

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	c := catalog.New(writeCatalogFile(t, catalogJSON), testLogger())

	products, err := c.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 3)

	// Numeric and string ids are both canonical strings afterwards
	assert.Equal(t, "1", products[0].ID)
	assert.Equal(t, "2", products[1].ID)
	assert.Equal(t, "Gentle Foaming Cleanser", products[0].Name)
}

func TestLoadFromHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(catalogJSON))
	}))
	defer srv.Close()

	c := catalog.New(srv.URL, testLogger())

	products, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 3)
}

func TestLoadHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := catalog.New(srv.URL, testLogger())

	_, err := c.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestLoadInvalidJSON(t *testing.T) {
	c := catalog.New(writeCatalogFile(t, "{broken"), testLogger())

	_, err := c.Load(context.Background())
	assert.Error(t, err)
}

func TestFindByID(t *testing.T) {
	c := catalog.New(writeCatalogFile(t, catalogJSON), testLogger())
	_, err := c.Load(context.Background())
	require.NoError(t, err)

	p, ok := c.FindByID("2")
	require.True(t, ok)
	assert.Equal(t, "Hydra Serum", p.Name)

	_, ok = c.FindByID("404")
	assert.False(t, ok)
}

func TestFilterByCategory(t *testing.T) {
	c := catalog.New(writeCatalogFile(t, catalogJSON), testLogger())
	_, err := c.Load(context.Background())
	require.NoError(t, err)

	serums := c.FilterByCategory("serum")
	require.Len(t, serums, 1)
	assert.Equal(t, "Hydra Serum", serums[0].Name)

	assert.Empty(t, c.FilterByCategory("fragrance"))
}

func TestCategoriesSortedUnique(t *testing.T) {
	c := catalog.New(writeCatalogFile(t, catalogJSON), testLogger())
	_, err := c.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"cleanser", "moisturizer", "serum"}, c.Categories())
}

func TestReloadReplacesCache(t *testing.T) {
	path := writeCatalogFile(t, catalogJSON)
	c := catalog.New(path, testLogger())
	_, err := c.Load(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"products":[{"id":"9","name":"Night Cream","brand":"Lumia","category":"moisturizer","description":"Rich night cream."}]}`), 0644))

	products, err := c.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)

	_, ok := c.FindByID("1")
	assert.False(t, ok, "old entries should be gone after reload")

	p, ok := c.FindByID("9")
	require.True(t, ok)
	assert.Equal(t, "Night Cream", p.Name)
}
