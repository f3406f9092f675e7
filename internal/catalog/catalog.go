// Package catalog loads and caches the product catalog.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Product is a single catalog entry. IDs are canonicalized to strings at
// this boundary so downstream components never re-coerce numeric ids.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// flexID accepts both string and numeric JSON ids.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id must be a string or number: %s", data)
	}
	*f = flexID(n.String())
	return nil
}

type productEntry struct {
	ID          flexID `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type catalogDocument struct {
	Products []productEntry `json:"products"`
}

// Cache holds the loaded product list and an id-keyed lookup index.
// Load replaces the whole cache; lookups are safe for concurrent use.
type Cache struct {
	source string
	client *http.Client
	logger *slog.Logger

	mu       sync.RWMutex
	products []Product
	index    *gocache.Cache
}

// New creates a catalog cache for the given source, which may be an
// http(s) URL or a local file path.
func New(source string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		source: source,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
		index:  gocache.New(gocache.NoExpiration, 0),
	}
}

// Load fetches the catalog document and replaces the cached product list.
// Every call re-fetches; there is no deduplication of in-flight loads.
func (c *Cache) Load(ctx context.Context) ([]Product, error) {
	data, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	var doc catalogDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	products := make([]Product, 0, len(doc.Products))
	for _, e := range doc.Products {
		products = append(products, Product{
			ID:          string(e.ID),
			Name:        e.Name,
			Brand:       e.Brand,
			Category:    e.Category,
			Description: e.Description,
			Image:       e.Image,
		})
	}

	index := gocache.New(gocache.NoExpiration, 0)
	for _, p := range products {
		index.Set(p.ID, p, gocache.NoExpiration)
	}

	c.mu.Lock()
	c.products = products
	c.index = index
	c.mu.Unlock()

	c.logger.Debug("catalog loaded", "source", c.source, "products", len(products))
	return products, nil
}

func (c *Cache) fetch(ctx context.Context) ([]byte, error) {
	if strings.HasPrefix(c.source, "http://") || strings.HasPrefix(c.source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.source, nil)
		if err != nil {
			return nil, fmt.Errorf("create catalog request: %w", err)
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch catalog: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("fetch catalog: unexpected status %s", resp.Status)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read catalog response: %w", err)
		}
		return body, nil
	}

	data, err := os.ReadFile(c.source)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return data, nil
}

// FindByID resolves a product by its canonical string id.
func (c *Cache) FindByID(id string) (Product, bool) {
	c.mu.RLock()
	index := c.index
	c.mu.RUnlock()

	v, ok := index.Get(id)
	if !ok {
		return Product{}, false
	}
	return v.(Product), true
}

// Products returns a copy of the cached product list in catalog order.
func (c *Cache) Products() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// FilterByCategory returns cached products matching the given category.
func (c *Cache) FilterByCategory(category string) []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Product
	for _, p := range c.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Categories returns the distinct categories present in the cache, sorted.
func (c *Cache) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, p := range c.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}
