package usecase

import (
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/listmatch/backend/internal/domain"
)

// Catalog indexes products by manufacturer. Buckets keep insertion order,
// and manufacturers are remembered in the order first seen so that output
// and tie-breaking are deterministic.
type Catalog struct {
	buckets       map[string][]*domain.Product
	manufacturers []string
	size          int
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{buckets: make(map[string][]*domain.Product)}
}

// LoadCatalog builds a catalog from products in source order
func LoadCatalog(products []*domain.Product) *Catalog {
	c := NewCatalog()
	for _, p := range products {
		c.Add(p)
	}
	return c
}

// Add appends p to its manufacturer's bucket.
func (c *Catalog) Add(p *domain.Product) {
	m := p.Manufacturer()
	if _, ok := c.buckets[m]; !ok {
		c.manufacturers = append(c.manufacturers, m)
	}
	c.buckets[m] = append(c.buckets[m], p)
	c.size++
}

// Candidates returns the products of a manufacturer in catalog order.
// An unknown manufacturer has no candidates. The slice shares the bucket's
// backing array and must be treated as read-only; its capacity is clipped
// so appending to it never writes into the catalog.
func (c *Catalog) Candidates(manufacturer string) []*domain.Product {
	return slices.Clip(c.buckets[manufacturer])
}

// Manufacturers returns bucket names in first-seen order.
func (c *Catalog) Manufacturers() []string {
	out := make([]string, len(c.manufacturers))
	copy(out, c.manufacturers)
	return out
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return c.size
}

// Each calls fn for every product, manufacturers in first-seen order and
// products in bucket order.
func (c *Catalog) Each(fn func(p *domain.Product)) {
	for _, m := range c.manufacturers {
		for _, p := range c.buckets[m] {
			fn(p)
		}
	}
}

// Fingerprint hashes the matching-relevant content of the catalog.
// Two catalogs with the same products in the same order share a fingerprint.
func (c *Catalog) Fingerprint() string {
	h := xxhash.New()
	c.Each(func(p *domain.Product) {
		for _, field := range []string{p.Manufacturer(), p.Name, p.Model, p.Family} {
			_, _ = h.WriteString(field)
			_, _ = h.Write([]byte{0})
		}
		_, _ = h.Write([]byte{'\n'})
	})
	return strconv.FormatUint(h.Sum64(), 16)
}
