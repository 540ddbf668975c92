package domain

import "sync"

// Default values applied to product records with missing fields.
const (
	DefaultProductName  = "unknown"
	DefaultManufacturer = "unknown"
	DefaultModel        = "unknown"
)

// ProductRecord is one line of the products file. Pointer fields distinguish
// an absent (or null) value from an empty string.
type ProductRecord struct {
	ProductName   *string `json:"product_name"`
	Manufacturer  *string `json:"manufacturer"`
	Model         *string `json:"model"`
	Family        *string `json:"family"`
	AnnouncedDate *string `json:"announced-date,omitempty"`
}

// Product is a canonical catalog entry. It exclusively owns the listings
// matched to it; appends are serialized so concurrent routers may share it.
type Product struct {
	Name   string
	Model  string
	Family string // empty when the product declares no family

	manufacturer string

	mu       sync.Mutex
	listings []*Listing
}

// NewProduct creates a product with an empty listings sequence.
func NewProduct(name, manufacturer, model, family string) *Product {
	return &Product{
		Name:         name,
		Model:        model,
		Family:       family,
		manufacturer: manufacturer,
	}
}

// NewProductFromRecord applies the documented defaults to a decoded record.
func NewProductFromRecord(rec ProductRecord) *Product {
	family := ""
	if rec.Family != nil {
		family = *rec.Family
	}
	return NewProduct(
		stringOr(rec.ProductName, DefaultProductName),
		stringOr(rec.Manufacturer, DefaultManufacturer),
		stringOr(rec.Model, DefaultModel),
		family,
	)
}

// Manufacturer returns the manufacturer bucket this product belongs to.
func (p *Product) Manufacturer() string {
	return p.manufacturer
}

// HasFamily reports whether the product declares a family.
func (p *Product) HasFamily() bool {
	return p.Family != ""
}

// AddListing appends a matched listing.
func (p *Product) AddListing(l *Listing) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listings = append(p.listings, l)
}

// Listings returns a snapshot of the matched listings in match order.
func (p *Product) Listings() []*Listing {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Listing, len(p.listings))
	copy(out, p.listings)
	return out
}

// ListingCount returns the number of matched listings.
func (p *Product) ListingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listings)
}

func (p *Product) String() string {
	return p.Name
}

func stringOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}
