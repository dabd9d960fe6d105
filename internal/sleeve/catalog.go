package sleeve

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed catalog.json
var embeddedCatalog []byte

// Source yields catalog products. Sources are read once at start-up.
type Source interface {
	Products(ctx context.Context) ([]Product, error)
}

// EmbeddedSource serves the catalog compiled into the binary.
type EmbeddedSource struct{}

// Products implements Source.
func (EmbeddedSource) Products(context.Context) ([]Product, error) {
	return DecodeProducts(embeddedCatalog)
}

// FileSource reads a JSON catalog from disk.
type FileSource struct {
	Path string
}

// Products implements Source.
func (s FileSource) Products(context.Context) ([]Product, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return DecodeProducts(data)
}

// DecodeProducts parses a JSON array of products.
func DecodeProducts(data []byte) ([]Product, error) {
	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return products, nil
}

// Bounds are the catalog extremes used as default filter windows.
type Bounds struct {
	MinLength float64 `json:"min_length"`
	MaxLength float64 `json:"max_length"`
	MinGirth  float64 `json:"min_girth"`
	MaxGirth  float64 `json:"max_girth"`
}

// Catalog is an immutable, validated product list.
type Catalog struct {
	products []Product
	bounds   Bounds
}

// NewCatalog validates products and computes bounds.
func NewCatalog(products []Product) (*Catalog, error) {
	if len(products) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid catalog product: %w", err)
		}
	}

	b := Bounds{
		MinLength: products[0].Length,
		MaxLength: products[0].Length,
		MinGirth:  products[0].Girth,
		MaxGirth:  products[0].Girth,
	}
	for _, p := range products[1:] {
		b.MinLength = min(b.MinLength, p.Length)
		b.MaxLength = max(b.MaxLength, p.Length)
		b.MinGirth = min(b.MinGirth, p.Girth)
		b.MaxGirth = max(b.MaxGirth, p.Girth)
	}

	out := make([]Product, len(products))
	copy(out, products)
	return &Catalog{products: out, bounds: b}, nil
}

// LoadCatalog reads and validates products from a source.
func LoadCatalog(ctx context.Context, src Source) (*Catalog, error) {
	products, err := src.Products(ctx)
	if err != nil {
		return nil, err
	}
	return NewCatalog(products)
}

// Products returns a copy of the catalog in load order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Bounds returns the catalog extremes.
func (c *Catalog) Bounds() Bounds {
	return c.bounds
}

// Len reports the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}
