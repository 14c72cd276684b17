// Package testsupport holds fixture models and test helpers shared by the
// presenter packages.
package testsupport

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-presenter/pkg/model"
)

// ErrOutOfStock is returned by Product.Reserve.
var ErrOutOfStock = errors.New("testsupport: out of stock")

// Model types of the fixtures. Widget is a subtype of Product.
var (
	ProductType = model.Define("Product", model.WithSample(&Product{}), model.WithFinder(Catalog{}))
	WidgetType  = model.Define("Widget", model.WithParent(ProductType), model.WithSample(&Widget{}))
	StoreType   = model.Define("Store", model.WithSample(&Store{}))
	ReviewType  = model.Define("Review", model.WithSample(&Review{}))
	LazyType    = model.Define("LazyProduct", model.WithSample(&LazyProduct{}))
)

// Product is the main fixture model.
type Product struct {
	model.Support

	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`

	Store           *Store     `json:"store,omitempty" model:"association"`
	Reviews         []*Review  `json:"reviews,omitempty" model:"association"`
	SimilarProducts []*Product `json:"similar_products,omitempty" model:"association"`
}

// ToParam renders the id for URLs.
func (p *Product) ToParam() string { return fmt.Sprint(p.ID) }

// HelloWorld is a plain model method.
func (p *Product) HelloWorld() string { return "Hello, world" }

// GoodnightMoon is a plain model method.
func (p *Product) GoodnightMoon() string { return "Goodnight, moon" }

// Title is overridden by some presenters.
func (p *Product) Title() string { return "Title of " + p.Name }

// Discounted applies a percentage discount.
func (p *Product) Discounted(percent float64) float64 {
	return p.Price * (100 - percent) / 100
}

// Reserve always fails with ErrOutOfStock.
func (p *Product) Reserve(quantity int) (int, error) {
	return 0, fmt.Errorf("reserve %d: %w", quantity, ErrOutOfStock)
}

func (p *Product) String() string { return fmt.Sprintf("Product(%d)", p.ID) }

// Widget is a Product subtype.
type Widget struct {
	Product

	Color string `json:"color"`
}

func (w *Widget) String() string { return fmt.Sprintf("Widget(%d)", w.ID) }

// Store is associated with products.
type Store struct {
	model.Support

	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (s *Store) String() string { return fmt.Sprintf("Store(%d)", s.ID) }

// Review is associated with products.
type Review struct {
	ID     int    `json:"id"`
	Rating int    `json:"rating"`
	Body   string `json:"body"`
}

// LazyProduct defers loading; Load returns Err.
type LazyProduct struct {
	ID     int `json:"id"`
	Err    error
	Loaded bool `json:"-"`
}

// Load implements model.Loader.
func (l *LazyProduct) Load() error {
	if l.Err != nil {
		return l.Err
	}
	l.Loaded = true
	return nil
}

// ProductList is a slice type with its own methods.
type ProductList []*Product

// Total sums the prices.
func (l ProductList) Total() float64 {
	var total float64
	for _, p := range l {
		total += p.Price
	}
	return total
}

// NewProduct builds a product with a store and reviews.
func NewProduct(id int, name string, price float64) *Product {
	return &Product{
		ID:          id,
		Name:        name,
		Price:       price,
		Description: "A fine " + name,
		Store:       &Store{ID: 100 + id, Name: "Store " + name},
		Reviews: []*Review{
			{ID: id*10 + 1, Rating: 5, Body: "Great"},
			{ID: id*10 + 2, Rating: 3, Body: "Fine"},
		},
	}
}

// SeedProducts returns fresh fixture products.
func SeedProducts() ProductList {
	return ProductList{
		NewProduct(1, "Lamp", 12.5),
		NewProduct(2, "Desk", 80),
		NewProduct(3, "Chair", 45.25),
	}
}

// Catalog is the Product finder. Every call returns fresh instances.
type Catalog struct{}

// FindAll implements model.Finder.
func (Catalog) FindAll() (any, error) { return SeedProducts(), nil }

// FindByID implements model.Finder.
func (Catalog) FindByID(id any) (any, error) {
	for _, p := range SeedProducts() {
		if fmt.Sprint(p.ID) == fmt.Sprint(id) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: Product %v", model.ErrNotFound, id)
}

// First implements model.Finder.
func (Catalog) First() (any, error) { return SeedProducts()[0], nil }

// Last implements model.Finder.
func (Catalog) Last() (any, error) {
	products := SeedProducts()
	return products[len(products)-1], nil
}

// Count is a type-level method outside the Finder contract.
func (Catalog) Count() int { return len(SeedProducts()) }
