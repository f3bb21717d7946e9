package types

import "errors"

// Product is a cart line item: a product reference plus the quantity the
// user wants to buy. The JSON field names are the persisted wire format.
type Product struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// ProductInput is a Product without a quantity. The cart assigns the
// quantity when the product is added.
type ProductInput struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
}

// Product validation errors.
var (
	ErrInvalidID    = errors.New("product id must not be empty")
	ErrInvalidPrice = errors.New("product price must not be negative")
)

// Validate checks that the input can become a cart line item.
// Returns ErrInvalidID or ErrInvalidPrice.
func (p ProductInput) Validate() error {
	if p.ID == "" {
		return ErrInvalidID
	}
	if p.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// WithQuantity returns the Product for this input holding quantity units.
func (p ProductInput) WithQuantity(quantity int) Product {
	return Product{
		ID:       p.ID,
		Title:    p.Title,
		ImageURL: p.ImageURL,
		Price:    p.Price,
		Quantity: quantity,
	}
}

// Input returns the product without its quantity.
func (p Product) Input() ProductInput {
	return ProductInput{
		ID:       p.ID,
		Title:    p.Title,
		ImageURL: p.ImageURL,
		Price:    p.Price,
	}
}
