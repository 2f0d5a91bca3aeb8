package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidProductID = errors.New("invalid product id")
	ErrProductNotFound  = errors.New("product not found")
)

type Product struct {
	ID          string  `json:"id" bson:"-"`
	Name        string  `json:"name" bson:"name"`
	Price       float64 `json:"price" bson:"price"`
	Category    string  `json:"category,omitempty" bson:"category,omitempty"`
	Description string  `json:"description,omitempty" bson:"description,omitempty"`
	Stock       int     `json:"stock" bson:"stock"`
}

type OrderItem struct {
	ProductID string `json:"product_id" bson:"product_id"`
	Quantity  int    `json:"quantity" bson:"quantity"`
}

type Order struct {
	ID       string      `json:"id" bson:"-"`
	Customer string      `json:"customer" bson:"customer"`
	Items    []OrderItem `json:"items" bson:"items"`
	Total    float64     `json:"total" bson:"total"`
	Date     time.Time   `json:"date" bson:"date"`
}

// Repository is the document-store surface the shop service depends on.
type Repository interface {
	EnsureIndexes(ctx context.Context) error

	InsertProduct(ctx context.Context, p Product) (Product, error)
	// DecrementStock subtracts qty from a product's stock. Missing products
	// yield ErrProductNotFound, malformed ids ErrInvalidProductID.
	DecrementStock(ctx context.Context, productID string, qty int) error
	DeleteUnavailable(ctx context.Context) (int64, error)

	InsertOrder(ctx context.Context, o Order) (Order, error)
	RecentOrders(ctx context.Context, limit int) ([]Order, error)

	SoldTotal(ctx context.Context, start, end time.Time) (int64, error)
	TotalSpentByCustomer(ctx context.Context, customer string) (float64, error)
}
