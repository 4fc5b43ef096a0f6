package contracts

import (
	"context"

	"github.com/light-bringer/syncable/internal/app/product/domain"
)

// ProductRepository loads, creates and removes tracked products. Edits to a
// loaded product are persisted by the product itself (Sync) or in bulk via
// SyncAll.
type ProductRepository interface {
	// GetByID loads a product and keeps it in the working set.
	GetByID(ctx context.Context, productID string) (*domain.Product, error)

	// Create inserts a new product and adds it to the working set.
	Create(ctx context.Context, product *domain.Product) error

	// Remove deletes a product from the store. Reports whether a row was deleted.
	Remove(ctx context.Context, product *domain.Product) (bool, error)

	// SyncAll persists every dirty product in the working set.
	SyncAll(ctx context.Context) (int, error)
}
