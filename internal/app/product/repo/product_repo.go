package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/light-bringer/syncable/internal/app/product/contracts"
	"github.com/light-bringer/syncable/internal/app/product/domain"
	"github.com/light-bringer/syncable/internal/app/syncable/collection"
	"github.com/light-bringer/syncable/internal/app/syncable/gateway"
	"github.com/light-bringer/syncable/internal/app/syncable/tracker"
	"github.com/light-bringer/syncable/internal/models/m_product"
)

// ProductRepo implements ProductRepository over a gateway. Every product it
// hands out is tracked in one working set.
type ProductRepo struct {
	gw      *gateway.Gateway
	opts    []tracker.Option
	working *collection.Collection[*domain.Product]
}

// NewProductRepo creates a new ProductRepo. syncLimit caps concurrent syncs in
// SyncAll; opts apply to every loaded product.
func NewProductRepo(gw *gateway.Gateway, syncLimit int, opts ...tracker.Option) contracts.ProductRepository {
	working := collection.New[*domain.Product](gw)
	working.SyncLimit = syncLimit
	return &ProductRepo{
		gw:      gw,
		opts:    opts,
		working: working,
	}
}

// GetByID retrieves a product by ID, reconstructing the domain aggregate.
// A product already in the working set is returned as is, unsaved edits
// included, so each ID has one tracked instance.
func (r *ProductRepo) GetByID(ctx context.Context, productID string) (*domain.Product, error) {
	if p, ok := r.tracked(productID); ok {
		return p, nil
	}

	var row gateway.Row
	err := gateway.WithSession(ctx, r.gw, func(s gateway.Session) error {
		var err error
		row, err = s.Find(ctx, m_product.TableName, m_product.ProductID, productID)
		return err
	})
	if errors.Is(err, gateway.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read product: %w", err)
	}

	product, err := domain.Load(row, r.gw, r.opts...)
	if err != nil {
		return nil, err
	}
	if err := r.working.Add(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Create inserts product. It fails when the store reports no inserted row.
func (r *ProductRepo) Create(ctx context.Context, product *domain.Product) error {
	if _, ok := r.tracked(product.ID()); ok {
		return fmt.Errorf("product %s is already tracked", product.ID())
	}
	ok, err := product.Insert(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	if !ok {
		return fmt.Errorf("product %s was not inserted", product.ID())
	}
	return r.working.Add(product)
}

// Remove deletes product from the store and drops it from the working set.
func (r *ProductRepo) Remove(ctx context.Context, product *domain.Product) (bool, error) {
	return r.working.RemoveFromStore(ctx, product)
}

// SyncAll persists every dirty product in the working set.
func (r *ProductRepo) SyncAll(ctx context.Context) (int, error) {
	return r.working.SyncAll(ctx)
}

func (r *ProductRepo) tracked(productID string) (*domain.Product, bool) {
	for _, p := range r.working.Items() {
		if p.ID() == productID {
			return p, true
		}
	}
	return nil, false
}
