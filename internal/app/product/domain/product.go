package domain

import (
	"fmt"
	"time"

	"github.com/light-bringer/syncable/internal/app/syncable/gateway"
	"github.com/light-bringer/syncable/internal/app/syncable/tracker"
	"github.com/light-bringer/syncable/internal/models/m_product"
	"github.com/light-bringer/syncable/internal/pkg/clock"
	"github.com/light-bringer/syncable/internal/pkg/fields"
)

// Field names for change tracking
const (
	FieldID          = "id"
	FieldName        = "name"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldBasePrice   = "base_price"
	FieldStatus      = "status"
	FieldCreatedAt   = "created_at"
)

// ProductStatus represents the lifecycle status of a product
type ProductStatus string

const (
	StatusInactive ProductStatus = "inactive"
	StatusActive   ProductStatus = "active"
	StatusArchived ProductStatus = "archived"
)

// ParseStatus validates a stored or user supplied status.
func ParseStatus(s string) (ProductStatus, error) {
	switch st := ProductStatus(s); st {
	case StatusInactive, StatusActive, StatusArchived:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// Product is the aggregate root for product management. Every mutable field
// is tracked: edits can be reverted one by one and only the edited columns are
// written on Sync.
type Product struct {
	*tracker.Object

	id          string
	name        string
	description string
	category    string
	basePrice   *Money
	status      ProductStatus
	createdAt   time.Time

	fieldSet *fields.Set
}

// NewProduct creates a new Product aggregate (for creation). It is not stored
// until Insert succeeds.
func NewProduct(id, name, description, category string, basePrice *Money, clk clock.Clock, gw *gateway.Gateway, opts ...tracker.Option) (*Product, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	if category == "" {
		return nil, ErrInvalidCategory
	}

	if basePrice == nil || !basePrice.IsPositive() {
		return nil, ErrInvalidPrice
	}

	p := &Product{
		id:          id,
		name:        name,
		description: description,
		category:    category,
		basePrice:   basePrice.Copy(),
		status:      StatusInactive,
		createdAt:   clk.Now().UTC(),
	}
	p.init(gw, opts)
	return p, nil
}

// Load reconstitutes a synced Product from a stored row.
func Load(row gateway.Row, gw *gateway.Gateway, opts ...tracker.Option) (*Product, error) {
	data, err := m_product.FromRow(row)
	if err != nil {
		return nil, fmt.Errorf("failed to decode product row: %w", err)
	}

	price, err := NewMoney(data.BasePriceNumerator, data.BasePriceDenominator)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", data.ProductID, err)
	}

	status, err := ParseStatus(data.Status)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", data.ProductID, err)
	}

	p := &Product{
		id:          data.ProductID,
		name:        data.Name,
		description: data.Description,
		category:    data.Category,
		basePrice:   price,
		status:      status,
		createdAt:   data.CreatedAt,
	}
	p.init(gw, opts)
	return p, nil
}

func (p *Product) init(gw *gateway.Gateway, opts []tracker.Option) {
	// Setters write the slot directly; they are only reached through resets.
	p.fieldSet = fields.NewSet(
		fields.ReadOnlyField(FieldID, func() string { return p.id }),
		fields.Define(FieldName, func() string { return p.name }, func(v string) { p.name = v }),
		fields.Define(FieldDescription, func() string { return p.description }, func(v string) { p.description = v }),
		fields.Define(FieldCategory, func() string { return p.category }, func(v string) { p.category = v }),
		fields.Define(FieldBasePrice, func() *Money { return p.basePrice }, func(v *Money) { p.basePrice = v }),
		fields.Define(FieldStatus, func() ProductStatus { return p.status }, func(v ProductStatus) { p.status = v }),
		fields.Define(FieldCreatedAt, func() time.Time { return p.createdAt }, func(v time.Time) { p.createdAt = v }).
			WithAccess(fields.Hidden),
	)
	p.Object = tracker.New(p, gw, opts...)
}

// Getters
func (p *Product) ID() string            { return p.id }
func (p *Product) Name() string          { return p.name }
func (p *Product) Description() string   { return p.description }
func (p *Product) Category() string      { return p.category }
func (p *Product) BasePrice() *Money     { return p.basePrice.Copy() }
func (p *Product) Status() ProductStatus { return p.status }
func (p *Product) CreatedAt() time.Time  { return p.createdAt }

// SetName updates the product name.
func (p *Product) SetName(name string) error {
	if err := p.checkNotArchived(); err != nil {
		return err
	}

	if name == "" {
		return ErrEmptyName
	}

	return tracker.Set(p.Object, &p.name, name, FieldName)
}

// SetDescription updates the product description.
func (p *Product) SetDescription(description string) error {
	if err := p.checkNotArchived(); err != nil {
		return err
	}

	return tracker.Set(p.Object, &p.description, description, FieldDescription)
}

// SetCategory updates the product category.
func (p *Product) SetCategory(category string) error {
	if err := p.checkNotArchived(); err != nil {
		return err
	}

	if category == "" {
		return ErrInvalidCategory
	}

	return tracker.Set(p.Object, &p.category, category, FieldCategory)
}

// SetBasePrice updates the base price. Equal amounts are not a change.
func (p *Product) SetBasePrice(price *Money) error {
	if err := p.checkNotArchived(); err != nil {
		return err
	}

	if price == nil || !price.IsPositive() {
		return ErrInvalidPrice
	}

	return tracker.SetFunc(p.Object, &p.basePrice, price.Copy(), FieldBasePrice, moneyEqual)
}

// Activate activates the product.
func (p *Product) Activate() error {
	if err := p.checkNotArchived(); err != nil {
		return err
	}

	if p.status == StatusActive {
		return ErrAlreadyActive
	}

	return tracker.Set(p.Object, &p.status, StatusActive, FieldStatus)
}

// Deactivate deactivates the product.
func (p *Product) Deactivate() error {
	if err := p.checkNotArchived(); err != nil {
		return err
	}

	if p.status == StatusInactive {
		return ErrAlreadyInactive
	}

	return tracker.Set(p.Object, &p.status, StatusInactive, FieldStatus)
}

// Archive archives the product (soft delete).
func (p *Product) Archive() error {
	if p.status == StatusArchived {
		return ErrAlreadyArchived
	}

	return tracker.Set(p.Object, &p.status, StatusArchived, FieldStatus)
}

// SetField applies a textual edit to a named field.
func (p *Product) SetField(field, value string) error {
	switch field {
	case FieldName:
		return p.SetName(value)
	case FieldDescription:
		return p.SetDescription(value)
	case FieldCategory:
		return p.SetCategory(value)
	case FieldBasePrice:
		price, err := ParseMoney(value)
		if err != nil {
			return err
		}
		return p.SetBasePrice(price)
	case FieldStatus:
		st, err := ParseStatus(value)
		if err != nil {
			return err
		}
		switch st {
		case StatusActive:
			return p.Activate()
		case StatusInactive:
			return p.Deactivate()
		default:
			return p.Archive()
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

// IsActive returns true if the product is active.
func (p *Product) IsActive() bool {
	return p.status == StatusActive
}

// IsArchived returns true if the product is archived.
func (p *Product) IsArchived() bool {
	return p.status == StatusArchived
}

// checkNotArchived returns an error if the product is archived.
func (p *Product) checkNotArchived() error {
	if p.status == StatusArchived {
		return ErrCannotModifyArchived
	}
	return nil
}

// FieldSet implements fields.Settable.
func (p *Product) FieldSet() *fields.Set { return p.fieldSet }

func (p *Product) Table() string     { return m_product.TableName }
func (p *Product) KeyColumn() string { return m_product.ProductID }
func (p *Product) Key() string       { return p.id }

// Columns maps a field onto its storage columns.
func (p *Product) Columns(field string) (map[string]any, error) {
	switch field {
	case FieldName:
		return map[string]any{m_product.Name: p.name}, nil
	case FieldDescription:
		return map[string]any{m_product.Description: p.description}, nil
	case FieldCategory:
		return map[string]any{m_product.Category: p.category}, nil
	case FieldBasePrice:
		if !p.basePrice.IsSafeForStorage() {
			return nil, fmt.Errorf("base price %s: %w", p.basePrice, ErrMoneyOverflow)
		}
		return map[string]any{
			m_product.BasePriceNumerator:   p.basePrice.Numerator(),
			m_product.BasePriceDenominator: p.basePrice.Denominator(),
		}, nil
	case FieldStatus:
		return map[string]any{m_product.Status: string(p.status)}, nil
	case FieldCreatedAt:
		return map[string]any{m_product.CreatedAt: p.createdAt}, nil
	default:
		return nil, fmt.Errorf("%w: %s.%s", gateway.ErrUnknownField, m_product.TableName, field)
	}
}

// PersistedFields lists the fields written on insert.
func (p *Product) PersistedFields() []string {
	return []string{FieldName, FieldDescription, FieldCategory, FieldBasePrice, FieldStatus, FieldCreatedAt}
}
