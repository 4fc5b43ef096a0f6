package m_product

// Field name constants for the products table.
// These provide type-safe field references and prevent typos.
const (
	TableName = "products"

	ProductID            = "product_id"
	Name                 = "name"
	Description          = "description"
	Category             = "category"
	BasePriceNumerator   = "base_price_numerator"
	BasePriceDenominator = "base_price_denominator"
	Status               = "status"
	CreatedAt            = "created_at"
)

// Columns lists every column in table order.
var Columns = []string{
	ProductID,
	Name,
	Description,
	Category,
	BasePriceNumerator,
	BasePriceDenominator,
	Status,
	CreatedAt,
}

// SQLiteDDL creates the products table on SQLite.
const SQLiteDDL = `CREATE TABLE IF NOT EXISTS products (
	product_id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL,
	base_price_numerator INTEGER NOT NULL,
	base_price_denominator INTEGER NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
)`

// PostgresDDL creates the products table on Postgres.
const PostgresDDL = `CREATE TABLE IF NOT EXISTS products (
	product_id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL,
	base_price_numerator BIGINT NOT NULL,
	base_price_denominator BIGINT NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

// SpannerDDL creates the products table on Spanner.
const SpannerDDL = `CREATE TABLE IF NOT EXISTS products (
	product_id STRING(36) NOT NULL,
	name STRING(255) NOT NULL,
	description STRING(MAX),
	category STRING(100) NOT NULL,
	base_price_numerator INT64 NOT NULL,
	base_price_denominator INT64 NOT NULL,
	status STRING(20) NOT NULL,
	created_at TIMESTAMP NOT NULL,
) PRIMARY KEY (product_id)`
