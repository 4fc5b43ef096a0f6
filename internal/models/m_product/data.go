package m_product

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Data represents one row of the products table.
type Data struct {
	ProductID            string
	Name                 string
	Description          string
	Category             string
	BasePriceNumerator   int64
	BasePriceDenominator int64
	Status               string
	CreatedAt            time.Time
}

// FromRow decodes a stored row. Backends hand back different Go types for the
// same column (int64 from SQL, float64 from JSON, time.Time or text for
// timestamps), so every column is converted leniently.
func FromRow(row map[string]any) (Data, error) {
	var (
		d   Data
		err error
	)
	if d.ProductID, err = str(row, ProductID); err != nil {
		return d, err
	}
	if d.Name, err = str(row, Name); err != nil {
		return d, err
	}
	if d.Description, err = str(row, Description); err != nil {
		return d, err
	}
	if d.Category, err = str(row, Category); err != nil {
		return d, err
	}
	if d.BasePriceNumerator, err = integer(row, BasePriceNumerator); err != nil {
		return d, err
	}
	if d.BasePriceDenominator, err = integer(row, BasePriceDenominator); err != nil {
		return d, err
	}
	if d.Status, err = str(row, Status); err != nil {
		return d, err
	}
	if d.CreatedAt, err = timestamp(row, CreatedAt); err != nil {
		return d, err
	}
	return d, nil
}

func str(row map[string]any, col string) (string, error) {
	switch v := row[col].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("column %s: unexpected type %T", col, v)
	}
}

func integer(row map[string]any, col string) (int64, error) {
	switch v := row[col].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(v, 10, 64)
	case nil:
		return 0, fmt.Errorf("column %s: missing", col)
	default:
		return 0, fmt.Errorf("column %s: unexpected type %T", col, v)
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

func timestamp(row map[string]any, col string) (time.Time, error) {
	switch v := row[col].(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("column %s: unparsable time %q", col, v)
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("column %s: unexpected type %T", col, v)
	}
}
