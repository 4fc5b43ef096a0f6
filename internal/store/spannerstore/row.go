package spannerstore

import (
	"fmt"

	"cloud.google.com/go/spanner"
	sppb "cloud.google.com/go/spanner/apiv1/spannerpb"

	"github.com/light-bringer/syncable/internal/app/syncable/gateway"
)

func decodeRow(row *spanner.Row) (gateway.Row, error) {
	out := make(gateway.Row, row.Size())
	for i, name := range row.ColumnNames() {
		var col spanner.GenericColumnValue
		if err := row.Column(i, &col); err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		v, err := decodeColumn(col)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// decodeColumn converts a Spanner value to the plain Go type the other
// backends return. NULL becomes nil.
func decodeColumn(col spanner.GenericColumnValue) (any, error) {
	switch col.Type.GetCode() {
	case sppb.TypeCode_STRING:
		var v spanner.NullString
		if err := col.Decode(&v); err != nil || !v.Valid {
			return nil, err
		}
		return v.StringVal, nil
	case sppb.TypeCode_INT64:
		var v spanner.NullInt64
		if err := col.Decode(&v); err != nil || !v.Valid {
			return nil, err
		}
		return v.Int64, nil
	case sppb.TypeCode_FLOAT64:
		var v spanner.NullFloat64
		if err := col.Decode(&v); err != nil || !v.Valid {
			return nil, err
		}
		return v.Float64, nil
	case sppb.TypeCode_BOOL:
		var v spanner.NullBool
		if err := col.Decode(&v); err != nil || !v.Valid {
			return nil, err
		}
		return v.Bool, nil
	case sppb.TypeCode_TIMESTAMP:
		var v spanner.NullTime
		if err := col.Decode(&v); err != nil || !v.Valid {
			return nil, err
		}
		return v.Time.UTC(), nil
	case sppb.TypeCode_JSON:
		var v spanner.NullJSON
		if err := col.Decode(&v); err != nil || !v.Valid {
			return nil, err
		}
		return v.Value, nil
	default:
		return nil, fmt.Errorf("unsupported column type %s", col.Type.GetCode())
	}
}
