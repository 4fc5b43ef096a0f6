package m_product

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRow(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	want := Data{
		ProductID:            "p-1",
		Name:                 "Lamp",
		Description:          "",
		Category:             "home",
		BasePriceNumerator:   1999,
		BasePriceDenominator: 100,
		Status:               "active",
		CreatedAt:            created,
	}

	tests := []struct {
		name string
		row  map[string]any
	}{
		{
			name: "sql driver types",
			row: map[string]any{
				ProductID: "p-1", Name: "Lamp", Description: nil, Category: []byte("home"),
				BasePriceNumerator: int64(1999), BasePriceDenominator: int64(100),
				Status: "active", CreatedAt: created.In(time.FixedZone("CET", 3600)),
			},
		},
		{
			name: "json document",
			row: map[string]any{
				ProductID: "p-1", Name: "Lamp", Description: "", Category: "home",
				BasePriceNumerator: json.Number("1999"), BasePriceDenominator: float64(100),
				Status: "active", CreatedAt: "2026-03-01T12:00:00Z",
			},
		},
		{
			name: "sqlite text timestamp",
			row: map[string]any{
				ProductID: "p-1", Name: "Lamp", Category: "home",
				BasePriceNumerator: "1999", BasePriceDenominator: 100,
				Status: "active", CreatedAt: "2026-03-01 12:00:00",
			},
		},
		{
			name: "sqlite text timestamp with offset",
			row: map[string]any{
				ProductID: "p-1", Name: "Lamp", Category: "home",
				BasePriceNumerator: int32(1999), BasePriceDenominator: int64(100),
				Status: "active", CreatedAt: "2026-03-01 14:00:00+02:00",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromRow(tt.row)
			require.NoError(t, err)
			assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
			got.CreatedAt = want.CreatedAt
			assert.Equal(t, want, got)
		})
	}
}

func TestFromRow_Errors(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{
			ProductID: "p-1", Name: "Lamp", Category: "home",
			BasePriceNumerator: int64(1), BasePriceDenominator: int64(1),
			Status: "active",
		}
	}

	t.Run("missing price", func(t *testing.T) {
		row := base()
		delete(row, BasePriceNumerator)
		_, err := FromRow(row)
		assert.ErrorContains(t, err, BasePriceNumerator)
	})

	t.Run("wrong type", func(t *testing.T) {
		row := base()
		row[Name] = 42
		_, err := FromRow(row)
		assert.ErrorContains(t, err, "unexpected type int")
	})

	t.Run("bad timestamp", func(t *testing.T) {
		row := base()
		row[CreatedAt] = "yesterday"
		_, err := FromRow(row)
		assert.ErrorContains(t, err, "unparsable time")
	})

	t.Run("missing timestamp is zero", func(t *testing.T) {
		d, err := FromRow(base())
		require.NoError(t, err)
		assert.True(t, d.CreatedAt.IsZero())
	})
}
