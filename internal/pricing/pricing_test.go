package pricing

import (
	"context"
	"encoding/json"
	"testing"

	"catalogsync/internal/models"
	"catalogsync/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
		want string
	}{
		{"integer", 3, "3.00"},
		{"string with one decimal", "4.5", "4.50"},
		{"not a number", "abc", "0.00"},
		{"comma separator", "12,345", "12.35"},
		{"comma thousands with dot decimals", "1,234.56", "1234.56"},
		{"dot thousands with comma decimals", "1.234,56", "1234.56"},
		{"repeated comma thousands", "1,234,567", "1234567.00"},
		{"padded", "  7  ", "7.00"},
		{"float", 19.999, "20.00"},
		{"json number", json.Number("0.1"), "0.10"},
		{"decimal", decimal.RequireFromString("1.005"), "1.01"},
		{"empty", "", "0.00"},
		{"nil", nil, "0.00"},
		{"bool", true, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestCoerceReportsFailure(t *testing.T) {
	_, err := Coerce("twelve")
	assert.ErrorIs(t, err, ErrInvalidPrice)

	d, err := Coerce("8")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(8)))
}

func TestPropagate(t *testing.T) {
	ctx := context.Background()

	t.Run("sku wins over fallback", func(t *testing.T) {
		// Arrange
		repo := repository.NewMemoryCatalog()
		skuHolder, err := repo.CreateParent(ctx, repository.ParentFields{ExternalID: "A", SKU: "S1", Price: "1.00"})
		require.NoError(t, err)
		fallback, err := repo.CreateParent(ctx, repository.ParentFields{ExternalID: "B", Price: "1.00"})
		require.NoError(t, err)

		// Act
		res, err := NewPropagator(repo).Propagate(ctx, "S1", "5.00", fallback)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, TargetSKU, res.Target)
		assert.Equal(t, []uint{skuHolder}, res.EntityIDs)
		got, _ := repo.Get(ctx, fallback)
		assert.Equal(t, "1.00", got.Price)
	})

	t.Run("variable parent prices every variant", func(t *testing.T) {
		repo := repository.NewMemoryCatalog()
		parent, err := repo.CreateParent(ctx, repository.ParentFields{ExternalID: "A", Kind: models.KindVariable, Price: "0.00"})
		require.NoError(t, err)
		v1, _ := repo.CreateVariant(ctx, parent, repository.VariantFields{Attribute: "S"})
		v2, _ := repo.CreateVariant(ctx, parent, repository.VariantFields{Attribute: "M"})

		res, err := NewPropagator(repo).Propagate(ctx, "", "9.90", parent)

		require.NoError(t, err)
		assert.Equal(t, TargetVariants, res.Target)
		assert.Equal(t, []uint{v1, v2}, res.EntityIDs)
		p, _ := repo.Get(ctx, parent)
		assert.Equal(t, "0.00", p.Price)
		v, _ := repo.Get(ctx, v2)
		assert.Equal(t, "9.90", v.Price)
	})

	t.Run("simple fallback is priced directly", func(t *testing.T) {
		repo := repository.NewMemoryCatalog()
		id, err := repo.CreateParent(ctx, repository.ParentFields{ExternalID: "A"})
		require.NoError(t, err)

		res, err := NewPropagator(repo).Propagate(ctx, "UNKNOWN", "2.50", id)

		require.NoError(t, err)
		assert.Equal(t, TargetEntity, res.Target)
		got, _ := repo.Get(ctx, id)
		assert.Equal(t, "2.50", got.Price)
	})

	t.Run("nothing to price", func(t *testing.T) {
		repo := repository.NewMemoryCatalog()

		_, err := NewPropagator(repo).Propagate(ctx, "UNKNOWN", "2.50", 0)
		assert.ErrorIs(t, err, ErrNoPriceTarget)

		_, err = NewPropagator(repo).Propagate(ctx, "", "2.50", 42)
		assert.ErrorIs(t, err, ErrNoPriceTarget)
	})
}
