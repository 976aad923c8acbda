package reconcile

import (
	"context"
	"testing"

	"catalogsync/internal/models"
	"catalogsync/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariantFactory(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCatalog()
	factory := NewVariantFactory(repo)

	parent, err := repo.CreateParent(ctx, repository.ParentFields{ExternalID: "P", Kind: models.KindVariable})
	require.NoError(t, err)
	other, err := repo.CreateParent(ctx, repository.ParentFields{ExternalID: "O", SKU: "DUP"})
	require.NoError(t, err)

	t.Run("creates published variant with sku and price", func(t *testing.T) {
		res, err := factory.CreateVariant(ctx, parent, "Blue", "P-BLUE", "4.00")
		require.NoError(t, err)
		assert.Equal(t, SKUWritten, res.SKUWrite.Status)

		got := mustGet(t, repo, res.ID)
		assert.Equal(t, models.StatusPublish, got.Status)
		assert.Equal(t, "Blue", got.Attribute)
		assert.Equal(t, "4.00", got.Price)
		assert.Equal(t, "P-BLUE", got.SKUValue())
	})

	t.Run("sku conflict degrades to metadata", func(t *testing.T) {
		res, err := factory.CreateVariant(ctx, parent, "Green", "DUP", "")
		require.NoError(t, err)
		assert.Equal(t, SKUDegraded, res.SKUWrite.Status)
		assert.NotEmpty(t, res.SKUWrite.Reason)

		got := mustGet(t, repo, res.ID)
		assert.Empty(t, got.SKUValue())
		assert.Equal(t, "DUP", got.Metadata[MetadataSKUKey])
		assert.Equal(t, "DUP", mustGet(t, repo, other).SKUValue())
	})

	t.Run("duplicate attribute is rejected", func(t *testing.T) {
		_, err := factory.CreateVariant(ctx, parent, " blue", "", "")
		assert.ErrorIs(t, err, repository.ErrDuplicateAttribute)
	})

	t.Run("empty attribute is rejected", func(t *testing.T) {
		_, err := factory.CreateVariant(ctx, parent, "  ", "", "")
		assert.ErrorIs(t, err, ErrEmptyAttribute)
	})
}

func TestMatcher(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCatalog()
	matcher := NewMatcher(repo)

	a, _ := repo.CreateParent(ctx, repository.ParentFields{ExternalID: "A", Kind: models.KindVariable})
	b, _ := repo.CreateParent(ctx, repository.ParentFields{ExternalID: "B", Kind: models.KindVariable})
	small, _ := repo.CreateVariant(ctx, a, repository.VariantFields{Attribute: "Small"})
	_, _ = repo.CreateVariant(ctx, b, repository.VariantFields{Attribute: "Medium"})

	tests := []struct {
		name   string
		parent uint
		value  string
		want   uint
		found  bool
	}{
		{"exact", a, "Small", small, true},
		{"case and padding", a, "  sMALL ", small, true},
		{"scoped to parent", a, "Medium", 0, false},
		{"empty value", a, "", 0, false},
		{"unknown", a, "XL", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found, err := matcher.FindVariant(ctx, tt.parent, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.want, got.ID)
			}
		})
	}
}
