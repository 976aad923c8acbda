package reconcile

import (
	"context"
	"fmt"

	"catalogsync/internal/models"
	"catalogsync/internal/repository"
)

// Matcher finds the variant of a parent carrying a given attribute value.
type Matcher struct {
	repo repository.CatalogRepository
}

func NewMatcher(repo repository.CatalogRepository) *Matcher {
	return &Matcher{repo: repo}
}

// FindVariant scans the parent's variants in store order and returns the first whose attribute
// equals value, ignoring case and surrounding whitespace.
func (m *Matcher) FindVariant(ctx context.Context, parentID uint, value string) (*models.Product, bool, error) {
	want := models.NormalizeAttribute(value)
	if want == "" {
		return nil, false, nil
	}

	variants, err := m.repo.ListVariants(ctx, parentID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list variants of %d: %w", parentID, err)
	}
	for i := range variants {
		if models.NormalizeAttribute(variants[i].Attribute) == want {
			return &variants[i], true, nil
		}
	}
	return nil, false, nil
}
