// Package pricing coerces feed prices to fixed-point strings and writes them to the catalog.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"catalogsync/internal/repository"

	"github.com/shopspring/decimal"
)

// Zero is the stored form of a price that could not be parsed.
const Zero = "0.00"

var (
	// ErrInvalidPrice is returned by Coerce for values that are not numeric.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrNoPriceTarget is returned by Propagate when neither the SKU nor the fallback resolves.
	ErrNoPriceTarget = errors.New("no entity to receive price")
)

// Coerce converts a raw feed value into a decimal. Strings may use a comma as the decimal
// separator or group thousands with commas or dots; see separators.
func Coerce(raw interface{}) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidPrice)
	case decimal.Decimal:
		return v, nil
	case *string:
		if v == nil {
			return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidPrice)
		}
		return Coerce(*v)
	case string:
		s := separators(strings.TrimSpace(v))
		if s == "" {
			return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidPrice)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPrice, v)
		}
		return d, nil
	case json.Number:
		return Coerce(v.String())
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint:
		return decimal.NewFromInt(int64(v)), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case bool:
		return decimal.Zero, fmt.Errorf("%w: boolean", ErrInvalidPrice)
	default:
		return Coerce(fmt.Sprint(v))
	}
}

// separators rewrites s so that "." is the only decimal separator. When both "," and "." occur,
// the last one separates decimals and the other groups thousands. A lone "," is decimal,
// repeated ","s group thousands.
func separators(s string) string {
	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma < 0:
		return s
	case dot > comma:
		return strings.ReplaceAll(s, ",", "")
	case dot >= 0:
		return strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
	case strings.Count(s, ",") == 1:
		return strings.Replace(s, ",", ".", 1)
	default:
		return strings.ReplaceAll(s, ",", "")
	}
}

// Normalize renders a raw price with exactly two decimals. Values that cannot be parsed become "0.00".
func Normalize(raw interface{}) string {
	d, err := Coerce(raw)
	if err != nil {
		return Zero
	}
	return d.StringFixed(2)
}

// Target says where Propagate wrote the price.
type Target string

const (
	TargetSKU      Target = "sku"
	TargetVariants Target = "variants"
	TargetEntity   Target = "entity"
)

// Propagation reports the entities that received a price.
type Propagation struct {
	Target    Target
	EntityIDs []uint
	Price     string
}

// Propagator writes normalized prices through the catalog repository.
type Propagator struct {
	repo repository.CatalogRepository
}

func NewPropagator(repo repository.CatalogRepository) *Propagator {
	return &Propagator{repo: repo}
}

// Propagate writes price to the entity holding sku. When sku does not resolve, the fallback entity
// receives it, or every variant of the fallback when it is a variable parent with children.
func (p *Propagator) Propagate(ctx context.Context, sku string, price string, fallbackID uint) (Propagation, error) {
	result := Propagation{Price: price}

	if sku != "" {
		entity, err := p.repo.FindBySKU(ctx, sku)
		switch {
		case err == nil:
			if err := p.repo.SetPrice(ctx, entity.ID, price); err != nil {
				return result, fmt.Errorf("failed to price sku %s: %w", sku, err)
			}
			result.Target = TargetSKU
			result.EntityIDs = []uint{entity.ID}
			return result, nil
		case !errors.Is(err, repository.ErrNotFound):
			return result, err
		}
	}

	if fallbackID == 0 {
		return result, ErrNoPriceTarget
	}
	fallback, err := p.repo.Get(ctx, fallbackID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return result, ErrNoPriceTarget
		}
		return result, err
	}

	if fallback.IsVariable() {
		variants, err := p.repo.ListVariants(ctx, fallback.ID)
		if err != nil {
			return result, err
		}
		if len(variants) > 0 {
			for _, v := range variants {
				if err := p.repo.SetPrice(ctx, v.ID, price); err != nil {
					return result, fmt.Errorf("failed to price variant %d: %w", v.ID, err)
				}
				result.EntityIDs = append(result.EntityIDs, v.ID)
			}
			result.Target = TargetVariants
			return result, nil
		}
	}

	if err := p.repo.SetPrice(ctx, fallback.ID, price); err != nil {
		return result, fmt.Errorf("failed to price entity %d: %w", fallback.ID, err)
	}
	result.Target = TargetEntity
	result.EntityIDs = []uint{fallback.ID}
	return result, nil
}
