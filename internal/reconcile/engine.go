// Package reconcile maps feed records onto catalog entities.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"catalogsync/internal/feed"
	"catalogsync/internal/models"
	"catalogsync/internal/pricing"
	"catalogsync/internal/repository"
)

// ErrMissingExternalID rejects records without an external identifier.
var ErrMissingExternalID = errors.New("record has no external id")

type Outcome string

const (
	OutcomeCreatedParent  Outcome = "created_parent"
	OutcomeUpdatedParent  Outcome = "updated_parent"
	OutcomeCreatedVariant Outcome = "created_variant"
	OutcomeUpdatedVariant Outcome = "updated_variant"
	OutcomeMatchedBySKU   Outcome = "matched_by_sku"
)

// Created reports whether the outcome added an entity to the catalog.
func (o Outcome) Created() bool {
	return o == OutcomeCreatedParent || o == OutcomeCreatedVariant
}

// Options are resolved once at startup.
type Options struct {
	// Commerce enables SKU matching, price writes and variants.
	Commerce bool
}

type Result struct {
	EntityID uint
	Outcome  Outcome
	SKUWrite SKUWrite
	// Warnings are per-record problems that did not stop the record from being applied.
	Warnings []string
}

type Engine struct {
	repo     repository.CatalogRepository
	matcher  *Matcher
	factory  *VariantFactory
	prices   *pricing.Propagator
	commerce bool
}

func NewEngine(repo repository.CatalogRepository, opts Options) *Engine {
	return &Engine{
		repo:     repo,
		matcher:  NewMatcher(repo),
		factory:  NewVariantFactory(repo),
		prices:   pricing.NewPropagator(repo),
		commerce: opts.Commerce,
	}
}

// Reconcile resolves a record to an entity, creating or updating it. Resolution order is
// SKU, then external id, then variant attribute under the mapped parent.
func (e *Engine) Reconcile(ctx context.Context, record feed.Record) (Result, error) {
	if record.ExternalID == "" {
		return Result{}, ErrMissingExternalID
	}

	price := ""
	if e.commerce && record.HasPrice() {
		price = pricing.Normalize(*record.Price)
	}
	sku := ""
	if e.commerce {
		sku = record.SKU
	}

	if sku != "" {
		entity, err := e.repo.FindBySKU(ctx, sku)
		switch {
		case err == nil:
			return e.matchedBySKU(ctx, entity, price)
		case !errors.Is(err, repository.ErrNotFound):
			return Result{}, fmt.Errorf("failed to look up sku %s: %w", sku, err)
		}
	}

	parent, err := e.repo.FindParentByExternalID(ctx, record.ExternalID)
	if errors.Is(err, repository.ErrNotFound) {
		return e.createParent(ctx, record, sku, price)
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to look up external id %s: %w", record.ExternalID, err)
	}

	if e.commerce && record.Attribute != "" && parent.IsVariable() {
		return e.reconcileVariant(ctx, parent, record.Attribute, sku, price)
	}
	return e.updateParent(ctx, parent, record, sku, price)
}

func (e *Engine) matchedBySKU(ctx context.Context, entity *models.Product, price string) (Result, error) {
	if price != "" {
		if err := e.repo.SetPrice(ctx, entity.ID, price); err != nil {
			return Result{}, fmt.Errorf("failed to price entity %d: %w", entity.ID, err)
		}
	}
	return Result{
		EntityID: entity.ID,
		Outcome:  OutcomeMatchedBySKU,
		SKUWrite: SKUWrite{Status: SKUUnchanged, SKU: entity.SKUValue()},
	}, nil
}

func (e *Engine) createParent(ctx context.Context, record feed.Record, sku, price string) (Result, error) {
	fields := repository.ParentFields{
		ExternalID:  record.ExternalID,
		Kind:        models.KindSimple,
		Title:       record.Name,
		Description: record.Description,
		Status:      models.StatusFor(record.Active),
	}

	variable := e.commerce && record.Attribute != ""
	if variable {
		fields.Kind = models.KindVariable
	} else {
		fields.SKU = sku
		fields.Price = price
	}

	id, err := e.repo.CreateParent(ctx, fields)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create parent %s: %w", record.ExternalID, err)
	}
	result := Result{EntityID: id, Outcome: OutcomeCreatedParent}

	if !variable {
		if sku != "" {
			result.SKUWrite = SKUWrite{Status: SKUWritten, SKU: sku}
		}
		return result, nil
	}

	variant, err := e.factory.CreateVariant(ctx, id, record.Attribute, sku, price)
	if err != nil {
		return result, fmt.Errorf("failed to create first variant of %s: %w", record.ExternalID, err)
	}
	result.SKUWrite = variant.SKUWrite
	return result, nil
}

func (e *Engine) updateParent(ctx context.Context, parent *models.Product, record feed.Record, sku, price string) (Result, error) {
	status := models.StatusFor(record.Active)
	err := e.repo.UpdateEntity(ctx, parent.ID, repository.EntityUpdate{
		Title:       &record.Name,
		Description: &record.Description,
		Status:      &status,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to update parent %d: %w", parent.ID, err)
	}
	result := Result{EntityID: parent.ID, Outcome: OutcomeUpdatedParent}

	if sku != "" {
		if sku == parent.SKUValue() {
			result.SKUWrite = SKUWrite{Status: SKUUnchanged, SKU: sku}
		} else if err := e.repo.SetSKU(ctx, parent.ID, sku); err != nil {
			if !errors.Is(err, repository.ErrSKUConflict) {
				return result, fmt.Errorf("failed to set sku on parent %d: %w", parent.ID, err)
			}
			result.SKUWrite = SKUWrite{Status: SKURejected, SKU: sku, Reason: err.Error()}
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: sku %s: %v", record.ExternalID, sku, err))
		} else {
			result.SKUWrite = SKUWrite{Status: SKUWritten, SKU: sku}
		}
	}

	if price != "" {
		if _, err := e.prices.Propagate(ctx, "", price, parent.ID); err != nil {
			return result, fmt.Errorf("failed to propagate price to %d: %w", parent.ID, err)
		}
	}
	return result, nil
}

func (e *Engine) reconcileVariant(ctx context.Context, parent *models.Product, attribute, sku, price string) (Result, error) {
	variant, found, err := e.matcher.FindVariant(ctx, parent.ID, attribute)
	if err != nil {
		return Result{}, err
	}

	if !found {
		created, err := e.factory.CreateVariant(ctx, parent.ID, attribute, sku, price)
		if err != nil {
			return Result{}, err
		}
		return Result{EntityID: created.ID, Outcome: OutcomeCreatedVariant, SKUWrite: created.SKUWrite}, nil
	}

	if price != "" {
		if err := e.repo.SetPrice(ctx, variant.ID, price); err != nil {
			return Result{}, fmt.Errorf("failed to price variant %d: %w", variant.ID, err)
		}
	}
	write, err := e.factory.writeSKU(ctx, variant.ID, variant.SKUValue(), sku)
	if err != nil {
		return Result{}, err
	}
	return Result{EntityID: variant.ID, Outcome: OutcomeUpdatedVariant, SKUWrite: write}, nil
}
