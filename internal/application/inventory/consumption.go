// Package inventory implements the best-effort consumption hook: on an
// approved cook feedback, it decrements matched non-staple ingredients
// against the household's inventory.
package inventory

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/dinnerarbiter/core/internal/application/arbiter"
	"github.com/dinnerarbiter/core/internal/domain/inventory"
	"github.com/dinnerarbiter/core/internal/domain/meal"
	"github.com/dinnerarbiter/core/internal/ports/outbound"
)

const preFilterLimit = 50

// defaultQtyWhenUnparseable is used when an ingredient's quantity text
// cannot be parsed to a positive number.
const defaultQtyWhenUnparseable = 1.0

var leadingNumber = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)`)

// FailureRecord is one ingredient-level failure collected by the hook;
// these are logged, never returned to the caller as an error.
type FailureRecord struct {
	IngredientName string
	Reason         string
}

// Hook is the best-effort consumption hook (component 9).
type Hook struct {
	inventoryRepo outbound.InventoryRepository
	logger        *zap.Logger
}

func NewHook(inventoryRepo outbound.InventoryRepository, logger *zap.Logger) *Hook {
	return &Hook{inventoryRepo: inventoryRepo, logger: logger.Named("consumption_hook")}
}

// Run applies consumption for every non-pantry-staple ingredient of the
// given meal, against the household's inventory, at the given timestamp.
// Individual ingredient failures are collected and logged but never
// abort the hook.
func (h *Hook) Run(ctx context.Context, householdKey string, ingredients []meal.Ingredient, at time.Time) []FailureRecord {
	var failures []FailureRecord

	for _, ing := range ingredients {
		if ing.IsPantryStaple {
			continue
		}

		tokens := arbiter.PreFilterTokens(ing.Name)
		if len(tokens) == 0 {
			continue
		}

		candidates, err := h.inventoryRepo.FindCandidates(ctx, householdKey, tokens, preFilterLimit)
		if err != nil {
			failures = append(failures, FailureRecord{IngredientName: ing.Name, Reason: err.Error()})
			h.logger.Warn("consumption hook candidate lookup failed", zap.Error(err), zap.String("ingredient", ing.Name))
			continue
		}
		if len(candidates) == 0 {
			continue
		}

		matchCandidates := make([]inventory.Candidate, len(candidates))
		byName := make(map[string]*inventory.Item, len(candidates))
		for i, c := range candidates {
			matchCandidates[i] = inventory.Candidate{Name: c.Name}
			byName[c.Name] = c
		}

		result, ok := inventory.Match(ing.Name, matchCandidates)
		if !ok {
			continue
		}
		matched, found := byName[result.Name]
		if !found {
			continue
		}

		qty := parseQuantity(ing.QuantityText)

		if err := h.inventoryRepo.IncrementUsage(ctx, matched.ID, qty, at); err != nil {
			failures = append(failures, FailureRecord{IngredientName: ing.Name, Reason: err.Error()})
			h.logger.Warn("consumption hook increment failed", zap.Error(err), zap.String("ingredient", ing.Name))
		}
	}

	return failures
}

// parseQuantity extracts a positive leading number from free-form qty
// text ("2", "1.5 lb"), defaulting to defaultQtyWhenUnparseable.
func parseQuantity(qtyText string) float64 {
	m := leadingNumber.FindStringSubmatch(qtyText)
	if m == nil {
		return defaultQtyWhenUnparseable
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 {
		return defaultQtyWhenUnparseable
	}
	return v
}

