// Package meal holds the immutable meal library: meals and the
// ingredients they require. Meals are seeded and effectively immutable;
// Active=false hides a meal from selection while preserving references
// from historical decision events and taste rows.
package meal

import "github.com/google/uuid"

// CostBand is a coarse price tier.
type CostBand string

const (
	CostBandLow    CostBand = "$"
	CostBandMedium CostBand = "$$"
	CostBandHigh   CostBand = "$$$"
)

// Meal is an immutable library entry describing one cookable dish.
type Meal struct {
	ID              uuid.UUID
	CanonicalKey    string
	DisplayName     string
	StepsShort      string
	EstPrepMinutes  int
	Cost            CostBand
	Tags            []string
	Active          bool
}

// Ingredient is the relation from a meal to one required ingredient.
type Ingredient struct {
	MealID         uuid.UUID
	Name           string
	QuantityText   string
	IsPantryStaple bool
}
