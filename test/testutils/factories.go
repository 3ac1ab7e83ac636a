// Package testutils provides shared test infrastructure: fixture
// factories for the domain types, and a disposable Postgres container
// for repository tests.
package testutils

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/dinnerarbiter/core/internal/domain/decision"
	"github.com/dinnerarbiter/core/internal/domain/inventory"
	"github.com/dinnerarbiter/core/internal/domain/meal"
)

// MealFactory generates realistic meal fixtures from a seeded faker, so
// repeated test runs are reproducible.
type MealFactory struct {
	faker *gofakeit.Faker
}

func NewMealFactory(seed int64) *MealFactory {
	return &MealFactory{faker: gofakeit.New(seed)}
}

// MealBuilder provides a fluent interface for building a test meal.
type MealBuilder struct {
	id             uuid.UUID
	canonicalKey   string
	displayName    string
	stepsShort     string
	estPrepMinutes int
	cost           meal.CostBand
	tags           []string
	active         bool
}

func NewMealBuilder() *MealBuilder {
	faker := gofakeit.New(0)
	name := faker.Sentence(2)
	return &MealBuilder{
		id:             uuid.New(),
		canonicalKey:   faker.Word() + "_" + faker.Word(),
		displayName:    name,
		stepsShort:     faker.Sentence(8),
		estPrepMinutes: faker.Number(10, 45),
		cost:           meal.CostBandMedium,
		tags:           []string{"test"},
		active:         true,
	}
}

func (b *MealBuilder) WithCost(c meal.CostBand) *MealBuilder {
	b.cost = c
	return b
}

func (b *MealBuilder) WithTags(tags ...string) *MealBuilder {
	b.tags = tags
	return b
}

func (b *MealBuilder) Inactive() *MealBuilder {
	b.active = false
	return b
}

func (b *MealBuilder) Build() *meal.Meal {
	return &meal.Meal{
		ID:             b.id,
		CanonicalKey:   b.canonicalKey,
		DisplayName:    b.displayName,
		StepsShort:     b.stepsShort,
		EstPrepMinutes: b.estPrepMinutes,
		Cost:           b.cost,
		Tags:           b.tags,
		Active:         b.active,
	}
}

// RandomMeal returns a fully-populated, randomized meal plus a short
// ingredient list referencing it.
func (f *MealFactory) RandomMeal() (*meal.Meal, []meal.Ingredient) {
	id := uuid.New()
	m := &meal.Meal{
		ID:             id,
		CanonicalKey:   f.faker.Word() + "_" + f.faker.Word(),
		DisplayName:    f.faker.Sentence(3),
		StepsShort:     f.faker.Sentence(10),
		EstPrepMinutes: f.faker.Number(10, 60),
		Cost:           []meal.CostBand{meal.CostBandLow, meal.CostBandMedium, meal.CostBandHigh}[f.faker.Number(0, 2)],
		Tags:           []string{f.faker.Word()},
		Active:         true,
	}
	ingredients := make([]meal.Ingredient, 0, 3)
	for i := 0; i < 3; i++ {
		ingredients = append(ingredients, meal.Ingredient{
			MealID:         id,
			Name:           f.faker.Fruit(),
			QuantityText:   "1",
			IsPantryStaple: i == 0,
		})
	}
	return m, ingredients
}

// InventoryItemFactory generates randomized pantry/fridge items.
type InventoryItemFactory struct {
	faker *gofakeit.Faker
}

func NewInventoryItemFactory(seed int64) *InventoryItemFactory {
	return &InventoryItemFactory{faker: gofakeit.New(seed)}
}

func (f *InventoryItemFactory) RandomItem(householdKey string) *inventory.Item {
	return inventory.NewItem(householdKey, f.faker.Vegetable(), inventory.SourceReceipt, 1.0)
}

// DecisionEventFactory generates randomized decision log entries.
type DecisionEventFactory struct {
	faker *gofakeit.Faker
}

func NewDecisionEventFactory(seed int64) *DecisionEventFactory {
	return &DecisionEventFactory{faker: gofakeit.New(seed)}
}

func (f *DecisionEventFactory) RandomAcceptedEvent(householdKey string, mealID uuid.UUID) *decision.Event {
	now := time.Now()
	ev := decision.NewPending(householdKey, decision.TypeCook, &mealID, nil, f.faker.UUID(), []byte(`{}`), now)
	ev.UserActionValue = decision.ActionApproved
	ev.ActionedAt = &now
	return ev
}
