package arbiter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appinventory "github.com/dinnerarbiter/core/internal/application/inventory"
	appTaste "github.com/dinnerarbiter/core/internal/application/taste"
	"github.com/dinnerarbiter/core/internal/domain/decision"
	"github.com/dinnerarbiter/core/internal/domain/meal"
	"github.com/dinnerarbiter/core/internal/ports/inbound"
	"github.com/dinnerarbiter/core/internal/ports/outbound"
)

const (
	// RecentEventsLimit bounds every household-scoped event read, per the
	// suspension-point contract in the concurrency model.
	RecentEventsLimit = 50

	// TopKForFallback is how many top-scoring meals feed the
	// household-wide inventory/taste fallbacks autopilot gates 4 and 5
	// consult.
	TopKForFallback = 5

	// BestEffortSubTimeout bounds taste-updater and consumption-hook work
	// so it never extends the parent request deadline.
	BestEffortSubTimeout = 2 * time.Second

	// DecisionDeadline is the default deadline for a /decision request;
	// on expiry the endpoint returns DRM with reason "timeout" rather than
	// partial results.
	DecisionDeadline = 30 * time.Second
)

// DecisionService implements the /decision endpoint orchestration
// (component 13): DRM evaluation, arbiter selection, and autopilot
// insertion.
type DecisionService struct {
	meals     outbound.MealRepository
	inventory outbound.InventoryRepository
	events    outbound.EventRepository
	tasteRepo outbound.TasteRepository
	updater   *appTaste.Updater
	hook      *appinventory.Hook
	logger    *zap.Logger
}

func NewDecisionService(
	meals outbound.MealRepository,
	inventory outbound.InventoryRepository,
	events outbound.EventRepository,
	tasteRepo outbound.TasteRepository,
	updater *appTaste.Updater,
	hook *appinventory.Hook,
	logger *zap.Logger,
) *DecisionService {
	return &DecisionService{
		meals:     meals,
		inventory: inventory,
		events:    events,
		tasteRepo: tasteRepo,
		updater:   updater,
		hook:      hook,
		logger:    logger.Named("decision_service"),
	}
}

type decisionPayloadRecord struct {
	MealID     uuid.UUID `json:"mealId"`
	Title      string    `json:"title"`
	StepsShort string    `json:"stepsShort"`
	EstMinutes int       `json:"estMinutes"`
}

// Decide runs the full /decision pipeline. now is the caller-supplied
// "current time" (parsed from nowIso); it governs every local-time
// computation without further timezone conversion, per the external
// interface contract.
func (s *DecisionService) Decide(ctx context.Context, householdKey string, now time.Time, sig Signal) (*inbound.DecisionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, DecisionDeadline)
	defer cancel()

	state, err := s.loadState(ctx, householdKey, now)
	if err != nil {
		if ctx.Err() != nil {
			return timeoutResponse(), nil
		}
		return nil, err
	}
	if ctx.Err() != nil {
		return timeoutResponse(), nil
	}

	eventsToday := filterToday(state.RecentEvents, now)
	if trigger, reason := EvaluateDRM(sig, now, eventsToday); trigger {
		return drmResponse(reason), nil
	}

	contextHash := ComputeContextHash(householdKey, now.Format(time.RFC3339), sig)

	winner, ok := Select(state, now, contextHash)
	if !ok {
		return drmResponse("no_candidates"), nil
	}

	ingredients := state.IngredientsByMeal[winner.Meal.ID]

	eligible, undoThrottled := s.evaluateAutopilot(ctx, householdKey, state, winner, sig, now)
	if eligible && !undoThrottled {
		return s.handleAutopilot(ctx, householdKey, winner.Meal, ingredients, contextHash, now)
	}

	payload := buildPayload(winner.Meal)
	event := decision.NewPending(householdKey, decision.TypeCook, &winner.Meal.ID, nil, contextHash, payload, now)
	if err := s.events.Insert(ctx, event); err != nil {
		return nil, err
	}

	autopilotFalse := false
	return &inbound.DecisionResponse{
		Decision:       toDecisionPayload(event, winner.Meal),
		DRMRecommended: false,
		Autopilot:      &autopilotFalse,
	}, nil
}

func (s *DecisionService) loadState(ctx context.Context, householdKey string, now time.Time) (State, error) {
	meals, err := s.meals.FindActiveMeals(ctx)
	if err != nil {
		return State{}, err
	}
	mealIDs := make([]uuid.UUID, len(meals))
	for i, m := range meals {
		mealIDs[i] = m.ID
	}
	ingredientsByMeal, err := s.meals.FindIngredientsForMeals(ctx, mealIDs)
	if err != nil {
		return State{}, err
	}
	inventoryItems, err := s.inventory.FindCandidates(ctx, householdKey, nil, 0)
	if err != nil {
		return State{}, err
	}
	recentEvents, err := s.events.FindRecent(ctx, householdKey, RecentEventsLimit)
	if err != nil {
		return State{}, err
	}
	tasteScores, err := s.tasteRepo.FindMealScores(ctx, householdKey, mealIDs)
	if err != nil {
		return State{}, err
	}

	return State{
		Meals:             meals,
		IngredientsByMeal: ingredientsByMeal,
		Inventory:         inventoryItems,
		RecentEvents:      recentEvents,
		TasteScores:       tasteScores,
	}, nil
}

func (s *DecisionService) evaluateAutopilot(ctx context.Context, householdKey string, state State, winner *ScoredMeal, sig Signal, now time.Time) (eligible bool, throttled bool) {
	invFallback := TopKInventoryFallback(state, now, TopKForFallback)
	tasteFallback := TopKTasteFallback(state, TopKForFallback)

	eligible, _ = EvaluateAutopilot(EligibilityInput{
		Now:            now,
		Signal:         sig,
		InventoryScore: invFallback,
		TasteScore:     tasteFallback,
		MealID:         winner.Meal.ID,
		RecentEvents:   state.RecentEvents,
	})
	if !eligible {
		return false, false
	}

	hasUndo, err := s.tasteRepo.HasUndoWithinWindow(ctx, householdKey, now.Add(-UndoThrottleWindow))
	if err != nil {
		s.logger.Warn("undo throttle lookup failed, disabling autopilot defensively", zap.Error(err))
		return true, true
	}
	return true, hasUndo
}

func (s *DecisionService) handleAutopilot(ctx context.Context, householdKey string, m *meal.Meal, ingredients []meal.Ingredient, contextHash string, now time.Time) (*inbound.DecisionResponse, error) {
	autopilotTrue := true

	if existing, err := s.events.FindAutopilotByContextHash(ctx, householdKey, contextHash); err == nil && existing != nil {
		return &inbound.DecisionResponse{
			Decision:  toDecisionPayload(existing, m),
			Autopilot: &autopilotTrue,
		}, nil
	}

	payload := buildPayload(m)
	mealID := m.ID
	original := decision.NewPending(householdKey, decision.TypeCook, &mealID, nil, contextHash, payload, now)
	if err := s.events.Insert(ctx, original); err != nil {
		return nil, err
	}

	autopilotNotes := decision.NoteAutopilot
	feedback := original.FeedbackCopy(uuid.New(), decision.ActionApproved, now, &autopilotNotes)
	if err := s.events.InsertFeedbackCopy(ctx, feedback); err != nil {
		if err == outbound.ErrUniquenessViolation {
			return &inbound.DecisionResponse{
				Decision:  toDecisionPayload(original, m),
				Autopilot: &autopilotTrue,
			}, nil
		}
		return nil, err
	}

	s.runBestEffortHooks(feedback, ingredients)

	return &inbound.DecisionResponse{
		Decision:  toDecisionPayload(original, m),
		Autopilot: &autopilotTrue,
	}, nil
}

// runBestEffortHooks runs the consumption hook and taste updater with a
// tight sub-timeout, isolated from the parent request deadline, given
// ingredients already loaded by the caller.
func (s *DecisionService) runBestEffortHooks(feedback *decision.Event, ingredients []meal.Ingredient) {
	hookCtx, cancel := context.WithTimeout(context.Background(), BestEffortSubTimeout)
	defer cancel()

	if feedback.UserActionValue == decision.ActionApproved && feedback.DecisionType == decision.TypeCook && feedback.MealID != nil {
		s.hook.Run(hookCtx, feedback.HouseholdKey, ingredients, *feedback.ActionedAt)
	}
	s.updater.OnFeedback(hookCtx, feedback, nil)
}

// RunFeedbackHooks is the entry point FeedbackService uses after any
// feedback insert (not just autopilot's own): it loads the meal's
// ingredients when the consumption hook condition applies, then runs
// both hooks best-effort with an isolated sub-timeout.
func (s *DecisionService) RunFeedbackHooks(ctx context.Context, feedback *decision.Event) {
	var ingredients []meal.Ingredient
	if feedback.UserActionValue == decision.ActionApproved && feedback.DecisionType == decision.TypeCook && feedback.MealID != nil {
		loaded, err := s.meals.FindIngredients(ctx, *feedback.MealID)
		if err != nil {
			s.logger.Warn("failed to load ingredients for consumption hook", zap.Error(err))
		} else {
			ingredients = loaded
		}
	}
	s.runBestEffortHooks(feedback, ingredients)
}

func buildPayload(m *meal.Meal) []byte {
	record := decisionPayloadRecord{
		MealID:     m.ID,
		Title:      m.DisplayName,
		StepsShort: m.StepsShort,
		EstMinutes: m.EstPrepMinutes,
	}
	data, _ := json.Marshal(record)
	return data
}

func toDecisionPayload(event *decision.Event, m *meal.Meal) *inbound.DecisionPayload {
	return &inbound.DecisionPayload{
		DecisionType:    string(event.DecisionType),
		DecisionEventID: event.ID,
		MealID:          event.MealID,
		VendorKey:       event.ExternalVendorKey,
		Title:           m.DisplayName,
		StepsShort:      m.StepsShort,
		EstMinutes:      m.EstPrepMinutes,
		ContextHash:     event.ContextHash,
	}
}

func filterToday(events []*decision.Event, now time.Time) []*decision.Event {
	year, month, day := now.Date()
	out := make([]*decision.Event, 0, len(events))
	for _, e := range events {
		ts := e.DecidedAt
		if e.ActionedAt != nil {
			ts = *e.ActionedAt
		}
		y, m, d := ts.Date()
		if y == year && m == month && d == day {
			out = append(out, e)
		}
	}
	return out
}

func drmResponse(reason string) *inbound.DecisionResponse {
	r := reason
	return &inbound.DecisionResponse{
		Decision:       nil,
		DRMRecommended: true,
		Reason:         &r,
	}
}

func timeoutResponse() *inbound.DecisionResponse {
	return drmResponse("timeout")
}
