package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	appinventory "github.com/dinnerarbiter/core/internal/application/inventory"
	"github.com/dinnerarbiter/core/internal/application/arbiter"
	appreceipt "github.com/dinnerarbiter/core/internal/application/receipt"
	apptaste "github.com/dinnerarbiter/core/internal/application/taste"
	"github.com/dinnerarbiter/core/internal/domain/meal"
	"github.com/dinnerarbiter/core/internal/infrastructure/config"
	"github.com/dinnerarbiter/core/internal/infrastructure/ocr"
	"github.com/dinnerarbiter/core/internal/infrastructure/persistence/memory"
	"github.com/dinnerarbiter/core/internal/ports/inbound"
)

const testHouseholdKey = "household-test"

type HandlersTestSuite struct {
	suite.Suite
	handlers *Handlers
	meals    *memory.MealRepository
}

func (s *HandlersTestSuite) SetupTest() {
	logger := zap.NewNop()

	households := memory.NewHouseholdRepository()
	meals := memory.NewMealRepository()
	inventory := memory.NewInventoryRepository()
	events := memory.NewEventRepository()
	taste := memory.NewTasteRepository()
	receipts := memory.NewReceiptRepository()

	_, err := households.EnsureExists(context.Background(), testHouseholdKey, "Test Household")
	require.NoError(s.T(), err)

	mustSeedMeal(s.T(), meals)

	updater := apptaste.NewUpdater(taste, logger)
	hook := appinventory.NewHook(inventory, logger)

	decisionSvc := arbiter.NewDecisionService(meals, inventory, events, taste, updater, hook, logger)
	feedbackSvc := arbiter.NewFeedbackService(events, decisionSvc, logger)
	drmSvc := arbiter.NewDRMService(events, logger)
	mockOCR := ocr.NewMockProvider("")
	receiptSvc := appreceipt.NewService(receipts, inventory, mockOCR, logger)

	cfg := &config.Config{OCR: config.OCRConfig{APIKey: ""}}

	s.handlers = New(decisionSvc, feedbackSvc, drmSvc, receiptSvc, cfg, logger)
	s.meals = meals
}

func mustSeedMeal(t *testing.T, repo *memory.MealRepository) {
	m := &meal.Meal{
		ID:             uuid.New(),
		CanonicalKey:   "test_meal",
		DisplayName:    "Test Meal",
		StepsShort:     "Cook it.",
		EstPrepMinutes: 20,
		Cost:           meal.CostBandLow,
		Tags:           []string{"test"},
		Active:         true,
	}
	require.NoError(t, repo.Seed(context.Background(), []*meal.Meal{m}, nil))
}

func (s *HandlersTestSuite) TestDecision_HappyPath() {
	body := inbound.DecisionRequest{
		HouseholdKey: testHouseholdKey,
		NowISO:       time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC).Format(time.RFC3339),
		SignalValue: inbound.Signal{
			TimeWindow:       "lunch",
			Energy:           "high",
			CalendarConflict: false,
		},
	}
	buf, err := json.Marshal(body)
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPost, "/decision", bytes.NewReader(buf))
	rec := httptest.NewRecorder()

	s.handlers.Decision(rec, req)

	s.Require().Equal(http.StatusOK, rec.Code)
	var resp inbound.DecisionResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Require().False(resp.DRMRecommended)
	s.Require().NotNil(resp.Decision)
	s.Require().Equal("Test Meal", resp.Decision.Title)
}

func (s *HandlersTestSuite) TestDecision_InvalidBodyRejected() {
	req := httptest.NewRequest(http.MethodPost, "/decision", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	s.handlers.Decision(rec, req)

	s.Require().Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlersTestSuite) TestDRM_AlwaysReturnsAnOption() {
	body := inbound.DRMRequest{TriggerReason: "low_energy"}
	buf, err := json.Marshal(body)
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPost, "/drm", bytes.NewReader(buf))
	rec := httptest.NewRecorder()

	s.handlers.DRM(rec, req)

	s.Require().Equal(http.StatusOK, rec.Code)
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
