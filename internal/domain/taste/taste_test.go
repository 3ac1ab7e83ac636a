package taste

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinnerarbiter/core/internal/domain/decision"
)

func at(hour int) *time.Time {
	t := time.Date(2026, 1, 20, hour, 0, 0, 0, time.UTC)
	return &t
}

func TestResolveWeight_ApprovedNonStressHour(t *testing.T) {
	w, ok := ResolveWeight(decision.ActionApproved, at(18))
	require.True(t, ok)
	assert.InDelta(t, WeightApproved, w, 1e-9)
}

func TestResolveWeight_StressHourAmplifiesBase(t *testing.T) {
	w, ok := ResolveWeight(decision.ActionApproved, at(20))
	require.True(t, ok)
	assert.InDelta(t, WeightApproved*StressMultiplier, w, 1e-9)
}

func TestResolveWeight_NilActionedAtNeverAmplifies(t *testing.T) {
	w, ok := ResolveWeight(decision.ActionRejected, nil)
	require.True(t, ok)
	assert.InDelta(t, WeightRejected, w, 1e-9)
}

func TestResolveWeight_PendingHasNoWeight(t *testing.T) {
	_, ok := ResolveWeight(decision.ActionPending, nil)
	assert.False(t, ok)
}

func TestResolveWeight_ClampedToRange(t *testing.T) {
	w, ok := ResolveWeight(decision.ActionApproved, at(23))
	require.True(t, ok)
	assert.LessOrEqual(t, w, WeightClampMax)
	assert.GreaterOrEqual(t, w, WeightClampMin)
}

func TestApplySignal_FirstApprovalSetsScoreAndCount(t *testing.T) {
	meal := uuid.New()
	now := time.Now()
	sig, ok := NewSignal("h1", now, at(18), uuid.New(), &meal, decision.TypeCook, decision.ActionApproved, "ctx", nil)
	require.True(t, ok)
	score := ApplySignal(MealScore{}, *sig, now)
	assert.InDelta(t, WeightApproved, score.Score, 1e-9)
	assert.Equal(t, 1, score.Approvals)
	assert.Equal(t, 0, score.Rejections)
}

func TestApplySignal_AccumulatesAcrossMultipleFeedbacks(t *testing.T) {
	meal := uuid.New()
	now := time.Now()
	approved, _ := NewSignal("h1", now, at(18), uuid.New(), &meal, decision.TypeCook, decision.ActionApproved, "ctx", nil)
	rejected, _ := NewSignal("h1", now, at(18), uuid.New(), &meal, decision.TypeCook, decision.ActionRejected, "ctx", nil)
	score := ApplySignal(MealScore{}, *approved, now)
	score = ApplySignal(score, *rejected, now)
	assert.InDelta(t, WeightApproved+WeightRejected, score.Score, 1e-9)
	assert.Equal(t, 1, score.Approvals)
	assert.Equal(t, 1, score.Rejections)
}

func TestSigmoid_ZeroMapsToOneHalf(t *testing.T) {
	assert.InDelta(t, 0.5, Sigmoid(0), 1e-9)
}

func TestSigmoid_OutputAlwaysBetweenZeroAndOne(t *testing.T) {
	for _, score := range []float64{-50, -5, -1, 0, 1, 5, 50} {
		v := Sigmoid(score)
		assert.Greater(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}
