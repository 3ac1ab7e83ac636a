package arbiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dinnerarbiter/core/internal/application/arbiter"
	"github.com/dinnerarbiter/core/internal/domain/decision"
)

type fakeEventRepoForDRM struct {
	recent   []*decision.Event
	inserted []*decision.Event
}

func (f *fakeEventRepoForDRM) Insert(ctx context.Context, event *decision.Event) error {
	f.inserted = append(f.inserted, event)
	f.recent = append([]*decision.Event{event}, f.recent...)
	return nil
}
func (f *fakeEventRepoForDRM) InsertFeedbackCopy(ctx context.Context, event *decision.Event) error {
	return nil
}
func (f *fakeEventRepoForDRM) FindByID(ctx context.Context, householdKey string, id uuid.UUID) (*decision.Event, error) {
	return nil, nil
}
func (f *fakeEventRepoForDRM) FindRecent(ctx context.Context, householdKey string, limit int) ([]*decision.Event, error) {
	return f.recent, nil
}
func (f *fakeEventRepoForDRM) FindAutopilotByContextHash(ctx context.Context, householdKey, contextHash string) (*decision.Event, error) {
	return nil, nil
}
func (f *fakeEventRepoForDRM) CountByHousehold(ctx context.Context, householdKey string) (int64, error) {
	return int64(len(f.recent)), nil
}

func TestRescue_PicksHighestConfidenceWhenNothingRecent(t *testing.T) {
	repo := &fakeEventRepoForDRM{}
	svc := arbiter.NewDRMService(repo, zap.NewNop())

	resp, err := svc.Rescue(context.Background(), "h1", "two_rejections", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "order", resp.Rescue.RescueType)
	assert.False(t, resp.Exhausted)
}

func TestRescue_SkipsOptionUsedWithin72Hours(t *testing.T) {
	now := time.Now()
	notes := "drm_rescue:two_rejections"
	recent := &decision.Event{
		ID:              uuid.New(),
		HouseholdKey:    "h1",
		DecidedAt:       now.Add(-1 * time.Hour),
		DecisionType:    decision.TypeOrder,
		ContextHash:     "x",
		UserActionValue: decision.ActionPending,
		Notes:           &notes,
	}
	repo := &fakeEventRepoForDRM{recent: []*decision.Event{recent}}
	svc := arbiter.NewDRMService(repo, zap.NewNop())

	resp, err := svc.Rescue(context.Background(), "h1", "two_rejections", now)
	require.NoError(t, err)
	assert.Equal(t, "zero_cook", resp.Rescue.RescueType)
}

func TestRescue_ExhaustedAfterThreeUnapprovedRescues(t *testing.T) {
	now := time.Now()
	var recent []*decision.Event
	for i := 0; i < 3; i++ {
		notes := "drm_rescue:two_rejections"
		recent = append(recent, &decision.Event{
			ID:              uuid.New(),
			HouseholdKey:    "h1",
			DecidedAt:       now.Add(-time.Duration(i) * time.Hour),
			DecisionType:    decision.TypeZeroCook,
			ContextHash:     "x",
			UserActionValue: decision.ActionRejected,
			Notes:           &notes,
		})
	}
	repo := &fakeEventRepoForDRM{recent: recent}
	svc := arbiter.NewDRMService(repo, zap.NewNop())

	resp, err := svc.Rescue(context.Background(), "h1", "two_rejections", now)
	require.NoError(t, err)
	assert.True(t, resp.Exhausted)
}

func TestRescue_NotExhaustedIfMostRecentWasApproved(t *testing.T) {
	now := time.Now()
	notesApproved := "drm_rescue:two_rejections"
	approved := &decision.Event{
		ID:              uuid.New(),
		HouseholdKey:    "h1",
		DecidedAt:       now.Add(-1 * time.Hour),
		DecisionType:    decision.TypeOrder,
		ContextHash:     "x",
		UserActionValue: decision.ActionApproved,
		Notes:           &notesApproved,
	}
	repo := &fakeEventRepoForDRM{recent: []*decision.Event{approved}}
	svc := arbiter.NewDRMService(repo, zap.NewNop())

	resp, err := svc.Rescue(context.Background(), "h1", "two_rejections", now)
	require.NoError(t, err)
	assert.False(t, resp.Exhausted)
}
