package arbiter

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dinnerarbiter/core/internal/domain/decision"
	"github.com/dinnerarbiter/core/internal/ports/inbound"
	"github.com/dinnerarbiter/core/internal/ports/outbound"
)

// ExhaustionStreak is how many trailing rescue resolutions are inspected
// to decide whether DRM is exhausted for the household.
const ExhaustionStreak = 3

// rescueOption is one candidate rescue action in the simplified ruleset:
// DRM has no vendor-catalog component in this design, so the rescue set
// is a small fixed library of order/zero-cook fallbacks ranked by a
// static confidence, the "highest-confidence available" half of the
// ruleset's two criteria.
type rescueOption struct {
	decisionType decision.Type
	vendorKey    *string
	title        string
	estMinutes   int
	deepLinkURL  *string
	confidence   int // higher wins
}

func vendorKeyPtr(s string) *string { return &s }
func urlPtr(s string) *string       { return &s }

var rescueLibrary = []rescueOption{
	{
		decisionType: decision.TypeOrder,
		vendorKey:    vendorKeyPtr("default_delivery"),
		title:        "Order delivery",
		estMinutes:   35,
		deepLinkURL:  urlPtr("https://orders.local/rescue"),
		confidence:   2,
	},
	{
		decisionType: decision.TypeZeroCook,
		title:        "Zero-cook plate (cereal, toast, or snacks)",
		estMinutes:   5,
		confidence:   1,
	},
}

// DRMService implements the /drm endpoint: it selects a rescue option whose
// type was not used by any rescue in the last 72 hours (the trigger reason
// is recorded in notes but not compared), inserts a new decision event for
// it, and reports exhaustion.
type DRMService struct {
	events outbound.EventRepository
	logger *zap.Logger
}

func NewDRMService(events outbound.EventRepository, logger *zap.Logger) *DRMService {
	return &DRMService{events: events, logger: logger.Named("drm_service")}
}

// Rescue selects and records a rescue decision for the given trigger
// reason.
func (s *DRMService) Rescue(ctx context.Context, householdKey string, triggerReason string, now time.Time) (*inbound.DRMResponse, error) {
	recent, err := s.events.FindRecent(ctx, householdKey, RecentEventsLimit)
	if err != nil {
		return nil, err
	}

	chosen := selectRescue(recent, now)

	payload := []byte(`{"rescue":"` + string(chosen.decisionType) + `"}`)
	contextHash := ComputeContextHash(householdKey, now.Format(time.RFC3339), Signal{TimeWindow: "dinner", Energy: "rescue"})
	event := decision.NewPending(householdKey, chosen.decisionType, nil, chosen.vendorKey, contextHash, payload, now)
	notes := "drm_rescue:" + triggerReason
	event.Notes = &notes
	if err := s.events.Insert(ctx, event); err != nil {
		return nil, err
	}

	exhausted := isExhausted(recent)

	return &inbound.DRMResponse{
		Rescue: inbound.RescuePayload{
			RescueType:      string(chosen.decisionType),
			DecisionEventID: event.ID,
			Title:           chosen.title,
			EstMinutes:      chosen.estMinutes,
			VendorKey:       chosen.vendorKey,
			DeepLinkURL:     chosen.deepLinkURL,
		},
		Exhausted: exhausted,
	}, nil
}

// selectRescue ranks the fixed rescue library by confidence, skipping any
// option whose decision type was already used as a rescue for the same
// pattern (approximated here as "any rescue type") within 72 hours.
func selectRescue(recent []*decision.Event, now time.Time) rescueOption {
	cutoff := now.Add(-UndoThrottleWindow)
	usedRecently := make(map[decision.Type]bool)
	for _, e := range recent {
		if e.Notes == nil || len(*e.Notes) < 11 || (*e.Notes)[:11] != "drm_rescue:" {
			continue
		}
		if e.DecidedAt.Before(cutoff) {
			continue
		}
		usedRecently[e.DecisionType] = true
	}

	best := rescueLibrary[len(rescueLibrary)-1]
	bestConfidence := -1
	for _, opt := range rescueLibrary {
		if usedRecently[opt.decisionType] {
			continue
		}
		if opt.confidence > bestConfidence {
			best = opt
			bestConfidence = opt.confidence
		}
	}
	return best
}

// isExhausted reports whether the trailing ExhaustionStreak rescue
// decisions (most-recent-first) were all left un-approved.
func isExhausted(recent []*decision.Event) bool {
	streak := 0
	for _, e := range recent {
		if e.Notes == nil || len(*e.Notes) < 11 || (*e.Notes)[:11] != "drm_rescue:" {
			continue
		}
		if e.UserActionValue == decision.ActionApproved {
			break
		}
		streak++
		if streak >= ExhaustionStreak {
			return true
		}
	}
	return false
}
