package arbiter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dinnerarbiter/core/internal/domain/decision"
	"github.com/dinnerarbiter/core/internal/ports/inbound"
	"github.com/dinnerarbiter/core/internal/ports/outbound"
)

// FeedbackService implements the /feedback endpoint orchestration: it is
// always authoritative about recording the feedback row, and runs
// consumption/taste as isolated best-effort hooks afterward via the
// shared DecisionService hook wiring.
type FeedbackService struct {
	events      outbound.EventRepository
	decisionSvc *DecisionService
	logger      *zap.Logger
}

func NewFeedbackService(events outbound.EventRepository, decisionSvc *DecisionService, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{events: events, decisionSvc: decisionSvc, logger: logger.Named("feedback_service")}
}

// inboundActionToDomain maps the request's userAction value (which
// includes "undo", not itself a stored user_action) to the stored
// UserAction and the notes value that records the undo.
func inboundActionToDomain(userAction string, clientNotes *string) (decision.UserAction, *string) {
	if userAction == "undo" {
		notes := decision.NoteUndoAutopilot
		return decision.ActionRejected, &notes
	}
	return decision.UserAction(userAction), clientNotes
}

// Feedback records one feedback copy for an existing decision event and
// fires the consumption hook and taste updater as isolated best-effort
// work. The response is always {recorded: true} once the feedback row
// itself is durably written; an unknown original event does not fail the
// call.
func (s *FeedbackService) Feedback(ctx context.Context, householdKey string, req inbound.FeedbackRequest) (*inbound.FeedbackResponse, error) {
	actionedAt, err := time.Parse(time.RFC3339, req.ActionedAt)
	if err != nil {
		actionedAt = time.Now()
	}

	action, notes := inboundActionToDomain(req.UserAction, req.Notes)

	original, err := s.events.FindByID(ctx, householdKey, req.EventID)
	if err != nil {
		if err == outbound.ErrNotFound {
			// append-only invariant: feedback for an unknown original
			// still succeeds; there is nothing to copy or hook into.
			return &inbound.FeedbackResponse{Recorded: true}, nil
		}
		return nil, err
	}

	feedback := original.FeedbackCopy(uuid.New(), action, actionedAt, notes)
	if err := s.events.InsertFeedbackCopy(ctx, feedback); err != nil {
		if err == outbound.ErrUniquenessViolation {
			return &inbound.FeedbackResponse{Recorded: true}, nil
		}
		return nil, err
	}

	s.decisionSvc.RunFeedbackHooks(ctx, feedback)

	return &inbound.FeedbackResponse{Recorded: true}, nil
}
