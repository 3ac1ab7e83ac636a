// Package inbound defines the request/response DTOs for the four
// external operations. Field names are part of the external contract
// (see decision endpoint orchestration). The decision response is
// deliberately modeled as a struct with a single nullable field, never a
// slice — the "no arrays ever" invariant is enforced at this type layer,
// not by convention downstream.
package inbound

import "github.com/google/uuid"

// Signal is the request context passed to /decision.
type Signal struct {
	TimeWindow       string `json:"timeWindow" validate:"required,oneof=breakfast lunch dinner late_night"`
	Energy           string `json:"energy" validate:"required,oneof=low normal high"`
	CalendarConflict bool   `json:"calendarConflict"`
}

// DecisionRequest is the body of POST /decision.
type DecisionRequest struct {
	HouseholdKey string `json:"householdKey" validate:"omitempty"`
	NowISO       string `json:"nowIso" validate:"required"`
	SignalValue  Signal `json:"signal" validate:"required"`
}

// DecisionPayload is the single decision object, never wrapped in a list.
type DecisionPayload struct {
	DecisionType    string     `json:"decisionType"`
	DecisionEventID uuid.UUID  `json:"decisionEventId"`
	MealID          *uuid.UUID `json:"mealId,omitempty"`
	VendorKey       *string    `json:"vendorKey,omitempty"`
	Title           string     `json:"title"`
	StepsShort      string     `json:"stepsShort"`
	EstMinutes      int        `json:"estMinutes"`
	ContextHash     string     `json:"contextHash"`
}

// DecisionResponse is the body returned by POST /decision. Decision is a
// pointer: nil serializes to JSON null, never to an empty array.
type DecisionResponse struct {
	Decision       *DecisionPayload `json:"decision"`
	DRMRecommended bool             `json:"drmRecommended"`
	Autopilot      *bool            `json:"autopilot,omitempty"`
	Reason         *string          `json:"reason,omitempty"`
}

// FeedbackRequest is the body of POST /feedback.
type FeedbackRequest struct {
	EventID    uuid.UUID `json:"eventId" validate:"required"`
	UserAction string    `json:"userAction" validate:"required,oneof=approved rejected drm_triggered expired undo"`
	Notes      *string   `json:"notes,omitempty"`
	ActionedAt string    `json:"actionedAt" validate:"required"`
}

// FeedbackResponse is always the success shape; hook/updater failures
// never change it.
type FeedbackResponse struct {
	Recorded bool `json:"recorded"`
}

// DRMRequest is the body of POST /drm.
type DRMRequest struct {
	TriggerReason string `json:"triggerReason" validate:"required"`
}

// RescuePayload describes the single selected rescue option.
type RescuePayload struct {
	RescueType      string     `json:"rescueType"`
	DecisionEventID uuid.UUID  `json:"decisionEventId"`
	Title           string     `json:"title"`
	EstMinutes      int        `json:"estMinutes"`
	VendorKey       *string    `json:"vendorKey,omitempty"`
	DeepLinkURL     *string    `json:"deepLinkUrl,omitempty"`
}

// DRMResponse is the body returned by POST /drm.
type DRMResponse struct {
	Rescue    RescuePayload `json:"rescue"`
	Exhausted bool          `json:"exhausted"`
}

// ReceiptImportRequest is the body of POST /receipt/import.
type ReceiptImportRequest struct {
	HouseholdKey       string  `json:"householdKey" validate:"omitempty"`
	Source             string  `json:"source" validate:"required,oneof=image_upload text manual"`
	ReceiptImageBase64 *string `json:"receiptImageBase64,omitempty"`
	VendorName         *string `json:"vendorName,omitempty"`
	PurchasedAtISO     *string `json:"purchasedAtIso,omitempty"`
}

// ReceiptImportResponse is the body returned by POST /receipt/import.
type ReceiptImportResponse struct {
	ReceiptImportID uuid.UUID `json:"receiptImportId"`
	Status          string    `json:"status"`
	IsDuplicate     bool      `json:"isDuplicate"`
}
