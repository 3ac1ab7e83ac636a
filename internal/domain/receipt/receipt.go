// Package receipt models the ingestion pipeline's durable records: the
// import attempt itself and the line items parsed from it. Parsing and
// normalization (parser.go, normalizer.go) and content-hash dedupe
// (hash.go) are pure functions over these types; persistence and the
// OCR call live in internal/application/receipt and
// internal/infrastructure/ocr.
package receipt

import (
	"time"

	"github.com/google/uuid"
)

// Source is how a receipt entered the system.
type Source string

const (
	SourceImageUpload Source = "image_upload"
	SourceText         Source = "text"
	SourceManual       Source = "manual"
)

// Status is the lifecycle state of an import. The only mutation a row
// ever undergoes is received -> parsed or received -> failed.
type Status string

const (
	StatusReceived Status = "received"
	StatusParsed   Status = "parsed"
	StatusFailed   Status = "failed"
)

// MinLineConfidence is the floor below which a parsed line does not
// propagate to inventory.
const MinLineConfidence = 0.60

// Import is one row per ingestion attempt.
type Import struct {
	ID               uuid.UUID
	HouseholdKey     string
	SourceKind       Source
	VendorName       *string
	PurchasedAt      *time.Time
	OCRProviderLabel string
	OCRRawText       string
	StatusValue      Status
	ErrorMessage     *string
	ContentHash      string
	IsDuplicate      bool
	CanonicalID      *uuid.UUID
	CreatedAt        time.Time
}

// LineItem is one row per parsed line of a receipt.
type LineItem struct {
	ID               uuid.UUID
	ReceiptImportID  uuid.UUID
	RawLine          string
	RawItemName      string
	RawQtyText       string
	RawPrice         *float64
	NormalizedName   string
	NormalizedUnit   string
	NormalizedQty    *float64
	Confidence       float64
}

// PropagatesToInventory reports whether this line's confidence clears the
// threshold for upserting into inventory.
func (li LineItem) PropagatesToInventory() bool {
	return li.Confidence >= MinLineConfidence
}

// NewImport constructs the initial "received" row for an ingestion
// attempt, before parsing has run.
func NewImport(householdKey string, source Source, ocrProviderLabel, ocrRawText string, createdAt time.Time) *Import {
	return &Import{
		ID:               uuid.New(),
		HouseholdKey:     householdKey,
		SourceKind:       source,
		OCRProviderLabel: ocrProviderLabel,
		OCRRawText:       ocrRawText,
		StatusValue:      StatusReceived,
		CreatedAt:        createdAt,
	}
}

// MarkParsed transitions a received import to parsed, attaching its
// content hash and canonical/duplicate resolution.
func (im *Import) MarkParsed(contentHash string, isDuplicate bool, canonicalID *uuid.UUID) {
	im.ContentHash = contentHash
	im.IsDuplicate = isDuplicate
	im.CanonicalID = canonicalID
	im.StatusValue = StatusParsed
}

// MarkFailed transitions a received import to failed with an error
// message, leaving content hash fields unset.
func (im *Import) MarkFailed(errMsg string) {
	im.ErrorMessage = &errMsg
	im.StatusValue = StatusFailed
}
