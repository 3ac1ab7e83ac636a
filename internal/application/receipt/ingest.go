// Package receipt orchestrates the ingestion pipeline: OCR extraction
// (via the injected provider), parsing, normalization, content-hash
// dedupe, and — for canonical imports only — inventory upsert.
package receipt

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dinnerarbiter/core/internal/domain/inventory"
	"github.com/dinnerarbiter/core/internal/domain/receipt"
	"github.com/dinnerarbiter/core/internal/ports/outbound"
)

// Service orchestrates one receipt import end to end.
type Service struct {
	receipts  outbound.ReceiptRepository
	inventory outbound.InventoryRepository
	ocr       outbound.OCRProvider
	logger    *zap.Logger
}

func NewService(receipts outbound.ReceiptRepository, inv outbound.InventoryRepository, ocr outbound.OCRProvider, logger *zap.Logger) *Service {
	return &Service{receipts: receipts, inventory: inv, ocr: ocr, logger: logger.Named("receipt_service")}
}

// Request is the resolved input to Import, after DTO validation.
type Request struct {
	HouseholdKey       string
	Source             receipt.Source
	ReceiptImageBase64 string
	OCRKeyOrInput      string // OCR_API_KEY, or a mock key, depending on configuration
	VendorNameHint     *string
	PurchasedAtHint    *string
}

// Result is what the orchestration layer needs to build the HTTP
// response.
type Result struct {
	Import *receipt.Import
}

// Import runs the full pipeline for one ingestion attempt.
func (s *Service) Import(ctx context.Context, req Request, now time.Time) (*Result, error) {
	rawText, providerLabel, err := s.ocr.Extract(ctx, req.OCRKeyOrInput, req.ReceiptImageBase64)
	if err != nil {
		imp := receipt.NewImport(req.HouseholdKey, req.Source, providerLabel, "", now)
		imp.MarkFailed(err.Error())
		if insertErr := s.receipts.InsertImport(ctx, imp); insertErr != nil {
			return nil, insertErr
		}
		return &Result{Import: imp}, nil
	}

	imp := receipt.NewImport(req.HouseholdKey, req.Source, providerLabel, rawText, now)

	parsed := receipt.Parse(rawText)

	vendorName := parsed.VendorName
	if req.VendorNameHint != nil && *req.VendorNameHint != "" {
		vendorName = *req.VendorNameHint
	}
	purchasedAt := parsed.PurchasedAt
	if req.PurchasedAtHint != nil && *req.PurchasedAtHint != "" {
		purchasedAt = *req.PurchasedAtHint
	}
	if vendorName != "" {
		imp.VendorName = &vendorName
	}

	contentHash := receipt.ContentHash(rawText, vendorName, purchasedAt)

	existing, err := s.receipts.FindCanonicalByHash(ctx, req.HouseholdKey, contentHash)
	if err != nil && err != outbound.ErrNotFound {
		return nil, err
	}

	isDuplicate := existing != nil

	if isDuplicate {
		imp.MarkParsed(contentHash, true, &existing.ID)
		if err := s.receipts.InsertImport(ctx, imp); err != nil {
			return nil, err
		}
		// duplicates never touch inventory, per the content-hash dedupe contract.
		return &Result{Import: imp}, nil
	}

	imp.MarkParsed(contentHash, false, nil)
	if err := s.receipts.InsertImport(ctx, imp); err != nil {
		return nil, err
	}

	lineItems := make([]receipt.LineItem, 0, len(parsed.Lines))
	for _, line := range parsed.Lines {
		normalized := receipt.Normalize(line)
		lineItems = append(lineItems, receipt.LineItem{
			ReceiptImportID: imp.ID,
			RawLine:         line.RawLine,
			RawItemName:     line.ItemName,
			RawQtyText:      line.QtyText,
			RawPrice:        line.Price,
			NormalizedName:  normalized.Name,
			NormalizedUnit:  normalized.Unit,
			NormalizedQty:   normalized.QtyEstimate,
			Confidence:      normalized.Confidence,
		})
	}
	if len(lineItems) > 0 {
		if err := s.receipts.InsertLineItems(ctx, lineItems); err != nil {
			s.logger.Warn("failed to persist receipt line items", zap.Error(err))
		}
	}

	for _, li := range lineItems {
		if !li.PropagatesToInventory() {
			continue
		}
		item := inventory.NewItem(req.HouseholdKey, li.NormalizedName, inventory.SourceReceipt, li.Confidence)
		item.QtyEstimated = li.NormalizedQty
		item.Unit = li.NormalizedUnit
		item.LastSeenAt = now
		if err := s.inventory.Insert(ctx, item); err != nil {
			s.logger.Warn("failed to upsert inventory from receipt line", zap.Error(err), zap.String("item", li.NormalizedName))
		}
	}

	return &Result{Import: imp}, nil
}
