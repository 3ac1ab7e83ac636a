package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dinnerarbiter/core/internal/domain/receipt"
	"github.com/dinnerarbiter/core/internal/ports/outbound"
)

// ReceiptRepository implements outbound.ReceiptRepository against
// receipt_imports and receipt_line_items. The canonical-by-hash lookup
// relies on the partial unique index defined in schema.go rather than an
// application-level secondary index.
type ReceiptRepository struct {
	pool *pgxpool.Pool
}

func NewReceiptRepository(pool *pgxpool.Pool) *ReceiptRepository {
	return &ReceiptRepository{pool: pool}
}

func (r *ReceiptRepository) InsertImport(ctx context.Context, imp *receipt.Import) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO receipt_imports
			(id, household_key, source_kind, vendor_name, purchased_at, ocr_provider_label,
			 ocr_raw_text, status, error_message, content_hash, is_duplicate, canonical_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		imp.ID, imp.HouseholdKey, string(imp.SourceKind), imp.VendorName, imp.PurchasedAt,
		imp.OCRProviderLabel, imp.OCRRawText, string(imp.StatusValue), imp.ErrorMessage,
		imp.ContentHash, imp.IsDuplicate, imp.CanonicalID, imp.CreatedAt,
	)
	return err
}

func (r *ReceiptRepository) FindCanonicalByHash(ctx context.Context, householdKey, contentHash string) (*receipt.Import, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, household_key, source_kind, vendor_name, purchased_at, ocr_provider_label,
		       ocr_raw_text, status, error_message, content_hash, is_duplicate, canonical_id, created_at
		FROM receipt_imports
		WHERE household_key = $1 AND content_hash = $2 AND is_duplicate = FALSE AND status = 'parsed'
		LIMIT 1
	`, householdKey, contentHash)

	var imp receipt.Import
	var source, status string
	err := row.Scan(&imp.ID, &imp.HouseholdKey, &source, &imp.VendorName, &imp.PurchasedAt,
		&imp.OCRProviderLabel, &imp.OCRRawText, &status, &imp.ErrorMessage, &imp.ContentHash,
		&imp.IsDuplicate, &imp.CanonicalID, &imp.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, outbound.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	imp.SourceKind = receipt.Source(source)
	imp.StatusValue = receipt.Status(status)
	return &imp, nil
}

func (r *ReceiptRepository) InsertLineItems(ctx context.Context, items []receipt.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, item := range items {
		id := item.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		batch.Queue(`
			INSERT INTO receipt_line_items
				(id, receipt_import_id, raw_line, raw_item_name, raw_qty_text, raw_price,
				 normalized_name, normalized_unit, normalized_qty, confidence)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, id, item.ReceiptImportID, item.RawLine, item.RawItemName, item.RawQtyText,
			item.RawPrice, item.NormalizedName, item.NormalizedUnit, item.NormalizedQty, item.Confidence)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range items {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}
