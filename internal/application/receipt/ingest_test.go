package receipt_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	receiptapp "github.com/dinnerarbiter/core/internal/application/receipt"
	invdomain "github.com/dinnerarbiter/core/internal/domain/inventory"
	receiptdomain "github.com/dinnerarbiter/core/internal/domain/receipt"
	"github.com/dinnerarbiter/core/internal/ports/outbound"
)

type fakeOCR struct {
	text string
	err  error
}

func (f *fakeOCR) Extract(ctx context.Context, apiKeyOrMockInput string, imageBase64 string) (string, string, error) {
	return f.text, "mock", f.err
}

type fakeReceiptRepo struct {
	canonicalByHash map[string]*receiptdomain.Import
	imports         []*receiptdomain.Import
	lineItems       []receiptdomain.LineItem
}

func newFakeReceiptRepo() *fakeReceiptRepo {
	return &fakeReceiptRepo{canonicalByHash: make(map[string]*receiptdomain.Import)}
}

func (f *fakeReceiptRepo) InsertImport(ctx context.Context, imp *receiptdomain.Import) error {
	f.imports = append(f.imports, imp)
	if !imp.IsDuplicate && imp.StatusValue == receiptdomain.StatusParsed {
		f.canonicalByHash[imp.HouseholdKey+"|"+imp.ContentHash] = imp
	}
	return nil
}

func (f *fakeReceiptRepo) FindCanonicalByHash(ctx context.Context, householdKey, contentHash string) (*receiptdomain.Import, error) {
	if imp, ok := f.canonicalByHash[householdKey+"|"+contentHash]; ok {
		return imp, nil
	}
	return nil, outbound.ErrNotFound
}

func (f *fakeReceiptRepo) InsertLineItems(ctx context.Context, items []receiptdomain.LineItem) error {
	f.lineItems = append(f.lineItems, items...)
	return nil
}

type fakeInvRepo struct {
	inserted []*invdomain.Item
}

func (f *fakeInvRepo) FindCandidates(ctx context.Context, householdKey string, tokens []string, limit int) ([]*invdomain.Item, error) {
	return nil, nil
}
func (f *fakeInvRepo) Insert(ctx context.Context, item *invdomain.Item) error {
	f.inserted = append(f.inserted, item)
	return nil
}
func (f *fakeInvRepo) IncrementUsage(ctx context.Context, itemID uuid.UUID, delta float64, lastUsedAt time.Time) error {
	return nil
}

func TestImport_FirstImportIsCanonicalAndParsed(t *testing.T) {
	receipts := newFakeReceiptRepo()
	inv := &fakeInvRepo{}
	svc := receiptapp.NewService(receipts, inv, &fakeOCR{text: "MILK $3.99\nBREAD $2.49"}, zap.NewNop())

	now := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)
	req := receiptapp.Request{HouseholdKey: "h1", Source: receiptdomain.SourceImageUpload}
	result, err := svc.Import(context.Background(), req, now)
	require.NoError(t, err)
	assert.False(t, result.Import.IsDuplicate)
	assert.Equal(t, receiptdomain.StatusParsed, result.Import.StatusValue)
}

func TestImport_SecondImportWithSameHashIsDuplicateAndSkipsInventory(t *testing.T) {
	receipts := newFakeReceiptRepo()
	inv := &fakeInvRepo{}
	vendor := "Safeway"
	date := "2026-01-20"
	svc := receiptapp.NewService(receipts, inv, &fakeOCR{text: "MILK $3.99\nBREAD $2.49"}, zap.NewNop())

	now := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)
	req := receiptapp.Request{HouseholdKey: "h1", Source: receiptdomain.SourceImageUpload, VendorNameHint: &vendor, PurchasedAtHint: &date}
	_, err := svc.Import(context.Background(), req, now)
	require.NoError(t, err)
	firstInsertCount := len(inv.inserted)

	svc2 := receiptapp.NewService(receipts, inv, &fakeOCR{text: "  milk   $3.99\n\n  bread   $2.49  "}, zap.NewNop())
	result2, err := svc2.Import(context.Background(), req, now)
	require.NoError(t, err)
	assert.True(t, result2.Import.IsDuplicate)
	assert.Len(t, inv.inserted, firstInsertCount) // unchanged
}

func TestImport_OCRFailureMarksImportFailed(t *testing.T) {
	receipts := newFakeReceiptRepo()
	inv := &fakeInvRepo{}
	svc := receiptapp.NewService(receipts, inv, &fakeOCR{err: assertErr{}}, zap.NewNop())
	req := receiptapp.Request{HouseholdKey: "h1", Source: receiptdomain.SourceImageUpload}
	result, err := svc.Import(context.Background(), req, time.Now())
	require.NoError(t, err)
	assert.Equal(t, receiptdomain.StatusFailed, result.Import.StatusValue)
}

type assertErr struct{}

func (assertErr) Error() string { return "ocr failure" }
