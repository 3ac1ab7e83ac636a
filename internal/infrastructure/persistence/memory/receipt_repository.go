package memory

import (
	"context"
	"sync"

	"github.com/dinnerarbiter/core/internal/domain/receipt"
	"github.com/dinnerarbiter/core/internal/ports/outbound"
)

// ReceiptRepository implements outbound.ReceiptRepository over
// mutex-guarded slices, with a secondary index for canonical-by-hash
// lookups used by the dedupe check.
type ReceiptRepository struct {
	mutex           sync.Mutex
	imports         []*receipt.Import
	lineItems       []receipt.LineItem
	canonicalByHash map[string]*receipt.Import
}

func NewReceiptRepository() *ReceiptRepository {
	return &ReceiptRepository{canonicalByHash: make(map[string]*receipt.Import)}
}

func (r *ReceiptRepository) InsertImport(ctx context.Context, imp *receipt.Import) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.imports = append(r.imports, imp)
	if !imp.IsDuplicate && imp.StatusValue == receipt.StatusParsed {
		r.canonicalByHash[canonicalKey(imp.HouseholdKey, imp.ContentHash)] = imp
	}
	return nil
}

func (r *ReceiptRepository) FindCanonicalByHash(ctx context.Context, householdKey, contentHash string) (*receipt.Import, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	imp, ok := r.canonicalByHash[canonicalKey(householdKey, contentHash)]
	if !ok {
		return nil, outbound.ErrNotFound
	}
	return imp, nil
}

func (r *ReceiptRepository) InsertLineItems(ctx context.Context, items []receipt.LineItem) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.lineItems = append(r.lineItems, items...)
	return nil
}

func canonicalKey(householdKey, contentHash string) string {
	return householdKey + "|" + contentHash
}
