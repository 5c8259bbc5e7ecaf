// Package document_repo provides PostgreSQL implementations for the period documents:
// readings, monthly costs, invoices and adjustments.
package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"marketbill/internal/infrastructure/storage/postgres"
	"marketbill/internal/infrastructure/storage/postgres/catalog_repo"
)

// BaseDocumentRepo adds period lookups to the catalog base.
type BaseDocumentRepo[T any] struct {
	*catalog_repo.BaseCatalogRepo[T]
}

// NewBaseDocumentRepo creates a new base document repository ordered by period, newest first.
func NewBaseDocumentRepo[T any](
	txm *postgres.TxManager,
	tableName string,
	entityName string,
	selectCols []string,
	newFn func() T,
) *BaseDocumentRepo[T] {
	base := catalog_repo.NewBaseCatalogRepo(txm, tableName, entityName, selectCols, newFn).
		WithDefaultOrder("period DESC")
	return &BaseDocumentRepo[T]{BaseCatalogRepo: base}
}

// GetBy returns the single row matching eq; key names it in the not-found error.
func (r *BaseDocumentRepo[T]) GetBy(ctx context.Context, eq squirrel.Eq, key any) (T, error) {
	return r.FindOne(ctx, r.Select().Where(eq).Limit(1), key)
}
