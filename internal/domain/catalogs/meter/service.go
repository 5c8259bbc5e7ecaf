package meter

import (
	"context"

	"marketbill/internal/core/id"
	"marketbill/internal/core/tx"
	"marketbill/internal/domain"
)

// ShopChecker is the part of the shop catalog meters depend on.
type ShopChecker interface {
	Exists(ctx context.Context, id id.ID) (bool, error)
}

// Service provides business logic for the Meter catalog.
type Service struct {
	*domain.CatalogService[*Meter]
	repo  Repository
	shops ShopChecker
}

// NewService creates a new Meter service.
func NewService(repo Repository, shops ShopChecker, txm tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Meter]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "meter",
	})

	svc := &Service{CatalogService: base, repo: repo, shops: shops}
	base.Hooks().OnSave(func(ctx context.Context, m *Meter) error {
		return domain.RequireExists(ctx, svc.shops.Exists, "shop", m.ShopID)
	})

	return svc
}

// ListByShop returns all meters of a shop.
func (s *Service) ListByShop(ctx context.Context, shopID id.ID) ([]*Meter, error) {
	return s.repo.ListByShop(ctx, shopID)
}
