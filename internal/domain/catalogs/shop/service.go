package shop

import (
	"context"

	"marketbill/internal/core/id"
	"marketbill/internal/core/tx"
	"marketbill/internal/domain"
)

// MarketChecker is the part of the market catalog shops depend on.
type MarketChecker interface {
	Exists(ctx context.Context, id id.ID) (bool, error)
}

// Service provides business logic for the Shop catalog.
type Service struct {
	*domain.CatalogService[*Shop]
	repo    Repository
	markets MarketChecker
}

// NewService creates a new Shop service.
func NewService(repo Repository, markets MarketChecker, txm tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Shop]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "shop",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		markets:        markets,
	}
	base.Hooks().OnSave(svc.checkMarket)

	return svc
}

func (s *Service) checkMarket(ctx context.Context, sh *Shop) error {
	return domain.RequireExists(ctx, s.markets.Exists, "market", sh.MarketID)
}

// ListByMarket returns the market's shops ordered by id.
func (s *Service) ListByMarket(ctx context.Context, marketID id.ID, onlyActive bool) ([]*Shop, error) {
	return s.repo.ListByMarket(ctx, marketID, onlyActive)
}
