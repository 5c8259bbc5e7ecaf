package tariff

import (
	"context"

	"marketbill/internal/core/tx"
	"marketbill/internal/domain"
)

// Service provides business logic for tariffs.
type Service struct {
	*domain.CatalogService[*Tariff]
	repo Repository
}

// NewService creates a new Tariff service.
func NewService(repo Repository, txm tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Tariff]{
			Repo:       repo,
			TxManager:  txm,
			EntityName: "tariff",
		}),
		repo: repo,
	}
}

// ListByUtility returns tariffs of one utility, newest first.
func (s *Service) ListByUtility(ctx context.Context, utility domain.UtilityType) ([]*Tariff, error) {
	return s.repo.ListByUtility(ctx, utility)
}
