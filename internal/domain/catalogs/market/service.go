package market

import (
	"marketbill/internal/core/tx"
	"marketbill/internal/domain"
)

// Service provides business logic for the Market catalog.
type Service struct {
	*domain.CatalogService[*Market]
}

// NewService creates a new Market service.
func NewService(repo Repository, txm tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Market]{
			Repo:       repo,
			TxManager:  txm,
			EntityName: "market",
		}),
	}
}
