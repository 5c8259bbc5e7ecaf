package reading

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"marketbill/internal/core/id"
	"marketbill/internal/core/tx"
	"marketbill/internal/core/types"
	"marketbill/internal/domain"
)

// MeterMultiplier resolves the multiplier configured on a meter.
type MeterMultiplier interface {
	Multiplier(ctx context.Context, meterID id.ID) (decimal.Decimal, error)
}

// Service provides business logic for readings.
type Service struct {
	*domain.CatalogService[*Reading]
	repo   Repository
	meters MeterMultiplier
}

// NewService creates a new Reading service.
func NewService(repo Repository, meters MeterMultiplier, txm tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Reading]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "reading",
	})

	svc := &Service{CatalogService: base, repo: repo, meters: meters}
	base.Hooks().OnSave(svc.derive)

	return svc
}

// derive resolves the multiplier from the meter and recomputes consumption.
func (s *Service) derive(ctx context.Context, r *Reading) error {
	if r.Multiplier.IsZero() {
		m, err := s.meters.Multiplier(ctx, r.MeterID)
		if err != nil {
			return err
		}
		r.Multiplier = m
	}
	r.Compute()
	return nil
}

// GetForPeriod returns the reading of a meter for the month containing period.
func (s *Service) GetForPeriod(ctx context.Context, meterID id.ID, period time.Time) (*Reading, error) {
	return s.repo.GetByMeterAndPeriod(ctx, meterID, types.MonthStart(period))
}
