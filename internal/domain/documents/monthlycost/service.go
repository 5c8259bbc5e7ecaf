package monthlycost

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"marketbill/internal/core/apperror"
	"marketbill/internal/core/id"
	"marketbill/internal/core/tx"
	"marketbill/internal/core/types"
	"marketbill/internal/domain"
	"marketbill/pkg/logger"
)

// AreaCalculator returns the billable area of a market under the configured policy.
type AreaCalculator interface {
	BillableArea(ctx context.Context, marketID id.ID, override decimal.NullDecimal) (decimal.Decimal, error)
}

// MarketChecker is the part of the market catalog monthly costs depend on.
type MarketChecker interface {
	Exists(ctx context.Context, id id.ID) (bool, error)
}

// Service provides business logic for monthly costs.
type Service struct {
	*domain.CatalogService[*MonthlyCost]
	repo    Repository
	markets MarketChecker
	area    AreaCalculator
	txm     tx.Manager
}

// NewService creates a new MonthlyCost service.
func NewService(repo Repository, markets MarketChecker, area AreaCalculator, txm tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*MonthlyCost]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "monthly cost",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		markets:        markets,
		area:           area,
		txm:            txm,
	}

	base.Hooks().On(domain.BeforeCreate, svc.prepare)
	base.Hooks().On(domain.BeforeUpdate, svc.guardUpdate)
	base.Hooks().On(domain.BeforeUpdate, svc.prepare)
	base.Hooks().On(domain.BeforeDelete, svc.guardDelete)

	return svc
}

func (s *Service) prepare(ctx context.Context, c *MonthlyCost) error {
	if err := domain.RequireExists(ctx, s.markets.Exists, "market", c.MarketID); err != nil {
		return err
	}
	area, err := s.area.BillableArea(ctx, c.MarketID, c.AreaOverride)
	if err != nil {
		return fmt.Errorf("billable area: %w", err)
	}
	c.BillingArea = area
	return nil
}

// guardUpdate rejects edits of locked records and keeps the lock flag out of updates.
func (s *Service) guardUpdate(ctx context.Context, c *MonthlyCost) error {
	stored, err := s.repo.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	if stored.Locked {
		return apperror.NewCostLocked(stored.PeriodLabel())
	}
	c.Locked = stored.Locked
	c.CreatedAt = stored.CreatedAt
	return nil
}

func (s *Service) guardDelete(ctx context.Context, c *MonthlyCost) error {
	if c.Locked {
		return apperror.NewCostLocked(c.PeriodLabel())
	}
	return nil
}

// GetForPeriod returns the cost record of a market for the month containing period.
func (s *Service) GetForPeriod(ctx context.Context, marketID id.ID, period time.Time) (*MonthlyCost, error) {
	return s.repo.GetByMarketAndPeriod(ctx, marketID, types.MonthStart(period))
}

// Lock freezes the record.
func (s *Service) Lock(ctx context.Context, costID id.ID) (*MonthlyCost, error) {
	return s.setLocked(ctx, costID, true)
}

// Unlock allows edits again.
func (s *Service) Unlock(ctx context.Context, costID id.ID) (*MonthlyCost, error) {
	return s.setLocked(ctx, costID, false)
}

func (s *Service) setLocked(ctx context.Context, costID id.ID, locked bool) (*MonthlyCost, error) {
	var result *MonthlyCost
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		c, err := s.GetByID(ctx, costID)
		if err != nil {
			return err
		}
		if c.Locked == locked {
			result = c
			return nil
		}
		if err := s.repo.SetLocked(ctx, costID, locked); err != nil {
			return fmt.Errorf("set locked: %w", err)
		}
		c.Locked = locked
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "monthly cost lock changed", "id", costID, "period", result.PeriodLabel(), "locked", locked)
	return result, nil
}
