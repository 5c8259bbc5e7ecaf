package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"marketbill/internal/core/apperror"
	"marketbill/internal/core/id"
	"marketbill/internal/core/tx"
	"marketbill/internal/core/types"
	"marketbill/internal/domain"
	"marketbill/internal/domain/catalogs/meter"
	"marketbill/internal/domain/catalogs/shop"
	"marketbill/internal/domain/catalogs/tariff"
	"marketbill/internal/domain/documents/invoice"
	"marketbill/internal/domain/documents/monthlycost"
	"marketbill/internal/domain/documents/reading"
	"marketbill/pkg/logger"
)

var tracer = otel.Tracer("marketbill/billing")

// Precondition messages reported in RunSummary.Errors; RunSummary.Code carries the matching apperror code.
const (
	msgInputsMissing = "Period inputs not found. Please set inputs first."
	msgTariffMissing = "No electricity tariff found. Please configure tariff first."
	msgNoShops       = "No shops found."
	msgZeroArea      = "Market total sqft is zero. Cannot compute bills."
)

// --- Ports ---

// ShopSource lists the shops of a market.
type ShopSource interface {
	ListByMarket(ctx context.Context, marketID id.ID, onlyActive bool) ([]*shop.Shop, error)
}

// MeterSource lists the meters installed in a shop.
type MeterSource interface {
	ListByShop(ctx context.Context, shopID id.ID) ([]*meter.Meter, error)
}

// ReadingSource loads the reading of a meter for a billing month.
type ReadingSource interface {
	GetByMeterAndPeriod(ctx context.Context, meterID id.ID, period time.Time) (*reading.Reading, error)
}

// TariffSource lists the tariffs of a utility.
type TariffSource interface {
	ListByUtility(ctx context.Context, utility domain.UtilityType) ([]*tariff.Tariff, error)
}

// CostSource loads the monthly cost inputs of a market.
type CostSource interface {
	GetByMarketAndPeriod(ctx context.Context, marketID id.ID, period time.Time) (*monthlycost.MonthlyCost, error)
}

// LockCounter counts locked invoices of the given shops for a month.
type LockCounter interface {
	CountLocked(ctx context.Context, period time.Time, shopIDs []id.ID) (int, error)
}

// InvoiceWriter materializes a computed charge as an invoice.
type InvoiceWriter interface {
	Upsert(ctx context.Context, req invoice.UpsertRequest) (invoice.UpsertResult, error)
}

// RunRecorder keeps an audit trail of billing runs.
type RunRecorder interface {
	RecordRun(ctx context.Context, summary *RunSummary) error
}

// RunObserver receives every finished run (metrics).
type RunObserver interface {
	ObserveRun(summary *RunSummary)
}

// Deps are the collaborators of Service. Events, Recorder and Observer are optional.
type Deps struct {
	Shops     ShopSource
	Meters    MeterSource
	Readings  ReadingSource
	Tariffs   TariffSource
	Costs     CostSource
	Locks     LockCounter
	Invoices  InvoiceWriter
	TxManager tx.Manager

	Events   domain.EventPublisher
	Recorder RunRecorder
	Observer RunObserver
}

// Config holds billing policies.
type Config struct {
	AreaPolicy   AreaPolicy
	TariffPolicy TariffPolicy
}

// Service runs billing for one market and period at a time.
type Service struct {
	deps Deps
	cfg  Config
	now  func() time.Time
}

// NewService creates a billing service.
func NewService(deps Deps, cfg Config) *Service {
	if deps.Events == nil {
		deps.Events = domain.NopPublisher{}
	}
	if cfg.AreaPolicy == "" {
		cfg.AreaPolicy = AreaActiveOnly
	}
	if cfg.TariffPolicy == "" {
		cfg.TariffPolicy = TariffLatest
	}
	return &Service{deps: deps, cfg: cfg, now: func() time.Time { return time.Now().UTC() }}
}

// --- Run types ---

// RunRequest identifies a billing run.
type RunRequest struct {
	MarketID id.ID
	// Period is "YYYY-MM" or "YYYY-MM-DD"; the day is ignored.
	Period string
	Force  bool
}

// ShopStatus is the result of billing one shop.
type ShopStatus string

const (
	ShopProcessed ShopStatus = "processed"
	ShopSkipped   ShopStatus = "skipped"
	ShopFailed    ShopStatus = "failed"
)

// ShopOutcome is reported for every eligible shop.
type ShopOutcome struct {
	ShopID    id.ID           `json:"shopId"`
	ShopCode  string          `json:"shopCode"`
	Status    ShopStatus      `json:"status"`
	Reason    string          `json:"reason,omitempty"`
	InvoiceID *id.ID          `json:"invoiceId,omitempty"`
	Revision  int             `json:"revision,omitempty"`
	Total     decimal.Decimal `json:"total"`
}

// RunSummary is the result of a billing run.
type RunSummary struct {
	Success        bool          `json:"success"`
	MarketID       id.ID         `json:"marketId"`
	Period         string        `json:"period"`
	Force          bool          `json:"force"`
	ProcessedCount int           `json:"processedCount"`
	SkippedCount   int           `json:"skippedCount"`
	Warnings       []string      `json:"warnings"`
	Errors         []string      `json:"errors"`
	Code           string        `json:"code,omitempty"`
	Shops          []ShopOutcome `json:"shops"`
	StartedAt      time.Time     `json:"startedAt"`
	DurationMs     int64         `json:"durationMs"`
}

func (s *RunSummary) fail(code, msg string) {
	s.Success = false
	s.Code = code
	s.Errors = append(s.Errors, msg)
}

func (s *RunSummary) add(o ShopOutcome, warning string) {
	s.Shops = append(s.Shops, o)
	if o.Status == ShopProcessed {
		s.ProcessedCount++
	} else {
		s.SkippedCount++
	}
	if warning != "" {
		s.Warnings = append(s.Warnings, warning)
	}
}

// errPrecondition stops a run without writing anything.
type errPrecondition struct{ code, msg string }

func (e errPrecondition) Error() string { return e.msg }

// --- Run ---

// Run computes and stores invoices for every eligible shop of the market.
// Precondition failures are reported in the summary with Success=false and a nil error;
// a non-nil error means the request was invalid or storage failed.
func (s *Service) Run(ctx context.Context, req RunRequest) (*RunSummary, error) {
	if id.IsNil(req.MarketID) {
		return nil, apperror.NewValidation("marketId is required").WithDetail("field", "marketId")
	}
	period, err := types.ParsePeriod(req.Period)
	if err != nil {
		return nil, apperror.NewValidation(err.Error()).WithDetail("field", "period")
	}

	ctx, span := tracer.Start(ctx, "billing.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("market.id", req.MarketID.String()),
		attribute.String("billing.period", types.FormatPeriod(period)),
		attribute.Bool("billing.force", req.Force),
	)

	summary := &RunSummary{
		MarketID:  req.MarketID,
		Period:    types.FormatPeriod(period),
		Force:     req.Force,
		Warnings:  []string{},
		Errors:    []string{},
		Shops:     []ShopOutcome{},
		StartedAt: s.now(),
	}
	logger.Info(ctx, "billing run started", "market_id", req.MarketID, "period", summary.Period, "force", req.Force)

	err = s.deps.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.run(ctx, period, req, summary)
	})

	var pre errPrecondition
	switch {
	case errors.As(err, &pre):
		summary.Shops = []ShopOutcome{}
		summary.ProcessedCount, summary.SkippedCount = 0, 0
		summary.Warnings = []string{}
		summary.fail(pre.code, pre.msg)
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error(ctx, "billing run failed", "market_id", req.MarketID, "period", summary.Period, "error", err)
		return nil, err
	}

	summary.DurationMs = s.now().Sub(summary.StartedAt).Milliseconds()
	s.finish(ctx, summary)
	return summary, nil
}

func (s *Service) run(ctx context.Context, period time.Time, req RunRequest, summary *RunSummary) error {
	cost, err := s.deps.Costs.GetByMarketAndPeriod(ctx, req.MarketID, period)
	if apperror.IsNotFound(err) {
		return errPrecondition{apperror.CodeInputsMissing, msgInputsMissing}
	}
	if err != nil {
		return fmt.Errorf("load monthly cost: %w", err)
	}

	tariffs, err := s.deps.Tariffs.ListByUtility(ctx, domain.UtilityElectric)
	if err != nil {
		return fmt.Errorf("load tariffs: %w", err)
	}
	electric, err := SelectElectricTariff(tariffs, period, s.cfg.TariffPolicy)
	if errors.Is(err, ErrNoTariff) {
		return errPrecondition{apperror.CodeTariffMissing, msgTariffMissing}
	}
	if err != nil {
		return err
	}

	shops, err := s.eligibleShops(ctx, req.MarketID)
	if err != nil {
		return err
	}
	if len(shops) == 0 {
		return errPrecondition{apperror.CodeNoBillableArea, msgNoShops}
	}

	shopIDs := make([]id.ID, 0, len(shops))
	for _, sh := range shops {
		shopIDs = append(shopIDs, sh.ID)
	}
	locked, err := s.deps.Locks.CountLocked(ctx, period, shopIDs)
	if err != nil {
		return fmt.Errorf("count locked invoices: %w", err)
	}
	if locked > 0 && !req.Force {
		return errPrecondition{apperror.CodeInvoiceLocked, fmt.Sprintf("%d invoices are locked. Use force=true to recompute.", locked)}
	}

	rates, err := DeriveMarketRates(cost, shops, electric)
	if errors.Is(err, ErrNonPositiveArea) {
		return errPrecondition{apperror.CodeNoBillableArea, msgZeroArea}
	}
	if err != nil {
		return err
	}

	for _, sh := range shops {
		outcome, warning := s.billShop(ctx, sh, period, req, rates)
		summary.add(outcome, warning)
	}
	summary.Success = true

	return s.deps.Events.Publish(ctx, domain.Event{
		AggregateType: "market",
		AggregateID:   req.MarketID,
		EventType:     domain.EventBillingRunCompleted,
		Payload: map[string]any{
			"marketId":       req.MarketID,
			"period":         summary.Period,
			"processedCount": summary.ProcessedCount,
			"skippedCount":   summary.SkippedCount,
		},
	})
}

func (s *Service) eligibleShops(ctx context.Context, marketID id.ID) ([]*shop.Shop, error) {
	shops, err := s.deps.Shops.ListByMarket(ctx, marketID, s.cfg.AreaPolicy == AreaActiveOnly)
	if err != nil {
		return nil, fmt.Errorf("load shops: %w", err)
	}
	return EligibleShops(shops, s.cfg.AreaPolicy), nil
}

// billShop bills one shop inside a savepoint so its failure leaves the run usable.
func (s *Service) billShop(ctx context.Context, sh *shop.Shop, period time.Time, req RunRequest, rates MarketRates) (ShopOutcome, string) {
	outcome := ShopOutcome{ShopID: sh.ID, ShopCode: sh.Label(), Status: ShopSkipped, Total: decimal.Zero}
	var warning string

	err := s.deps.TxManager.RunInSavepoint(ctx, func(ctx context.Context) error {
		meters, err := s.deps.Meters.ListByShop(ctx, sh.ID)
		if err != nil {
			return fmt.Errorf("load meters: %w", err)
		}
		m := meter.BillingMeter(meters)
		if m == nil {
			outcome.Reason = "no meter"
			warning = fmt.Sprintf("Shop %s has no meter. Skipped.", sh.Label())
			return nil
		}

		rd, err := s.deps.Readings.GetByMeterAndPeriod(ctx, m.ID, period)
		if apperror.IsNotFound(err) {
			outcome.Reason = "no reading"
			warning = fmt.Sprintf("Shop %s has no reading. Skipped.", sh.Label())
			return nil
		}
		if err != nil {
			return fmt.Errorf("load reading: %w", err)
		}

		charge := ComputeShopCharge(sh, rd, rates)
		res, err := s.deps.Invoices.Upsert(ctx, invoice.UpsertRequest{
			Period: period,
			ShopID: sh.ID,
			Lines:  charge.Lines,
			Force:  req.Force,
			Basis: invoice.Basis{
				MarketID:        req.MarketID,
				ReadingID:       rd.ID,
				MeterID:         m.ID,
				TariffID:        rates.Tariff.ID,
				Consumption:     rd.Consumption,
				ElectricityRate: rates.ElectricityRate,
				ShopArea:        sh.Area(),
				TotalArea:       rates.TotalArea,
				AreaRates:       rates.RateMap(),
			},
		})
		if err != nil {
			return err
		}

		invoiceID := res.Invoice.ID
		outcome.InvoiceID = &invoiceID
		outcome.Revision = res.Invoice.Revision
		outcome.Total = res.Invoice.Total
		if res.Skipped() {
			outcome.Reason = "locked"
			return nil
		}

		outcome.Status = ShopProcessed
		return s.deps.Events.Publish(ctx, domain.Event{
			AggregateType: "invoice",
			AggregateID:   invoiceID,
			EventType:     domain.EventInvoiceMaterialized,
			Payload: map[string]any{
				"invoiceId": invoiceID,
				"shopId":    sh.ID,
				"period":    types.FormatPeriod(period),
				"total":     res.Invoice.Total.StringFixed(types.MoneyScale),
				"revision":  res.Invoice.Revision,
				"outcome":   string(res.Outcome),
			},
		})
	})
	if err != nil {
		outcome = ShopOutcome{ShopID: sh.ID, ShopCode: sh.Label(), Status: ShopFailed, Reason: err.Error(), Total: decimal.Zero}
		warning = fmt.Sprintf("Error processing shop %s: %s", sh.Label(), err.Error())
		logger.Warn(ctx, "shop billing failed", "shop_id", sh.ID, "shop_code", sh.Code, "error", err)
	} else if outcome.Status == ShopSkipped {
		logger.Debug(ctx, "shop skipped", "shop_id", sh.ID, "shop_code", sh.Code, "reason", outcome.Reason)
	}
	return outcome, warning
}

func (s *Service) finish(ctx context.Context, summary *RunSummary) {
	logger.Info(ctx, "billing run finished",
		"market_id", summary.MarketID,
		"period", summary.Period,
		"success", summary.Success,
		"processed", summary.ProcessedCount,
		"skipped", summary.SkippedCount,
		"errors", summary.Errors,
		"duration_ms", summary.DurationMs,
	)

	if s.deps.Observer != nil {
		s.deps.Observer.ObserveRun(summary)
	}
	if s.deps.Recorder != nil {
		if err := s.deps.Recorder.RecordRun(context.WithoutCancel(ctx), summary); err != nil {
			logger.Warn(ctx, "record billing run failed", "error", err)
		}
	}
}

// BillableArea returns the area a market's pools are spread over: the override
// when set, otherwise the summed area of the eligible shops.
func (s *Service) BillableArea(ctx context.Context, marketID id.ID, override decimal.NullDecimal) (decimal.Decimal, error) {
	if override.Valid {
		return override.Decimal, nil
	}
	shops, err := s.eligibleShops(ctx, marketID)
	if err != nil {
		return decimal.Zero, err
	}
	return TotalBillableArea(shops, decimal.NullDecimal{}), nil
}

// Policies returns the configured policies.
func (s *Service) Policies() Config {
	return s.cfg
}
