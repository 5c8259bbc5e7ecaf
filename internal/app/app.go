// Package app assembles repositories and domain services for one storage backend.
package app

import (
	"fmt"

	"marketbill/internal/core/tx"
	"marketbill/internal/domain"
	"marketbill/internal/domain/billing"
	"marketbill/internal/domain/catalogs/market"
	"marketbill/internal/domain/catalogs/meter"
	"marketbill/internal/domain/catalogs/shop"
	"marketbill/internal/domain/catalogs/tariff"
	"marketbill/internal/domain/documents/invoice"
	"marketbill/internal/domain/documents/monthlycost"
	"marketbill/internal/domain/documents/reading"
	"marketbill/internal/domain/reports"
	"marketbill/internal/infrastructure/storage/memory"
	"marketbill/internal/infrastructure/storage/postgres"
	"marketbill/internal/infrastructure/storage/postgres/catalog_repo"
	"marketbill/internal/infrastructure/storage/postgres/document_repo"
	"marketbill/internal/infrastructure/storage/postgres/report_repo"
)

// RunLog stores and lists billing runs.
type RunLog interface {
	billing.RunRecorder
	billing.RunHistory
}

// Storage is the set of repositories of one backend.
type Storage struct {
	TxManager   tx.ReadOnlyManager
	Markets     market.Repository
	Shops       shop.Repository
	Meters      meter.Repository
	Tariffs     tariff.Repository
	Readings    reading.Repository
	Costs       monthlycost.Repository
	Invoices    invoice.Repository
	Adjustments invoice.AdjustmentRepository
	Reports     reports.Repository
	Events      domain.EventPublisher
	Runs        RunLog
}

// MemoryStorage exposes an in-process store.
func MemoryStorage(store *memory.Store) Storage {
	return Storage{
		TxManager:   store.TxManager(),
		Markets:     store.Markets(),
		Shops:       store.Shops(),
		Meters:      store.Meters(),
		Tariffs:     store.Tariffs(),
		Readings:    store.Readings(),
		Costs:       store.MonthlyCosts(),
		Invoices:    store.Invoices(),
		Adjustments: store.Adjustments(),
		Reports:     store.Reports(),
		Events:      store.Publisher(),
		Runs:        store.Runs(),
	}
}

// PostgresStorage exposes the PostgreSQL repositories. Events go to the outbox table.
func PostgresStorage(txm *postgres.TxManager) (Storage, error) {
	audit, err := postgres.NewRunAudit(txm)
	if err != nil {
		return Storage{}, fmt.Errorf("create run audit: %w", err)
	}
	return Storage{
		TxManager:   txm,
		Markets:     catalog_repo.NewMarketRepo(txm),
		Shops:       catalog_repo.NewShopRepo(txm),
		Meters:      catalog_repo.NewMeterRepo(txm),
		Tariffs:     catalog_repo.NewTariffRepo(txm),
		Readings:    document_repo.NewReadingRepo(txm),
		Costs:       document_repo.NewMonthlyCostRepo(txm),
		Invoices:    document_repo.NewInvoiceRepo(txm),
		Adjustments: document_repo.NewAdjustmentRepo(txm),
		Reports:     report_repo.NewReportRepo(txm),
		Events:      postgres.NewOutboxPublisher(txm),
		Runs:        audit,
	}, nil
}

// Services are the domain services served over HTTP.
type Services struct {
	Markets  *market.Service
	Shops    *shop.Service
	Meters   *meter.Service
	Tariffs  *tariff.Service
	Readings *reading.Service
	Costs    *monthlycost.Service
	Invoices *invoice.Service
	Billing  *billing.Service
	Reports  *reports.Service
	Runs     billing.RunHistory
}

// NewServices wires the domain services over st. observer may be nil.
func NewServices(st Storage, policies billing.Config, observer billing.RunObserver) *Services {
	s := &Services{
		Markets:  market.NewService(st.Markets, st.TxManager),
		Tariffs:  tariff.NewService(st.Tariffs, st.TxManager),
		Invoices: invoice.NewService(st.Invoices, st.Adjustments, st.TxManager),
		Runs:     st.Runs,
	}
	s.Shops = shop.NewService(st.Shops, s.Markets, st.TxManager)
	s.Meters = meter.NewService(st.Meters, s.Shops, st.TxManager)
	s.Readings = reading.NewService(st.Readings, st.Meters, st.TxManager)

	deps := billing.Deps{
		Shops:     st.Shops,
		Meters:    st.Meters,
		Readings:  st.Readings,
		Tariffs:   st.Tariffs,
		Costs:     st.Costs,
		Locks:     st.Invoices,
		Invoices:  invoice.NewMaterializer(st.Invoices, st.TxManager),
		TxManager: st.TxManager,
		Events:    st.Events,
		Recorder:  st.Runs,
		Observer:  observer,
	}
	s.Billing = billing.NewService(deps, policies)

	s.Costs = monthlycost.NewService(st.Costs, s.Markets, s.Billing, st.TxManager)
	s.Reports = reports.NewService(reports.Deps{
		Repo:      st.Reports,
		Shops:     st.Shops,
		Meters:    st.Meters,
		Readings:  st.Readings,
		Tariffs:   st.Tariffs,
		Costs:     st.Costs,
		Invoices:  st.Invoices,
		TxManager: st.TxManager,
	}, s.Billing.Policies())
	return s
}
