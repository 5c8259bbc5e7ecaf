// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"marketbill/internal/core/id"
	"marketbill/internal/core/types"
	"marketbill/internal/domain/reports"
	"marketbill/internal/infrastructure/storage/postgres"
)

// itemAggregates sums the items of each invoice per charge type.
const itemAggregates = `LEFT JOIN LATERAL (
	SELECT
		COALESCE(SUM(it.amount) FILTER (WHERE it.item_type = 'ELECTRICITY'), 0) AS electricity_amount,
		COALESCE(SUM(it.quantity) FILTER (WHERE it.item_type = 'ELECTRICITY'), 0) AS electricity_units,
		COALESCE(SUM(it.amount) FILTER (WHERE it.item_type = 'AC'), 0) AS ac_amount,
		COALESCE(SUM(it.amount) FILTER (WHERE it.item_type = 'SERVICE'), 0) AS service_amount,
		COALESCE(SUM(it.amount) FILTER (WHERE it.item_type = 'GENERATOR'), 0) AS generator_amount,
		COALESCE(SUM(it.amount) FILTER (WHERE it.item_type = 'SPECIAL'), 0) AS special_amount,
		COALESCE(BOOL_OR(it.is_overridden), FALSE) AS has_override
	FROM invoice_items it
	WHERE it.invoice_id = i.id
) ag ON TRUE`

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ReportRepo) scope(b squirrel.SelectBuilder, marketID id.ID, period time.Time) squirrel.SelectBuilder {
	return b.From("invoices i").
		Join("shops s ON s.id = i.shop_id").
		Where(squirrel.Eq{"s.market_id": marketID, "i.period": types.MonthStart(period)})
}

func (r *ReportRepo) kpiQuery(marketID id.ID, period time.Time) squirrel.SelectBuilder {
	return r.scope(r.builder.Select(
		"COUNT(*) AS invoice_count",
		"COALESCE(SUM(i.total), 0) AS total_amount",
		"COALESCE(SUM(ag.electricity_units), 0) AS electricity_units",
		"COALESCE(SUM(ag.electricity_amount), 0) AS electricity_amount",
		"COALESCE(SUM(ag.ac_amount), 0) AS ac_cost",
		"COALESCE(SUM(ag.service_amount), 0) AS service_cost",
		"COALESCE(SUM(ag.generator_amount), 0) AS generator_cost",
		"COALESCE(SUM(ag.special_amount), 0) AS special_cost",
	), marketID, period).JoinClause(itemAggregates)
}

// KPIs aggregates invoices of the market's shops for one month.
func (r *ReportRepo) KPIs(ctx context.Context, marketID id.ID, period time.Time) (reports.KPIs, error) {
	var k reports.KPIs

	sqlStr, args, err := r.kpiQuery(marketID, period).ToSql()
	if err != nil {
		return k, fmt.Errorf("build kpi query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &k, sqlStr, args...); err != nil {
		return k, fmt.Errorf("query kpis: %w", err)
	}
	return k, nil
}

func (r *ReportRepo) tableQuery(filter reports.InvoiceTableFilter) squirrel.SelectBuilder {
	q := r.scope(r.builder.Select(
		"i.id AS invoice_id",
		"s.id AS shop_id",
		"s.code AS shop_code",
		"s.name AS shop_name",
		"ag.electricity_amount",
		"ag.ac_amount",
		"ag.service_amount",
		"ag.generator_amount",
		"ag.special_amount",
		"i.total",
		"i.status",
		"i.locked",
		"i.revision",
		"ag.has_override",
	), filter.MarketID, filter.Period).JoinClause(itemAggregates)

	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"i.status": filter.Status})
	}
	return q
}

func (r *ReportRepo) countQuery(filter reports.InvoiceTableFilter) squirrel.SelectBuilder {
	q := r.scope(r.builder.Select("COUNT(*)"), filter.MarketID, filter.Period)
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"i.status": filter.Status})
	}
	return q
}

// InvoiceTable returns one page of invoice rows, ordered by shop code.
func (r *ReportRepo) InvoiceTable(ctx context.Context, filter reports.InvoiceTableFilter) (*reports.InvoicePage, error) {
	querier := r.txm.GetQuerier(ctx)

	countSQL, countArgs, err := r.countQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count invoices: %w", err)
	}

	q := r.tableQuery(filter).OrderBy("s.code ASC", "i.id ASC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build table query: %w", err)
	}

	rows := make([]reports.InvoiceRow, 0)
	if err := pgxscan.Select(ctx, querier, &rows, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("query invoice table: %w", err)
	}

	return &reports.InvoicePage{
		Items:      rows,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}
