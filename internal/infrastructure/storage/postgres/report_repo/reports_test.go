package report_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketbill/internal/core/id"
	"marketbill/internal/domain/reports"
)

func TestReportRepo_CountQuery(t *testing.T) {
	repo := NewReportRepo(nil)
	marketID := id.New()

	sqlStr, args, err := repo.countQuery(reports.InvoiceTableFilter{
		MarketID: marketID,
		Period:   time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC),
		Status:   "PAID",
	}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT COUNT(*) FROM invoices i JOIN shops s ON s.id = i.shop_id WHERE i.period = $1 AND s.market_id = $2 AND i.status = $3",
		sqlStr)
	assert.Equal(t, []any{time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), marketID, "PAID"}, args)
}

func TestReportRepo_TableQueryJoinsItemAggregates(t *testing.T) {
	repo := NewReportRepo(nil)

	sqlStr, _, err := repo.tableQuery(reports.InvoiceTableFilter{
		MarketID: id.New(),
		Period:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sqlStr, "LEFT JOIN LATERAL")
	assert.Contains(t, sqlStr, "ag.has_override")
	assert.NotContains(t, sqlStr, "i.status =")
}

func TestReportRepo_KPIQuery(t *testing.T) {
	repo := NewReportRepo(nil)

	sqlStr, args, err := repo.kpiQuery(id.New(), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sqlStr, "COUNT(*) AS invoice_count")
	assert.Contains(t, sqlStr, "AS special_cost FROM invoices i JOIN shops s")
	assert.Len(t, args, 2)
}
