package dto

// ReportScopeRequest selects the market and month of a report.
type ReportScopeRequest struct {
	MarketID string `form:"marketId" binding:"required"`
	Period   string `form:"period" binding:"required"`
}

// InvoiceTableRequest holds the query parameters of the invoice table.
type InvoiceTableRequest struct {
	ReportScopeRequest
	Status string `form:"status"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}
