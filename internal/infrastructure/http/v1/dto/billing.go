package dto

// ComputeRequest holds the query parameters of POST /billing/compute.
type ComputeRequest struct {
	MarketID string `form:"marketId" binding:"required"`
	Period   string `form:"period" binding:"required"`
	Force    bool   `form:"force"`
}

// RunHistoryRequest holds the query parameters of GET /billing/runs.
type RunHistoryRequest struct {
	MarketID string `form:"marketId" binding:"required"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=200"`
}
