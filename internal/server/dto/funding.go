package dto

import (
	"biotech-funding-tracker/internal/entity"
)

// FundingListResponse is the bulk read response. Count is the TOTAL dataset
// size, not the number of returned rows.
type FundingListResponse struct {
	Rows  []entity.FundingEvent `json:"rows"`
	Count int64                 `json:"count"`
}

// QueryRequest is the natural-language query request body.
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryResponse is the natural-language query response. Count is the number
// of matching rows; Rows may be capped below it.
type QueryResponse struct {
	Answer string                `json:"answer"`
	Rows   []entity.FundingEvent `json:"rows"`
	Count  int                   `json:"count"`
}

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the health check response body.
type HealthResponse struct {
	OK bool `json:"ok"`
}
