package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Ingestion run statuses.
const (
	RunStatusRunning = "RUNNING"
	RunStatusSuccess = "SUCCESS"
	RunStatusPartial = "PARTIAL"
	RunStatusFailed  = "FAILED"
)

// IngestionRun records one batch ingestion execution and its counters.
type IngestionRun struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Status     string         `gorm:"not null" json:"status"`
	StartedAt  time.Time      `gorm:"not null" json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Stats      datatypes.JSON `gorm:"type:jsonb" json:"stats"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the IngestionRun model.
func (IngestionRun) TableName() string {
	return "ingestion_runs"
}
