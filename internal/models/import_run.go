package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ImportRun is the persisted summary of one reconciliation pass.
type ImportRun struct {
	ID         string                      `json:"id" gorm:"type:varchar(36);primaryKey"`
	Source     string                      `json:"source"`
	Status     RunStatus                   `json:"status" gorm:"not null;default:RUNNING"`
	Created    int                         `json:"created"`
	Updated    int                         `json:"updated"`
	Errors     datatypes.JSONSlice[string] `json:"errors"`
	Failure    string                      `json:"failure,omitempty"`
	StartedAt  time.Time                   `json:"started_at"`
	FinishedAt *time.Time                  `json:"finished_at,omitempty"`
}

type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
)

func (r *ImportRun) TableName() string {
	return "import_runs"
}

func (r *ImportRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
