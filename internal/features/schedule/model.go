package schedule

import (
	"time"

	"go-broker/internal/features/execution"
	"go-broker/internal/features/recurrence"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
	OutcomeRunning Outcome = "running"
)

type Trigger string

const (
	TriggerSchedule Trigger = "schedule"
	TriggerManual   Trigger = "manual"
)

// ReportSchedule delivers a saved report to recipients on a recurring cadence
type ReportSchedule struct {
	ID                   primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	TenantID             string               `json:"tenant_id" bson:"tenant_id"`
	ReportID             string               `json:"report_id" bson:"report_id"`
	Name                 string               `json:"name" bson:"name"`
	Frequency            recurrence.Frequency `json:"frequency" bson:"frequency"`
	RecurrenceExpression string               `json:"recurrence_expression,omitempty" bson:"recurrence_expression,omitempty"`
	Recipients           []string             `json:"recipients" bson:"recipients"`
	OutputFormat         execution.Format     `json:"output_format" bson:"output_format"`
	Status               Status               `json:"status" bson:"status"`
	// AnchorAt fixes the cadence; due times are anchor + k steps.
	AnchorAt       time.Time  `json:"anchor_at" bson:"anchor_at"`
	NextDueAt      *time.Time `json:"next_due_at" bson:"next_due_at"`
	LastRunAt      *time.Time `json:"last_run_at,omitempty" bson:"last_run_at,omitempty"`
	LastRunOutcome Outcome    `json:"last_run_outcome,omitempty" bson:"last_run_outcome,omitempty"`
	LastError      string     `json:"last_error,omitempty" bson:"last_error,omitempty"`
	// RunningDueAt is the due time a scheduled run claimed; unset once it completes.
	RunningDueAt *time.Time `json:"-" bson:"running_due_at,omitempty"`
	Warnings       []string   `json:"warnings,omitempty" bson:"warnings,omitempty"`
	CreatedBy      string     `json:"created_by" bson:"created_by"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" bson:"updated_at"`
}

// ScheduleRun represents a single execution of a schedule
type ScheduleRun struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID   string             `json:"tenant_id" bson:"tenant_id"`
	ScheduleID string             `json:"schedule_id" bson:"schedule_id"`
	ReportID   string             `json:"report_id" bson:"report_id"`
	Trigger    Trigger            `json:"trigger" bson:"trigger"`
	DueAt      *time.Time         `json:"due_at,omitempty" bson:"due_at,omitempty"` // nil for manual runs
	StartedAt  time.Time          `json:"started_at" bson:"started_at"`
	FinishedAt *time.Time         `json:"finished_at,omitempty" bson:"finished_at,omitempty"`
	Outcome    Outcome            `json:"outcome" bson:"outcome"`
	RowCount   int                `json:"row_count" bson:"row_count"`
	TotalCount int64              `json:"total_count" bson:"total_count"`
	Error      string             `json:"error,omitempty" bson:"error,omitempty"`
}

type ScheduleRequest struct {
	ReportID             string               `json:"report_id"`
	Name                 string               `json:"name"`
	Frequency            recurrence.Frequency `json:"frequency"`
	RecurrenceExpression string               `json:"recurrence_expression"`
	Recipients           []string             `json:"recipients"`
	OutputFormat         execution.Format     `json:"output_format"`
}

// RunEvent is pushed to live listeners when a run starts or finishes
type RunEvent struct {
	Type       string    `json:"type"` // run.started, run.finished
	ScheduleID string    `json:"schedule_id"`
	ReportID   string    `json:"report_id"`
	RunID      string    `json:"run_id"`
	Trigger    Trigger   `json:"trigger"`
	Outcome    Outcome   `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	At         time.Time `json:"at"`
}
