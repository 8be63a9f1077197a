package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextKey string

const (
	TenantIDKey ContextKey = "tenant_id"
	UserIDKey   ContextKey = "user_id"
	RolesKey    ContextKey = "roles"
)

// RoleTenantAdmin may manage every saved report and schedule of its tenant.
const RoleTenantAdmin = "admin"

type AuditAction string

const (
	AuditActionCreate   AuditAction = "CREATE"
	AuditActionUpdate   AuditAction = "UPDATE"
	AuditActionDelete   AuditAction = "DELETE"
	AuditActionReport   AuditAction = "REPORT"
	AuditActionSchedule AuditAction = "SCHEDULE"
)

type Change struct {
	Old interface{} `bson:"old" json:"old"`
	New interface{} `bson:"new" json:"new"`
}

type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID  string             `bson:"tenant_id,omitempty" json:"tenant_id,omitempty"`
	Action    AuditAction        `bson:"action" json:"action"`
	Module    string             `bson:"module" json:"module"`                       // reports, report_schedules
	RecordID  string             `bson:"record_id" json:"record_id"`                 // The ID of the record being modified
	ActorID   string             `bson:"actor_id" json:"actor_id"`                   // User ID who performed the action
	Changes   map[string]Change  `bson:"changes,omitempty" json:"changes,omitempty"` // For updates: field -> {old, new}
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// Log is a persisted application log line
type Log struct {
	Message      string    `bson:"message" json:"message"`
	TenantID     string    `bson:"tenant_id,omitempty" json:"tenant_id,omitempty"`
	ScheduleID   string    `bson:"schedule_id,omitempty" json:"schedule_id,omitempty"`
	Caller       string    `bson:"caller,omitempty" json:"caller,omitempty"`
	AppId        string    `bson:"app_id" json:"app_id"`
	LogLevelId   int       `bson:"log_level_id" json:"log_level_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc" json:"created_on_utc"`
}

// Identity is the acting user as resolved by the auth layer.
type Identity struct {
	UserID   string
	TenantID string
	Roles    []string
}

// IsTenantAdmin reports whether the identity may manage other users' reports.
func (i Identity) IsTenantAdmin() bool {
	for _, r := range i.Roles {
		if r == RoleTenantAdmin {
			return true
		}
	}
	return false
}
