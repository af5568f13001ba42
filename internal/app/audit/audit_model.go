package audit

import (
	"time"

	"group-mail/pkg/reasoncodes"
)

type Outcome string

const (
	OutcomeAccepted  Outcome = "accepted"
	OutcomeRejected  Outcome = "rejected"
	OutcomeMalformed Outcome = "malformed"
	OutcomeFailed    Outcome = "failed"
)

// Entry is one gate decision.
type Entry struct {
	ID         uint                   `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestId  string                 `gorm:"type:varchar(64);index" json:"request_id,omitempty"`
	RecordId   string                 `gorm:"type:varchar(36);index" json:"record_id,omitempty"`
	Members    []string               `gorm:"serializer:json;type:text" json:"members"`
	Outcome    Outcome                `gorm:"type:varchar(16);not null;index" json:"outcome"`
	ReasonCode reasoncodes.ReasonCode `gorm:"type:varchar(64);not null" json:"reason_code"`
	Detail     string                 `gorm:"type:text" json:"detail,omitempty"`
	CreatedAt  time.Time              `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Entry) TableName() string {
	return "gate_audit_entries"
}

// LogEntry is a log line forwarded over the log queue.
type LogEntry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Level     string    `gorm:"type:varchar(10);not null;index" json:"level"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	Service   string    `gorm:"type:varchar(50);not null;index" json:"service"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (LogEntry) TableName() string {
	return "log_audit_entries"
}

func Models() []any {
	return []any{&Entry{}, &LogEntry{}}
}
