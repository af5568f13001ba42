package email

import (
	"time"
)

type DeliveryState string

const (
	DeliveryPending   DeliveryState = "pending"
	DeliveryDelivered DeliveryState = "delivered"
	DeliveryFailed    DeliveryState = "failed"
)

// Record is an accepted, proof-backed email.
type Record struct {
	ID                uint          `gorm:"primaryKey;autoIncrement" json:"-"`
	RecordId          string        `gorm:"type:varchar(36);uniqueIndex;not null" json:"id"`
	Recipient         string        `gorm:"type:varchar(320);not null" json:"to"`
	Header            string        `gorm:"type:text" json:"header"`
	Message           string        `gorm:"type:text;not null" json:"message"`
	Senders           []string      `gorm:"serializer:json;type:text" json:"senders"`
	GroupSignature    string        `gorm:"type:text;not null" json:"group_signature"`
	DeliveryState     DeliveryState `gorm:"type:varchar(16);not null;index" json:"delivery_state"`
	DeliveryAttempts  int           `gorm:"not null;default:0" json:"delivery_attempts"`
	LastDeliveryError string        `gorm:"type:text" json:"-"`
	DeliveredAt       *time.Time    `json:"delivered_at,omitempty"`
	CreatedAt         time.Time     `gorm:"autoCreateTime;index" json:"date"`
}

func (Record) TableName() string {
	return "emails"
}
