package domain

import "time"

// AuditEntry is an append-only record of an authentication event. Writes are
// best effort: a failed audit write never fails the operation being audited.
type AuditEntry struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Event     string    `json:"event" gorm:"size:64;index;not null"`
	UserID    *int64    `json:"user_id,omitempty" gorm:"index"`
	Fields    string    `json:"fields,omitempty" gorm:"type:json"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
