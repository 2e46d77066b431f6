package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"clusterdeck/internal/domain"
)

// Repository is the subset of storage the recorder needs.
type Repository interface {
	Create(ctx context.Context, e *domain.AuditEntry) error
}

// Broadcaster pushes events to live watchers. The events hub satisfies this.
type Broadcaster interface {
	Broadcast(event any)
}

// Event is the wire shape broadcast to watchers.
type Event struct {
	Event  string         `json:"event"`
	UserID *int64         `json:"user_id,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
	At     time.Time      `json:"at"`
}

// Recorder writes auth events to the audit table and the live hub. Every
// failure is logged and swallowed: an audit problem must never change the
// outcome of the operation being audited.
type Recorder struct {
	repo Repository
	hub  Broadcaster
}

func NewRecorder(repo Repository, hub Broadcaster) *Recorder {
	return &Recorder{repo: repo, hub: hub}
}

// Record is best effort and returns nothing.
func (r *Recorder) Record(ctx context.Context, event string, userID *int64, fields map[string]any) {
	at := time.Now().UTC()

	if r.repo != nil {
		entry := &domain.AuditEntry{
			Event:  event,
			UserID: userID,
		}
		if len(fields) > 0 {
			data, err := json.Marshal(fields)
			if err != nil {
				log.Printf("audit marshal failed event=%s error=%v", event, err)
			} else {
				entry.Fields = string(data)
			}
		}
		if err := r.repo.Create(ctx, entry); err != nil {
			log.Printf("audit write failed event=%s error=%v", event, err)
		}
	}

	if r.hub != nil {
		r.hub.Broadcast(Event{
			Event:  event,
			UserID: userID,
			Fields: fields,
			At:     at,
		})
	}
}
