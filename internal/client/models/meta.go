package models

import "time"

// Meta is the envelope every record carries.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetMeta gives generic code access to the embedded envelope.
func (m *Meta) GetMeta() *Meta { return m }

// Record is implemented by pointers to every record kind.
type Record interface {
	GetMeta() *Meta
}

// Touch refreshes UpdatedAt to now without ever moving it backwards.
func (m *Meta) Touch(now time.Time) {
	if now.Before(m.UpdatedAt) {
		return
	}
	m.UpdatedAt = now
}
