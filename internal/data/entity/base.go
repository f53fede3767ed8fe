package entity

import (
	"time"

	"github.com/google/uuid"
)

type Base struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// NewBase assigns a fresh ID and creation timestamps.
func NewBase() Base {
	now := time.Now().UTC()
	return Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// Touch bumps the update timestamp before a write.
func (b *Base) Touch() {
	b.UpdatedAt = time.Now().UTC()
}
