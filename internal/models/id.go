package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Identifiable is satisfied by every persisted record type.
type Identifiable interface {
	RecordID() string
}

// NewID returns a fresh record identifier: a millisecond timestamp prefix
// (keeps ids roughly sortable by creation time) plus a random suffix so
// records created within the same millisecond never collide.
func NewID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
