package store

import (
	"context"
	"errors"
)

// Blob keys for the five independently persisted documents.
const (
	KeyEmployees   = "employees"
	KeyDuties      = "duties"
	KeyShifts      = "shifts"
	KeyAssignments = "assignments"
	KeyAIRules     = "ai_rules"
)

// ErrNotFound is returned by a backend when a key has never been written.
var ErrNotFound = errors.New("blob not found")

// Backend persists named JSON documents. Each collection is stored
// under its own key and rewritten wholesale whenever it changes.
type Backend interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Ping(ctx context.Context) error
	Close() error
}
