// Package audit defines the movement journal written alongside every committed movement.
package audit

import (
	"context"
	"time"
)

// Action is the kind of journaled change.
type Action string

const (
	ActionImport   Action = "import"
	ActionExport   Action = "export"
	ActionTransfer Action = "transfer"
	ActionRepair   Action = "repair"
	ActionDelete   Action = "delete"
)

// Entry is one journal record.
type Entry struct {
	EntityType string
	EntityID   string
	Action     Action
	UserID     string
	Changes    map[string]any
	CreatedAt  time.Time
}

// Journal persists entries inside the caller's unit of work.
type Journal interface {
	Record(ctx context.Context, entry Entry) error
}

// Nop discards entries.
type Nop struct{}

// Record implements Journal.
func (Nop) Record(context.Context, Entry) error { return nil }
