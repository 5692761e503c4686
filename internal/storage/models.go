package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ActionKind names a mutating call the console sent to the backend.
type ActionKind string

const (
	KindApprove ActionKind = "approve"
	KindDelete  ActionKind = "delete"
	KindUpdate  ActionKind = "update"
	KindFlush   ActionKind = "flush"
)

const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Action is one journal entry. Detail is free text, e.g. a flush summary.
type Action struct {
	ID               string
	At               time.Time
	Kind             ActionKind
	Scope            string // "unreviewed" or "reviewed"
	SegmentID        string
	DocumentID       string
	TargetDocumentID string
	Outcome          string // "ok", "failed"
	Error            string
	Detail           string
}
