package app

import (
	"time"

	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/coach"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/db"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/script"
)

// TickMsg repaints the stage timer once per second.
type TickMsg time.Time

// NewCallDoneMsg carries the outcome of archiving the current call.
type NewCallDoneMsg struct {
	Record db.CallRecord
	Err    error
}

// CoachReplyMsg carries the coach's answer to a query sent in Lang.
type CoachReplyMsg struct {
	Reply coach.Reply
	Lang  script.Locale
}

// HistoryLoadedMsg carries archived calls read from SQLite.
type HistoryLoadedMsg struct {
	Records []db.CallRecord
	Err     error
}

// NoteFlushedMsg is sent after a forced note save.
type NoteFlushedMsg struct {
	Err error
}

// ClearTransientErrorMsg clears a transient error after a timeout.
type ClearTransientErrorMsg struct{}
