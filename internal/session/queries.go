package session

import (
	"sort"
	"time"

	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/script"
)

// ActiveStage returns the stage being worked on.
func (c *Controller) ActiveStage() script.Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.catalog.At(c.active)
}

// ActiveIndex returns the active stage's position in the catalog.
func (c *Controller) ActiveIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Controller) IsFirst() bool { return c.ActiveIndex() == 0 }

func (c *Controller) IsLast() bool { return c.ActiveIndex() == c.catalog.Len()-1 }

// Completed returns completed stage ids in the order they were completed.
func (c *Controller) Completed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.completed))
	copy(out, c.completed)
	return out
}

func (c *Controller) IsCompleted(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completedSet[id]
}

func (c *Controller) IsChecked(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checked[id]
}

// Elapsed is the time spent on the active stage.
func (c *Controller) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Duration(c.elapsed) * time.Second
}

// CallElapsed is the time since the session began.
func (c *Controller) CallElapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Duration(c.callElapsed) * time.Second
}

// OverTarget reports whether the active stage has run past its time limit.
// Stages without a parseable limit are never over target.
func (c *Controller) OverTarget() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overTargetLocked()
}

func (c *Controller) overTargetLocked() bool {
	target, ok := c.catalog.At(c.active).Target()
	return ok && time.Duration(c.elapsed)*time.Second > target
}

func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Controller) Note() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.note
}

func (c *Controller) NoteStatus() NoteStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return NoteStatus{Saving: c.saving, Dirty: c.noteDirty, Err: c.saveErr}
}

// Snapshot returns the whole session state under one lock.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	completed := make([]string, len(c.completed))
	copy(completed, c.completed)
	checked := make([]string, 0, len(c.checked))
	for id := range c.checked {
		checked = append(checked, id)
	}
	sort.Strings(checked)

	return Snapshot{
		SessionID:   c.sessionID,
		Stage:       c.catalog.At(c.active),
		Index:       c.active,
		Completed:   completed,
		Checked:     checked,
		Elapsed:     time.Duration(c.elapsed) * time.Second,
		CallElapsed: time.Duration(c.callElapsed) * time.Second,
		OverTarget:  c.overTargetLocked(),
		Note:        c.note,
		NoteStatus:  NoteStatus{Saving: c.saving, Dirty: c.noteDirty, Err: c.saveErr},
		LoadErr:     c.loadErr,
	}
}
