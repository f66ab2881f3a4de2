// Package session drives one call at a time through the script: which stage
// is active, what has been completed and checked, how long the stage has
// run, and the draft note with its debounced autosave. NewCall archives the
// call and starts a fresh session.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/db"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/logging"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/schedule"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/script"
)

// Store is the durable storage the controller writes through.
type Store interface {
	SaveDraftNote(ctx context.Context, content string) error
	DraftNote(ctx context.Context) (string, error)
	ClearDraftNote(ctx context.Context) error
	ArchiveCall(ctx context.Context, rec db.CallRecord) (db.CallRecord, error)
}

// Options configures a Controller. Catalog and Store are required.
type Options struct {
	Catalog       *script.Catalog
	Store         Store
	Clock         schedule.Clock
	Logger        *logging.Logger
	AutosaveDelay time.Duration
	TickInterval  time.Duration
	NewID         func() string
}

// NoteStatus describes the draft note's persistence state.
type NoteStatus struct {
	Saving bool
	Dirty  bool
	Err    error
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	SessionID   string
	Stage       script.Stage
	Index       int
	Completed   []string
	Checked     []string
	Elapsed     time.Duration
	CallElapsed time.Duration
	OverTarget  bool
	Note        string
	NoteStatus  NoteStatus
	LoadErr     error
}

// Controller owns the session state. All methods are safe for concurrent
// use; timer callbacks and autosave writes run on clock goroutines.
type Controller struct {
	catalog      *script.Catalog
	store        Store
	clock        schedule.Clock
	logger       *logging.Logger
	tickInterval time.Duration
	newID        func() string
	autosave     *schedule.Debouncer

	// ioMu serializes note writes with NewCall so a late autosave cannot
	// bring back a draft NewCall just cleared.
	ioMu sync.Mutex

	mu           sync.Mutex
	active       int
	completed    []string
	completedSet map[string]bool
	checked      map[string]bool
	elapsed      int64
	callElapsed  int64
	sessionID    string
	note         string
	noteDirty    bool
	saving       bool
	saveErr      error
	loadErr      error
	ticker       *schedule.Ticker
	tickGen      uint64
	running      bool
	closed       bool
}

// New creates a controller positioned at the first stage. Call Start to load
// the draft note and start the stage timer.
func New(opts Options) (*Controller, error) {
	if opts.Catalog == nil || opts.Catalog.Len() == 0 {
		return nil, errors.New("session: catalog is required")
	}
	if opts.Store == nil {
		return nil, errors.New("session: store is required")
	}
	if opts.Clock == nil {
		opts.Clock = schedule.Real()
	}
	if opts.AutosaveDelay <= 0 {
		opts.AutosaveDelay = time.Second
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	return &Controller{
		catalog:      opts.Catalog,
		store:        opts.Store,
		clock:        opts.Clock,
		logger:       opts.Logger,
		tickInterval: opts.TickInterval,
		newID:        opts.NewID,
		autosave:     schedule.NewDebouncer(opts.Clock, opts.AutosaveDelay),
		completedSet: make(map[string]bool),
		checked:      make(map[string]bool),
		sessionID:    opts.NewID(),
	}, nil
}

// Start loads the draft note and starts the stage timer. A failed load
// leaves the note empty and is reported through Snapshot().LoadErr.
func (c *Controller) Start(ctx context.Context) {
	note, err := c.store.DraftNote(ctx)
	if err != nil {
		c.logger.Printf("session: load draft note: %v", err)
		note = ""
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.note = note
	c.noteDirty = false
	c.loadErr = err
	c.running = true
	c.restartTickerLocked()
}

// Close stops the stage timer and drops any pending autosave. Callers that
// want the last edit kept call FlushNote first.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.running = false
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	c.tickGen++
	c.mu.Unlock()

	c.autosave.Cancel()
}

func (c *Controller) restartTickerLocked() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	c.tickGen++
	if !c.running {
		return
	}
	gen := c.tickGen
	c.ticker = schedule.Every(c.clock, c.tickInterval, func() { c.tick(gen) })
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.tickGen {
		return
	}
	c.elapsed++
	c.callElapsed++
}

// setActiveLocked switches stages and resets the stage timer.
func (c *Controller) setActiveLocked(i int) {
	c.active = i
	c.elapsed = 0
	c.restartTickerLocked()
}

func (c *Controller) markCompletedLocked(id string) {
	if c.completedSet[id] {
		return
	}
	c.completedSet[id] = true
	c.completed = append(c.completed, id)
}

// Advance marks the active stage completed and moves to the next one. At the
// last stage it only marks completion and reports false.
func (c *Controller) Advance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.markCompletedLocked(c.catalog.At(c.active).ID)
	if c.active >= c.catalog.Len()-1 {
		return false
	}
	c.setActiveLocked(c.active + 1)
	return true
}

// Retreat moves to the previous stage. It reports false at the first stage.
func (c *Controller) Retreat() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == 0 {
		return false
	}
	c.setActiveLocked(c.active - 1)
	return true
}

// Jump makes the stage with id active without completing anything. Jumping
// to the active stage keeps its timer running.
func (c *Controller) Jump(id string) error {
	i, ok := c.catalog.Index(id)
	if !ok {
		return fmt.Errorf("jump to stage %q: %w", id, script.ErrNotFound)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i != c.active {
		c.setActiveLocked(i)
	}
	return nil
}

// TogglePoint flips a checklist point and returns its new state.
func (c *Controller) TogglePoint(id string) (bool, error) {
	if _, _, err := c.catalog.Point(id); err != nil {
		return false, fmt.Errorf("toggle point: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.checked[id] {
		delete(c.checked, id)
		return false, nil
	}
	c.checked[id] = true
	return true, nil
}

// EditNote replaces the note text and schedules an autosave once edits have
// paused for the autosave delay.
func (c *Controller) EditNote(text string) {
	c.mu.Lock()
	if c.closed || (text == c.note && !c.noteDirty) {
		c.mu.Unlock()
		return
	}
	c.note = text
	c.noteDirty = true
	sid := c.sessionID
	c.mu.Unlock()

	c.autosave.Schedule(func() {
		c.persistNote(context.Background(), sid)
	})
}

// FlushNote writes a pending note edit now instead of waiting for the
// autosave delay.
func (c *Controller) FlushNote(ctx context.Context) error {
	c.autosave.Cancel()
	c.mu.Lock()
	sid := c.sessionID
	c.mu.Unlock()
	return c.persistNote(ctx, sid)
}

// persistNote saves the current note if it still belongs to session sid and
// has unsaved changes.
func (c *Controller) persistNote(ctx context.Context, sid string) error {
	c.ioMu.Lock()
	defer c.ioMu.Unlock()
	return c.persistNoteLocked(ctx, sid)
}

func (c *Controller) persistNoteLocked(ctx context.Context, sid string) error {
	c.mu.Lock()
	if sid != c.sessionID || !c.noteDirty {
		c.mu.Unlock()
		return nil
	}
	text := c.note
	c.saving = true
	c.mu.Unlock()

	err := c.store.SaveDraftNote(ctx, text)

	c.mu.Lock()
	c.saving = false
	c.saveErr = err
	if err == nil && c.note == text {
		c.noteDirty = false
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Printf("session: autosave draft note: %v", err)
		return fmt.Errorf("save draft note: %w", err)
	}
	return nil
}

// NewCall archives the current call and starts a new session. The draft
// note is saved, archived with a snapshot of the completed stages and the
// call's elapsed seconds, then cleared. If any write fails the session is
// left exactly as it was and the error is returned.
func (c *Controller) NewCall(ctx context.Context) (db.CallRecord, error) {
	c.ioMu.Lock()
	defer c.ioMu.Unlock()

	c.autosave.Cancel()

	c.mu.Lock()
	sid := c.sessionID
	c.mu.Unlock()

	if err := c.persistNoteLocked(ctx, sid); err != nil {
		c.autosave.Schedule(func() { c.persistNote(context.Background(), sid) })
		return db.CallRecord{}, fmt.Errorf("new call: %w", err)
	}

	draft, err := c.store.DraftNote(ctx)
	if err != nil {
		c.logger.Printf("session: new call aborted: %v", err)
		return db.CallRecord{}, fmt.Errorf("new call: read draft note: %w", err)
	}

	c.mu.Lock()
	completed := make([]string, len(c.completed))
	copy(completed, c.completed)
	duration := c.callElapsed
	c.mu.Unlock()

	rec, err := c.store.ArchiveCall(ctx, db.CallRecord{
		Date:            c.clock.Now(),
		Notes:           draft,
		CompletedStages: completed,
		Duration:        duration,
	})
	if err != nil {
		c.logger.Printf("session: new call aborted: %v", err)
		return db.CallRecord{}, fmt.Errorf("new call: %w", err)
	}

	if err := c.store.ClearDraftNote(ctx); err != nil {
		c.logger.Printf("session: archived call %d but could not clear draft: %v", rec.ID, err)
		return db.CallRecord{}, fmt.Errorf("new call: %w", err)
	}

	c.mu.Lock()
	c.completed = nil
	c.completedSet = make(map[string]bool)
	c.checked = make(map[string]bool)
	c.callElapsed = 0
	c.sessionID = c.newID()
	c.note = ""
	c.noteDirty = false
	c.saveErr = nil
	c.loadErr = nil
	c.setActiveLocked(0)
	c.mu.Unlock()

	c.logger.Printf("session: archived call %d (%d stages, %ds)", rec.ID, len(rec.CompletedStages), rec.Duration)
	return rec, nil
}
