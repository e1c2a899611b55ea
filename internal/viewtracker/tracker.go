package viewtracker

import (
	"context"
	"legal-roundtable/internal/constants"
	"legal-roundtable/internal/logging"
	"sync"
	"time"
)

const incrementTimeout = 5 * time.Second

// Counter increments the persisted view counter of an article.
type Counter interface {
	IncrementViews(ctx context.Context, id string) error
}

type State int

const (
	// StateIdle waits for the dwell time to pass.
	StateIdle State = iota
	// StateCounted has counted the view.
	StateCounted
	// StateSkipped was mounted in a session that had already counted the article.
	StateSkipped
	// StateStopped was unmounted before the view counted.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCounted:
		return "counted"
	case StateSkipped:
		return "skipped"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// FlagKey is the session key marking an article as counted.
func FlagKey(articleId string) string {
	return constants.SessionFlagPrefix + articleId
}

// Tracker follows one mount of an article page. A view is counted at most once per mount and
// per session, and only after the page stayed mounted for the minimum read time.
type Tracker struct {
	mu          sync.Mutex
	articleId   string
	store       SessionStore
	counter     Counter
	logger      logging.Logger
	clock       Clock
	minReadTime time.Duration

	state     State
	mountedAt time.Time
	timer     Timer
}

func NewTracker(articleId string, store SessionStore, counter Counter, logger logging.Logger, clock Clock, minReadTime time.Duration) *Tracker {
	return &Tracker{
		articleId:   articleId,
		store:       store,
		counter:     counter,
		logger:      logger,
		clock:       clock,
		minReadTime: minReadTime,
	}
}

// Start mounts the tracker. Without the session flag it arms the dwell timer; with it the
// tracker does nothing for the rest of its life.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, viewed := t.store.Get(FlagKey(t.articleId)); viewed {
		t.state = StateSkipped
		return
	}

	t.state = StateIdle
	t.mountedAt = t.clock.Now()
	t.timer = t.clock.AfterFunc(t.minReadTime, func() {
		defer logging.RecoverPanic(t.logger, "view timer of article "+t.articleId)
		t.attempt("timer")
	})
}

// Hidden handles the page becoming hidden.
func (t *Tracker) Hidden() bool {
	return t.attempt("hidden")
}

// Unload handles the page being left.
func (t *Tracker) Unload() bool {
	return t.attempt("unload")
}

// Stop unmounts the tracker and cancels a pending timer.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	if t.state == StateIdle {
		t.state = StateStopped
	}
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// attempt counts the view if the tracker is idle and the dwell time has passed.
// Increment failures are logged only.
func (t *Tracker) attempt(trigger string) bool {
	t.mu.Lock()
	if t.state != StateIdle || t.clock.Now().Sub(t.mountedAt) < t.minReadTime {
		t.mu.Unlock()
		return false
	}
	t.state = StateCounted
	if t.timer != nil {
		t.timer.Stop()
	}
	first := t.store.SetIfAbsent(FlagKey(t.articleId), "true")
	t.mu.Unlock()

	if !first {
		// another mount of the same session counted meanwhile
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), incrementTimeout)
	defer cancel()

	if err := t.counter.IncrementViews(ctx, t.articleId); err != nil {
		t.logger.LogWarnf(logging.GetLogType(logging.TypeViewTracking, t.articleId), "view not counted (%s): %v", trigger, err)
		return true
	}
	t.logger.LogDebugf(logging.GetLogType(logging.TypeViewTracking, t.articleId), "view counted (%s)", trigger)
	return true
}
