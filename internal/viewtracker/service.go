package viewtracker

import (
	"context"
	"errors"
	"legal-roundtable/internal/article"
	"legal-roundtable/internal/environment"
	"legal-roundtable/internal/logging"
	"sync"
	"time"
)

type trackerKey struct {
	sessionId string
	articleId string
}

// Service keeps the trackers of all mounted article pages, keyed by session and article.
type Service struct {
	*environment.Env
	Counter     Counter
	Clock       Clock
	Sessions    *Sessions
	MinReadTime time.Duration

	mu       sync.Mutex
	trackers map[trackerKey]*Tracker
}

func NewService(env *environment.Env, counter Counter, clock Clock, sessions *Sessions, minReadTime time.Duration) *Service {
	return &Service{
		Env:         env,
		Counter:     counter,
		Clock:       clock,
		Sessions:    sessions,
		MinReadTime: minReadTime,
		trackers:    make(map[trackerKey]*Tracker),
	}
}

// Mount starts tracking an article page; a previous mount of the same page in the session is replaced.
func (s *Service) Mount(sessionId, articleId string) State {
	tracker := NewTracker(articleId, s.Sessions.Store(sessionId), s.Counter, s.Logger, s.Clock, s.MinReadTime)

	key := trackerKey{sessionId, articleId}
	s.mu.Lock()
	previous := s.trackers[key]
	s.trackers[key] = tracker
	s.mu.Unlock()

	if previous != nil {
		previous.Stop()
	}

	tracker.Start()
	return tracker.State()
}

// Visibility forwards a visibility change; only hiding the page can count a view.
// It reports false if the page is not mounted.
func (s *Service) Visibility(sessionId, articleId string, hidden bool) bool {
	tracker, ok := s.tracker(sessionId, articleId)
	if !ok {
		return false
	}
	if hidden {
		tracker.Hidden()
	}
	return true
}

// Unload forwards the page being left.
func (s *Service) Unload(sessionId, articleId string) bool {
	tracker, ok := s.tracker(sessionId, articleId)
	if !ok {
		return false
	}
	tracker.Unload()
	return true
}

// Unmount stops and forgets the tracker of a page.
func (s *Service) Unmount(sessionId, articleId string) bool {
	key := trackerKey{sessionId, articleId}
	s.mu.Lock()
	tracker, ok := s.trackers[key]
	delete(s.trackers, key)
	s.mu.Unlock()

	if ok {
		tracker.Stop()
	}
	return ok
}

// CountOnce counts a view right away unless the session already counted the article.
// It reports whether a view was counted. The session flag stays set when the increment fails,
// except for an unknown article, which is never marked as counted.
func (s *Service) CountOnce(ctx context.Context, sessionId, articleId string) (bool, error) {
	store := s.Sessions.Store(sessionId)
	if !store.SetIfAbsent(FlagKey(articleId), "true") {
		return false, nil
	}

	if err := s.Counter.IncrementViews(ctx, articleId); err != nil {
		if errors.Is(err, article.ErrNotFound) {
			store.Delete(FlagKey(articleId))
		}
		s.LogWarnf(logging.GetLogType(logging.TypeViewTracking, articleId, sessionId), "view not counted: %v", err)
		return false, err
	}
	return true, nil
}

// Purge drops expired sessions together with their trackers and returns the number of dropped sessions.
func (s *Service) Purge() int {
	purged := s.Sessions.Purge()
	if len(purged) == 0 {
		return 0
	}

	expired := make(map[string]struct{}, len(purged))
	for _, id := range purged {
		expired[id] = struct{}{}
	}

	stopped := make([]*Tracker, 0)
	s.mu.Lock()
	for key, tracker := range s.trackers {
		if _, ok := expired[key.sessionId]; ok {
			delete(s.trackers, key)
			stopped = append(stopped, tracker)
		}
	}
	s.mu.Unlock()

	for _, tracker := range stopped {
		tracker.Stop()
	}

	s.LogDebugf(logging.GetLogType(logging.TypeViewTracking), "purged %d sessions and %d trackers, %d sessions and %d pages left",
		len(purged), len(stopped), s.Sessions.Len(), s.Mounted())
	return len(purged)
}

// Mounted returns the number of tracked pages.
func (s *Service) Mounted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.trackers)
}

func (s *Service) tracker(sessionId, articleId string) (*Tracker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tracker, ok := s.trackers[trackerKey{sessionId, articleId}]
	return tracker, ok
}
