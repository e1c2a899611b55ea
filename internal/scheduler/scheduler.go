package scheduler

import (
	"context"
	"fmt"
	"github.com/robfig/cron/v3"
	"legal-roundtable/internal/environment"
	"legal-roundtable/internal/logging"
	"time"
)

const (
	sitemapTask = "sitemap"
	purgeTask   = "session-purge"

	sitemapTimeout = 2 * time.Minute
)

type SitemapGenerator interface {
	Generate(ctx context.Context) ([]byte, error)
}

type SessionPurger interface {
	Purge() int
}

// Scheduler runs the periodic housekeeping of the service: regenerating the sitemap and
// dropping expired view sessions.
type Scheduler struct {
	*environment.Env
	cron        *cron.Cron
	sitemap     SitemapGenerator
	sessions    SessionPurger
	sitemapSpec string
	purgeSpec   string

	sitemapEntryID cron.EntryID
	purgeEntryID   cron.EntryID
}

func NewScheduler(env *environment.Env, sitemap SitemapGenerator, sessions SessionPurger, sitemapSpec, purgeSpec string) *Scheduler {
	l := cronLogger{env.Logger}
	return &Scheduler{
		Env: env,
		cron: cron.New(
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		sitemap:     sitemap,
		sessions:    sessions,
		sitemapSpec: sitemapSpec,
		purgeSpec:   purgeSpec,
	}
}

// Start registers the jobs and starts the scheduler; an invalid schedule fails the start.
func (s *Scheduler) Start() error {
	var err error

	s.sitemapEntryID, err = s.cron.AddFunc(s.sitemapSpec, s.RunSitemap)
	if err != nil {
		return fmt.Errorf("invalid sitemap schedule '%s': %w", s.sitemapSpec, err)
	}

	s.purgeEntryID, err = s.cron.AddFunc(s.purgeSpec, s.RunPurge)
	if err != nil {
		return fmt.Errorf("invalid session purge schedule '%s': %w", s.purgeSpec, err)
	}

	s.cron.Start()
	s.LogInfof(logging.GetLogTypeInitialization(), "scheduler started (sitemap: %s, next at %s; session purge: %s, next at %s)",
		s.sitemapSpec, s.NextSitemapTime().Format(time.RFC3339), s.purgeSpec, s.NextPurgeTime().Format(time.RFC3339))
	return nil
}

// RunSitemap regenerates the sitemap.
func (s *Scheduler) RunSitemap() {
	ctx, cancel := context.WithTimeout(context.Background(), sitemapTimeout)
	defer cancel()

	if _, err := s.sitemap.Generate(ctx); err != nil {
		s.LogErrorf(logging.GetLogTypeIntervalTask(sitemapTask), "sitemap generation failed: %v", err)
	}
}

// RunPurge drops expired view sessions.
func (s *Scheduler) RunPurge() {
	purged := s.sessions.Purge()
	s.LogDebugf(logging.GetLogTypeIntervalTask(purgeTask), "%d expired view sessions purged", purged)
}

func (s *Scheduler) NextSitemapTime() time.Time {
	return s.cron.Entry(s.sitemapEntryID).Next
}

func (s *Scheduler) NextPurgeTime() time.Time {
	return s.cron.Entry(s.purgeEntryID).Next
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// cronLogger passes the messages of cron to the service logger.
type cronLogger struct {
	logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.LogDebug(append(logging.GetLogType(logging.TypeIntervalTask), keysAndValues...), msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.LogErrorf(append(logging.GetLogType(logging.TypeIntervalTask), keysAndValues...), "%s: %v", msg, err)
}
