package updater

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultRefreshInterval is the polling interval used when Config leaves
// RefreshInterval unset.
const DefaultRefreshInterval = 60 * time.Second

// defaultTick is how often Run checks whether a refresh is due.
const defaultTick = time.Second

var (
	// ErrMissingURL is returned by New when Config.URL is empty.
	ErrMissingURL = errors.New("updater: URL is required")

	// ErrMissingProcessor is returned by New when Config.Processor is nil.
	ErrMissingProcessor = errors.New("updater: processor is required")

	// ErrUnexpectedStatus is returned by HTTPFetcher for non-2xx responses.
	ErrUnexpectedStatus = errors.New("updater: unexpected HTTP status")

	// ErrInvalidPayload is returned when a response is not JSON.
	ErrInvalidPayload = errors.New("updater: invalid payload")

	// ErrCancelled is the error of a cancelled task.
	ErrCancelled = errors.New("updater: task cancelled")
)

// Processor consumes fetched documents. url is the source they came from.
type Processor interface {
	Process(doc Document, url string) error
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(doc Document, url string) error

// Process calls f.
func (f ProcessorFunc) Process(doc Document, url string) error {
	return f(doc, url)
}

// Config configures an Updater.
type Config struct {
	// URL of the external documents. Required.
	URL string

	// RefreshInterval between fetches. Zero selects DefaultRefreshInterval.
	RefreshInterval time.Duration

	// Processor receives every fetched document. Required.
	Processor Processor

	// Fetcher defaults to an HTTPFetcher on http.DefaultClient.
	Fetcher Fetcher

	// Now defaults to time.Now. Run uses it to drive Update.
	Now func() time.Time

	// Logger defaults to the package logger set with SetLogger.
	Logger *slog.Logger
}

// Updater polls an external URL and hands the documents it serves to a
// processor. At most one fetch is in flight at a time.
type Updater struct {
	url       string
	interval  time.Duration
	processor Processor
	fetcher   Fetcher
	now       func() time.Time
	log       *slog.Logger

	mu         sync.Mutex
	lastUpdate time.Time
	task       *Task
	wg         sync.WaitGroup
}

// New validates cfg and returns an updater. The first refresh is due one
// interval after construction.
func New(cfg Config) (*Updater, error) {
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	if cfg.Processor == nil {
		return nil, ErrMissingProcessor
	}
	if cfg.RefreshInterval < 0 {
		return nil, fmt.Errorf("updater: negative refresh interval %v", cfg.RefreshInterval)
	}

	u := &Updater{
		url:       cfg.URL,
		interval:  cfg.RefreshInterval,
		processor: cfg.Processor,
		fetcher:   cfg.Fetcher,
		now:       cfg.Now,
		log:       cfg.Logger,
	}
	if u.interval == 0 {
		u.interval = DefaultRefreshInterval
	}
	if u.fetcher == nil {
		u.fetcher = &HTTPFetcher{}
	}
	if u.now == nil {
		u.now = time.Now
	}
	u.lastUpdate = u.now()
	return u, nil
}

// RefreshInterval returns the resolved polling interval.
func (u *Updater) RefreshInterval() time.Duration { return u.interval }

// URL returns the polled URL.
func (u *Updater) URL() string { return u.url }

func (u *Updater) logger() *slog.Logger {
	if u.log != nil {
		return u.log
	}
	return slogger()
}

// Update starts a fetch when a refresh is due at now and none is in
// flight. It returns the started task, or nil.
//
// A due refresh resets the interval even when a fetch is still running.
func (u *Updater) Update(now time.Time) *Task {
	u.mu.Lock()
	defer u.mu.Unlock()

	if now.Before(u.lastUpdate.Add(u.interval)) {
		return nil
	}
	u.lastUpdate = now
	if u.task != nil {
		u.logger().Debug("updater: refresh due, fetch still in flight", "url", u.url, "task", u.task.ID())
		return nil
	}

	task, ctx := newTask(context.Background(), u.url, now)
	u.task = task
	u.wg.Add(1)
	go u.fetch(ctx, task)

	u.logger().Debug("updater: fetch started", "url", u.url, "task", task.ID())
	return task
}

// Current returns the in-flight task, or nil.
func (u *Updater) Current() *Task {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.task
}

// Abort cancels the in-flight fetch, if any.
func (u *Updater) Abort() {
	u.mu.Lock()
	task := u.task
	u.task = nil
	u.mu.Unlock()

	if task != nil && task.Cancel() {
		u.logger().Info("updater: fetch aborted", "url", u.url, "task", task.ID())
	}
}

// Run calls Update every tick until ctx ends, then aborts the in-flight
// fetch and waits for it to stop. A non-positive tick selects one second.
func (u *Updater) Run(ctx context.Context, tick time.Duration) error {
	if tick <= 0 {
		tick = defaultTick
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			u.Abort()
			u.wg.Wait()
			return ctx.Err()
		case <-ticker.C:
			u.Update(u.now())
		}
	}
}

func (u *Updater) fetch(ctx context.Context, task *Task) {
	defer u.wg.Done()

	err := u.fetcher.Fetch(ctx, task.url, func(doc Document) error {
		return task.process(func() error {
			if err := u.processor.Process(doc, task.url); err != nil {
				return fmt.Errorf("updater: process document: %w", err)
			}
			instrumentDocument()
			return nil
		})
	})

	state := StateCompleted
	if err != nil {
		state = StateFailed
	}
	if task.finish(state, err) {
		switch state {
		case StateCompleted:
			u.logger().Info("updater: fetch completed", "url", task.url, "task", task.id, "documents", task.Documents())
		default:
			u.logger().Warn("updater: fetch failed", "url", task.url, "task", task.id, "err", err)
		}
	}
	instrumentFetch(task.State(), task.submitted)

	u.mu.Lock()
	if u.task == task {
		u.task = nil
	}
	u.mu.Unlock()
}
