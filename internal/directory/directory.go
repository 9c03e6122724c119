// Package directory answers "which sessions are bookable for type T on
// date D" with a per-key cache in front of the backend, so a user paging
// through a calendar does not hammer the query endpoint.
package directory

import (
	"context"
	"errors"
	"sync"
	"time"

	"courtbook/internal/metrics"
	"courtbook/internal/models"
)

// ErrSuperseded is returned when a lookup's result was invalidated while
// the fetch was in flight, twice in a row. Callers just retry.
var ErrSuperseded = errors.New("session query superseded by invalidation")

// Fetcher loads sessions from the backend. *upstream.Client satisfies it.
type Fetcher interface {
	SessionsByType(ctx context.Context, sessionType, date string) ([]models.Session, error)
}

type Config struct {
	// FreshFor is how long a fetched result is served without a new
	// network call. Default one minute.
	FreshFor time.Duration
	// RetainFor is how long an unused entry is kept before eviction.
	// Default five minutes.
	RetainFor time.Duration
}

// Key is the compound cache key. Two page variants of the original client
// queried by date alone vs. (type, date); mixing those caches was a
// correctness bug, so the key is always the full pair and an unfiltered
// query uses Type "".
type Key struct {
	Date string
	Type string
}

// Result is a directory answer. Stale means the data predates a failed
// refresh; the accompanying error says why.
type Result struct {
	Sessions  []models.Session
	Stale     bool
	FetchedAt time.Time
}

type entry struct {
	sessions  []models.Session
	has       bool
	fetchedAt time.Time
	lastUsed  time.Time
	fetchErr  error
	gen       uint64
	inflight  chan struct{} // non-nil while a fetch for this key is running
}

type Directory struct {
	fetch     Fetcher
	freshFor  time.Duration
	retainFor time.Duration

	mu      sync.Mutex
	entries map[Key]*entry

	stop     chan struct{}
	stopOnce sync.Once
}

func New(fetch Fetcher, cfg Config) *Directory {
	if cfg.FreshFor == 0 {
		cfg.FreshFor = time.Minute
	}
	if cfg.RetainFor == 0 {
		cfg.RetainFor = 5 * time.Minute
	}

	d := &Directory{
		fetch:     fetch,
		freshFor:  cfg.FreshFor,
		retainFor: cfg.RetainFor,
		entries:   make(map[Key]*entry),
		stop:      make(chan struct{}),
	}
	go d.janitor()
	return d
}

// Get resolves the sessions for (date, sessionType). Fresh entries answer
// without a network call; stale or absent entries trigger exactly one
// fetch per key, shared by concurrent callers. On fetch failure a previous
// result for the same key is served flagged stale together with the error;
// data is never substituted from a different key.
func (d *Directory) Get(ctx context.Context, date, sessionType string) (Result, error) {
	key := Key{Date: date, Type: sessionType}

	for attempt := 0; attempt < 2; attempt++ {
		d.mu.Lock()
		e := d.entries[key]
		if e == nil {
			e = &entry{}
			d.entries[key] = e
		}
		now := time.Now()
		e.lastUsed = now

		if e.has && now.Sub(e.fetchedAt) < d.freshFor {
			metrics.DirectoryHits.Inc()
			res := Result{Sessions: e.sessions, FetchedAt: e.fetchedAt}
			d.mu.Unlock()
			return res, nil
		}

		if e.inflight == nil {
			metrics.DirectoryMisses.Inc()
			e.inflight = make(chan struct{})
			go d.refresh(key, e, e.gen, e.inflight)
		}
		ch := e.inflight
		gen := e.gen
		d.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}

		d.mu.Lock()
		if e.gen != gen {
			// Invalidated while the fetch was in flight: the result was
			// discarded, go around once more.
			d.mu.Unlock()
			continue
		}
		if e.fetchErr != nil {
			err := e.fetchErr
			if e.has {
				metrics.DirectoryStaleServes.Inc()
				res := Result{Sessions: e.sessions, Stale: true, FetchedAt: e.fetchedAt}
				d.mu.Unlock()
				return res, err
			}
			d.mu.Unlock()
			return Result{}, err
		}
		res := Result{Sessions: e.sessions, FetchedAt: e.fetchedAt}
		d.mu.Unlock()
		return res, nil
	}

	return Result{}, ErrSuperseded
}

// refresh runs the upstream fetch for one key. It deliberately uses a
// background context: the fetch is shared by every waiter on the key and
// must not die with the first caller that walks away.
func (d *Directory) refresh(key Key, e *entry, gen uint64, ch chan struct{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sessions, err := d.fetch.SessionsByType(ctx, key.Type, key.Date)

	d.mu.Lock()
	defer d.mu.Unlock()
	defer close(ch)

	if e.inflight == ch {
		e.inflight = nil
	}
	if e.gen != gen || d.entries[key] != e {
		// The key was invalidated or evicted while fetching: the result
		// no longer belongs to anything current, drop it.
		return
	}

	if err != nil {
		e.fetchErr = err
		return
	}
	e.sessions = sessions
	e.has = true
	e.fetchedAt = time.Now()
	e.fetchErr = nil
}

// Invalidate drops the entry for (date, sessionType), forcing the next
// lookup to refetch. Called after a booking or cancellation touched the
// session's availability.
func (d *Directory) Invalidate(date, sessionType string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.invalidateLocked(Key{Date: date, Type: sessionType})
}

// InvalidateDate drops every entry for the date, whatever the type filter.
func (d *Directory) InvalidateDate(date string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key := range d.entries {
		if key.Date == date {
			d.invalidateLocked(key)
		}
	}
}

func (d *Directory) invalidateLocked(key Key) {
	e := d.entries[key]
	if e == nil {
		return
	}
	e.gen++
	e.has = false
	e.sessions = nil
	e.fetchErr = nil
	if e.inflight == nil {
		delete(d.entries, key)
	}
}

func (d *Directory) janitor() {
	interval := d.retainFor / 4
	if interval > 30*time.Second {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.sweep()
		case <-d.stop:
			return
		}
	}
}

func (d *Directory) sweep() {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := time.Now()
	for key, e := range d.entries {
		if e.inflight == nil && now.Sub(e.lastUsed) > d.retainFor {
			delete(d.entries, key)
			metrics.DirectoryEvictions.Inc()
		}
	}
}

// Len reports the number of cached keys.
func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

func (d *Directory) Close() {
	d.stopOnce.Do(func() { close(d.stop) })
}
