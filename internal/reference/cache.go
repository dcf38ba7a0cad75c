package reference

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/gravitrone/cloudconsole/cli/internal/api"
	"github.com/gravitrone/cloudconsole/cli/internal/observe"
)

const (
	// DefaultTTL is the minimum interval between two refreshes of one kind.
	DefaultTTL = 10 * time.Second
	// DefaultTimeout bounds a single list request.
	DefaultTimeout = 3 * time.Second
)

// Lister is the slice of the API client a Cache needs.
type Lister interface {
	ListResources(ctx context.Context, service, resource string, opts api.ListOptions) (*api.ListResponse[api.Record], error)
}

// Reporter receives load failures. It must not block.
type Reporter interface {
	Report(err error)
}

// Options tune a Cache. Zero values fall back to the defaults.
type Options struct {
	TTL     time.Duration
	Timeout time.Duration
	Now     func() time.Time
	Logger  *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Cache mirrors one remote reference collection.
//
// Load is TTL-gated and de-duplicated: concurrent callers share one
// in-flight request, and a fetch only commits if no Reset happened while
// it was running. Sync upserts a single pushed entity.
type Cache struct {
	desc     Descriptor
	lister   Lister
	reporter Reporter
	opts     Options
	logger   *zap.Logger

	flight  singleflight.Group
	changes *observe.Subject[Kind]

	mu           sync.RWMutex
	items        Map
	lastLoadedAt time.Time
	generation   uint64
}

// NewCache builds an empty cache for desc.
func NewCache(desc Descriptor, lister Lister, reporter Reporter, opts Options) *Cache {
	opts = opts.withDefaults()
	return &Cache{
		desc:     desc,
		lister:   lister,
		reporter: reporter,
		opts:     opts,
		logger:   opts.Logger.With(zap.String("kind", string(desc.Kind))),
		changes:  observe.NewSubject[Kind](),
		items:    Map{},
	}
}

// Kind returns the collection this cache mirrors.
func (c *Cache) Kind() Kind {
	return c.desc.Kind
}

// Descriptor returns the kind descriptor.
func (c *Cache) Descriptor() Descriptor {
	return c.desc
}

// Load refreshes the cache unless it is fresh enough.
//
// With lazy set, any existing data is good enough. Otherwise the cache is
// refreshed when it has never loaded or TTL has elapsed since the last
// successful load. Failures go to the Reporter and leave the cache as it
// was; the next Load retries.
func (c *Cache) Load(ctx context.Context, lazy bool) {
	if c.skip(lazy) {
		return
	}
	_ = c.refresh(ctx, false)
}

// Refresh fetches regardless of the TTL and returns the failure, if any.
// Failures are still reported.
func (c *Cache) Refresh(ctx context.Context) error {
	return c.refresh(ctx, true)
}

func (c *Cache) skip(lazy bool) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if lazy && len(c.items) > 0 {
		return true
	}
	return c.freshLocked()
}

func (c *Cache) freshLocked() bool {
	return !c.lastLoadedAt.IsZero() && c.opts.Now().Sub(c.lastLoadedAt) < c.opts.TTL
}

func (c *Cache) refresh(ctx context.Context, force bool) error {
	c.mu.RLock()
	generation := c.generation
	c.mu.RUnlock()

	// loads started before a Reset must not absorb callers from after it
	key := strconv.FormatUint(generation, 10)
	ch := c.flight.DoChan(key, func() (any, error) {
		c.mu.RLock()
		fresh := c.freshLocked() && c.generation == generation
		c.mu.RUnlock()
		// a caller that lost the race to a just-finished load lands here
		if fresh && !force {
			return nil, nil
		}
		return nil, c.fetch(context.WithoutCancel(ctx), generation)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Cache) fetch(ctx context.Context, generation uint64) error {
	resp, err := c.lister.ListResources(ctx, c.desc.Service, c.desc.Resource, api.ListOptions{
		Query:   api.Query{Only: c.desc.Only},
		Timeout: c.opts.Timeout,
	})
	if err != nil {
		c.logger.Debug("reference load failed", zap.Error(err))
		if c.reporter != nil {
			c.reporter.Report(err)
		}
		return err
	}

	items := make(Map, len(resp.Results))
	for _, rec := range resp.Results {
		item := c.desc.Project(rec)
		if item.Key == "" {
			continue
		}
		items[item.Key] = item
	}

	c.mu.Lock()
	if c.generation != generation {
		c.mu.Unlock()
		c.logger.Debug("discarding stale reference load")
		return nil
	}
	c.items = items
	c.lastLoadedAt = c.opts.Now()
	c.mu.Unlock()

	c.logger.Debug("reference loaded", zap.Int("count", len(items)))
	c.changes.Publish(c.desc.Kind)
	return nil
}

// Sync upserts the projection of one record. The load clock is untouched.
func (c *Cache) Sync(rec api.Record) {
	c.SyncItem(c.desc.Project(rec))
}

// SyncItem upserts an already projected item. Items without a key are ignored.
func (c *Cache) SyncItem(item Item) {
	if item.Key == "" {
		return
	}
	c.mu.Lock()
	next := c.items.Clone()
	next[item.Key] = item
	c.items = next
	c.mu.Unlock()
	c.changes.Publish(c.desc.Kind)
}

// Reset empties the cache, clears the load clock and invalidates any
// fetch still in flight.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.items = Map{}
	c.lastLoadedAt = time.Time{}
	c.generation++
	c.mu.Unlock()
	c.changes.Publish(c.desc.Kind)
}

// Items returns a snapshot of the cached items.
func (c *Cache) Items() Map {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items.Clone()
}

// Get returns one cached item.
func (c *Cache) Get(key string) (Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[key]
	return item, ok
}

// Label resolves key to its label, falling back to the key itself.
func (c *Cache) Label(key string) string {
	if item, ok := c.Get(key); ok && item.Label != "" {
		return item.Label
	}
	return key
}

// Len returns the number of cached items.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// LastLoadedAt returns the time of the last successful load, or zero.
func (c *Cache) LastLoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastLoadedAt
}

// Subscribe registers fn to run after every commit, sync or reset.
func (c *Cache) Subscribe(fn func(Kind)) (unsubscribe func()) {
	return c.changes.Subscribe(fn)
}
