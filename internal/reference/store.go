package reference

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gravitrone/cloudconsole/cli/internal/observe"
)

// Event is published by a Store whenever one of its caches changes or the
// loaded flag flips.
type Event struct {
	Kind   Kind
	Loaded bool
}

// Store owns one Cache per kind and tracks whether all of them have been
// loaded at least once.
type Store struct {
	caches map[Kind]*Cache
	order  []Kind
	loaded atomic.Bool
	events *observe.Subject[Event]
	logger *zap.Logger
}

// NewStore builds caches for kinds, or for every known kind when kinds is
// empty. Unknown kinds are an error.
func NewStore(lister Lister, reporter Reporter, opts Options, kinds ...Kind) (*Store, error) {
	if len(kinds) == 0 {
		kinds = Kinds()
	}
	opts = opts.withDefaults()
	s := &Store{
		caches: make(map[Kind]*Cache, len(kinds)),
		events: observe.NewSubject[Event](),
		logger: opts.Logger,
	}
	for _, kind := range kinds {
		desc, ok := Lookup(kind)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
		}
		if _, dup := s.caches[kind]; dup {
			continue
		}
		c := NewCache(desc, lister, reporter, opts)
		c.Subscribe(func(k Kind) {
			s.events.Publish(Event{Kind: k, Loaded: s.loaded.Load()})
		})
		s.caches[kind] = c
		s.order = append(s.order, kind)
	}
	return s, nil
}

// Kinds returns the store's kinds in construction order.
func (s *Store) Kinds() []Kind {
	out := make([]Kind, len(s.order))
	copy(out, s.order)
	return out
}

// Get returns the cache for kind.
func (s *Store) Get(kind Kind) (*Cache, error) {
	c, ok := s.caches[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return c, nil
}

// Cache returns the cache for kind or nil.
func (s *Store) Cache(kind Kind) *Cache {
	return s.caches[kind]
}

// Snapshot returns the current items of kind; unknown kinds yield an empty map.
func (s *Store) Snapshot(kind Kind) Map {
	if c, ok := s.caches[kind]; ok {
		return c.Items()
	}
	return Map{}
}

// LoadAll loads every cache concurrently and then marks the store loaded.
// Individual failures are reported by the caches and do not fail the call.
func (s *Store) LoadAll(ctx context.Context, lazy bool) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range s.order {
		c := s.caches[kind]
		g.Go(func() error {
			c.Load(gctx, lazy)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.loaded.Swap(true) {
		s.logger.Debug("reference store loaded", zap.Int("kinds", len(s.order)))
		s.events.Publish(Event{Loaded: true})
	}
	return nil
}

// Loaded reports whether LoadAll has completed since construction or the
// last Reset.
func (s *Store) Loaded() bool {
	return s.loaded.Load()
}

// Reset clears every cache and the loaded flag.
func (s *Store) Reset() {
	s.loaded.Store(false)
	for _, kind := range s.order {
		s.caches[kind].Reset()
	}
	s.events.Publish(Event{Loaded: false})
}

// Subscribe registers fn for store events.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	return s.events.Subscribe(fn)
}
