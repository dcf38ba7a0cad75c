package querysearch

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gravitrone/cloudconsole/cli/internal/api"
	"github.com/gravitrone/cloudconsole/cli/internal/observe"
	"github.com/gravitrone/cloudconsole/cli/internal/reference"
)

// DefaultDebounce coalesces bursts of schema or cache changes.
const DefaultDebounce = 200 * time.Millisecond

// Binding keeps Props current as the schema and the reference caches change.
//
// Nothing is computed until a schema is set and the store has loaded. The
// first computation then runs immediately; later ones are debounced. Once
// computed, Props only ever moves from one complete snapshot to the next.
type Binding struct {
	mapper   *Mapper
	logger   *zap.Logger
	debounce *observe.Debouncer
	updates  *observe.Subject[Props]
	unsub    func()

	mu        sync.Mutex
	schema    []api.SearchSchemaGroup
	hasSchema bool
	props     Props
	computed  bool
	err       error
}

// NewBinding wires a Binding to the mapper's store. A zero delay means
// DefaultDebounce.
func NewBinding(mapper *Mapper, delay time.Duration, logger *zap.Logger) *Binding {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Binding{
		mapper:  mapper,
		logger:  logger,
		updates: observe.NewSubject[Props](),
	}
	b.debounce = observe.NewDebouncer(delay, b.recompute)
	b.unsub = mapper.Store().Subscribe(func(reference.Event) { b.trigger() })
	return b
}

// SetSchema validates and installs a new schema. An invalid schema is
// rejected and the previous one stays in effect.
func (b *Binding) SetSchema(groups []api.SearchSchemaGroup) error {
	if err := b.mapper.ValidateSchema(groups); err != nil {
		return err
	}
	b.mu.Lock()
	b.schema = groups
	b.hasSchema = true
	b.mu.Unlock()
	b.trigger()
	return nil
}

// Props returns the latest complete snapshot, or empty Props.
func (b *Binding) Props() Props {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.props
}

// Err returns the error of the most recent failed computation.
func (b *Binding) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Subscribe registers fn for every new snapshot.
func (b *Binding) Subscribe(fn func(Props)) (unsubscribe func()) {
	return b.updates.Subscribe(fn)
}

// Flush runs a pending debounced recomputation now.
func (b *Binding) Flush() {
	b.debounce.Flush()
}

// Close detaches the binding from the store and drops pending work.
func (b *Binding) Close() {
	b.unsub()
	b.debounce.Stop()
}

func (b *Binding) ready() bool {
	return b.hasSchema && b.mapper.Store().Loaded()
}

func (b *Binding) trigger() {
	b.mu.Lock()
	if !b.ready() {
		b.mu.Unlock()
		return
	}
	first := !b.computed
	b.mu.Unlock()

	if first {
		b.recompute()
		return
	}
	b.debounce.Trigger()
}

func (b *Binding) recompute() {
	b.mu.Lock()
	if !b.ready() {
		b.mu.Unlock()
		return
	}
	schema := b.schema
	b.mu.Unlock()

	props, err := b.mapper.Build(schema)

	b.mu.Lock()
	if err != nil {
		b.err = err
		b.mu.Unlock()
		b.logger.Warn("search props not rebuilt", zap.Error(err))
		return
	}
	b.props = props
	b.computed = true
	b.err = nil
	b.mu.Unlock()

	b.updates.Publish(props)
}
