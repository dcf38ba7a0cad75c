package diffview

import (
	"sync"
	"time"

	"github.com/gravitrone/cloudconsole/cli/internal/observe"
)

// DefaultScrollDelay throttles scroll handling when VirtualScroll.Delay is unset.
const DefaultScrollDelay = 100 * time.Millisecond

// Snapshot is an immutable view of a Layout at one point in time.
type Snapshot struct {
	Rows      []Row
	Meta      []Meta
	List      []Meta
	MinHeight int
	ScrollTop int
	Options   Options
}

// Viewer drives a Layout from input and scroll events. Input changes are
// debounced by the input delay, with the first render immediate; scroll
// events are throttled by the virtual-scroll delay.
type Viewer struct {
	updates  *observe.Subject[Snapshot]
	debounce *observe.Debouncer
	throttle *observe.Throttler

	mu        sync.Mutex
	layout    *Layout
	opts      Options
	prev      string
	current   string
	rendered  bool
	scrollTop int
}

// NewViewer returns a Viewer; nothing renders until SetInput.
func NewViewer(opts Options, inputDelay time.Duration) *Viewer {
	v := &Viewer{
		updates: observe.NewSubject[Snapshot](),
		layout:  NewLayout(opts),
		opts:    opts,
	}
	v.debounce = observe.NewDebouncer(inputDelay, v.render)
	delay := DefaultScrollDelay
	if opts.VirtualScroll != nil && opts.VirtualScroll.Delay > 0 {
		delay = opts.VirtualScroll.Delay
	}
	v.throttle = observe.NewThrottler(delay, v.applyScroll)
	return v
}

// SetInput replaces both documents.
func (v *Viewer) SetInput(prev, current string) {
	v.mu.Lock()
	v.prev, v.current = prev, current
	first := !v.rendered
	v.mu.Unlock()
	v.changed(first)
}

// SetMode switches between unified and split rows.
func (v *Viewer) SetMode(mode Mode) {
	v.mu.Lock()
	v.opts.Mode = mode
	v.mu.Unlock()
	v.changed(false)
}

// SetFolding toggles folding of unchanged runs.
func (v *Viewer) SetFolding(folding bool) {
	v.mu.Lock()
	v.opts.Folding = folding
	v.mu.Unlock()
	v.changed(false)
}

// SetVirtualScroll enables (non-nil) or disables virtual scrolling.
func (v *Viewer) SetVirtualScroll(vs *VirtualScroll) {
	v.mu.Lock()
	v.opts.VirtualScroll = vs
	v.mu.Unlock()
	v.changed(false)
}

// Scroll records a scroll position; the layout follows at most once per delay.
func (v *Viewer) Scroll(scrollTop int) {
	v.mu.Lock()
	v.scrollTop = scrollTop
	v.mu.Unlock()
	v.throttle.Call()
}

// SetLineHeight records a measured row height and publishes the new layout.
func (v *Viewer) SetLineHeight(index, height int) {
	v.mu.Lock()
	v.layout.SetHeight(index, height)
	snap := v.snapshotLocked()
	v.mu.Unlock()
	v.updates.Publish(snap)
}

// Flush applies a pending debounced input change now.
func (v *Viewer) Flush() {
	v.debounce.Flush()
}

// Snapshot returns the current layout.
func (v *Viewer) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

// Subscribe registers fn for every published Snapshot.
func (v *Viewer) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	return v.updates.Subscribe(fn)
}

// Close drops pending work.
func (v *Viewer) Close() {
	v.debounce.Stop()
	v.throttle.Stop()
}

func (v *Viewer) changed(immediate bool) {
	if immediate {
		v.render()
		return
	}
	v.debounce.Trigger()
}

func (v *Viewer) render() {
	v.mu.Lock()
	v.layout.opts = v.opts
	if v.layout.opts.Mode == "" {
		v.layout.opts.Mode = ModeSplit
	}
	v.layout.Render(v.prev, v.current)
	v.layout.Scroll(v.scrollTop)
	v.rendered = true
	snap := v.snapshotLocked()
	v.mu.Unlock()
	v.updates.Publish(snap)
}

func (v *Viewer) applyScroll() {
	v.mu.Lock()
	v.layout.Scroll(v.scrollTop)
	snap := v.snapshotLocked()
	v.mu.Unlock()
	v.updates.Publish(snap)
}

func (v *Viewer) snapshotLocked() Snapshot {
	return Snapshot{
		Rows:      v.layout.Rows(),
		Meta:      v.layout.Meta(),
		List:      v.layout.List(),
		MinHeight: v.layout.MinHeight(),
		ScrollTop: v.layout.ScrollTop(),
		Options:   v.layout.Options(),
	}
}
