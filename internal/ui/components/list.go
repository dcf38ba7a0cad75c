package components

// List is a simple scrollable list with cursor.
type List struct {
	Items    []string
	Cursor   int
	Offset   int
	PageSize int
}

// NewList creates a list with the given page size.
func NewList(pageSize int) *List {
	return &List{PageSize: pageSize}
}

// SetItems replaces items and resets cursor.
func (l *List) SetItems(items []string) {
	l.Items = items
	l.Cursor = 0
	l.Offset = 0
}

// ReplaceItems swaps items but keeps the cursor where it was, clamped to
// the new length. Used when a live source refreshes under the cursor.
func (l *List) ReplaceItems(items []string) {
	l.Items = items
	l.Select(l.Cursor)
}

// Select moves the cursor to idx, clamped, and scrolls it into view.
func (l *List) Select(idx int) {
	if idx >= len(l.Items) {
		idx = len(l.Items) - 1
	}
	if idx < 0 {
		idx = 0
	}
	l.Cursor = idx
	if l.PageSize <= 0 {
		l.Offset = 0
		return
	}
	if l.Cursor < l.Offset {
		l.Offset = l.Cursor
	}
	if l.Cursor >= l.Offset+l.PageSize {
		l.Offset = l.Cursor - l.PageSize + 1
	}
	if maxOffset := len(l.Items) - l.PageSize; l.Offset > maxOffset {
		l.Offset = max(maxOffset, 0)
	}
}

// PageDown moves the cursor one page down.
func (l *List) PageDown() {
	l.Select(l.Cursor + max(l.PageSize, 1))
}

// PageUp moves the cursor one page up.
func (l *List) PageUp() {
	l.Select(l.Cursor - max(l.PageSize, 1))
}

// SetPageSize resizes the window, keeping the cursor visible.
func (l *List) SetPageSize(size int) {
	if size < 1 {
		size = 1
	}
	l.PageSize = size
	l.Select(l.Cursor)
}

// Down moves the cursor down.
func (l *List) Down() {
	if l.Cursor < len(l.Items)-1 {
		l.Cursor++
		if l.Cursor >= l.Offset+l.PageSize {
			l.Offset++
		}
	}
}

// Up moves the cursor up.
func (l *List) Up() {
	if l.Cursor > 0 {
		l.Cursor--
		if l.Cursor < l.Offset {
			l.Offset--
		}
	}
}

// Visible returns the currently visible items.
func (l *List) Visible() []string {
	if len(l.Items) == 0 {
		return nil
	}
	end := l.Offset + l.PageSize
	if end > len(l.Items) {
		end = len(l.Items)
	}
	return l.Items[l.Offset:end]
}

// Selected returns the index of the selected item.
func (l *List) Selected() int {
	return l.Cursor
}

// Len returns the number of items.
func (l *List) Len() int {
	return len(l.Items)
}

// IsSelected returns true if the given absolute index is the cursor.
func (l *List) IsSelected(absIdx int) bool {
	return absIdx == l.Cursor
}

// RelToAbs converts a relative (visible) index to absolute.
func (l *List) RelToAbs(relIdx int) int {
	return l.Offset + relIdx
}
