package ui

import tea "github.com/charmbracelet/bubbletea"

// Change signals from background sources. They carry no payload: the
// receiving model reads current state from the source, so a dropped
// duplicate loses nothing.
type (
	storeChangedMsg struct{ kind string }
	propsChangedMsg struct{}
	diffChangedMsg  struct{}
)

// notifier bridges subscriber callbacks (called on arbitrary goroutines)
// into the bubbletea loop.
type notifier struct {
	ch chan tea.Msg
}

func newNotifier() *notifier {
	return &notifier{ch: make(chan tea.Msg, 16)}
}

// send never blocks; when the buffer is full the signal is dropped.
func (n *notifier) send(msg tea.Msg) {
	if n == nil {
		return
	}
	select {
	case n.ch <- msg:
	default:
	}
}

// wait delivers the next signal. The App re-arms it after every delivery.
func (n *notifier) wait() tea.Cmd {
	if n == nil {
		return nil
	}
	return func() tea.Msg {
		return <-n.ch
	}
}
